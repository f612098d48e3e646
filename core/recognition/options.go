package recognition

type StartOptions struct {
	Language       Language
	Continuous     bool
	InterimResults bool

	ResultCallback func(results []Result)
	ErrorCallback  func(code ErrorCode)
	EndCallback    func()
}

type StartOption func(*StartOptions)

func NewStartOptions(opts ...StartOption) StartOptions {
	options := StartOptions{Language: DefaultLanguage}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithLanguage(language Language) StartOption {
	return func(o *StartOptions) {
		o.Language = language
	}
}

func WithContinuous(continuous bool) StartOption {
	return func(o *StartOptions) {
		o.Continuous = continuous
	}
}

func WithInterimResults(interimResults bool) StartOption {
	return func(o *StartOptions) {
		o.InterimResults = interimResults
	}
}

func WithResultCallback(callback func(results []Result)) StartOption {
	return func(o *StartOptions) {
		o.ResultCallback = callback
	}
}

func WithErrorCallback(callback func(code ErrorCode)) StartOption {
	return func(o *StartOptions) {
		o.ErrorCallback = callback
	}
}

func WithEndCallback(callback func()) StartOption {
	return func(o *StartOptions) {
		o.EndCallback = callback
	}
}
