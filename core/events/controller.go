package events

import "github.com/koscakluka/ema-captions/core/recognition"

const (
	// KindStateChanged identifies a controller state transition.
	KindStateChanged Kind = "controller.state_changed"
	// KindLanguageChanged identifies a change of the selected language.
	KindLanguageChanged Kind = "controller.language_changed"
)

// StateChanged carries the controller state before and after a transition.
type StateChanged struct {
	Base
	From string
	To   string
}

func NewStateChanged(from, to string, opts ...Option) StateChanged {
	return StateChanged{Base: NewBase(KindStateChanged, opts...), From: from, To: to}
}

type LanguageChanged struct {
	Base
	Language recognition.Language
}

func NewLanguageChanged(language recognition.Language, opts ...Option) LanguageChanged {
	return LanguageChanged{Base: NewBase(KindLanguageChanged, opts...), Language: language}
}
