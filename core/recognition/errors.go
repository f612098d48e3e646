package recognition

import "fmt"

// ErrorCode identifies why a recognition session reported an error.
type ErrorCode string

const (
	ErrorNoSpeech             ErrorCode = "no-speech"
	ErrorAborted              ErrorCode = "aborted"
	ErrorNotAllowed           ErrorCode = "not-allowed"
	ErrorPermissionDenied     ErrorCode = "permission-denied"
	ErrorServiceNotAllowed    ErrorCode = "service-not-allowed"
	ErrorNetwork              ErrorCode = "network"
	ErrorAudioCapture         ErrorCode = "audio-capture"
	ErrorUnsupported          ErrorCode = "unsupported"
	ErrorLanguageNotSupported ErrorCode = "language-not-supported"
)

// Severity classifies an error code by how the controller reacts to it.
type Severity int

const (
	// SeverityBenign covers expected noise during continuous listening.
	SeverityBenign Severity = iota
	// SeverityFatalAccess covers denied microphone or service access.
	SeverityFatalAccess
	// SeverityFatalEnvironment covers broken connectivity or devices.
	SeverityFatalEnvironment
	// SeverityUnexpected covers everything else and is treated as fatal.
	SeverityUnexpected
)

func (s Severity) IsFatal() bool { return s != SeverityBenign }

func (s Severity) String() string {
	switch s {
	case SeverityBenign:
		return "benign"
	case SeverityFatalAccess:
		return "fatal_access"
	case SeverityFatalEnvironment:
		return "fatal_environment"
	case SeverityUnexpected:
		return "unexpected"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

func Classify(code ErrorCode) Severity {
	switch code {
	case ErrorNoSpeech, ErrorAborted:
		return SeverityBenign
	case ErrorNotAllowed, ErrorPermissionDenied, ErrorServiceNotAllowed:
		return SeverityFatalAccess
	case ErrorNetwork, ErrorAudioCapture, ErrorUnsupported:
		return SeverityFatalEnvironment
	default:
		return SeverityUnexpected
	}
}
