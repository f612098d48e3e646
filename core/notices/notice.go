// Package notices carries short user-facing messages about the listening
// session, such as "Listening..." or "Microphone Access Denied".
package notices

import (
	"fmt"

	"github.com/koscakluka/ema-captions/core/recognition"
)

type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

type Notice struct {
	Title       string
	Description string
	Severity    Severity
}

func (n Notice) String() string {
	if n.Description == "" {
		return n.Title
	}
	return n.Title + ": " + n.Description
}

func ListeningStarted() Notice {
	return Notice{Title: "Listening...", Description: "Speak now to generate captions", Severity: SeverityInfo}
}

func ListeningStopped() Notice {
	return Notice{Title: "Stopped Listening", Description: "Voice input stopped", Severity: SeverityInfo}
}

func SilenceTimeout() Notice {
	return Notice{Title: "Stopped Listening", Description: "No speech was detected for a while", Severity: SeverityInfo}
}

func PermissionDenied() Notice {
	return Notice{
		Title:       "Microphone Access Denied",
		Description: "Please allow microphone access to use voice input.",
		Severity:    SeverityDestructive,
	}
}

func NetworkError() Notice {
	return Notice{
		Title:       "Network Error",
		Description: "Lost the connection to the speech recognition service.",
		Severity:    SeverityDestructive,
	}
}

func Unsupported() Notice {
	return Notice{
		Title:       "Not Supported",
		Description: "Speech recognition is not available on this device.",
		Severity:    SeverityDestructive,
	}
}

func RecognitionError(code recognition.ErrorCode) Notice {
	return Notice{Title: "Recognition Error", Description: fmt.Sprintf("Error: %s", code), Severity: SeverityDestructive}
}

func StartFailed() Notice {
	return Notice{Title: "Error", Description: "Failed to start voice input", Severity: SeverityDestructive}
}

func RestartFailed() Notice {
	return Notice{Title: "Error", Description: "Voice input stopped after a failed restart", Severity: SeverityDestructive}
}

// ForError picks the notice shown when a fatal error code ends listening.
func ForError(code recognition.ErrorCode) Notice {
	switch code {
	case recognition.ErrorNotAllowed, recognition.ErrorPermissionDenied, recognition.ErrorServiceNotAllowed:
		return PermissionDenied()
	case recognition.ErrorNetwork:
		return NetworkError()
	case recognition.ErrorUnsupported:
		return Unsupported()
	default:
		return RecognitionError(code)
	}
}
