package events

import (
	"time"

	"github.com/koscakluka/ema-captions/core/recognition"
)

const (
	// KindListeningStarted identifies the start of continuous listening.
	KindListeningStarted Kind = "recognition.listening_started"
	// KindListeningStopped identifies the end of continuous listening.
	KindListeningStopped Kind = "recognition.listening_stopped"
	// KindSessionStarted identifies a single source session being started,
	// including automatic restarts.
	KindSessionStarted Kind = "recognition.session_started"
	// KindSessionEnded identifies the source reporting a session end.
	KindSessionEnded Kind = "recognition.session_ended"
	// KindRestartScheduled identifies a scheduled automatic restart.
	KindRestartScheduled Kind = "recognition.restart_scheduled"
	// KindRestartCancelled identifies a scheduled restart that was withdrawn.
	KindRestartCancelled Kind = "recognition.restart_cancelled"
	// KindRecognitionFailed identifies an error reported by the source.
	KindRecognitionFailed Kind = "recognition.failed"
)

// StopReason explains why listening stopped.
type StopReason string

const (
	StopReasonUser           StopReason = "user"
	StopReasonGraceful       StopReason = "graceful"
	StopReasonError          StopReason = "error"
	StopReasonRestartFailed  StopReason = "restart_failed"
	StopReasonSilenceTimeout StopReason = "silence_timeout"
	StopReasonContextDone    StopReason = "context_done"
	StopReasonClosed         StopReason = "closed"
)

type ListeningStarted struct {
	Base
	Language recognition.Language
}

func NewListeningStarted(language recognition.Language, opts ...Option) ListeningStarted {
	return ListeningStarted{Base: NewBase(KindListeningStarted, opts...), Language: language}
}

type ListeningStopped struct {
	Base
	Reason StopReason
}

func NewListeningStopped(reason StopReason, opts ...Option) ListeningStopped {
	return ListeningStopped{Base: NewBase(KindListeningStopped, opts...), Reason: reason}
}

// SessionStarted carries the identifier and language of a source session.
type SessionStarted struct {
	Base
	SessionID string
	Language  recognition.Language
	Restart   bool
}

func NewSessionStarted(sessionID string, language recognition.Language, restart bool, opts ...Option) SessionStarted {
	return SessionStarted{
		Base:      NewBase(KindSessionStarted, opts...),
		SessionID: sessionID,
		Language:  language,
		Restart:   restart,
	}
}

type SessionEnded struct {
	Base
	SessionID string
}

func NewSessionEnded(sessionID string, opts ...Option) SessionEnded {
	return SessionEnded{Base: NewBase(KindSessionEnded, opts...), SessionID: sessionID}
}

type RestartScheduled struct {
	Base
	Delay time.Duration
}

func NewRestartScheduled(delay time.Duration, opts ...Option) RestartScheduled {
	return RestartScheduled{Base: NewBase(KindRestartScheduled, opts...), Delay: delay}
}

type RestartCancelled struct{ Base }

func NewRestartCancelled(opts ...Option) RestartCancelled {
	return RestartCancelled{Base: NewBase(KindRestartCancelled, opts...)}
}

// RecognitionFailed carries an error code reported by the source and how it
// was classified.
type RecognitionFailed struct {
	Base
	SessionID string
	Code      recognition.ErrorCode
	Severity  recognition.Severity
}

func NewRecognitionFailed(sessionID string, code recognition.ErrorCode, opts ...Option) RecognitionFailed {
	return RecognitionFailed{
		Base:      NewBase(KindRecognitionFailed, opts...),
		SessionID: sessionID,
		Code:      code,
		Severity:  recognition.Classify(code),
	}
}
