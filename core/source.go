package captioning

import (
	"context"
	"fmt"

	"github.com/koscakluka/ema-captions/core/recognition"
)

type sourceRuntime struct {
	// source stores the configured recognition source.
	source recognition.Source
}

type sessionCallbacks struct {
	onResults func(results []recognition.Result)
	onError   func(code recognition.ErrorCode)
	onEnd     func()
}

func newSourceRuntime(source recognition.Source) *sourceRuntime {
	return &sourceRuntime{source: source}
}

func (s *sourceRuntime) isConfigured() bool {
	return s != nil && s.source != nil
}

func (s *sourceRuntime) Start(ctx context.Context, language recognition.Language, callbacks sessionCallbacks) error {
	if !s.isConfigured() {
		return ErrSourceUnavailable
	}

	opts := []recognition.StartOption{
		recognition.WithLanguage(language),
		recognition.WithContinuous(true),
		recognition.WithInterimResults(true),
		recognition.WithResultCallback(callbacks.onResults),
		recognition.WithErrorCallback(callbacks.onError),
		recognition.WithEndCallback(callbacks.onEnd),
	}

	if err := s.source.Start(ctx, opts...); err != nil {
		return fmt.Errorf("failed to start recognition source: %w", err)
	}
	return nil
}

func (s *sourceRuntime) Stop() error {
	if !s.isConfigured() {
		return nil
	}
	return s.source.Stop()
}

func (s *sourceRuntime) Abort() error {
	if !s.isConfigured() {
		return nil
	}
	return s.source.Abort()
}
