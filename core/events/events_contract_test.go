package events

import (
	"testing"
	"time"

	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/recognition"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "caption interim updated", event: NewCaptionInterimUpdated("hel"), expected: KindCaptionInterimUpdated},
		{name: "caption finalized", event: NewCaptionFinalized("hello"), expected: KindCaptionFinalized},
		{name: "caption log updated", event: NewCaptionLogUpdated(captions.NewLog()), expected: KindCaptionLogUpdated},
		{name: "caption log cleared", event: NewCaptionLogCleared(), expected: KindCaptionLogCleared},
		{name: "listening started", event: NewListeningStarted(recognition.English), expected: KindListeningStarted},
		{name: "listening stopped", event: NewListeningStopped(StopReasonUser), expected: KindListeningStopped},
		{name: "session started", event: NewSessionStarted("id", recognition.English, false), expected: KindSessionStarted},
		{name: "session ended", event: NewSessionEnded("id"), expected: KindSessionEnded},
		{name: "restart scheduled", event: NewRestartScheduled(time.Second), expected: KindRestartScheduled},
		{name: "restart cancelled", event: NewRestartCancelled(), expected: KindRestartCancelled},
		{name: "recognition failed", event: NewRecognitionFailed("id", recognition.ErrorNetwork), expected: KindRecognitionFailed},
		{name: "state changed", event: NewStateChanged("idle", "listening"), expected: KindStateChanged},
		{name: "language changed", event: NewLanguageChanged(recognition.Tamil), expected: KindLanguageChanged},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestWithTimestampOverridesCreationTime(t *testing.T) {
	timestamp := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	event := NewCaptionFinalized("hello", WithTimestamp(timestamp))

	if got := event.Timestamp(); !got.Equal(timestamp) {
		t.Fatalf("expected timestamp %v, got %v", timestamp, got)
	}
}

func TestRecognitionFailedClassifiesCode(t *testing.T) {
	event := NewRecognitionFailed("id", recognition.ErrorNotAllowed)

	if event.Severity != recognition.SeverityFatalAccess {
		t.Fatalf("expected severity %s, got %s", recognition.SeverityFatalAccess, event.Severity)
	}
}
