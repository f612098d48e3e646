package notices

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/koscakluka/ema-captions/core/recognition"
)

func TestForErrorPicksNotice(t *testing.T) {
	testCases := []struct {
		code     recognition.ErrorCode
		expected Notice
	}{
		{code: recognition.ErrorNotAllowed, expected: PermissionDenied()},
		{code: recognition.ErrorPermissionDenied, expected: PermissionDenied()},
		{code: recognition.ErrorServiceNotAllowed, expected: PermissionDenied()},
		{code: recognition.ErrorNetwork, expected: NetworkError()},
		{code: recognition.ErrorUnsupported, expected: Unsupported()},
		{code: recognition.ErrorAudioCapture, expected: RecognitionError(recognition.ErrorAudioCapture)},
		{code: "bad-grammar", expected: RecognitionError("bad-grammar")},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.code), func(t *testing.T) {
			if got := ForError(testCase.code); got != testCase.expected {
				t.Fatalf("expected %+v, got %+v", testCase.expected, got)
			}
		})
	}
}

func TestErrorNoticesAreDestructive(t *testing.T) {
	for _, notice := range []Notice{PermissionDenied(), NetworkError(), Unsupported(), RecognitionError("x"), StartFailed(), RestartFailed()} {
		if notice.Severity != SeverityDestructive {
			t.Fatalf("expected %q to be destructive, got %q", notice.Title, notice.Severity)
		}
	}
	for _, notice := range []Notice{ListeningStarted(), ListeningStopped(), SilenceTimeout()} {
		if notice.Severity != SeverityInfo {
			t.Fatalf("expected %q to be informational, got %q", notice.Title, notice.Severity)
		}
	}
}

func TestRecognitionErrorMentionsCode(t *testing.T) {
	if got := RecognitionError("bad-grammar").Description; got != "Error: bad-grammar" {
		t.Fatalf("expected description %q, got %q", "Error: bad-grammar", got)
	}
}

func TestMultiFansOutInOrderAndSkipsNil(t *testing.T) {
	received := []string{}
	first := SinkFunc(func(n Notice) { received = append(received, "first:"+n.Title) })
	second := SinkFunc(func(n Notice) { received = append(received, "second:"+n.Title) })

	Multi(first, nil, second).Notify(ListeningStarted())

	if len(received) != 2 || received[0] != "first:Listening..." || received[1] != "second:Listening..." {
		t.Fatalf("expected both sinks in order, got %v", received)
	}
}

func TestLogSinkUsesWarnForDestructive(t *testing.T) {
	buffer := bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelInfo}))

	sink := NewLogSink(logger)
	sink.Notify(ListeningStarted())
	sink.Notify(PermissionDenied())

	output := buffer.String()
	if !strings.Contains(output, "level=INFO") || !strings.Contains(output, `title=Listening...`) {
		t.Fatalf("expected info line for listening notice, got %q", output)
	}
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, `title="Microphone Access Denied"`) {
		t.Fatalf("expected warn line for permission notice, got %q", output)
	}
}

func TestDesktopSinkPrefixesAppName(t *testing.T) {
	delivered := make(chan string, 1)
	sink := desktopSink{appName: "Captions", notify: func(title, message string) error {
		delivered <- title + "|" + message
		return nil
	}}

	sink.Notify(ListeningStopped())

	if got := <-delivered; got != "Captions: Stopped Listening|Voice input stopped" {
		t.Fatalf("expected prefixed desktop notification, got %q", got)
	}
}
