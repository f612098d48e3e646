package recognition

import "testing"

func TestClassify(t *testing.T) {
	testCases := []struct {
		code     ErrorCode
		expected Severity
	}{
		{code: ErrorNoSpeech, expected: SeverityBenign},
		{code: ErrorAborted, expected: SeverityBenign},
		{code: ErrorNotAllowed, expected: SeverityFatalAccess},
		{code: ErrorPermissionDenied, expected: SeverityFatalAccess},
		{code: ErrorServiceNotAllowed, expected: SeverityFatalAccess},
		{code: ErrorNetwork, expected: SeverityFatalEnvironment},
		{code: ErrorAudioCapture, expected: SeverityFatalEnvironment},
		{code: ErrorUnsupported, expected: SeverityFatalEnvironment},
		{code: ErrorLanguageNotSupported, expected: SeverityUnexpected},
		{code: ErrorCode("bad-grammar"), expected: SeverityUnexpected},
		{code: ErrorCode(""), expected: SeverityUnexpected},
	}

	for _, testCase := range testCases {
		t.Run(string(testCase.code), func(t *testing.T) {
			if got := Classify(testCase.code); got != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, got)
			}
		})
	}
}

func TestOnlyBenignSeverityIsNotFatal(t *testing.T) {
	if SeverityBenign.IsFatal() {
		t.Fatalf("expected benign severity to be non-fatal")
	}
	for _, severity := range []Severity{SeverityFatalAccess, SeverityFatalEnvironment, SeverityUnexpected} {
		if !severity.IsFatal() {
			t.Fatalf("expected %s to be fatal", severity)
		}
	}
}
