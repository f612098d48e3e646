// Package recognition describes the external recognition facility consumed
// by the captioning controller: the [Source] contract, its start options,
// the error taxonomy and the supported language set.
package recognition

import (
	"context"
	"strings"
)

// Source is a speech recognition facility that reports transcript updates
// through the callbacks passed to Start.
//
// Implementations must deliver callbacks asynchronously, never from inside
// Start, Stop or Abort, and in the order the updates were produced. An error
// callback is always followed by an end callback for the same session.
type Source interface {
	// Start begins a recognition session configured by opts.
	Start(ctx context.Context, opts ...StartOption) error
	// Stop ends the session gracefully, letting pending results arrive
	// before the end callback.
	Stop() error
	// Abort ends the session immediately. It is a no-op when no session is
	// running.
	Abort() error
}

// Result is one recognized segment inside a result batch.
type Result struct {
	Transcript string
	IsFinal    bool
	Confidence float64
}

// CollapseResults reduces a batch of results into a single transcript
// update. Final segments take precedence and are joined with spaces;
// otherwise the interim segments are concatenated. ok is false when the
// batch carries no text.
func CollapseResults(results []Result) (transcript string, isFinal bool, ok bool) {
	var final, interim strings.Builder
	for _, result := range results {
		if result.IsFinal {
			final.WriteString(result.Transcript)
			final.WriteString(" ")
		} else {
			interim.WriteString(result.Transcript)
		}
	}

	if text := strings.TrimSpace(final.String()); text != "" {
		return text, true, true
	}
	if text := strings.TrimSpace(interim.String()); text != "" {
		return text, false, true
	}
	return "", false, false
}
