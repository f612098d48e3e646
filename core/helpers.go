package captioning

import "context"

// withContextCancelHook calls onContextDone once ctx is done, unless the
// returned channel is closed first.
func withContextCancelHook(ctx context.Context, onContextDone func()) chan struct{} {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			onContextDone()
		case <-done:
		}
	}()
	return done
}
