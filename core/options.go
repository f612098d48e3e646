package captioning

import (
	"time"

	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/events"
	"github.com/koscakluka/ema-captions/core/notices"
	"github.com/koscakluka/ema-captions/core/recognition"
)

type ControllerOption func(*Controller)

// WithLanguage selects the language used for the first session. Languages
// outside the supported set fall back to the first supported language.
func WithLanguage(language recognition.Language) ControllerOption {
	return func(c *Controller) {
		c.language = language
	}
}

// WithSupportedLanguages replaces the built-in language set. An empty set is
// ignored.
func WithSupportedLanguages(languages recognition.Languages) ControllerOption {
	return func(c *Controller) {
		if len(languages) > 0 {
			c.languages = languages
		}
	}
}

// WithCapacity sets how many finalized captions are retained.
func WithCapacity(capacity int) ControllerOption {
	return func(c *Controller) {
		c.capacity = capacity
	}
}

// WithRestartDelay sets the delay between a session end and the automatic
// restart. Non-positive values keep [DefaultRestartDelay].
func WithRestartDelay(delay time.Duration) ControllerOption {
	return func(c *Controller) {
		if delay > 0 {
			c.restartDelay = delay
		}
	}
}

// WithSilenceTimeout stops listening instead of restarting once no caption
// text has arrived for the given duration. Zero disables the timeout.
func WithSilenceTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		c.silenceTimeout = max(timeout, 0)
	}
}

func WithScheduler(scheduler Scheduler) ControllerOption {
	return func(c *Controller) {
		if scheduler != nil {
			c.scheduler = scheduler
		}
	}
}

// WithClock replaces the clock used to timestamp captions and events.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithNoticeSink(sink notices.Sink) ControllerOption {
	return func(c *Controller) {
		if sink != nil {
			c.notify = sink
		}
	}
}

type callbackOptions struct {
	onEvent          func(event events.Event)
	onCaptions       func(log captions.Log)
	onInterimCaption func(text string)
	onFinalCaption   func(text string)
	onStateChanged   func(state State)
}

// WithEventHandler registers a handler receiving every emitted event.
func WithEventHandler(handler func(event events.Event)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onEvent = handler
	}
}

// WithCaptionsCallback registers a callback receiving the caption log after
// every change, including clears.
func WithCaptionsCallback(callback func(log captions.Log)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onCaptions = callback
	}
}

func WithInterimCaptionCallback(callback func(text string)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onInterimCaption = callback
	}
}

func WithFinalCaptionCallback(callback func(text string)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onFinalCaption = callback
	}
}

func WithStateCallback(callback func(state State)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onStateChanged = callback
	}
}
