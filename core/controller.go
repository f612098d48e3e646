// Package captioning drives a recognition source through a listening session
// and folds its transcript updates into a bounded caption log.
package captioning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/events"
	"github.com/koscakluka/ema-captions/core/notices"
	"github.com/koscakluka/ema-captions/core/recognition"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
	StateStopping  State = "stopping"
)

func (s State) String() string { return string(s) }

var (
	ErrClosed            = errors.New("captioning controller closed")
	ErrSourceUnavailable = errors.New("recognition source unavailable")
)

// Controller owns a recognition source and the caption log fed by it.
//
// All state changes happen under a single lock; events and notices produced
// by a change are delivered after the lock is released, so handlers may call
// back into the controller.
type Controller struct {
	mu sync.Mutex

	source    *sourceRuntime
	scheduler Scheduler
	now       func() time.Time
	emitEvent eventEmitter
	notify    notices.Sink
	languages recognition.Languages
	metrics   controllerMetrics

	restartDelay   time.Duration
	silenceTimeout time.Duration
	capacity       int
	callbacks      callbackOptions

	state        State
	language     recognition.Language
	log          captions.Log
	session      *session
	restart      *pendingRestart
	generation   uint64
	restartSeq   uint64
	lastActivity time.Time

	baseCtx     context.Context
	watchSeq    uint64
	watchCancel chan struct{}

	closed    bool
	closeOnce sync.Once
}

type session struct {
	id         string
	generation uint64
	language   recognition.Language
	span       trace.Span
	ended      bool
}

func NewController(source recognition.Source, opts ...ControllerOption) *Controller {
	c := &Controller{
		source:       newSourceRuntime(source),
		scheduler:    timerScheduler{},
		now:          time.Now,
		notify:       notices.Discard,
		languages:    recognition.DefaultLanguages(),
		language:     recognition.DefaultLanguage,
		restartDelay: DefaultRestartDelay,
		state:        StateIdle,
		baseCtx:      context.Background(),
		metrics:      newControllerMetrics(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.languages.Supports(c.language) {
		fallback := c.languages[0].Code
		logger.Warn("configured language is not supported, falling back",
			"language", string(c.language), "fallback", string(fallback))
		c.language = fallback
	}
	c.log = captions.NewLog(captions.WithCapacity(c.capacity))
	c.emitEvent = newCallbackEventEmitter(c.callbacks)

	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Language() recognition.Language {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

func (c *Controller) Languages() recognition.Languages {
	return c.languages
}

// Captions returns the current caption log. The returned value is immutable.
func (c *Controller) Captions() captions.Log {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log
}

// Start begins continuous listening in the selected language. ctx bounds the
// whole listening period, including automatic restarts; when it is done the
// controller stops listening.
func (c *Controller) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	return c.locked(func(out *outbox) error {
		if c.closed {
			return ErrClosed
		}

		switch c.state {
		case StateListening:
			return nil
		case StateStopping:
			c.cancelRestartLocked(out)
			if err := c.endSessionLocked(true, out); err != nil {
				logger.Warn("failed to abort draining session", "error", err)
			}
		}

		if !c.source.isConfigured() {
			c.setStateLocked(StateIdle, out)
			out.notice(notices.Unsupported())
			return ErrSourceUnavailable
		}

		c.baseCtx = ctx
		c.lastActivity = c.now()
		if err := c.startSessionLocked(ctx, false, out); err != nil {
			c.setStateLocked(StateIdle, out)
			out.notice(notices.StartFailed())
			return fmt.Errorf("failed to start listening: %w", err)
		}

		c.setStateLocked(StateListening, out)
		out.notice(notices.ListeningStarted())
		out.event(events.NewListeningStarted(c.language, c.stamp()))
		c.watchContextLocked(ctx)
		return nil
	})
}

// Stop ends listening immediately, aborting the source and withdrawing any
// scheduled restart.
func (c *Controller) Stop() error {
	return c.locked(func(out *outbox) error {
		if c.closed {
			return ErrClosed
		}
		if c.state == StateIdle {
			return nil
		}

		return c.terminateLocked(events.StopReasonUser, notices.ListeningStopped(), out)
	})
}

// StopGracefully asks the source to finish the current utterance. Results
// that arrive before the source ends are still applied; the controller
// becomes idle once the source reports the end.
func (c *Controller) StopGracefully() error {
	return c.locked(func(out *outbox) error {
		if c.closed {
			return ErrClosed
		}
		if c.state != StateListening {
			return nil
		}

		c.cancelRestartLocked(out)
		if c.session == nil || c.session.ended {
			return c.terminateLocked(events.StopReasonGraceful, notices.ListeningStopped(), out)
		}

		c.setStateLocked(StateStopping, out)
		if err := c.source.Stop(); err != nil {
			abortErr := c.terminateLocked(events.StopReasonGraceful, notices.ListeningStopped(), out)
			return errors.Join(fmt.Errorf("failed to stop gracefully: %w", err), abortErr)
		}
		return nil
	})
}

// Toggle starts listening when idle and stops it otherwise.
func (c *Controller) Toggle(ctx context.Context) error {
	if c.State() == StateIdle {
		return c.Start(ctx)
	}
	return c.Stop()
}

// SetLanguage selects the recognition language. While listening the current
// session is replaced by one started with the new language.
func (c *Controller) SetLanguage(language recognition.Language) error {
	if !c.languages.Supports(language) {
		return fmt.Errorf("%w: %q", recognition.ErrUnsupportedLanguage, language)
	}

	return c.locked(func(out *outbox) error {
		if c.closed {
			return ErrClosed
		}
		if c.language == language {
			return nil
		}

		c.language = language
		out.event(events.NewLanguageChanged(language, c.stamp()))
		if c.state != StateListening {
			return nil
		}

		c.cancelRestartLocked(out)
		if err := c.endSessionLocked(true, out); err != nil {
			logger.Warn("failed to abort session for language switch", "error", err)
		}
		if err := c.startSessionLocked(c.baseCtx, false, out); err != nil {
			c.terminateLocked(events.StopReasonError, notices.StartFailed(), out)
			return fmt.Errorf("failed to restart listening in %s: %w", language, err)
		}
		return nil
	})
}

// Clear empties the caption log, including a pending caption.
func (c *Controller) Clear() {
	c.locked(func(out *outbox) error {
		c.log = c.log.Clear()
		out.event(events.NewCaptionLogCleared(c.stamp()))
		out.event(events.NewCaptionLogUpdated(c.log, c.stamp()))
		return nil
	})
}

// Close releases the source. Any running session is aborted and any
// scheduled restart is withdrawn. The caption log stays readable.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.locked(func(out *outbox) error {
			c.closed = true
			defer c.stopWatchingLocked()

			if c.state == StateIdle {
				c.cancelRestartLocked(out)
				return c.endSessionLocked(true, out)
			}
			return c.terminateLocked(events.StopReasonClosed, notices.Notice{}, out)
		})
	})
	return err
}

func (c *Controller) locked(fn func(out *outbox) error) error {
	out := &outbox{}
	err := func() error {
		c.mu.Lock()
		defer c.mu.Unlock()
		return fn(out)
	}()
	c.flush(out)
	return err
}

func (c *Controller) flush(out *outbox) {
	for _, event := range out.events {
		c.emitEvent(event)
	}
	for _, notice := range out.notices {
		c.notify.Notify(notice)
	}
}

func (c *Controller) stamp() events.Option {
	return events.WithTimestamp(c.now())
}

func (c *Controller) setStateLocked(state State, out *outbox) {
	if c.state == state {
		return
	}
	from := c.state
	c.state = state
	out.event(events.NewStateChanged(from.String(), state.String(), c.stamp()))
}

func (c *Controller) startSessionLocked(ctx context.Context, restart bool, out *outbox) error {
	c.generation++
	generation := c.generation
	id := uuid.NewString()

	ctx, span := tracer.Start(ctx, "captioning.session", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("session.language", string(c.language)),
		attribute.Bool("session.restart", restart),
	))

	err := c.source.Start(ctx, c.language, sessionCallbacks{
		onResults: func(results []recognition.Result) { c.handleResults(generation, results) },
		onError:   func(code recognition.ErrorCode) { c.handleError(generation, code) },
		onEnd:     func() { c.handleEnd(generation) },
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		c.session = nil
		return err
	}

	c.session = &session{id: id, generation: generation, language: c.language, span: span}
	out.event(events.NewSessionStarted(id, c.language, restart, c.stamp()))
	return nil
}

// endSessionLocked detaches the current session. When abort is set and the
// source has not ended the session yet, the source is aborted.
func (c *Controller) endSessionLocked(abort bool, out *outbox) error {
	current := c.session
	if current == nil {
		return nil
	}
	c.session = nil

	var err error
	if !current.ended {
		current.ended = true
		if abort {
			if err = c.source.Abort(); err != nil {
				current.span.RecordError(err)
			}
		}
		current.span.End()
		out.event(events.NewSessionEnded(current.id, c.stamp()))
	}
	return err
}

// terminateLocked moves the controller to idle, releasing the source. An
// empty notice is not delivered.
func (c *Controller) terminateLocked(reason events.StopReason, notice notices.Notice, out *outbox) error {
	c.cancelRestartLocked(out)
	err := c.endSessionLocked(true, out)
	if err != nil {
		err = fmt.Errorf("failed to abort recognition source: %w", err)
	}

	wasActive := c.state != StateIdle
	c.setStateLocked(StateIdle, out)
	c.stopWatchingLocked()
	if wasActive {
		if notice != (notices.Notice{}) {
			out.notice(notice)
		}
		out.event(events.NewListeningStopped(reason, c.stamp()))
	}
	return err
}

func (c *Controller) isCurrentLocked(generation uint64) bool {
	return c.session != nil && c.session.generation == generation
}

func (c *Controller) handleResults(generation uint64, results []recognition.Result) {
	c.locked(func(out *outbox) error {
		if !c.isCurrentLocked(generation) || c.state == StateIdle {
			return nil
		}

		text, isFinal, ok := recognition.CollapseResults(results)
		if !ok {
			return nil
		}

		now := c.now()
		c.log = c.log.Apply(captions.Event{Text: text, IsFinal: isFinal, Timestamp: now})
		c.lastActivity = now

		if isFinal {
			c.metrics.finalized.Add(c.baseCtx, 1, metric.WithAttributes(
				attribute.String("session.language", string(c.session.language)),
			))
			out.event(events.NewCaptionFinalized(text, c.stamp()))
		} else {
			out.event(events.NewCaptionInterimUpdated(text, c.stamp()))
		}
		out.event(events.NewCaptionLogUpdated(c.log, c.stamp()))
		return nil
	})
}

func (c *Controller) handleError(generation uint64, code recognition.ErrorCode) {
	c.locked(func(out *outbox) error {
		if !c.isCurrentLocked(generation) || c.state == StateIdle {
			return nil
		}

		severity := recognition.Classify(code)
		out.event(events.NewRecognitionFailed(c.session.id, code, c.stamp()))
		if !severity.IsFatal() {
			logger.Debug("benign recognition error", "code", string(code), "session_id", c.session.id)
			if c.state == StateListening {
				c.scheduleRestartLocked(out)
			}
			return nil
		}

		err := fmt.Errorf("recognition failed: %s", code)
		c.session.span.RecordError(err)
		c.session.span.SetStatus(codes.Error, err.Error())
		c.metrics.failures.Add(c.baseCtx, 1, metric.WithAttributes(
			attribute.String("error.code", string(code)),
			attribute.String("error.severity", severity.String()),
		))
		logger.Warn("fatal recognition error", "code", string(code), "severity", severity.String())

		if abortErr := c.terminateLocked(events.StopReasonError, notices.ForError(code), out); abortErr != nil {
			logger.Warn("failed to release source after error", "error", abortErr)
		}
		return nil
	})
}

func (c *Controller) handleEnd(generation uint64) {
	c.locked(func(out *outbox) error {
		if !c.isCurrentLocked(generation) || c.session.ended {
			return nil
		}

		c.session.ended = true
		c.session.span.End()
		out.event(events.NewSessionEnded(c.session.id, c.stamp()))

		switch c.state {
		case StateStopping:
			c.session = nil
			c.setStateLocked(StateIdle, out)
			c.stopWatchingLocked()
			out.notice(notices.ListeningStopped())
			out.event(events.NewListeningStopped(events.StopReasonGraceful, c.stamp()))
		case StateListening:
			c.scheduleRestartLocked(out)
		}
		return nil
	})
}

func (c *Controller) watchContextLocked(ctx context.Context) {
	c.stopWatchingLocked()
	if ctx.Done() == nil {
		return
	}

	c.watchSeq++
	seq := c.watchSeq
	c.watchCancel = withContextCancelHook(ctx, func() { c.handleContextDone(seq) })
}

func (c *Controller) stopWatchingLocked() {
	if c.watchCancel != nil {
		close(c.watchCancel)
		c.watchCancel = nil
	}
}

func (c *Controller) handleContextDone(seq uint64) {
	c.locked(func(out *outbox) error {
		if seq != c.watchSeq || c.state == StateIdle {
			return nil
		}
		// The hook goroutine exits on its own after firing.
		c.watchCancel = nil
		return c.terminateLocked(events.StopReasonContextDone, notices.ListeningStopped(), out)
	})
}

type outbox struct {
	events  []events.Event
	notices []notices.Notice
}

func (o *outbox) event(event events.Event) {
	o.events = append(o.events, event)
}

func (o *outbox) notice(notice notices.Notice) {
	o.notices = append(o.notices, notice)
}
