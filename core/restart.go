package captioning

import (
	"time"

	"github.com/koscakluka/ema-captions/core/events"
	"github.com/koscakluka/ema-captions/core/notices"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultRestartDelay separates a session end from the automatic restart so
// the new session does not race the teardown of the old one.
const DefaultRestartDelay = 100 * time.Millisecond

// Scheduler runs delayed actions. AfterFunc must not call f synchronously.
// The returned cancel reports whether f was prevented from running.
type Scheduler interface {
	AfterFunc(delay time.Duration, f func()) (cancel func() bool)
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(delay time.Duration, f func()) func() bool {
	return time.AfterFunc(delay, f).Stop
}

type pendingRestart struct {
	seq    uint64
	cancel func() bool
}

// scheduleRestartLocked schedules a single restart of the source. Repeated
// calls while a restart is pending keep the existing one.
func (c *Controller) scheduleRestartLocked(out *outbox) {
	if c.restart != nil {
		return
	}

	if c.silenceTimeout > 0 && c.now().Sub(c.lastActivity) >= c.silenceTimeout {
		logger.Info("no captions within silence timeout, stopping", "timeout", c.silenceTimeout.String())
		if err := c.terminateLocked(events.StopReasonSilenceTimeout, notices.SilenceTimeout(), out); err != nil {
			logger.Warn("failed to release source after silence timeout", "error", err)
		}
		return
	}

	c.restartSeq++
	seq := c.restartSeq
	cancel := c.scheduler.AfterFunc(c.restartDelay, func() { c.runRestart(seq) })
	c.restart = &pendingRestart{seq: seq, cancel: cancel}
	out.event(events.NewRestartScheduled(c.restartDelay, c.stamp()))
}

func (c *Controller) cancelRestartLocked(out *outbox) {
	if c.restart == nil {
		return
	}

	c.restart.cancel()
	c.restart = nil
	out.event(events.NewRestartCancelled(c.stamp()))
}

// runRestart executes a scheduled restart. Restarts that were cancelled or
// superseded while waiting for the lock do nothing.
func (c *Controller) runRestart(seq uint64) {
	c.locked(func(out *outbox) error {
		if c.restart == nil || c.restart.seq != seq {
			return nil
		}
		c.restart = nil
		if c.closed || c.state != StateListening {
			return nil
		}

		if err := c.endSessionLocked(true, out); err != nil {
			logger.Warn("failed to abort session before restart", "error", err)
		}

		c.metrics.restarts.Add(c.baseCtx, 1, metric.WithAttributes(
			attribute.String("session.language", string(c.language)),
		))
		if err := c.startSessionLocked(c.baseCtx, true, out); err != nil {
			logger.Error("failed to restart recognition source", "error", err)
			c.metrics.failures.Add(c.baseCtx, 1, metric.WithAttributes(
				attribute.String("error.code", "restart_failed"),
			))
			if abortErr := c.terminateLocked(events.StopReasonRestartFailed, notices.RestartFailed(), out); abortErr != nil {
				logger.Warn("failed to release source after restart failure", "error", abortErr)
			}
		}
		return nil
	})
}
