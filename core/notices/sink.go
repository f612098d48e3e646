package notices

import (
	"context"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Sink receives notices. Notify must not block for long; sinks are called on
// the controller's callback path.
type Sink interface {
	Notify(notice Notice)
}

type SinkFunc func(notice Notice)

func (f SinkFunc) Notify(notice Notice) { f(notice) }

// Discard drops every notice.
var Discard Sink = SinkFunc(func(Notice) {})

type multiSink []Sink

// Multi fans each notice out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	filtered := make(multiSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return filtered
}

func (m multiSink) Notify(notice Notice) {
	for _, sink := range m {
		sink.Notify(notice)
	}
}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink writes notices to logger, destructive ones at warn level.
func NewLogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return logSink{logger: logger}
}

func (s logSink) Notify(notice Notice) {
	level := slog.LevelInfo
	if notice.Severity == SeverityDestructive {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "notice",
		"title", notice.Title,
		"description", notice.Description,
		"severity", string(notice.Severity),
	)
}

type desktopSink struct {
	appName string
	notify  func(title, message string) error
}

// NewDesktopSink shows notices as desktop notifications. Delivery happens in
// the background and failures are ignored.
func NewDesktopSink(appName string) Sink {
	return desktopSink{
		appName: appName,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (s desktopSink) Notify(notice Notice) {
	title := notice.Title
	if s.appName != "" {
		title = s.appName + ": " + title
	}
	go func() { _ = s.notify(title, notice.Description) }()
}
