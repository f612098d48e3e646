package events

import "time"

type Kind string

type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

type Option func(*Base)

// WithTimestamp overrides the creation time recorded on the event.
func WithTimestamp(timestamp time.Time) Option {
	return func(b *Base) {
		b.timestamp = timestamp
	}
}

func NewBase(kind Kind, opts ...Option) Base {
	base := Base{kind: kind, timestamp: time.Now()}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
