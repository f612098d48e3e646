// Package captions folds a stream of interim and final transcript updates
// into a bounded, ordered caption log.
//
// A [Log] is an immutable value. [Log.Apply] and [Log.Clear] return a new log
// and never touch the receiver, so a log handed to a view stays valid after
// further updates.
package captions

import (
	"slices"
	"strings"
	"time"
)

// DefaultCapacity is the number of finalized entries kept when no capacity
// is configured.
const DefaultCapacity = 10

// Event is a single recognition update.
//
// Timestamp is relayed into the produced entry and is never used for
// ordering; ordering is the order in which events are applied.
type Event struct {
	Text      string
	IsFinal   bool
	Timestamp time.Time
}

// Entry is one rendered caption line.
type Entry struct {
	Text      string
	IsFinal   bool
	Timestamp time.Time
}

// Log holds finalized entries oldest first, optionally followed by a single
// pending (non-final) entry.
type Log struct {
	entries  []Entry
	capacity int
}

type LogOption func(*Log)

// WithCapacity sets how many finalized entries are retained. Non-positive
// values fall back to [DefaultCapacity].
func WithCapacity(capacity int) LogOption {
	return func(l *Log) {
		l.capacity = capacity
	}
}

func NewLog(opts ...LogOption) Log {
	log := Log{}
	for _, opt := range opts {
		opt(&log)
	}
	if log.capacity <= 0 {
		log.capacity = DefaultCapacity
	}

	return log
}

// Apply folds event into the log and returns the resulting log.
//
// Events whose text is empty after trimming leave the log unchanged. A final
// event discards the pending entry, appends a finalized entry and evicts the
// oldest finalized entries above capacity. An interim event replaces the
// pending entry wholesale.
func (l Log) Apply(event Event) Log {
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return l
	}

	capacity := l.Capacity()
	finalized := l.finalized()

	entry := Entry{Text: text, IsFinal: event.IsFinal, Timestamp: event.Timestamp}
	if !event.IsFinal {
		entries := make([]Entry, 0, len(finalized)+1)
		entries = append(entries, finalized...)
		return Log{entries: append(entries, entry), capacity: capacity}
	}

	if overflow := len(finalized) + 1 - capacity; overflow > 0 {
		finalized = finalized[overflow:]
	}
	entries := make([]Entry, 0, len(finalized)+1)
	entries = append(entries, finalized...)
	return Log{entries: append(entries, entry), capacity: capacity}
}

// Clear returns an empty log with the same capacity.
func (l Log) Clear() Log {
	return Log{capacity: l.Capacity()}
}

// Entries returns a copy of the log contents, oldest first.
func (l Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

func (l Log) Len() int { return len(l.entries) }

func (l Log) Capacity() int {
	if l.capacity <= 0 {
		return DefaultCapacity
	}
	return l.capacity
}

// Pending returns the non-final entry, if there is one.
func (l Log) Pending() (Entry, bool) {
	if n := len(l.entries); n > 0 && !l.entries[n-1].IsFinal {
		return l.entries[n-1], true
	}
	return Entry{}, false
}

// Finalized returns a copy of the finalized entries, oldest first.
func (l Log) Finalized() []Entry {
	return slices.Clone(l.finalized())
}

// finalized returns the finalized prefix without copying. The pending entry,
// when present, is always the last element.
func (l Log) finalized() []Entry {
	if _, ok := l.Pending(); ok {
		return l.entries[:len(l.entries)-1]
	}
	return l.entries
}
