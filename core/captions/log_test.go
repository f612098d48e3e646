package captions

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

var baseTime = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func at(offset int) time.Time {
	return baseTime.Add(time.Duration(offset) * time.Millisecond)
}

func interim(text string, offset int) Event {
	return Event{Text: text, IsFinal: false, Timestamp: at(offset)}
}

func final(text string, offset int) Event {
	return Event{Text: text, IsFinal: true, Timestamp: at(offset)}
}

func texts(entries []Entry) []string {
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.Text)
	}
	return result
}

func TestApplyInterimThenFinalLeavesOnlyFinal(t *testing.T) {
	log := NewLog().
		Apply(interim("hel", 1)).
		Apply(interim("hello", 2)).
		Apply(final("hello world", 3))

	expected := []Entry{{Text: "hello world", IsFinal: true, Timestamp: at(3)}}
	if got := log.Entries(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %+v, got %+v", expected, got)
	}
}

func TestApplyEvictsOldestFinalizedEntries(t *testing.T) {
	log := NewLog()
	for i := 1; i <= 11; i++ {
		log = log.Apply(final(fmt.Sprintf("msg-%d", i), i))
	}

	expected := []string{"msg-2", "msg-3", "msg-4", "msg-5", "msg-6", "msg-7", "msg-8", "msg-9", "msg-10", "msg-11"}
	if got := texts(log.Entries()); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

func TestApplyAfterClearStartsFresh(t *testing.T) {
	log := NewLog().
		Apply(final("a", 1)).
		Apply(interim("b", 2)).
		Clear().
		Apply(final("c", 3))

	expected := []Entry{{Text: "c", IsFinal: true, Timestamp: at(3)}}
	if got := log.Entries(); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %+v, got %+v", expected, got)
	}
}

func TestApplyNeverHoldsMoreThanCapacityFinalized(t *testing.T) {
	for _, capacity := range []int{1, 3, DefaultCapacity} {
		t.Run(fmt.Sprintf("capacity %d", capacity), func(t *testing.T) {
			log := NewLog(WithCapacity(capacity))
			for i := range 50 {
				log = log.Apply(final(fmt.Sprintf("line %d", i), i))
				if got := len(log.Finalized()); got > capacity {
					t.Fatalf("expected at most %d finalized entries, got %d", capacity, got)
				}
			}
			if got := len(log.Finalized()); got != capacity {
				t.Fatalf("expected exactly %d finalized entries after overflow, got %d", capacity, got)
			}
		})
	}
}

func TestApplyKeepsAtMostOnePendingEntryAtTheEnd(t *testing.T) {
	sequence := []Event{
		interim("one", 1),
		interim("one two", 2),
		final("one two three", 3),
		interim("four", 4),
		final("four five", 5),
		interim("six", 6),
		interim("six seven", 7),
		interim("   ", 8),
		interim("six seven eight", 9),
	}

	log := NewLog(WithCapacity(2))
	for i, event := range sequence {
		log = log.Apply(event)

		pending := 0
		for j, entry := range log.Entries() {
			if entry.IsFinal {
				continue
			}
			pending++
			if j != log.Len()-1 {
				t.Fatalf("step %d: expected pending entry to be last, found at %d of %d", i, j, log.Len())
			}
		}
		if pending > 1 {
			t.Fatalf("step %d: expected at most one pending entry, got %d", i, pending)
		}
	}

	entry, ok := log.Pending()
	if !ok || entry.Text != "six seven eight" {
		t.Fatalf("expected pending entry %q, got %+v (present: %v)", "six seven eight", entry, ok)
	}
}

func TestApplyDoesNotAlterFinalizedEntries(t *testing.T) {
	log := NewLog().Apply(final("first", 1)).Apply(final("second", 2))
	before := log.Finalized()

	log = log.Apply(interim("third", 3)).Apply(interim("third again", 4))

	if got := log.Finalized(); !reflect.DeepEqual(got, before) {
		t.Fatalf("expected finalized entries %+v to be untouched, got %+v", before, got)
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	original := NewLog(WithCapacity(2)).Apply(final("a", 1)).Apply(interim("b", 2))
	snapshot := original.Entries()

	_ = original.Apply(final("c", 3))
	_ = original.Apply(interim("d", 4))
	_ = original.Clear()

	if got := original.Entries(); !reflect.DeepEqual(got, snapshot) {
		t.Fatalf("expected receiver to stay %+v, got %+v", snapshot, got)
	}
}

func TestApplyIgnoresBlankText(t *testing.T) {
	testCases := []struct {
		name  string
		event Event
	}{
		{name: "empty interim", event: interim("", 10)},
		{name: "whitespace interim", event: interim(" \t\n", 10)},
		{name: "empty final", event: final("", 10)},
		{name: "whitespace final", event: final("   ", 10)},
	}

	start := NewLog().Apply(final("kept", 1)).Apply(interim("pending", 2))
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := start.Apply(testCase.event)
			if !reflect.DeepEqual(got, start) {
				t.Fatalf("expected log to be unchanged, got %+v", got.Entries())
			}
		})
	}
}

func TestApplyTrimsText(t *testing.T) {
	log := NewLog().Apply(final("  spaced out \n", 1))

	if got := log.Entries()[0].Text; got != "spaced out" {
		t.Fatalf("expected trimmed text %q, got %q", "spaced out", got)
	}
}

func TestApplyFinalRemovesPendingEntry(t *testing.T) {
	log := NewLog().Apply(interim("draft", 1)).Apply(final("done", 2))

	if _, ok := log.Pending(); ok {
		t.Fatalf("expected no pending entry after a final event")
	}
	entries := log.Entries()
	if last := entries[len(entries)-1]; last.Text != "done" || !last.IsFinal {
		t.Fatalf("expected last entry to be the final %q, got %+v", "done", last)
	}
}

func TestClearEmptiesAnyLog(t *testing.T) {
	testCases := []struct {
		name string
		log  Log
	}{
		{name: "empty", log: NewLog()},
		{name: "pending only", log: NewLog().Apply(interim("x", 1))},
		{name: "finalized only", log: NewLog().Apply(final("x", 1))},
		{name: "full with pending", log: func() Log {
			log := NewLog(WithCapacity(3))
			for i := range 5 {
				log = log.Apply(final(fmt.Sprint(i), i))
			}
			return log.Apply(interim("tail", 9))
		}()},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cleared := testCase.log.Clear()
			if cleared.Len() != 0 {
				t.Fatalf("expected empty log, got %d entries", cleared.Len())
			}
			if _, ok := cleared.Pending(); ok {
				t.Fatalf("expected no pending entry after clear")
			}
			if cleared.Capacity() != testCase.log.Capacity() {
				t.Fatalf("expected capacity %d to survive clear, got %d", testCase.log.Capacity(), cleared.Capacity())
			}
		})
	}
}

func TestNewLogDefaultsCapacity(t *testing.T) {
	if got := NewLog().Capacity(); got != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, got)
	}
	if got := NewLog(WithCapacity(-4)).Capacity(); got != DefaultCapacity {
		t.Fatalf("expected non-positive capacity to fall back to %d, got %d", DefaultCapacity, got)
	}
	if got := (Log{}).Capacity(); got != DefaultCapacity {
		t.Fatalf("expected zero-value log capacity %d, got %d", DefaultCapacity, got)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	log := NewLog().Apply(final("stable", 1))

	entries := log.Entries()
	entries[0].Text = "changed"

	if got := log.Entries()[0].Text; got != "stable" {
		t.Fatalf("expected log contents to be isolated from callers, got %q", got)
	}
}
