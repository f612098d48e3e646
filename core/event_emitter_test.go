package captioning

import (
	"reflect"
	"testing"

	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/events"
)

func TestCallbackEventEmitterRoutesTypedEvents(t *testing.T) {
	calls := []string{}
	emit := newCallbackEventEmitter(callbackOptions{
		onInterimCaption: func(text string) { calls = append(calls, "interim:"+text) },
		onFinalCaption:   func(text string) { calls = append(calls, "final:"+text) },
		onCaptions:       func(log captions.Log) { calls = append(calls, "captions") },
		onStateChanged:   func(state State) { calls = append(calls, "state:"+state.String()) },
		onEvent:          func(event events.Event) { calls = append(calls, "event:"+string(event.Kind())) },
	})

	emit(events.NewCaptionInterimUpdated("hel"))
	emit(events.NewCaptionFinalized("hello"))
	emit(events.NewCaptionLogUpdated(captions.NewLog()))
	emit(events.NewStateChanged(StateIdle.String(), StateListening.String()))

	expected := []string{
		"interim:hel", "event:" + string(events.KindCaptionInterimUpdated),
		"final:hello", "event:" + string(events.KindCaptionFinalized),
		"captions", "event:" + string(events.KindCaptionLogUpdated),
		"state:listening", "event:" + string(events.KindStateChanged),
	}
	if !reflect.DeepEqual(calls, expected) {
		t.Fatalf("expected calls %v, got %v", expected, calls)
	}
}

func TestCallbackEventEmitterWithoutCallbacksIsNoop(t *testing.T) {
	emit := newCallbackEventEmitter(callbackOptions{})
	if reflect.ValueOf(emit).Pointer() != reflect.ValueOf(eventEmitter(noopEventEmitter)).Pointer() {
		t.Fatalf("expected noop emitter when no callbacks are configured")
	}

	emit(events.NewCaptionFinalized("ignored"))
}

func TestCallbackEventEmitterToleratesPartialCallbacks(t *testing.T) {
	var finals []string
	emit := newCallbackEventEmitter(callbackOptions{
		onFinalCaption: func(text string) { finals = append(finals, text) },
	})

	emit(events.NewCaptionInterimUpdated("draft"))
	emit(events.NewCaptionLogCleared())
	emit(events.NewCaptionFinalized("done"))

	if !reflect.DeepEqual(finals, []string{"done"}) {
		t.Fatalf("expected finals [done], got %v", finals)
	}
}
