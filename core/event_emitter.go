package captioning

import "github.com/koscakluka/ema-captions/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts callbackOptions) eventEmitter {
	if opts.isEmpty() {
		return noopEventEmitter
	}

	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.CaptionInterimUpdated:
			if opts.onInterimCaption != nil {
				opts.onInterimCaption(typedEvent.Text)
			}
		case events.CaptionFinalized:
			if opts.onFinalCaption != nil {
				opts.onFinalCaption(typedEvent.Text)
			}
		case events.CaptionLogUpdated:
			if opts.onCaptions != nil {
				opts.onCaptions(typedEvent.Log)
			}
		case events.StateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(State(typedEvent.To))
			}
		}

		if opts.onEvent != nil {
			opts.onEvent(event)
		}
	}
}

func (o callbackOptions) isEmpty() bool {
	return o.onEvent == nil &&
		o.onCaptions == nil &&
		o.onInterimCaption == nil &&
		o.onFinalCaption == nil &&
		o.onStateChanged == nil
}
