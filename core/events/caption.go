package events

import "github.com/koscakluka/ema-captions/core/captions"

const (
	// KindCaptionInterimUpdated identifies a replacement of the pending caption.
	KindCaptionInterimUpdated Kind = "caption.interim_updated"
	// KindCaptionFinalized identifies a newly appended finalized caption.
	KindCaptionFinalized Kind = "caption.finalized"
	// KindCaptionLogUpdated identifies a new caption log snapshot.
	KindCaptionLogUpdated Kind = "caption.log_updated"
	// KindCaptionLogCleared identifies an explicit reset of the caption log.
	KindCaptionLogCleared Kind = "caption.log_cleared"
)

// CaptionInterimUpdated carries the text of the pending caption.
type CaptionInterimUpdated struct {
	Base
	Text string
}

func NewCaptionInterimUpdated(text string, opts ...Option) CaptionInterimUpdated {
	return CaptionInterimUpdated{Base: NewBase(KindCaptionInterimUpdated, opts...), Text: text}
}

// CaptionFinalized carries the text of a caption that will not change.
type CaptionFinalized struct {
	Base
	Text string
}

func NewCaptionFinalized(text string, opts ...Option) CaptionFinalized {
	return CaptionFinalized{Base: NewBase(KindCaptionFinalized, opts...), Text: text}
}

// CaptionLogUpdated carries the caption log after an update was applied.
type CaptionLogUpdated struct {
	Base
	Log captions.Log
}

func NewCaptionLogUpdated(log captions.Log, opts ...Option) CaptionLogUpdated {
	return CaptionLogUpdated{Base: NewBase(KindCaptionLogUpdated, opts...), Log: log}
}

// CaptionLogCleared marks an explicit reset of the caption log.
type CaptionLogCleared struct{ Base }

func NewCaptionLogCleared(opts ...Option) CaptionLogCleared {
	return CaptionLogCleared{Base: NewBase(KindCaptionLogCleared, opts...)}
}
