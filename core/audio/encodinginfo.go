// Package audio describes the raw audio exchanged between microphone capture
// and recognition sources.
package audio

import (
	"fmt"
	"time"
)

const (
	DefaultSampleRate = 16000
	DefaultFormat     = EncodingLinear16
)

type Format string

const (
	EncodingMulaw    Format = "mulaw"
	EncodingALaw     Format = "alaw"
	EncodingLinear16 Format = "linear16"
)

func (f Format) Name() string {
	return string(f)
}

// ByteSize is the size of a single sample, or -1 for unknown formats.
func (f Format) ByteSize() int {
	switch f {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

func ParseFormat(name string) (Format, error) {
	switch format := Format(name); format {
	case EncodingMulaw, EncodingALaw, EncodingLinear16:
		return format, nil
	}
	return "", fmt.Errorf("unknown audio format %q", name)
}

type EncodingInfo struct {
	SampleRate int
	Format     Format
}

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: DefaultFormat}
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// SilenceValue is the byte that encodes silence in every sample position.
func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	}
	return 0
}

// ChunkSize returns the number of bytes holding d of mono audio.
func (e EncodingInfo) ChunkSize(d time.Duration) int {
	size := e.Format.ByteSize()
	if size <= 0 || e.SampleRate <= 0 {
		return 0
	}
	return int(int64(e.SampleRate) * int64(d) / int64(time.Second) * int64(size))
}
