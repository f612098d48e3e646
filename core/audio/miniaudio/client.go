// Package miniaudio captures microphone audio through miniaudio.
package miniaudio

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-captions/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	captureClient

	sampleRate int
}

type ClientOption func(*Client)

// WithSampleRate sets the capture sample rate. Audio is always mono linear16.
func WithSampleRate(sampleRate int) ClientOption {
	return func(c *Client) {
		if sampleRate > 0 {
			c.sampleRate = sampleRate
		}
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	client := Client{sampleRate: audio.DefaultSampleRate}
	for _, opt := range opts {
		opt(&client)
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	client.audioContext = audioCtx

	if err := client.captureClient.Init(audioCtx, uint32(client.sampleRate)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.captureClient.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: c.sampleRate,
		Format:     audio.EncodingLinear16,
	}
}
