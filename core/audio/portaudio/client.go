// Package portaudio captures microphone audio through PortAudio.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-captions/core/audio"
)

const DefaultBufferSize = 512

type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	in         []int16

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}, nil
}

// StartCapture starts reading the microphone on a background goroutine and
// hands every buffer to onAudio as little endian linear16.
func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.read(ctx, c.stop, c.done, onAudio)
	return nil
}

func (c *Client) read(ctx context.Context, stop <-chan struct{}, done chan<- struct{}, onAudio func(audio []byte)) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}
			logger.Warn("failed to read from portaudio stream", "error", err)
			return
		}

		audioBuffer := bytes.Buffer{}
		audioBuffer.Grow(len(c.in) * 2)
		if err := binary.Write(&audioBuffer, binary.LittleEndian, c.in); err != nil {
			logger.Warn("failed to encode captured audio", "error", err)
			continue
		}
		onAudio(audioBuffer.Bytes())
	}
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop == nil {
		return nil
	}

	close(c.stop)
	<-c.done
	c.stop, c.done = nil, nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Format:     audio.EncodingLinear16,
	}
}
