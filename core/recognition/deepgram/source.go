// Package deepgram implements a recognition source backed by Deepgram live
// streaming transcription.
package deepgram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-captions/core/audio"
	"github.com/koscakluka/ema-captions/core/recognition"
)

const (
	DefaultEndpoint = "wss://api.deepgram.com/v1/listen"
	DefaultModel    = "nova-3"

	apiKeyEnv = "DEEPGRAM_API_KEY"

	defaultDrainTimeout = 5 * time.Second
)

var ErrAlreadyStarted = errors.New("deepgram recognition already started")

// AudioInput is a microphone that streams encoded audio while capturing.
type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

type Source struct {
	input AudioInput

	apiKey       string
	model        string
	endpoint     string
	dialer       *websocket.Dialer
	keepAlive    bool
	drainTimeout time.Duration

	mu     sync.Mutex
	active *stream

	captureMu sync.Mutex
	capturing bool
}

type SourceOption func(*Source)

// WithAPIKey sets the API key. Without it the key is read from
// DEEPGRAM_API_KEY when the source is created.
func WithAPIKey(apiKey string) SourceOption {
	return func(s *Source) {
		s.apiKey = apiKey
	}
}

func WithModel(model string) SourceOption {
	return func(s *Source) {
		if model != "" {
			s.model = model
		}
	}
}

// WithEndpoint overrides the streaming endpoint, e.g. for a self-hosted
// deployment.
func WithEndpoint(endpoint string) SourceOption {
	return func(s *Source) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

func WithDialer(dialer *websocket.Dialer) SourceOption {
	return func(s *Source) {
		if dialer != nil {
			s.dialer = dialer
		}
	}
}

// WithKeepAlive controls whether silence and KeepAlive messages are sent
// while the microphone is quiet. Without them Deepgram closes an idle
// stream, which is reported as no-speech.
func WithKeepAlive(keepAlive bool) SourceOption {
	return func(s *Source) {
		s.keepAlive = keepAlive
	}
}

// WithDrainTimeout bounds how long a graceful stop waits for the final
// results before the connection is closed.
func WithDrainTimeout(timeout time.Duration) SourceOption {
	return func(s *Source) {
		if timeout > 0 {
			s.drainTimeout = timeout
		}
	}
}

func NewSource(input AudioInput, opts ...SourceOption) *Source {
	s := &Source{
		input:        input,
		apiKey:       os.Getenv(apiKeyEnv),
		model:        DefaultModel,
		endpoint:     DefaultEndpoint,
		dialer:       websocket.DefaultDialer,
		keepAlive:    true,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a streaming session in the background. Connection and capture
// failures are reported through the error callback followed by the end
// callback, never as a return value.
func (s *Source) Start(ctx context.Context, opts ...recognition.StartOption) error {
	options := recognition.NewStartOptions(opts...)

	encodingInfo := audio.GetDefaultEncodingInfo()
	if s.input != nil {
		if info := s.input.EncodingInfo(); !info.IsZero() {
			encodingInfo = info
		}
	}
	encoding, err := convertEncoding(encodingInfo)
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	st := newStream(options, encodingInfo, cancel)
	s.active = st

	go s.run(ctx, st, *encoding)
	return nil
}

// Stop stops capturing and asks Deepgram to flush the remaining results.
// The session ends once Deepgram closes the stream or the drain timeout
// passes.
func (s *Source) Stop() error {
	st := s.current()
	if st == nil {
		return nil
	}

	s.stopCapture()
	if err := st.closeStream(s.drainTimeout); err != nil {
		st.abort()
		return err
	}
	return nil
}

// Abort tears the session down immediately. The session reports the
// aborted error and then ends. A new session may be started right away.
func (s *Source) Abort() error {
	s.mu.Lock()
	st := s.active
	s.active = nil
	s.mu.Unlock()

	if st != nil {
		st.abort()
	}
	return nil
}

func (s *Source) current() *stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// release detaches a finished stream and stops the microphone when no
// other stream took over.
func (s *Source) release(st *stream) {
	s.mu.Lock()
	if s.active == st {
		s.active = nil
	}
	idle := s.active == nil
	s.mu.Unlock()

	if idle {
		s.stopCapture()
	}
}

// startCapture starts the microphone once and routes its audio to whichever
// stream is active.
func (s *Source) startCapture() error {
	if s.input == nil {
		return errors.New("no audio input configured")
	}

	s.captureMu.Lock()
	defer s.captureMu.Unlock()
	if s.capturing {
		return nil
	}

	if err := s.input.StartCapture(context.Background(), s.route); err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}
	s.capturing = true
	return nil
}

func (s *Source) stopCapture() {
	s.captureMu.Lock()
	defer s.captureMu.Unlock()
	if !s.capturing {
		return
	}

	s.capturing = false
	if err := s.input.StopCapture(); err != nil {
		logger.Warn("failed to stop audio capture", "error", err)
	}
}

func (s *Source) route(chunk []byte) {
	if st := s.current(); st != nil {
		st.sendAudio(chunk)
	}
}
