package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-captions/core/audio"
	"github.com/koscakluka/ema-captions/core/recognition"
	"github.com/koscakluka/ema-captions/internal/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// stream is a single websocket session with Deepgram.
type stream struct {
	options  recognition.StartOptions
	encoding audio.EncodingInfo
	cancel   context.CancelFunc

	connMu     sync.Mutex
	conn       *websocket.Conn
	closed     bool
	drainTimer *time.Timer

	lastAudio atomic.Int64
	aborted   atomic.Bool
	draining  atomic.Bool
}

type controlMessage struct {
	Type string `json:"type"`
}

const keepAliveMessageType = "KeepAlive"

func newStream(options recognition.StartOptions, encoding audio.EncodingInfo, cancel context.CancelFunc) *stream {
	st := &stream{options: options, encoding: encoding, cancel: cancel}
	st.lastAudio.Store(time.Now().UnixNano())
	return st
}

func (s *Source) run(ctx context.Context, st *stream, encoding encodingInfo) {
	code := s.serve(ctx, st, encoding)

	st.closeConn()
	st.cancel()
	s.release(st)

	if code != "" {
		st.reportError(code)
	}
	st.reportEnd()
}

// serve connects and reads until the stream is over. The returned code is
// empty when the stream ended cleanly.
func (s *Source) serve(ctx context.Context, st *stream, encoding encodingInfo) recognition.ErrorCode {
	if s.apiKey == "" {
		logger.Error("deepgram api key not configured", "env", apiKeyEnv)
		return recognition.ErrorServiceNotAllowed
	}

	listenURL, err := s.listenURL(st.options, encoding)
	if err != nil {
		logger.Error("failed to build deepgram url", "error", err)
		return recognition.ErrorNetwork
	}

	ctx, span := tracer.Start(ctx, "deepgram.stream", trace.WithAttributes(
		attribute.String("deepgram.model", s.model),
		attribute.String("deepgram.language", string(st.options.Language)),
		attribute.Bool("deepgram.interim_results", st.options.InterimResults),
	))
	defer span.End()

	conn, resp, err := s.dialer.DialContext(ctx, listenURL, http.Header{"Authorization": {"Token " + s.apiKey}})
	if err != nil {
		switch {
		case st.aborted.Load():
			return recognition.ErrorAborted
		case st.draining.Load():
			return ""
		}
		code := classifyDialError(resp, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("failed to open socket connection to deepgram", "error", err, "code", string(code))
		return code
	}

	if !st.attach(conn) {
		_ = conn.Close()
		if st.aborted.Load() {
			return recognition.ErrorAborted
		}
		return ""
	}

	if err := s.startCapture(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("failed to capture audio", "error", err)
		return recognition.ErrorAudioCapture
	}

	if s.keepAlive {
		go st.generateSilence(ctx)
	}

	code := st.readMessages(conn, s.drainTimeout)
	if code != "" {
		span.SetAttributes(attribute.String("recognition.error", string(code)))
	}
	return code
}

func (s *Source) listenURL(options recognition.StartOptions, encoding encodingInfo) (string, error) {
	listenURL, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", s.endpoint, err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", s.model)
	queryParams.Set("language", string(options.Language))
	queryParams.Set("smart_format", "true")
	if options.InterimResults {
		queryParams.Set("interim_results", "true")
	}
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")

	listenURL.RawQuery = queryParams.Encode()
	return listenURL.String(), nil
}

func classifyDialError(resp *http.Response, err error) recognition.ErrorCode {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusPaymentRequired:
			return recognition.ErrorNotAllowed
		case http.StatusBadRequest:
			return recognition.ErrorLanguageNotSupported
		}
	}
	if errors.Is(err, context.Canceled) {
		return recognition.ErrorAborted
	}
	return recognition.ErrorNetwork
}

// attach stores the connection unless the stream was stopped while dialing.
func (st *stream) attach(conn *websocket.Conn) bool {
	st.connMu.Lock()
	defer st.connMu.Unlock()

	if st.aborted.Load() || st.draining.Load() {
		return false
	}
	st.conn = conn
	return true
}

func (st *stream) readMessages(conn *websocket.Conn, drainTimeout time.Duration) recognition.ErrorCode {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return st.classifyReadError(err)
		}
		if msgType != websocket.TextMessage {
			continue
		}

		if speechFinal := st.processMessage(msg); speechFinal && !st.options.Continuous {
			if err := st.closeStream(drainTimeout); err != nil {
				logger.Warn("failed to end single utterance stream", "error", err)
				return recognition.ErrorNetwork
			}
		}
	}
}

func (st *stream) classifyReadError(err error) recognition.ErrorCode {
	if st.aborted.Load() {
		return recognition.ErrorAborted
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return ""
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseInternalServerErr && isNoAudioTimeout(closeErr.Text) {
		logger.Debug("deepgram closed idle stream", "reason", closeErr.Text)
		return recognition.ErrorNoSpeech
	}
	if st.draining.Load() {
		return ""
	}

	logger.Warn("failed to read deepgram websocket message", "error", err)
	return recognition.ErrorNetwork
}

// isNoAudioTimeout reports whether a close reason is Deepgram's NET-0001,
// sent when no audio arrived within its timeout window.
func isNoAudioTimeout(reason string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(reason), "-", "")
	return strings.Contains(normalized, "net0001")
}

// processMessage relays a Deepgram message and reports whether it closed an
// utterance.
func (st *stream) processMessage(msg []byte) (speechFinal bool) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return false
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", "error", err)
			return false
		}
		if !msgResp.IsFinal && !st.options.InterimResults {
			return false
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return msgResp.SpeechFinal
		}

		alternative := msgResp.Channel.Alternatives[0]
		transcript := strings.TrimSpace(alternative.Transcript)
		if transcript != "" && st.options.ResultCallback != nil {
			st.options.ResultCallback([]recognition.Result{{
				Transcript: transcript,
				IsFinal:    msgResp.IsFinal,
				Confidence: alternative.Confidence,
			}})
		}
		return msgResp.SpeechFinal

	case api.TypeUtteranceEndResponse:
		logger.Debug("deepgram utterance ended")
	case api.TypeSpeechStartedResponse:
		logger.Debug("deepgram detected speech")
	default:
		logger.Debug("ignoring deepgram message", "type", parsedMsg.Type)
	}
	return false
}

func (st *stream) reportError(code recognition.ErrorCode) {
	if st.options.ErrorCallback != nil {
		st.options.ErrorCallback(code)
	}
}

func (st *stream) reportEnd() {
	if st.options.EndCallback != nil {
		st.options.EndCallback()
	}
}

func (st *stream) sendAudio(chunk []byte) {
	if st.draining.Load() {
		return
	}

	st.connMu.Lock()
	defer st.connMu.Unlock()
	if st.conn == nil || st.closed {
		return
	}

	st.lastAudio.Store(time.Now().UnixNano())
	if err := st.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		logger.Debug("failed to write audio to deepgram", "error", err)
	}
}

func (st *stream) sendSilence(chunk []byte) error {
	st.connMu.Lock()
	defer st.connMu.Unlock()
	if st.conn == nil || st.closed {
		return nil
	}

	if err := st.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("failed to write silence to deepgram: %w", err)
	}
	return nil
}

func (st *stream) sendKeepAlive() error {
	st.connMu.Lock()
	defer st.connMu.Unlock()
	if st.conn == nil || st.closed {
		return nil
	}

	if err := st.conn.WriteJSON(controlMessage{Type: keepAliveMessageType}); err != nil {
		return fmt.Errorf("failed to write keep alive to deepgram: %w", err)
	}
	return nil
}

// closeStream asks Deepgram to flush and close. The connection is closed
// forcibly if Deepgram does not close it within timeout.
func (st *stream) closeStream(timeout time.Duration) error {
	if !st.draining.CompareAndSwap(false, true) {
		return nil
	}

	st.connMu.Lock()
	defer st.connMu.Unlock()
	if st.conn == nil {
		// Still dialing.
		st.cancel()
		return nil
	}
	if st.closed {
		return nil
	}

	if err := st.conn.WriteJSON(controlMessage{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to request deepgram stream close: %w", err)
	}
	st.drainTimer = time.AfterFunc(timeout, st.closeConn)
	return nil
}

func (st *stream) abort() {
	st.aborted.Store(true)
	st.cancel()
	st.closeConn()
}

func (st *stream) closeConn() {
	st.connMu.Lock()
	defer st.connMu.Unlock()

	if st.drainTimer != nil {
		st.drainTimer.Stop()
		st.drainTimer = nil
	}
	if st.conn == nil || st.closed {
		return
	}
	st.closed = true
	if err := st.conn.Close(); err != nil {
		logger.Debug("failed to close deepgram connection", "error", err)
	}
}

// generateSilence keeps the stream open while the microphone is quiet: a
// short burst of silence lets Deepgram finalize the last words, then
// KeepAlive messages hold the connection.
func (st *stream) generateSilence(ctx context.Context) {
	type silenceGeneratorState string
	const (
		silenceGeneratorStateWaiting   silenceGeneratorState = "waiting"
		silenceGeneratorStateSilence   silenceGeneratorState = "silence"
		silenceGeneratorStateKeepAlive silenceGeneratorState = "keepAlive"
	)

	const durationMs = 50
	ticker := time.NewTicker(durationMs * time.Millisecond)
	defer ticker.Stop()

	chunk := make([]byte, st.encoding.ChunkSize(durationMs*time.Millisecond))
	for i := range chunk {
		chunk[i] = st.encoding.SilenceValue()
	}

	sinceAudio := func() time.Duration {
		return time.Since(time.Unix(0, st.lastAudio.Load()))
	}

	state := silenceGeneratorStateWaiting
	var firstSilenceTime *time.Time
	var lastKeepAliveTime *time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if st.draining.Load() {
				return
			}

			switch state {
			case silenceGeneratorStateWaiting:
				if sinceAudio() > durationMs*time.Millisecond {
					state = silenceGeneratorStateSilence
					firstSilenceTime = utils.Ptr(time.Now())
				}

			case silenceGeneratorStateSilence:
				if sinceAudio() < durationMs*time.Millisecond {
					state = silenceGeneratorStateWaiting
					firstSilenceTime = nil
					continue
				}
				if time.Since(*firstSilenceTime) >= time.Second {
					state = silenceGeneratorStateKeepAlive
					lastKeepAliveTime = utils.Ptr(time.Now())
					firstSilenceTime = nil
					continue
				}

				if err := st.sendSilence(chunk); err != nil {
					logger.Debug("sending silence audio failed", "error", err)
				}

			case silenceGeneratorStateKeepAlive:
				if sinceAudio() < durationMs*time.Millisecond {
					state = silenceGeneratorStateWaiting
					continue
				}

				if time.Since(*lastKeepAliveTime) >= 5*time.Second {
					lastKeepAliveTime = utils.Ptr(time.Now())
					if err := st.sendKeepAlive(); err != nil {
						logger.Debug("sending keep alive failed", "error", err)
					}
				}
			}
		}
	}
}
