package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	captioning "github.com/koscakluka/ema-captions/core"
	"github.com/koscakluka/ema-captions/core/audio/miniaudio"
	"github.com/koscakluka/ema-captions/core/audio/portaudio"
	"github.com/koscakluka/ema-captions/core/captions"
	"github.com/koscakluka/ema-captions/core/notices"
	"github.com/koscakluka/ema-captions/core/recognition"
	"github.com/koscakluka/ema-captions/core/recognition/deepgram"
	"github.com/koscakluka/ema-captions/internal/config"
)

const appName = "Live Captions"

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	printSchema := flag.Bool("schema", false, "print the configuration JSON schema and exit")
	flag.Parse()

	if *printSchema {
		raw, err := config.Schema()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(raw))
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Loader{}.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting captions",
		"language", cfg.Language,
		"audio_backend", cfg.AudioBackend,
		"sample_rate", cfg.SampleRate,
		"model", cfg.DeepgramModel,
	)

	input, closeInput, err := newAudioInput(cfg)
	if err != nil {
		logger.Error("failed to initialise audio input", "error", err)
		return fmt.Errorf("failed to initialise audio input: %w", err)
	}
	defer closeInput()

	source := deepgram.NewSource(input,
		deepgram.WithAPIKey(cfg.DeepgramAPIKey),
		deepgram.WithModel(cfg.DeepgramModel),
		deepgram.WithEndpoint(cfg.DeepgramEndpoint),
		deepgram.WithKeepAlive(cfg.KeepAliveEnabled()),
	)

	bridge := newBridge()
	sinks := []notices.Sink{
		notices.NewLogSink(logger),
		notices.SinkFunc(func(notice notices.Notice) { bridge.send(noticeMsg(notice)) }),
	}
	if cfg.DesktopNotifications {
		sinks = append(sinks, notices.NewDesktopSink(appName))
	}

	controller := captioning.NewController(source,
		captioning.WithLanguage(recognition.Language(cfg.Language)),
		captioning.WithCapacity(cfg.Capacity),
		captioning.WithRestartDelay(cfg.RestartDelay.Duration()),
		captioning.WithSilenceTimeout(cfg.SilenceTimeout.Duration()),
		captioning.WithNoticeSink(notices.Multi(sinks...)),
		captioning.WithCaptionsCallback(func(log captions.Log) { bridge.send(captionsMsg(log)) }),
		captioning.WithStateCallback(func(state captioning.State) { bridge.send(stateMsg(state)) }),
	)

	program := tea.NewProgram(newModel(ctx, controller, bridge, cfg.Capacity), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()
	bridge.close()

	if err := controller.Close(); err != nil {
		logger.Warn("failed to close controller", "error", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("caption view failed: %w", runErr)
	}

	logger.Info("captions stopped")
	return nil
}

// newLogger writes to a file because the terminal belongs to the caption
// view.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, func() { _ = file.Close() }, nil
}

func newAudioInput(cfg config.Config) (deepgram.AudioInput, func(), error) {
	switch cfg.AudioBackend {
	case config.AudioBackendPortaudio:
		client, err := portaudio.NewClient(portaudio.DefaultBufferSize)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		client, err := miniaudio.NewClient(miniaudio.WithSampleRate(cfg.SampleRate))
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	}
}
