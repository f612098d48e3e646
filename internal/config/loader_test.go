package config_test

import (
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-captions/internal/config"
)

func TestLoaderDefaults(t *testing.T) {
	loader := config.Loader{Lookup: lookupMap(nil), ReadFile: files(nil)}
	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Language != config.DefaultLanguage {
		t.Fatalf("expected language %q, got %q", config.DefaultLanguage, cfg.Language)
	}
	if cfg.Capacity != config.DefaultCapacity {
		t.Fatalf("expected capacity %d, got %d", config.DefaultCapacity, cfg.Capacity)
	}
	if cfg.RestartDelay.Duration() != 100*time.Millisecond {
		t.Fatalf("expected restart delay 100ms, got %s", cfg.RestartDelay)
	}
	if cfg.SilenceTimeout != 0 {
		t.Fatalf("expected silence timeout disabled, got %s", cfg.SilenceTimeout)
	}
	if cfg.AudioBackend != config.AudioBackendMiniaudio {
		t.Fatalf("expected audio backend %q, got %q", config.AudioBackendMiniaudio, cfg.AudioBackend)
	}
	if !cfg.KeepAliveEnabled() {
		t.Fatalf("expected keep alive enabled by default")
	}
	if cfg.LogLevel != config.DefaultLogLevel {
		t.Fatalf("expected log level %q, got %q", config.DefaultLogLevel, cfg.LogLevel)
	}
}

func TestLoaderMergesFileThenEnv(t *testing.T) {
	file := `
language: hi-IN
capacity: 5
restart_delay: 250ms
silence_timeout: 30s
audio_backend: portaudio
keep_alive: false
log_level: debug
`
	env := map[string]string{
		config.EnvConfigFile:     "/etc/captions.yaml",
		"CAPTIONS_LANGUAGE":      "ta-IN",
		"CAPTIONS_RESTART_DELAY": "300ms",
		config.EnvAPIKey:         "secret",
	}

	loader := config.Loader{
		Lookup:   lookupMap(env),
		ReadFile: files(map[string]string{"/etc/captions.yaml": file}),
	}
	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Language != "ta-IN" {
		t.Fatalf("expected env language to win, got %q", cfg.Language)
	}
	if cfg.Capacity != 5 {
		t.Fatalf("expected file capacity 5, got %d", cfg.Capacity)
	}
	if cfg.RestartDelay.Duration() != 300*time.Millisecond {
		t.Fatalf("expected env restart delay 300ms, got %s", cfg.RestartDelay)
	}
	if cfg.SilenceTimeout.Duration() != 30*time.Second {
		t.Fatalf("expected file silence timeout 30s, got %s", cfg.SilenceTimeout)
	}
	if cfg.AudioBackend != config.AudioBackendPortaudio {
		t.Fatalf("expected file audio backend, got %q", cfg.AudioBackend)
	}
	if cfg.KeepAliveEnabled() {
		t.Fatalf("expected keep alive disabled by file")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected file log level, got %q", cfg.LogLevel)
	}
	if cfg.DeepgramAPIKey != "secret" {
		t.Fatalf("expected api key from env, got %q", cfg.DeepgramAPIKey)
	}
	if cfg.DeepgramModel != config.DefaultModel {
		t.Fatalf("expected default model to survive merge, got %q", cfg.DeepgramModel)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	env := map[string]string{config.EnvConfigFile: "/missing.yaml"}
	loader := config.Loader{Lookup: lookupMap(env), ReadFile: files(nil)}
	if _, err := loader.Load(""); err != nil {
		t.Fatalf("expected missing file from env to be ignored, got %v", err)
	}

	if _, err := loader.Load("/missing.yaml"); err == nil {
		t.Fatalf("expected missing explicit file to fail")
	}
}

func TestLoaderRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unsupported language", env: map[string]string{"CAPTIONS_LANGUAGE": "fr-FR"}},
		{name: "negative capacity", env: map[string]string{"CAPTIONS_CAPACITY": "-1"}},
		{name: "non numeric capacity", env: map[string]string{"CAPTIONS_CAPACITY": "ten"}},
		{name: "bad duration", env: map[string]string{"CAPTIONS_SILENCE_TIMEOUT": "soon"}},
		{name: "negative silence timeout", env: map[string]string{"CAPTIONS_SILENCE_TIMEOUT": "-1s"}},
		{name: "unknown backend", env: map[string]string{"CAPTIONS_AUDIO_BACKEND": "pulse"}},
		{name: "unknown log level", env: map[string]string{"CAPTIONS_LOG_LEVEL": "loud"}},
		{name: "bad keep alive", env: map[string]string{"DEEPGRAM_KEEP_ALIVE": "sometimes"}},
		{name: "malformed yaml", file: "capacity: [1"},
		{name: "bad yaml duration", file: "restart_delay: later"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			contents := map[string]string{}
			path := ""
			if testCase.file != "" {
				path = "/config.yaml"
				contents[path] = testCase.file
			}
			loader := config.Loader{Lookup: lookupMap(testCase.env), ReadFile: files(contents)}
			if _, err := loader.Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, value := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
		if _, err := config.ParseLevel(value); err != nil {
			t.Fatalf("expected %q to parse, got %v", value, err)
		}
	}
}

func TestSchemaDescribesConfigFile(t *testing.T) {
	raw, err := config.Schema()
	if err != nil {
		t.Fatalf("Schema() returned error: %v", err)
	}

	var schema struct {
		Properties map[string]struct {
			Type string `json:"type"`
			Enum []any  `json:"enum"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &schema); err != nil {
		t.Fatalf("expected valid JSON schema, got %v", err)
	}

	language, ok := schema.Properties["language"]
	if !ok {
		t.Fatalf("expected language property in schema %s", raw)
	}
	if len(language.Enum) != 3 {
		t.Fatalf("expected three supported languages, got %v", language.Enum)
	}
	if got := schema.Properties["restart_delay"].Type; got != "string" {
		t.Fatalf("expected restart_delay to be a duration string, got %q", got)
	}
	if !strings.Contains(string(raw), "silence_timeout") {
		t.Fatalf("expected silence_timeout in schema")
	}
}

func lookupMap(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func files(contents map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		if raw, ok := contents[path]; ok {
			return []byte(raw), nil
		}
		return nil, errors.Join(fs.ErrNotExist, errors.New(path))
	}
}
