package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/ema-captions/core/recognition"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLanguage     = string(recognition.DefaultLanguage)
	DefaultCapacity     = 10
	DefaultRestartDelay = Duration(100 * time.Millisecond)
	DefaultAudioBackend = AudioBackendMiniaudio
	DefaultSampleRate   = 16000
	DefaultLogLevel     = "info"
	DefaultLogFile      = "captions.log"
	DefaultModel        = "nova-3"

	AudioBackendMiniaudio = "miniaudio"
	AudioBackendPortaudio = "portaudio"
)

// Config captures the captioning settings read from an optional YAML file
// and environment variables.
type Config struct {
	Language       string   `yaml:"language" json:"language,omitempty" jsonschema:"enum=en-US,enum=hi-IN,enum=ta-IN,description=Recognition language used when listening starts"`
	Capacity       int      `yaml:"capacity" json:"capacity,omitempty" jsonschema:"minimum=1,description=Number of finalized captions kept on screen"`
	RestartDelay   Duration `yaml:"restart_delay" json:"restart_delay,omitempty" jsonschema:"description=Delay before the recognition source is restarted after it ends"`
	SilenceTimeout Duration `yaml:"silence_timeout" json:"silence_timeout,omitempty" jsonschema:"description=Stop listening after this long without captions; zero keeps listening"`

	AudioBackend string `yaml:"audio_backend" json:"audio_backend,omitempty" jsonschema:"enum=miniaudio,enum=portaudio"`
	SampleRate   int    `yaml:"sample_rate" json:"sample_rate,omitempty" jsonschema:"enum=8000,enum=16000,enum=24000,enum=32000,enum=48000"`

	DeepgramAPIKey   string `yaml:"deepgram_api_key" json:"deepgram_api_key,omitempty"`
	DeepgramModel    string `yaml:"deepgram_model" json:"deepgram_model,omitempty"`
	DeepgramEndpoint string `yaml:"deepgram_endpoint" json:"deepgram_endpoint,omitempty" jsonschema:"format=uri"`
	KeepAlive        *bool  `yaml:"keep_alive" json:"keep_alive,omitempty" jsonschema:"description=Keep the stream open through silence instead of restarting it"`

	LogLevel             string `yaml:"log_level" json:"log_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogFile              string `yaml:"log_file" json:"log_file,omitempty"`
	DesktopNotifications bool   `yaml:"desktop_notifications" json:"desktop_notifications,omitempty"`
}

func Default() Config {
	return Config{
		Language:      DefaultLanguage,
		Capacity:      DefaultCapacity,
		RestartDelay:  DefaultRestartDelay,
		AudioBackend:  DefaultAudioBackend,
		SampleRate:    DefaultSampleRate,
		DeepgramModel: DefaultModel,
		LogLevel:      DefaultLogLevel,
		LogFile:       DefaultLogFile,
	}
}

// Validate applies defaults, checks required fields, and rejects out-of-range
// values.
func (c *Config) Validate() error {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if !recognition.DefaultLanguages().Supports(recognition.Language(c.Language)) {
		return fmt.Errorf("config: unsupported language %q", c.Language)
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Capacity < 0 {
		return fmt.Errorf("config: capacity must be >= 1, got %d", c.Capacity)
	}
	if c.RestartDelay == 0 {
		c.RestartDelay = DefaultRestartDelay
	}
	if c.RestartDelay < 0 {
		return fmt.Errorf("config: restart_delay must be positive, got %s", c.RestartDelay)
	}
	if c.SilenceTimeout < 0 {
		return fmt.Errorf("config: silence_timeout must be >= 0, got %s", c.SilenceTimeout)
	}

	c.AudioBackend = strings.ToLower(c.AudioBackend)
	switch c.AudioBackend {
	case "":
		c.AudioBackend = DefaultAudioBackend
	case AudioBackendMiniaudio, AudioBackendPortaudio:
	default:
		return fmt.Errorf("config: unknown audio_backend %q", c.AudioBackend)
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.SampleRate < 0 {
		return fmt.Errorf("config: sample_rate must be positive, got %d", c.SampleRate)
	}

	if c.DeepgramModel == "" {
		c.DeepgramModel = DefaultModel
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	return nil
}

// KeepAliveEnabled reports whether silence should be bridged with keep
// alive messages. It defaults to true.
func (c Config) KeepAliveEnabled() bool {
	return c.KeepAlive == nil || *c.KeepAlive
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("config: unknown log_level %q", value)
}

// Duration is a time.Duration written as a Go duration string, e.g. "250ms".
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("config: decode duration: %w", err)
	}
	return d.parse(raw)
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) parse(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (Duration) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "string",
		Pattern:  `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
		Examples: []any{"100ms", "30s"},
	}
}
