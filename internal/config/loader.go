package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "CAPTIONS_CONFIG"
	EnvAPIKey     = "DEEPGRAM_API_KEY"
)

// Loader loads configuration from an optional YAML file and environment
// variables. Tests can override Lookup and ReadFile to inject deterministic
// inputs.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $CAPTIONS_CONFIG), then environment variables, and validates it. A
// missing file is only an error when the path was given explicitly.
func (l Loader) Load(path string) (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		if value, ok := l.Lookup(EnvConfigFile); ok {
			path = strings.TrimSpace(value)
		}
	}
	if path != "" {
		if err := l.applyFile(path, explicit, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l Loader) applyFile(path string, explicit bool, cfg *Config) error {
	raw, err := l.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(raw, &fileConfig); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := copier.CopyWithOption(cfg, &fileConfig, copier.Option{IgnoreEmpty: true}); err != nil {
		return fmt.Errorf("config: merge %s: %w", path, err)
	}
	return nil
}

func (l Loader) applyEnv(cfg *Config) error {
	overrideString(l.Lookup, "CAPTIONS_LANGUAGE", &cfg.Language)
	overrideString(l.Lookup, "CAPTIONS_AUDIO_BACKEND", &cfg.AudioBackend)
	overrideString(l.Lookup, "CAPTIONS_LOG_LEVEL", &cfg.LogLevel)
	overrideString(l.Lookup, "CAPTIONS_LOG_FILE", &cfg.LogFile)
	overrideString(l.Lookup, EnvAPIKey, &cfg.DeepgramAPIKey)
	overrideString(l.Lookup, "DEEPGRAM_MODEL", &cfg.DeepgramModel)
	overrideString(l.Lookup, "DEEPGRAM_ENDPOINT", &cfg.DeepgramEndpoint)

	if err := overrideInt(l.Lookup, "CAPTIONS_CAPACITY", &cfg.Capacity); err != nil {
		return err
	}
	if err := overrideInt(l.Lookup, "CAPTIONS_SAMPLE_RATE", &cfg.SampleRate); err != nil {
		return err
	}
	if err := overrideDuration(l.Lookup, "CAPTIONS_RESTART_DELAY", &cfg.RestartDelay); err != nil {
		return err
	}
	if err := overrideDuration(l.Lookup, "CAPTIONS_SILENCE_TIMEOUT", &cfg.SilenceTimeout); err != nil {
		return err
	}
	if err := overrideBool(l.Lookup, "CAPTIONS_DESKTOP_NOTIFICATIONS", &cfg.DesktopNotifications); err != nil {
		return err
	}

	var keepAlive bool
	if ok, err := lookupBool(l.Lookup, "DEEPGRAM_KEEP_ALIVE", &keepAlive); err != nil {
		return err
	} else if ok {
		cfg.KeepAlive = &keepAlive
	}
	return nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if lookup == nil || target == nil {
		return
	}
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: invalid %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func overrideDuration(lookup func(string) (string, bool), key string, target *Duration) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	if err := target.parse(value); err != nil {
		return fmt.Errorf("config: invalid %s: %w", key, err)
	}
	return nil
}

func overrideBool(lookup func(string) (string, bool), key string, target *bool) error {
	_, err := lookupBool(lookup, key, target)
	return err
}

func lookupBool(lookup func(string) (string, bool), key string, target *bool) (bool, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("config: invalid %s: %w", key, err)
	}
	*target = parsed
	return true, nil
}
