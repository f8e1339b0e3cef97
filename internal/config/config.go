package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ErrInvalidRate    = errors.New("voice.rate must be positive")
	ErrMissingProfile = errors.New("assistant.profile is required")
)

// Config holds application configuration.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Log       LogConfig       `mapstructure:"log"`
	Usage     UsageConfig     `mapstructure:"usage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// LLMConfig holds completion endpoint settings.
type LLMConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"` // 0 disables
}

// AssistantConfig selects the profile and an optional profiles file.
type AssistantConfig struct {
	Profile      string `mapstructure:"profile"`
	ProfilesFile string `mapstructure:"profiles_file"`
}

// VoiceConfig holds the speech commands. Empty commands disable the feature.
type VoiceConfig struct {
	RecognizerCommand string   `mapstructure:"recognizer_command"`
	RecognizerArgs    []string `mapstructure:"recognizer_args"`
	SpeakerCommand    string   `mapstructure:"speaker_command"`
	SpeakerArgs       []string `mapstructure:"speaker_args"`
	Locale            string   `mapstructure:"locale"`
	Rate              float64  `mapstructure:"rate"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// UsageConfig points at the usage ledger. An empty path disables it.
type UsageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from file and env. Env var overrides use prefix SAFEFLOW_.
func Load() (Config, error) {
	v := viper.New()
	home := os.Getenv("HOME")

	// default values
	v.SetDefault("llm.endpoint", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent")
	v.SetDefault("llm.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", time.Duration(0))
	v.SetDefault("assistant.profile", "widget")
	v.SetDefault("assistant.profiles_file", "")
	v.SetDefault("voice.recognizer_command", "")
	v.SetDefault("voice.recognizer_args", []string{})
	v.SetDefault("voice.speaker_command", "")
	v.SetDefault("voice.speaker_args", []string{})
	v.SetDefault("voice.locale", "en-IN")
	v.SetDefault("voice.rate", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(home, ".local", "state", "safeflow", "safeflow.log"))
	v.SetDefault("usage.db_path", filepath.Join(home, ".local", "share", "safeflow", "usage.db"))
	v.SetDefault("metrics.addr", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SAFEFLOW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "safeflow"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SAFEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present; an explicit path must exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values viper cannot type-check.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Assistant.Profile) == "" {
		return ErrMissingProfile
	}
	if c.Voice.Rate <= 0 {
		return ErrInvalidRate
	}
	return nil
}
