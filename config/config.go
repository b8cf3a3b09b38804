// Package config loads codec and tool settings from a TOML file with
// environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/fastcodec/codec"
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/stream"
)

const (
	EnvLogLevel = "FASTCODEC_LOG_LEVEL"
	EnvStrict   = "FASTCODEC_STRICT"
)

// Config holds the settings shared by the codec and the fastdump tool.
type Config struct {
	// Strict escalates recoverable codec faults.
	Strict bool
	// IgnoreOverflow accepts integers wider than their declared type.
	IgnoreOverflow bool

	LogLevel  zapcore.Level
	LogFormat string // "console" or "json"

	Echo       stream.EchoMode
	EchoFields bool

	// Templates is the template file; relative paths are resolved against
	// the directory of the config file.
	Templates   string
	MetricsAddr string
}

type fileConfig struct {
	Strict         bool   `toml:"strict"`
	IgnoreOverflow bool   `toml:"ignore_overflow"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
	Echo           string `toml:"echo"`
	EchoFields     bool   `toml:"echo_fields"`
	Templates      string `toml:"templates"`
	MetricsAddr    string `toml:"metrics_addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  zapcore.InfoLevel,
		LogFormat: "console",
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path yields the defaults with overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.CodeInvalidConfig, err, "load "+path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.PhaseConfig, errors.CodeInvalidConfig).
			Detail("unknown key %q in %s", undecoded[0].String(), path).
			Build()
	}

	if meta.IsDefined("strict") {
		c.Strict = raw.Strict
	}
	if meta.IsDefined("ignore_overflow") {
		c.IgnoreOverflow = raw.IgnoreOverflow
	}
	if meta.IsDefined("log_level") {
		lvl, err := parseLevel(raw.LogLevel)
		if err != nil {
			return err
		}
		c.LogLevel = lvl
	}
	if meta.IsDefined("log_format") {
		switch f := strings.ToLower(strings.TrimSpace(raw.LogFormat)); f {
		case "console", "json":
			c.LogFormat = f
		default:
			return errors.New(errors.PhaseConfig, errors.CodeInvalidConfig).
				Detail("log_format must be console or json, got %q", raw.LogFormat).
				Build()
		}
	}
	if meta.IsDefined("echo") {
		mode, err := stream.ParseEchoMode(strings.TrimSpace(raw.Echo))
		if err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.CodeInvalidConfig, err, "parse echo")
		}
		c.Echo = mode
	}
	if meta.IsDefined("echo_fields") {
		c.EchoFields = raw.EchoFields
	}
	if meta.IsDefined("templates") {
		p := strings.TrimSpace(raw.Templates)
		if p != "" && !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		c.Templates = p
	}
	if meta.IsDefined("metrics_addr") {
		c.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		lvl, err := parseLevel(raw)
		if err != nil {
			return err
		}
		c.LogLevel = lvl
	}
	if raw := strings.TrimSpace(os.Getenv(EnvStrict)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.CodeInvalidConfig, err, "parse "+EnvStrict)
		}
		c.Strict = v
	}
	return nil
}

func parseLevel(raw string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return zapcore.InfoLevel, errors.Wrap(errors.PhaseConfig, errors.CodeInvalidConfig, err, "parse log level")
	}
	return lvl, nil
}

// CodecOptions converts the settings for codec.NewDecoder and NewEncoder.
func (c Config) CodecOptions(l *zap.Logger) codec.Options {
	return codec.Options{
		Strict:         c.Strict,
		IgnoreOverflow: c.IgnoreOverflow,
		Logger:         l,
	}
}

// NewLogger builds a zap logger for the configured level and format.
// Console output goes to stderr so it never mixes with decoded records.
func (c Config) NewLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
