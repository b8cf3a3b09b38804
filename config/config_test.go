package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/stream"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fastcodec.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
strict = true
ignore_overflow = true
log_level = "debug"
log_format = "json"
echo = "hex"
echo_fields = true
templates = "market.yaml"
metrics_addr = ":9464"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Config{
		Strict:         true,
		IgnoreOverflow: true,
		LogLevel:       zapcore.DebugLevel,
		LogFormat:      "json",
		Echo:           stream.EchoHex,
		EchoFields:     true,
		Templates:      filepath.Join(filepath.Dir(path), "market.yaml"),
		MetricsAddr:    ":9464",
	}
	if cfg != want {
		t.Errorf("got %+v\nwant %+v", cfg, want)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `templates = "/etc/fast/t.yaml"`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != zapcore.InfoLevel || cfg.LogFormat != "console" || cfg.Templates != "/etc/fast/t.yaml" {
		t.Errorf("got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvStrict, "true")

	cfg, err := Load(writeConfig(t, `log_level = "debug"`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != zapcore.WarnLevel || !cfg.Strict {
		t.Errorf("got %+v", cfg)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{"bad level", `log_level = "loud"`, nil},
		{"bad format", `log_format = "xml"`, nil},
		{"bad echo", `echo = "octal"`, nil},
		{"unknown key", `colour = "red"`, nil},
		{"syntax", `strict = `, nil},
		{"bad env bool", ``, map[string]string{EnvStrict: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			var fe *errors.Error
			if !stderrors.As(err, &fe) || fe.Phase != errors.PhaseConfig || fe.Code != errors.CodeInvalidConfig {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestCodecOptions(t *testing.T) {
	cfg := Default()
	cfg.Strict = true
	cfg.IgnoreOverflow = true
	l := zap.NewNop()

	opts := cfg.CodecOptions(l)
	if !opts.Strict || !opts.IgnoreOverflow || opts.Logger != l {
		t.Errorf("got %+v", opts)
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		cfg := Default()
		cfg.LogFormat = format
		cfg.LogLevel = zapcore.ErrorLevel
		l, err := cfg.NewLogger()
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if l.Core().Enabled(zapcore.WarnLevel) {
			t.Errorf("%s: warn should be disabled at error level", format)
		}
	}
}
