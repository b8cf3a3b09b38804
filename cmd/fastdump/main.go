package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/fastcodec/codec"
	"github.com/wippyai/fastcodec/config"
	"github.com/wippyai/fastcodec/stream"
	"github.com/wippyai/fastcodec/telemetry"
	"github.com/wippyai/fastcodec/templates"
	"github.com/wippyai/fastcodec/wire"
)

var templateStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7D56F4"))

func main() {
	var (
		configFile  = flag.String("config", "", "Path to TOML config file")
		tplFile     = flag.String("templates", "", "Path to YAML template file (overrides config)")
		inFile      = flag.String("in", "-", "FAST stream to decode, - for stdin")
		verify      = flag.Bool("verify", false, "Re-encode every message and compare bytes")
		strict      = flag.Bool("strict", false, "Abort on recoverable faults")
		echo        = flag.String("echo", "", "Echo consumed bytes to stderr: none, hex or raw")
		metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *tplFile != "" {
		cfg.Templates = *tplFile
	}
	if *strict {
		cfg.Strict = true
	}
	if *echo != "" {
		mode, err := stream.ParseEchoMode(*echo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Echo = mode
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if cfg.Templates == "" {
		fmt.Fprintln(os.Stderr, "Usage: fastdump -templates <file.yaml> [-in stream.bin] [-verify] [-config file.toml]")
		fmt.Fprintln(os.Stderr, "       fastdump -templates <file.yaml> -in stream.bin -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(cfg, *inFile, *verify, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, inFile string, verify, interactive bool) error {
	logger, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	codec.SetLogger(logger)

	reg, err := templates.LoadFile(cfg.Templates)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	logger.Debug("templates loaded",
		zap.String("file", cfg.Templates),
		zap.Int("templates", len(reg.Templates())),
		zap.Int("dictionary", reg.DictionarySize()),
	)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	in, err := openInput(inFile)
	if err != nil {
		return err
	}
	defer in.Close()

	d := &dumper{reg: reg, opts: cfg.CodecOptions(logger), log: logger, verify: verify}

	if interactive {
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		return runInteractive(d, inFile, data)
	}

	var (
		src  wire.ByteSource
		data []byte
	)
	if verify {
		// Verification compares against the original bytes of each message.
		data, err = io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		src = stream.NewBufferSource(data)
	} else {
		src = stream.NewReaderSource(in)
	}

	var echoSrc *stream.EchoSource
	if cfg.Echo != stream.EchoNone {
		var opts []stream.EchoOption
		if cfg.EchoFields {
			opts = append(opts, stream.WithFieldMarks())
		}
		echoSrc = stream.NewEchoSource(src, os.Stderr, cfg.Echo, opts...)
		src = echoSrc
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	color := term.IsTerminal(int(os.Stdout.Fd()))

	d.emit = func(e entry) error {
		line, err := e.record.MarshalJSON()
		if err != nil {
			return err
		}
		if color {
			fmt.Fprintf(out, "%s ", templateStyle.Render(e.record.TemplateName))
		}
		out.Write(line)
		return out.WriteByte('\n')
	}

	st, err := d.run(src, data)
	if echoSrc != nil {
		_ = echoSrc.Close()
	}
	if rs, ok := src.(*stream.ReaderSource); ok && rs.Err() != nil {
		return fmt.Errorf("read input: %w", rs.Err())
	}
	logger.Info("stream decoded",
		zap.Int("messages", st.messages),
		zap.Int("bytes", st.bytes),
		zap.Int("verified", st.verified),
	)
	return err
}

func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
