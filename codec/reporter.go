package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/fastcodec/errors"
)

// Reporter receives runtime faults. Recoverable faults come with a
// substitute value already applied; returning a non-nil error from
// Recoverable aborts the current message with that error. Fatal faults
// always abort and are reported before the error is returned to the caller.
type Reporter interface {
	Recoverable(err *errors.Error) error
	Fatal(err *errors.Error)
}

// LogReporter logs faults to a zap logger. In strict mode every recoverable
// fault aborts.
type LogReporter struct {
	Logger *zap.Logger
	Strict bool
}

// NewLogReporter creates a reporter writing to l, or to the package logger
// when l is nil.
func NewLogReporter(l *zap.Logger, strict bool) *LogReporter {
	if l == nil {
		l = Logger()
	}
	return &LogReporter{Logger: l, Strict: strict}
}

func (r *LogReporter) Recoverable(err *errors.Error) error {
	r.Logger.Warn("recoverable codec fault",
		zap.String("phase", string(err.Phase)),
		zap.String("code", string(err.Code)),
		zap.String("field", err.Field()),
		zap.String("detail", err.Detail),
		zap.Bool("strict", r.Strict),
	)
	if r.Strict {
		return err
	}
	return nil
}

func (r *LogReporter) Fatal(err *errors.Error) {
	r.Logger.Error("fatal codec fault",
		zap.String("phase", string(err.Phase)),
		zap.String("code", string(err.Code)),
		zap.String("field", err.Field()),
		zap.String("detail", err.Detail),
		zap.NamedError("cause", err.Cause),
	)
}

// Options configures a Decoder or Encoder.
type Options struct {
	// Strict escalates recoverable faults to abort the message. It is
	// ignored when Reporter is set.
	Strict bool

	// IgnoreOverflow accepts integers wider than their declared type.
	IgnoreOverflow bool

	// Reporter receives faults. Defaults to a LogReporter.
	Reporter Reporter

	// Logger is used by the default reporter. Defaults to Logger().
	Logger *zap.Logger
}

func (o Options) reporter() Reporter {
	if o.Reporter != nil {
		return o.Reporter
	}
	return NewLogReporter(o.Logger, o.Strict)
}
