// Package telemetry exports Prometheus counters for codec activity: messages
// and bytes per direction and template, and faults per code.
package telemetry

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wippyai/fastcodec/codec"
	"github.com/wippyai/fastcodec/errors"
	"github.com/wippyai/fastcodec/message"
	"github.com/wippyai/fastcodec/schema"
)

// Directions used as label values.
const (
	Decode = "decode"
	Encode = "encode"
)

var (
	registerOnce sync.Once

	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastcodec",
			Name:      "messages_total",
			Help:      "Messages processed.",
		},
		[]string{"direction", "template"},
	)
	messageBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastcodec",
			Name:      "bytes_total",
			Help:      "Wire bytes processed.",
		},
		[]string{"direction"},
	)
	faults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fastcodec",
			Name:      "faults_total",
			Help:      "Codec faults reported.",
		},
		[]string{"direction", "code", "severity"},
	)
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fastcodec",
			Name:      "message_duration_seconds",
			Help:      "Time spent per message.",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 1e-2},
		},
		[]string{"direction"},
	)
)

// RegisterMetrics registers the collectors with the default registry. It
// is safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(messages, messageBytes, faults, duration)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

// RecordMessage counts one processed message.
func RecordMessage(direction, template string, size int, elapsed time.Duration) {
	RegisterMetrics()
	messages.WithLabelValues(direction, template).Inc()
	messageBytes.WithLabelValues(direction).Add(float64(size))
	duration.WithLabelValues(direction).Observe(elapsed.Seconds())
}

// RecordFault counts one reported fault.
func RecordFault(direction string, err *errors.Error) {
	RegisterMetrics()
	faults.WithLabelValues(direction, string(err.Code), err.Severity.String()).Inc()
}

// Reporter counts faults and forwards them to Next.
type Reporter struct {
	Next      codec.Reporter
	Direction string
}

// NewReporter wraps next, which must not be nil.
func NewReporter(next codec.Reporter, direction string) *Reporter {
	return &Reporter{Next: next, Direction: direction}
}

func (r *Reporter) Recoverable(err *errors.Error) error {
	RecordFault(r.Direction, err)
	return r.Next.Recoverable(err)
}

func (r *Reporter) Fatal(err *errors.Error) {
	RecordFault(r.Direction, err)
	r.Next.Fatal(err)
}

// CountingBuilder counts decoded messages per template and forwards them
// to Next. Like a Decoder it is not safe for concurrent use.
type CountingBuilder struct {
	Next message.MessageBuilder

	template string
	started  time.Time
}

func (c *CountingBuilder) StartMessage(t *schema.Template) (message.Builder, error) {
	c.template = TemplateLabel(t)
	c.started = time.Now()
	return c.Next.StartMessage(t)
}

func (c *CountingBuilder) EndMessage(b message.Builder) error {
	if err := c.Next.EndMessage(b); err != nil {
		return err
	}
	messages.WithLabelValues(Decode, c.template).Inc()
	duration.WithLabelValues(Decode).Observe(time.Since(c.started).Seconds())
	return nil
}

// TemplateLabel returns the label value used for t: its name, or its id
// when unnamed.
func TemplateLabel(t *schema.Template) string {
	if t.Name != "" {
		return t.Name
	}
	return strconv.FormatUint(uint64(t.ID), 10)
}
