package columnindexer

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semaeis/decoder"
)

// Metrics are the Prometheus collectors of an indexer.
type Metrics struct {
	ColumnsDecoded *prometheus.CounterVec
	DecodeFailures *prometheus.CounterVec
	FilesIndexed   *prometheus.CounterVec
	DecodeLatency  *prometheus.HistogramVec
}

// NewMetrics creates the indexer collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ColumnsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semaeis",
			Name:      "columns_decoded_total",
			Help:      "Column codes decoded successfully.",
		}, []string{"kind"}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semaeis",
			Name:      "decode_failures_total",
			Help:      "Column codes that could not be decoded.",
		}, []string{"kind", "reason"}),
		FilesIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semaeis",
			Name:      "files_indexed_total",
			Help:      "Extract files indexed.",
		}, []string{"kind"}),
		DecodeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semaeis",
			Name:      "decode_duration_seconds",
			Help:      "Time to decode one column code.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"kind"}),
	}

	if reg == nil {
		return m, nil
	}
	var err error
	if m.ColumnsDecoded, err = register(reg, m.ColumnsDecoded); err != nil {
		return nil, err
	}
	if m.DecodeFailures, err = register(reg, m.DecodeFailures); err != nil {
		return nil, err
	}
	if m.FilesIndexed, err = register(reg, m.FilesIndexed); err != nil {
		return nil, err
	}
	if m.DecodeLatency, err = register(reg, m.DecodeLatency); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, reusing the collector already registered under the
// same descriptor so several components can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metrics: %w", err)
	}
	return c, nil
}

// FailureReason names the class of a decode error for metric labels.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, decoder.ErrUnresolvedCapture):
		return "unresolved_capture"
	case errors.Is(err, decoder.ErrUnparsedRemainder):
		return "unparsed_remainder"
	case errors.Is(err, decoder.ErrInvariant):
		return "invariant"
	case errors.Is(err, decoder.ErrEmptyCode):
		return "empty_code"
	case errors.Is(err, decoder.ErrNoGrammar):
		return "no_grammar"
	case errors.Is(err, decoder.ErrInvalidGrammar):
		return "invalid_grammar"
	default:
		return "other"
	}
}

// Instrument wraps next so every decode is counted and timed.
func (m *Metrics) Instrument(next decoder.Decoder) decoder.Decoder {
	return &instrumentedDecoder{next: next, metrics: m}
}

type instrumentedDecoder struct {
	next    decoder.Decoder
	metrics *Metrics
}

func (d *instrumentedDecoder) Decode(kind string, year int, code string) (*decoder.Record, error) {
	start := time.Now()
	rec, err := d.next.Decode(kind, year, code)
	d.metrics.DecodeLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		d.metrics.DecodeFailures.WithLabelValues(kind, FailureReason(err)).Inc()
		return nil, err
	}
	d.metrics.ColumnsDecoded.WithLabelValues(kind).Inc()
	return rec, nil
}
