// Package graph publishes decoded columns to the knowledge graph.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/vocabulary/aeis"
)

// Subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// DefaultSource is the triple source for columns decoded outside an index run.
const DefaultSource = "semaeis.decode"

// ColumnEntityID generates a consistent entity ID for a decoded column.
// Format: semaeis.local.aeis.<kind>.column.<year>-<code>
func ColumnEntityID(kind string, year int, code string) string {
	return fmt.Sprintf("semaeis.local.aeis.%s.column.%d-%s", kind, year, sanitizeCode(code))
}

// sanitizeCode keeps letters, digits, '-' and '_' and replaces everything else,
// so the code stays one segment of a dotted entity ID.
func sanitizeCode(code string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, code)
}

// RecordTriples builds the triples describing rec: one per fact, plus the
// record predicates. Fact keys without a registered predicate are skipped.
func RecordTriples(rec *decoder.Record, descriptions []string, source string, now time.Time) []message.Triple {
	if source == "" {
		source = DefaultSource
	}
	entityID := ColumnEntityID(rec.Kind, rec.Year, rec.Code)

	triple := func(predicate string, object any) message.Triple {
		return message.Triple{
			Subject:    entityID,
			Predicate:  predicate,
			Object:     object,
			Source:     source,
			Timestamp:  now,
			Confidence: 1.0,
		}
	}

	evidence := make([]string, len(rec.Steps))
	for i, s := range rec.Steps {
		evidence[i] = s.Evidence
	}

	triples := []message.Triple{
		triple(aeis.ColumnCode, rec.Code),
		triple(aeis.ColumnKind, rec.Kind),
		triple(aeis.ColumnVersion, rec.Year),
		triple(aeis.ColumnEvidence, strings.Join(evidence, "|")),
	}

	for _, key := range rec.Facts.Keys() {
		predicate, ok := aeis.PredicateFor(key)
		if !ok {
			continue
		}
		triples = append(triples, triple(predicate, rec.Facts[key]))
	}

	for _, note := range rec.Unconfirmed() {
		t := triple(aeis.ColumnUnconfirmed, note)
		t.Confidence = 0.5
		triples = append(triples, t)
	}
	for _, d := range descriptions {
		triples = append(triples, triple(aeis.ColumnDescription, d))
	}
	return triples
}

// NewColumnPayload wraps the triples of rec in a graph payload.
func NewColumnPayload(rec *decoder.Record, descriptions []string, source string, now time.Time) *ColumnPayload {
	return &ColumnPayload{
		EntityID_:  ColumnEntityID(rec.Kind, rec.Year, rec.Code),
		TripleData: RecordTriples(rec, descriptions, source, now),
		UpdatedAt:  now,
	}
}

// PublishRecord publishes a decoded column entity to the knowledge graph.
func PublishRecord(ctx context.Context, nc *natsclient.Client, rec *decoder.Record, descriptions []string, source string) error {
	if nc == nil {
		return nil // Skip publishing if no NATS client (graceful degradation)
	}

	payload := NewColumnPayload(rec, descriptions, source, time.Now())
	msg := message.NewBaseMessage(ColumnType, payload, "semaeis")
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal column entity: %w", err)
	}

	if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish column entity: %w", err)
	}
	return nil
}
