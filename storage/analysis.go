// Package storage stores decoded column analyses in NATS KV.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semaeis/decoder"
)

// BucketAnalyses holds one decoded record per kind, year and column code.
const BucketAnalyses = "AEIS_ANALYSES"

// Analysis is a decoded column as stored in KV.
type Analysis struct {
	Record       *decoder.Record `json:"record"`
	Descriptions []string        `json:"descriptions,omitempty"`
	RunID        string          `json:"run_id,omitempty"`
	StoredAt     time.Time       `json:"stored_at"`
}

// keyValue is the part of jetstream.KeyValue the store uses.
type keyValue interface {
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// Store provides analysis storage operations backed by NATS KV.
type Store struct {
	analyses keyValue
}

// NewStore creates a Store with the given JetStream context, creating the
// analyses bucket if it doesn't exist.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	kv, err := getOrCreateBucket(ctx, js, BucketAnalyses)
	if err != nil {
		return nil, fmt.Errorf("create analyses bucket: %w", err)
	}
	return &Store{analyses: kv}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	// Bucket doesn't exist, create it
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Decoded AEIS column analyses",
		History:     5, // Keep last 5 revisions
	})
}

// Key returns the KV key for a column: <kind>.<year>.<code>. Characters not
// allowed in KV keys are replaced with '_'.
func Key(kind string, year int, code string) string {
	return fmt.Sprintf("%s.%d.%s", sanitizeToken(kind), year, sanitizeToken(code))
}

func sanitizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '=':
			return r
		}
		return '_'
	}, s)
}

// Put stores an analysis under its record's key.
func (s *Store) Put(ctx context.Context, a *Analysis) error {
	if a.Record == nil {
		return errors.New("analysis has no record")
	}
	if a.StoredAt.IsZero() {
		a.StoredAt = time.Now()
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	key := Key(a.Record.Kind, a.Record.Year, a.Record.Code)
	if _, err := s.analyses.Put(ctx, key, data); err != nil {
		return fmt.Errorf("store analysis %s: %w", key, err)
	}
	return nil
}

// Get retrieves the analysis of one column.
func (s *Store) Get(ctx context.Context, kind string, year int, code string) (*Analysis, error) {
	key := Key(kind, year, code)
	entry, err := s.analyses.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis %s: %w", key, err)
	}

	var a Analysis
	if err := json.Unmarshal(entry.Value(), &a); err != nil {
		return nil, fmt.Errorf("unmarshal analysis %s: %w", key, err)
	}
	return &a, nil
}

// List returns the analyses stored for a kind and year, sorted by code.
// A year of 0 lists every year of the kind.
func (s *Store) List(ctx context.Context, kind string, year int) ([]*Analysis, error) {
	keys, err := s.analyses.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	prefix := sanitizeToken(kind) + "."
	if year != 0 {
		prefix += strconv.Itoa(year) + "."
	}
	sort.Strings(keys)

	var out []*Analysis
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entry, err := s.analyses.Get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue // deleted between Keys and Get
			}
			return nil, fmt.Errorf("get analysis %s: %w", key, err)
		}
		var a Analysis
		if err := json.Unmarshal(entry.Value(), &a); err != nil {
			return nil, fmt.Errorf("unmarshal analysis %s: %w", key, err)
		}
		out = append(out, &a)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) ||
		(err != nil && strings.Contains(err.Error(), "key not found"))
}
