package aeis

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		ColumnCode,
		ColumnKind,
		ColumnVersion,
		ColumnDescription,
		ColumnUnconfirmed,
		ColumnEvidence,
		ColumnType,
	}
	for _, key := range FactKeys() {
		p, ok := PredicateFor(key)
		if !ok {
			t.Fatalf("no predicate for fact key %q", key)
		}
		predicates = append(predicates, p)
	}

	for _, pred := range predicates {
		t.Run(pred, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(pred)
			if meta == nil {
				t.Fatalf("predicate %q not registered", pred)
			}
			if meta.Description == "" {
				t.Errorf("predicate %q has no description", pred)
			}
			if meta.DataType == "" {
				t.Errorf("predicate %q has no data type", pred)
			}
		})
	}
}

func TestPredicateIRIs(t *testing.T) {
	tests := []struct {
		predicate   string
		expectedIRI string
	}{
		{ColumnCode, DcIdentifier},
		{ColumnDescription, DcDescription},
		{ColumnUnconfirmed, SkosEditorialNote},
		{ColumnType, RdfType},
		{ColumnMeasure, Namespace + "measure"},
		{ColumnDistinction, Namespace + "graduateDistinction"},
		{ColumnObjectType, Namespace + "objectType"},
	}

	for _, tt := range tests {
		t.Run(tt.predicate, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(tt.predicate)
			if meta == nil {
				t.Fatalf("predicate %q not registered", tt.predicate)
			}
			if meta.StandardIRI != tt.expectedIRI {
				t.Errorf("predicate %s: expected IRI %s, got %s", tt.predicate, tt.expectedIRI, meta.StandardIRI)
			}
		})
	}
}

func TestPredicateFor(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"level", ColumnLevel, true},
		{"graduate-distinction", ColumnDistinction, true},
		{"object-type", ColumnObjectType, true},
		{"year", ColumnYear, true},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		got, ok := PredicateFor(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PredicateFor(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}
