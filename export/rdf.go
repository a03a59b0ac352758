// Package export serializes decoded columns to RDF and JSON lines.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/c360studio/semstreams/message"
	ssexport "github.com/c360studio/semstreams/vocabulary/export"

	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/graph"
	"github.com/c360studio/semaeis/vocabulary/aeis"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatJSONLines writes one flat record document per line.
	FormatJSONLines Format = "jsonl"

	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// Column is a decoded record together with the descriptions found for its code.
type Column struct {
	Record       *decoder.Record
	Descriptions []string
}

// Entity represents an exportable column with its types and triples.
type Entity struct {
	ID      string
	Types   []string
	Triples []message.Triple
}

// RDFExporter collects the triples of columns and serializes them with the
// semstreams RDF serializers.
type RDFExporter struct {
	profile  Profile
	entities int
	triples  []message.Triple
}

// NewRDFExporter creates a new RDF exporter with the specified profile.
func NewRDFExporter(profile Profile) *RDFExporter {
	return &RDFExporter{profile: profile}
}

// AddEntity adds an entity to be exported. Its types become rdf:type triples
// ahead of its own triples.
func (e *RDFExporter) AddEntity(entity Entity) {
	e.triples = append(e.triples, typeTriples(entity.ID, entity.Types)...)
	e.triples = append(e.triples, entity.Triples...)
	e.entities++
}

// AddColumn adds a decoded column, typed according to the exporter's profile.
func (e *RDFExporter) AddColumn(c Column) {
	rec := c.Record
	e.AddEntity(Entity{
		ID:      graph.ColumnEntityID(rec.Kind, rec.Year, rec.Code),
		Types:   ColumnTypes(e.profile),
		Triples: graph.RecordTriples(rec, c.Descriptions, "", time.Time{}),
	})
}

// Len returns the number of entities added so far.
func (e *RDFExporter) Len() int {
	return e.entities
}

// Export serializes all entities to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	var b strings.Builder
	if err := e.Serialize(&b, format); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Serialize writes all entities to w in the specified format.
func (e *RDFExporter) Serialize(w io.Writer, format Format) error {
	sf, err := Serializer(format)
	if err != nil {
		return err
	}
	if err := ssexport.Serialize(w, e.triples, sf, SerializeOptions()...); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}

// SerializeOptions places predicates without a registered IRI under the aeis
// namespace and column entities under the entity namespace.
func SerializeOptions() []ssexport.Option {
	return []ssexport.Option{
		ssexport.WithBaseIRI(strings.TrimSuffix(aeis.Namespace, "/")),
		ssexport.WithSubjectIRIFunc(entityIDToIRI),
	}
}

// Write serializes columns to w. JSON lines are streamed one record per line;
// the RDF formats are rendered as one document.
func Write(w io.Writer, format Format, profile Profile, columns []Column) error {
	if format == FormatJSONLines {
		return WriteJSONLines(w, columns)
	}

	e := NewRDFExporter(profile)
	for _, c := range columns {
		e.AddColumn(c)
	}
	return e.Serialize(w, format)
}

// WriteJSONLines writes the flat document of each record, one per line.
// Descriptions, when present, are added under "descriptions".
func WriteJSONLines(w io.Writer, columns []Column) error {
	enc := json.NewEncoder(w)
	for _, c := range columns {
		doc := c.Record.Document()
		if len(c.Descriptions) > 0 {
			doc["descriptions"] = c.Descriptions
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode %s: %w", c.Record.Code, err)
		}
	}
	return nil
}

// entityIDToIRI converts a dotted column entity ID to an IRI.
// Example: "semaeis.local.aeis.othr.column.1994-CG0EQ94R"
//
//	-> "https://semaeis.dev/entity/aeis/othr/1994-CG0EQ94R"
func entityIDToIRI(entityID string) string {
	parts := strings.Split(entityID, ".")
	if len(parts) < 6 {
		return aeis.EntityNamespace + entityID
	}
	// Skip org (0), platform (1), domain (2) and the "column" type (4).
	kind := parts[3]
	instance := strings.Join(parts[5:], "/")
	return fmt.Sprintf("%s%s/%s", aeis.EntityNamespace, kind, instance)
}
