package export

import (
	"fmt"
	"sort"
	"strings"

	ssexport "github.com/c360studio/semstreams/vocabulary/export"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string

	// RDF reports whether the format is an RDF serialization.
	RDF bool

	// Serializer is the semstreams serializer of an RDF format.
	Serializer ssexport.Format
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatJSONLines: {
		Name:        FormatJSONLines,
		MIMEType:    "application/x-ndjson",
		Extension:   ".jsonl",
		Description: "JSON lines - one decoded record per line",
	},
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
		RDF:         true,
		Serializer:  ssexport.Turtle,
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
		RDF:         true,
		Serializer:  ssexport.NTriples,
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
		RDF:         true,
		Serializer:  ssexport.JSONLD,
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Serializer returns the semstreams serializer of an RDF format.
func Serializer(format Format) (ssexport.Format, error) {
	info, ok := FormatRegistry[format]
	if !ok || !info.RDF {
		return 0, fmt.Errorf("unsupported format: %s", format)
	}
	return info.Serializer, nil
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// ParseFormat resolves a format name or its file extension.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	for f, info := range FormatRegistry {
		if string(f) == name || strings.TrimPrefix(info.Extension, ".") == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q (supported: %s)", name, strings.Join(Formats(), ", "))
}
