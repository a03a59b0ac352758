package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/export"
	_ "github.com/c360studio/semaeis/grammar"
	"github.com/c360studio/semaeis/vocabulary/aeis"
)

func column(t *testing.T, kind string, year int, code string, descriptions ...string) export.Column {
	t.Helper()
	rec, err := decoder.NewPipeline(nil).Decode(kind, year, code)
	require.NoError(t, err)
	return export.Column{Record: rec, Descriptions: descriptions}
}

func TestExportTurtle(t *testing.T) {
	exporter := export.NewRDFExporter(export.ProfileMinimal)
	exporter.AddColumn(column(t, "othr", 1994, "CG0EQ94R", `TAAS "equivalence"`))
	require.Equal(t, 1, exporter.Len())

	out, err := exporter.Export(export.FormatTurtle)
	require.NoError(t, err)

	assert.Contains(t, out, "@prefix ss: <"+aeis.Namespace+"> .")
	assert.Contains(t, out, "<"+aeis.EntityNamespace+"othr/1994-CG0EQ94R> ")
	assert.Contains(t, out, `rdf:type "`+aeis.ClassColumn+`"^^xsd:anyURI`)
	assert.Contains(t, out, `dc:identifier "CG0EQ94R"`)
	assert.Contains(t, out, "ss:version 1994")
	assert.Contains(t, out, "ss:level \"campus\"")
	assert.Contains(t, out, `"TAAS \"equivalence\""`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "."))
}

func TestExportNTriples(t *testing.T) {
	exporter := export.NewRDFExporter(export.ProfileCCO)
	exporter.AddColumn(column(t, "othr", 1994, "CA0EQ94R"))
	exporter.AddColumn(column(t, "fin", 2012, "DPFEAINSP"))

	out, err := exporter.Export(export.FormatNTriples)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "<"), line)
		assert.True(t, strings.HasSuffix(line, " ."), line)
	}
	assert.Contains(t, out, "<"+aeis.EntityNamespace+"fin/2012-DPFEAINSP> <"+aeis.RdfType+"> ")
	assert.Contains(t, out, `"2012"^^<http://www.w3.org/2001/XMLSchema#integer>`)
	assert.NotContains(t, out, "xsd:")
}

func TestExportJSONLD(t *testing.T) {
	exporter := export.NewRDFExporter(export.ProfileBFO)
	exporter.AddColumn(column(t, "othr", 1994, "CG0EQ94R", "first", "second"))

	out, err := exporter.Export(export.FormatJSONLD)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	ctx, ok := doc["@context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, aeis.Namespace, ctx["ss"])

	// A single entity is written as the top-level node.
	assert.Equal(t, aeis.EntityNamespace+"othr/1994-CG0EQ94R", doc["@id"])
	assert.Len(t, doc["rdf:type"], 3)
	assert.ElementsMatch(t, []any{"first", "second"}, doc["dc:description"])
	assert.Equal(t, "CG0EQ94R", doc["dc:identifier"])
	assert.Equal(t, float64(1994), doc["ss:version"])
}

func TestExportJSONLDGraph(t *testing.T) {
	exporter := export.NewRDFExporter(export.ProfileMinimal)
	exporter.AddColumn(column(t, "othr", 1994, "CA0EQ94R"))
	exporter.AddColumn(column(t, "othr", 1994, "DA0EQ94R"))

	out, err := exporter.Export(export.FormatJSONLD)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	graph, ok := doc["@graph"].([]any)
	require.True(t, ok)
	require.Len(t, graph, 2)
	assert.Equal(t, aeis.EntityNamespace+"othr/1994-DA0EQ94R", graph[1].(map[string]any)["@id"])
}

func TestExportUnsupportedFormat(t *testing.T) {
	exporter := export.NewRDFExporter(export.ProfileMinimal)

	_, err := exporter.Export(export.Format("rdfxml"))
	assert.Error(t, err)

	_, err = exporter.Export(export.FormatJSONLines)
	assert.Error(t, err)
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	columns := []export.Column{
		column(t, "othr", 1994, "CA0EQ94R", "Campus equivalence"),
		column(t, "othr", 1994, "DA0EQ94R"),
	}
	require.NoError(t, export.Write(&buf, export.FormatJSONLines, export.ProfileMinimal, columns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "CA0EQ94R", first["key"])
	assert.Equal(t, float64(1994), first["version"])
	assert.Equal(t, "campus", first["level"])
	assert.Equal(t, []any{"Campus equivalence"}, first["descriptions"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "district", second["level"])
	assert.NotContains(t, second, "descriptions")
}

func TestWriteRDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, export.FormatTurtle, export.ProfileMinimal, []export.Column{column(t, "othr", 1994, "CA0EQ94R")}))
	assert.Contains(t, buf.String(), "@prefix")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want export.Format
	}{
		{"turtle", export.FormatTurtle},
		{".ttl", export.FormatTurtle},
		{"nt", export.FormatNTriples},
		{"JSONLD", export.FormatJSONLD},
		{"jsonl", export.FormatJSONLines},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := export.ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := export.ParseFormat("xml")
	assert.ErrorContains(t, err, "supported:")
	assert.Equal(t, []string{"jsonl", "jsonld", "ntriples", "turtle"}, export.Formats())
}
