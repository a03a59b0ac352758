package rdfexport

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/c360studio/semstreams/component"
	ssexport "github.com/c360studio/semstreams/vocabulary/export"

	"github.com/c360studio/semaeis/export"
)

// rdfExportSchema defines the configuration schema.
var rdfExportSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the rdf-export output component.
type Config struct {
	Ports   *component.PortConfig `json:"ports" schema:"type:ports,description:Port configuration,category:basic"`
	Format  string                `json:"format" schema:"type:string,description:RDF serialization format (turtle/ntriples/jsonld),category:basic,default:turtle"`
	Profile string                `json:"profile" schema:"type:string,description:Ontology profile (minimal/bfo/cco),category:basic,default:minimal"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Format != "" {
		f, err := export.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		if f == export.FormatJSONLines {
			return fmt.Errorf("unsupported format: %s (valid: turtle, ntriples, jsonld)", c.Format)
		}
	}

	if c.Profile != "" {
		if _, ok := export.Profiles[export.Profile(strings.ToLower(c.Profile))]; !ok {
			return fmt.Errorf("unsupported profile: %s (valid: minimal, bfo, cco)", c.Profile)
		}
	}

	return nil
}

// GetFormat returns the configured export format, defaulting to Turtle.
func (c *Config) GetFormat() export.Format {
	f, err := export.ParseFormat(c.Format)
	if err != nil || f == export.FormatJSONLines {
		return export.FormatTurtle
	}
	return f
}

// GetSerializer returns the semstreams serializer of the configured format.
func (c *Config) GetSerializer() ssexport.Format {
	sf, err := export.Serializer(c.GetFormat())
	if err != nil {
		return ssexport.Turtle
	}
	return sf
}

// GetProfile returns the configured export.Profile.
func (c *Config) GetProfile() export.Profile {
	p := export.Profile(strings.ToLower(c.Profile))
	if _, ok := export.Profiles[p]; ok {
		return p
	}
	return export.ProfileMinimal
}

// DefaultConfig returns the default configuration for rdf-export.
func DefaultConfig() Config {
	return Config{
		Ports: &component.PortConfig{
			Inputs: []component.PortDefinition{
				{
					Name:        "columns_in",
					Type:        "jetstream",
					Subject:     "graph.ingest.entity",
					StreamName:  "GRAPH",
					Required:    true,
					Description: "Decoded column entities from the column indexer",
				},
			},
			Outputs: []component.PortDefinition{
				{
					Name:        "rdf_out",
					Type:        "jetstream",
					Subject:     "graph.export.rdf",
					Required:    true,
					Description: "Serialized RDF output for downstream consumers",
				},
			},
		},
		Format:  "turtle",
		Profile: "minimal",
	}
}
