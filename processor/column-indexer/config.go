package columnindexer

import (
	"fmt"
	"time"

	"github.com/c360studio/semstreams/component"
)

// Config holds configuration for the column-indexer processor component
type Config struct {
	Ports         *component.PortConfig `json:"ports"          schema:"type:ports,description:Port configuration,category:basic"`
	Roots         []string              `json:"roots"          schema:"type:array,description:Extract root directories or glob patterns,category:basic"`
	Patterns      []string              `json:"patterns"       schema:"type:array,description:Extract file globs relative to each root,category:advanced"`
	Years         []int                 `json:"years"          schema:"type:array,description:Report years to index (empty for all),category:basic"`
	Kinds         []string              `json:"kinds"          schema:"type:array,description:Dataset kinds to index (empty for all),category:basic"`
	ExcludeKinds  []string              `json:"exclude_kinds"  schema:"type:array,description:Dataset kinds never indexed,category:advanced"`
	Workers       int                   `json:"workers"        schema:"type:int,description:Concurrent decodes per file (0 for GOMAXPROCS),category:advanced,default:0"`
	StoreAnalyses bool                  `json:"store_analyses" schema:"type:bool,description:Store decoded columns in the analyses KV bucket,category:basic,default:true"`
	WatchEnabled  bool                  `json:"watch_enabled"  schema:"type:bool,description:Enable file watcher for real-time updates,category:basic,default:false"`
	DebounceDelay string                `json:"debounce_delay" schema:"type:string,description:Delay before re-indexing changed files (e.g. 500ms),category:advanced,default:500ms"`
	IndexInterval string                `json:"index_interval" schema:"type:string,description:Full reindex interval (e.g. 1h; empty disables),category:advanced"`
	StreamName    string                `json:"stream_name"    schema:"type:string,description:JetStream stream name,category:advanced,default:GRAPH"`
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return fmt.Errorf("at least one root is required")
	}
	for i, root := range c.Roots {
		if root == "" {
			return fmt.Errorf("roots[%d] is empty", i)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	for _, field := range []struct{ name, value string }{
		{"debounce_delay", c.DebounceDelay},
		{"index_interval", c.IndexInterval},
	} {
		if field.value == "" {
			continue
		}
		d, err := time.ParseDuration(field.value)
		if err != nil {
			return fmt.Errorf("invalid %s format: %w", field.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", field.name)
		}
	}

	return nil
}

// GetDebounceDelay returns the parsed debounce delay, defaulting to 500ms.
func (c *Config) GetDebounceDelay() time.Duration {
	if d, err := time.ParseDuration(c.DebounceDelay); err == nil && d > 0 {
		return d
	}
	return 500 * time.Millisecond
}

// DefaultConfig returns default configuration for column-indexer processor
func DefaultConfig() Config {
	outputDefs := []component.PortDefinition{
		{
			Name:        "graph.ingest",
			Type:        "jetstream",
			Subject:     "graph.ingest.entity",
			StreamName:  "GRAPH",
			Required:    true,
			Description: "Decoded column entities for graph ingestion",
		},
	}

	return Config{
		Ports: &component.PortConfig{
			Outputs: outputDefs,
		},
		Roots:         []string{"."},
		StoreAnalyses: true,
		DebounceDelay: "500ms",
		StreamName:    "GRAPH",
	}
}
