package columnindexer

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the column-indexer processor component with the given registry
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "column-indexer",
		Factory:     NewComponent,
		Schema:      columnIndexerSchema,
		Type:        "processor",
		Protocol:    "aeis",
		Domain:      "semantic",
		Description: "AEIS extract indexer decoding column codes into graph entities",
		Version:     "0.1.0",
	})
}
