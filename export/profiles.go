package export

import (
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/vocabulary"
	"github.com/c360studio/semstreams/vocabulary/bfo"
	"github.com/c360studio/semstreams/vocabulary/cco"

	"github.com/c360studio/semaeis/vocabulary/aeis"
)

// Profile determines which ontology type assertions are included in the export.
type Profile string

const (
	// ProfileMinimal types columns as aeis:Column and prov:Entity only.
	ProfileMinimal Profile = "minimal"

	// ProfileBFO includes BFO type assertions plus minimal profile.
	ProfileBFO Profile = "bfo"

	// ProfileCCO includes CCO type assertions plus BFO profile.
	ProfileCCO Profile = "cco"
)

// ProfileConfig contains configuration for an export profile.
type ProfileConfig struct {
	// Name is the profile identifier.
	Name Profile

	// Description describes the profile.
	Description string

	// IncludeBFO indicates whether to include BFO type assertions.
	IncludeBFO bool

	// IncludeCCO indicates whether to include CCO type assertions.
	IncludeCCO bool

	// IncludePROV indicates whether to include PROV-O type assertions.
	IncludePROV bool
}

// Profiles contains the configuration for all available export profiles.
var Profiles = map[Profile]ProfileConfig{
	ProfileMinimal: {
		Name:        ProfileMinimal,
		Description: "AEIS column class and PROV-O entity only",
		IncludePROV: true,
	},
	ProfileBFO: {
		Name:        ProfileBFO,
		Description: "BFO type assertions plus minimal profile",
		IncludeBFO:  true,
		IncludePROV: true,
	},
	ProfileCCO: {
		Name:        ProfileCCO,
		Description: "Full CCO/BFO/PROV-O alignment",
		IncludeBFO:  true,
		IncludeCCO:  true,
		IncludePROV: true,
	},
}

// GetProfileConfig returns the configuration for a profile, falling back to
// the minimal profile for unknown names.
func GetProfileConfig(profile Profile) ProfileConfig {
	if config, ok := Profiles[profile]; ok {
		return config
	}
	return Profiles[ProfileMinimal]
}

// ColumnTypes returns the type IRIs asserted for a column under profile.
// A decoded column is information about a dataset, so it aligns with
// generically dependent continuants in BFO and information content in CCO.
func ColumnTypes(profile Profile) []string {
	config := GetProfileConfig(profile)
	types := []string{aeis.ClassColumn}
	if config.IncludePROV {
		types = append(types, vocabulary.ProvEntity)
	}
	if config.IncludeBFO {
		types = append(types, bfo.GenericallyDependentContinuant)
	}
	if config.IncludeCCO {
		types = append(types, cco.InformationContentEntity)
	}
	return types
}

// TypeTriples returns rdf:type triples for a column entity under profile.
func TypeTriples(entityID string, profile Profile) []message.Triple {
	return typeTriples(entityID, ColumnTypes(profile))
}

// typeTriples asserts each type IRI on entityID. The semstreams serializers
// only emit entity IDs as resources, so classes are typed xsd:anyURI literals.
func typeTriples(entityID string, typeIRIs []string) []message.Triple {
	triples := make([]message.Triple, 0, len(typeIRIs))
	for _, typeIRI := range typeIRIs {
		triples = append(triples, message.Triple{
			Subject:    entityID,
			Predicate:  aeis.ColumnType,
			Object:     typeIRI,
			Datatype:   "xsd:anyURI",
			Source:     "semaeis.rdf-export",
			Confidence: 1.0,
		})
	}
	return triples
}
