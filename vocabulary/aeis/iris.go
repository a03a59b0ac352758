package aeis

// Namespace is the base IRI prefix for AEIS vocabulary terms.
const Namespace = "https://semaeis.dev/ontology/aeis/"

// EntityNamespace is the base IRI for column entity instances.
const EntityNamespace = "https://semaeis.dev/entity/aeis/"

// ClassColumn is the class of decoded extract columns.
const ClassColumn = Namespace + "Column"

// Standard ontology IRIs used by record predicates.
const (
	// DcIdentifier is the Dublin Core identifier property.
	DcIdentifier = "http://purl.org/dc/terms/identifier"

	// DcDescription is the Dublin Core description property.
	DcDescription = "http://purl.org/dc/terms/description"

	// RdfType is the RDF type property.
	RdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// SkosEditorialNote is the SKOS editorial note property.
	SkosEditorialNote = "http://www.w3.org/2004/02/skos/core#editorialNote"
)
