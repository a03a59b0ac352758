package aeis

import (
	"strings"

	"github.com/c360studio/semstreams/vocabulary"
)

// Record predicates describe the column itself.
const (
	// ColumnCode is the raw column code as it appears in the extract header.
	ColumnCode = "aeis.column.code"

	// ColumnKind is the dataset kind of the extract, e.g. "fin" or "taks".
	ColumnKind = "aeis.column.kind"

	// ColumnVersion is the report year the column was decoded for.
	ColumnVersion = "aeis.column.version"

	// ColumnDescription is a description from a layout or reference file.
	// A column may carry several.
	ColumnDescription = "aeis.column.description"

	// ColumnUnconfirmed is the note of an unconfirmed mapping used while decoding.
	ColumnUnconfirmed = "aeis.column.unconfirmed"

	// ColumnEvidence is the ordered evidence of the decode, joined with "|".
	ColumnEvidence = "aeis.column.evidence"

	// ColumnType asserts an ontology class of the column entity.
	ColumnType = "aeis.column.type"
)

// Fact predicates, one per fact key emitted by the grammars.
const (
	ColumnLevel         = "aeis.column.level"
	ColumnGroup         = "aeis.column.group"
	ColumnGender        = "aeis.column.gender"
	ColumnRace          = "aeis.column.race"
	ColumnField         = "aeis.column.field"
	ColumnYear          = "aeis.column.year"
	ColumnMeasure       = "aeis.column.measure"
	ColumnGrade         = "aeis.column.grade"
	ColumnFunction      = "aeis.column.function"
	ColumnObject        = "aeis.column.object"
	ColumnObjectType    = "aeis.column.object_type"
	ColumnProgram       = "aeis.column.program"
	ColumnSource        = "aeis.column.source"
	ColumnRate          = "aeis.column.rate"
	ColumnCategory      = "aeis.column.category"
	ColumnExclusion     = "aeis.column.exclusion"
	ColumnFund          = "aeis.column.fund"
	ColumnSubject       = "aeis.column.subject"
	ColumnRole          = "aeis.column.role"
	ColumnExperience    = "aeis.column.experience"
	ColumnDegree        = "aeis.column.degree"
	ColumnPermit        = "aeis.column.permit"
	ColumnStatus        = "aeis.column.status"
	ColumnDistinction   = "aeis.column.graduate_distinction"
	ColumnTest          = "aeis.column.test"
	ColumnParticipation = "aeis.column.participation"
)

type factPredicate struct {
	key         string
	predicate   string
	description string
	dataType    string
}

var factPredicates = []factPredicate{
	{"level", ColumnLevel, "Reporting level: campus, district, region or state", "string"},
	{"group", ColumnGroup, "Student or staff group the value is reported for", "string"},
	{"gender", ColumnGender, "Gender the value is reported for", "string"},
	{"race", ColumnRace, "Race or ethnicity the value is reported for", "string"},
	{"field", ColumnField, "Dotted name of the reported quantity", "string"},
	{"year", ColumnYear, "Year the value describes", "int"},
	{"measure", ColumnMeasure, "Kind of number: count, percent, rate, average and so on", "string"},
	{"grade", ColumnGrade, "Grade or grade range", "string"},
	{"function", ColumnFunction, "Expenditure function", "string"},
	{"object", ColumnObject, "Expenditure object", "string"},
	{"object-type", ColumnObjectType, "Expenditure object type: operating or non-operating", "string"},
	{"program", ColumnProgram, "Instructional or graduation program", "string"},
	{"source", ColumnSource, "Revenue source", "string"},
	{"rate", ColumnRate, "Tax rate component", "string"},
	{"category", ColumnCategory, "Property value category", "string"},
	{"exclusion", ColumnExclusion, "Expenditure exclusion", "string"},
	{"fund", ColumnFund, "Fund the financial value is drawn from", "string"},
	{"subject", ColumnSubject, "Class subject", "string"},
	{"role", ColumnRole, "Staff role", "string"},
	{"experience", ColumnExperience, "Teacher experience band", "string"},
	{"degree", ColumnDegree, "Highest teacher degree", "string"},
	{"permit", ColumnPermit, "Teaching permit type", "string"},
	{"status", ColumnStatus, "Staff employment status", "string"},
	{"graduate-distinction", ColumnDistinction, "Graduate distinction", "string"},
	{"test", ColumnTest, "Assessment subject", "string"},
	{"participation", ColumnParticipation, "Assessment participation category", "string"},
}

var byFactKey = make(map[string]string, len(factPredicates))

// PredicateFor returns the predicate for a fact key. Unknown keys report false.
func PredicateFor(key string) (string, bool) {
	p, ok := byFactKey[key]
	return p, ok
}

// FactKeys returns the fact keys with a registered predicate, in registration order.
func FactKeys() []string {
	keys := make([]string, 0, len(factPredicates))
	for _, fp := range factPredicates {
		keys = append(keys, fp.key)
	}
	return keys
}

// iriName converts a predicate's last segment into a camelCase IRI local name.
func iriName(predicate string) string {
	local := predicate[strings.LastIndex(predicate, ".")+1:]
	parts := strings.Split(local, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func init() {
	vocabulary.Register(ColumnCode,
		vocabulary.WithDescription("Raw column code from the extract header"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DcIdentifier))

	vocabulary.Register(ColumnKind,
		vocabulary.WithDescription("Dataset kind of the extract"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"kind"))

	vocabulary.Register(ColumnVersion,
		vocabulary.WithDescription("Report year the column was decoded for"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"version"))

	vocabulary.Register(ColumnDescription,
		vocabulary.WithDescription("Description from a layout or reference file"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(DcDescription))

	vocabulary.Register(ColumnUnconfirmed,
		vocabulary.WithDescription("Unconfirmed mapping used while decoding"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(SkosEditorialNote))

	vocabulary.Register(ColumnEvidence,
		vocabulary.WithDescription("Ordered decode evidence joined with |"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"evidence"))

	vocabulary.Register(ColumnType,
		vocabulary.WithDescription("Ontology class of the column entity"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(RdfType))

	for _, fp := range factPredicates {
		byFactKey[fp.key] = fp.predicate
		vocabulary.Register(fp.predicate,
			vocabulary.WithDescription(fp.description),
			vocabulary.WithDataType(fp.dataType),
			vocabulary.WithIRI(Namespace+iriName(fp.predicate)))
	}
}
