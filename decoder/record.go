package decoder

import "strings"

// Record is the result of decoding one column code: the merged facts and the
// ordered steps that produced them.
type Record struct {
	Kind     string `json:"kind"`
	Year     int    `json:"year"`
	Revision int    `json:"revision,omitempty"`
	Code     string `json:"code"`
	Facts    Facts  `json:"facts"`
	Steps    []Step `json:"steps"`
}

func newRecord(kind string, year int, code string, steps []Step) *Record {
	return &Record{
		Kind:  kind,
		Year:  year,
		Code:  code,
		Facts: mergeSteps(steps),
		Steps: steps,
	}
}

// Evidence returns the concatenated evidence, which equals Code for a valid record.
func (r *Record) Evidence() string {
	var sb strings.Builder
	for _, s := range r.Steps {
		sb.WriteString(s.Evidence)
	}
	return sb.String()
}

// Unconfirmed returns the notes of every step that used an unconfirmed mapping.
func (r *Record) Unconfirmed() []string {
	var notes []string
	for _, s := range r.Steps {
		if s.Note != "" {
			notes = append(notes, s.Note)
		}
	}
	return notes
}

// Document returns the flat form handed to downstream consumers: the merged
// facts plus the report year under "version" and the raw code under "key".
func (r *Record) Document() Facts {
	doc := r.Facts.Clone()
	doc["version"] = r.Year
	doc["key"] = r.Code
	doc["kind"] = r.Kind
	return doc
}
