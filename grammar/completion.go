package grammar

import "github.com/c360studio/semaeis/decoder"

var (
	collegeMetrics = decoder.Lookup{
		"CRR": facts{"field": "college-admissions.college-ready", "subject": "reading"},
		"CRM": facts{"field": "college-admissions.college-ready", "subject": "math"},
		"CRB": facts{"field": "college-admissions.college-ready", "subject": "both"},
		"0CA": facts{"field": "act", "measure": "average"},
		"0CS": facts{"field": "sat", "measure": "average"},
		"0CT": facts{"field": "college-admissions.taking-act-or-sat"},
		"0CC": decoder.Unconfirmed(facts{"field": "college-admissions.above-criteria"}, "0CC taken to be at or above criteria"),
	}

	completionMetrics = decoder.Lookup{
		"DC4":  facts{"field": "completion.longitudinal-dropout"},
		"DC4X": facts{"field": "completion.longitudinal-dropout"},
		"EC4":  facts{"field": "completion.ged-recipients"},
		"EC4X": facts{"field": "completion.ged-recipients"},
		"NC4":  facts{"field": "completion.continuers"},
		"NC4X": facts{"field": "completion.continuers"},
		"GC4":  facts{"field": "completion.four-year-graduates"},
		"GC4X": facts{"field": "completion.four-year-graduates"},
		"GC5":  facts{"field": "completion.five-year-graduates"},
	}
)

// cad covers college admissions and readiness.
func cad() decoder.RuleSet {
	return decoder.RuleSet{
		decoder.Pattern(`(?P<group>\w)`, decoder.Capture(decoder.Resolvers{"group": groupCodes},
			decoder.RuleSet{decoder.Pattern(`(?P<metric>\w\w\w)`, decoder.Capture(decoder.Resolvers{"metric": collegeMetrics}, yearSet()))},
		)),
	}
}

// comp covers longitudinal completion rates.
func comp() decoder.RuleSet {
	return decoder.RuleSet{
		decoder.Pattern(`(?P<group>\w)`, decoder.Capture(decoder.Resolvers{"group": groupCodes},
			decoder.RuleSet{decoder.Pattern(`(?P<metric>[A-Z]C[4-5]X?)`, decoder.Capture(decoder.Resolvers{"metric": completionMetrics}, yearSet()))},
		)),
	}
}
