package grammar

import "github.com/c360studio/semaeis/decoder"

// othrGroups differ from groupCodes: P is asian and G marks peer group means.
var othrGroups = decoder.Lookup{
	"A": facts{"group": "all"},
	"E": facts{"group": "economically-disadvantaged"},
	"S": facts{"group": "special-education"},
	"L": facts{"group": "limited-english-proficient"},
	"R": facts{"group": "at-risk"},
	"F": facts{"gender": "female"},
	"M": facts{"gender": "male"},
	"B": facts{"race": "black"},
	"H": facts{"race": "hispanic"},
	"W": facts{"race": "white"},
	"P": facts{"race": "asian"},
	"2": facts{"race": "two-or-more-races"},
	"3": facts{"race": "asian"},
	"4": facts{"race": "pacific-islander"},
	"I": facts{"race": "native-american"},
	"O": facts{"race": "other"},
	"G": decoder.Unconfirmed(facts{"group": "tea-peers"}, "G taken to be the TEA peer group mean"),
}

// othr covers the "other" indicators: attendance, dropouts, college admissions
// and advanced course participation.
func othr() decoder.RuleSet {
	percent := decoder.RuleSet{decoder.Literal("R", decoder.Terminal(facts{"measure": "percent"}))}
	ignoredRate := decoder.RuleSet{decoder.Literal("R",
		decoder.Terminal(facts{}).Unconfirmed("trailing R on test score averages carries no measure"))}

	fields := decoder.RuleSet{
		decoder.Literal("0708DR", decoder.Branch(facts{"grade": "7-8", "field": "annual-dropout"}, yearSet())),
		decoder.Literal("0912DR", decoder.Branch(facts{"grade": "9-12", "field": "annual-dropout"}, yearSet())),
		decoder.Literal("0AD", decoder.Branch(facts{"field": "advanced-course-enrollment"}, yearSet())),
		decoder.Literal("0AT", decoder.Branch(facts{"field": "attendance"}, yearSet())),
		decoder.Literal("0CA", decoder.Branch(facts{"field": "act", "measure": "average"}, yearSet(ignoredRate))),
		decoder.Literal("0CS", decoder.Branch(facts{"field": "sat", "measure": "average"}, yearSet(ignoredRate))),
		decoder.Literal("0CC", decoder.Branch(facts{"field": "college-admissions.at-or-above-criteria"}, yearSet(percent))),
		decoder.Literal("0CT", decoder.Branch(facts{"field": "college-admissions.taking-act-or-sat"}, yearSet(percent))),
		decoder.Literal("0MM", decoder.Branch(facts{"field": "dropouts.method-i"}, yearSet())),
		decoder.Literal("0DR", decoder.Branch(facts{"field": "dropouts.method-ii"}, yearSet())),
		decoder.Literal("0EQ", decoder.Branch(facts{"field": "taas-tasp-equivalence"}, yearSet())),
		decoder.Literal("0BK", decoder.Branch(facts{"field": "ap-ib.students-above-criterion"}, yearSet())),
		decoder.Literal("0BS", decoder.Branch(facts{"field": "ap-ib.scores-above-criterion"}, yearSet())),
		decoder.Literal("0BT", decoder.Branch(facts{"field": "ap-ib.students-taking-test"}, yearSet())),
		decoder.Literal("0GH", decoder.Branch(facts{"field": "graduates", "program": "recommended"}, yearSet())),
	}

	return decoder.RuleSet{
		decoder.Pattern(`(?P<group>\w)`, decoder.Capture(decoder.Resolvers{"group": othrGroups}, fields)),
	}
}

// ref holds reference columns only; they are all special names or suffixes.
func ref() decoder.RuleSet {
	return decoder.RuleSet{}
}
