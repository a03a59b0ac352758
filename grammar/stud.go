package grammar

import "github.com/c360studio/semaeis/decoder"

var (
	graduateFields = decoder.Lookup{
		"0GH": facts{"field": "graduates", "program": "recommended"},
		"0GM": facts{"field": "graduates", "program": "minimum"},
		"0GR": facts{"field": "graduates", "program": "regular"},
		"PID": facts{"field": "pid-error"},
		"UND": facts{"field": "underreported-students"},
	}

	enrollmentFields = decoder.Lookup{
		"PEG": facts{"field": "graduates", "program": "regular"},
		"PEM": facts{"field": "enrollment", "group": "mobile"},
		"PER": facts{"field": "retention"},
		"PET": facts{"field": "enrollment"},
	}

	studentDistinctions = map[string]facts{
		"ADV": {"graduate-distinction": "advanced-seals-on-diploma"},
	}

	studentGroups = map[string]facts{
		"ALL": {"group": "all"},
		"ECO": {"group": "economically-disadvantaged"},
		"GIF": {"group": "gifted-and-talented"},
		"LEP": {"group": "limited-english-proficient"},
		"NED": {"group": "non-educationally-disadvantaged"},
		"RSK": {"group": "at-risk"},
	}

	studentPrograms = map[string]facts{
		"SPE": {"program": "special"},
		"BIL": {"program": "bilingual"},
		"DIS": {"program": "daep"},
		"VOC": {"program": "vocational"},
	}

	studentRaces = map[string]facts{
		"ASI": {"race": "asian"},
		"BLA": {"race": "black"},
		"HIS": {"race": "hispanic"},
		"IND": {"race": "native-american"},
		"OTH": {"race": "other"},
		"PCI": {"race": "pacific-islander"},
		"TWO": {"race": "two-or-more-races"},
		"WHI": {"race": "white"},
	}

	retentionPrograms = decoder.Lookup{
		"RA": facts{"program": "regular"},
		"SA": facts{"program": "special"},
	}

	gradePrograms = decoder.Lookup{
		"G": facts{},
		"R": facts{"program": "regular"},
		"S": facts{"program": "special"},
	}

	earlyGrades = decoder.Lookup{
		"EE": facts{"grade": "early-education"},
		"PK": facts{"grade": "pre-kindergarten"},
		"KI": facts{"grade": "kindergarten"},
		"KN": facts{"grade": "kindergarten"},
	}
)

// stud covers student enrollment, retention and graduate counts.
func stud() decoder.RuleSet {
	graduates := decoder.Pattern(`(?P<group>\w)(?P<field>PID|UND|0G\w)`, decoder.Capture(
		decoder.Resolvers{"group": groupCodes, "field": graduateFields},
		yearSet(decoder.RuleSet{decoder.Literal("N", decoder.Terminal(facts{"measure": "count"}))}),
	))

	enrollment := decoder.Pattern(`(?P<field>PEG|PEM|PER|PET)`, decoder.Capture(
		decoder.Resolvers{"field": enrollmentFields},
		decoder.RuleSet{decoder.Pattern(`(?P<program>RA|SA)(?P<grade>[1-8K])`, decoder.Capture(decoder.Resolvers{
			"program": retentionPrograms,
			"grade":   decoder.OneDigitGrade,
		}))},
		decoder.Literals(studentDistinctions),
		decoder.Literals(studentGroups),
		decoder.Literals(studentPrograms),
		decoder.Literals(studentRaces),
		decoder.RuleSet{decoder.Pattern(`(?P<program>G|R|S)((?P<grade>\d\d)|(?P<code>EE|PK|KI|KN))`, decoder.Capture(
			decoder.Resolvers{"program": gradePrograms, "grade": decoder.Integer, "code": earlyGrades},
			decoder.RuleSet{decoder.Literal("R", decoder.Terminal(facts{"measure": "average"}))},
		))},
	))

	return decoder.RuleSet{graduates, enrollment}
}
