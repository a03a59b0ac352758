package grammar

import "github.com/c360studio/semaeis/decoder"

var (
	classSubjects = map[string]facts{
		"ENG": {"subject": "english"},
		"FLA": {"subject": "foreign-language"},
		"MAT": {"subject": "math"},
		"SCI": {"subject": "science"},
		"SST": {"subject": "social-studies"},
		"SOC": {"subject": "social-studies"},
		"ELE": {"grade": "elementary"},
	}

	teacherFields = map[string]facts{
		"EXP": {"field": "experience"},
		"KID": {"field": "student-teacher-ratio"},
		"TEN": {"field": "tenure"},
		"URN": {"field": "turnover"},
	}

	teacherCodes = decoder.Lookup{
		"TO": facts{},
		// Years of experience
		"00": facts{"experience": "zero-years"},
		"01": facts{"experience": "one-to-five-years"},
		"06": facts{"experience": "six-to-ten-years"},
		"11": facts{"experience": "eleven-to-twenty-years"},
		"20": facts{"experience": "twenty-or-more-years"},
		// Programs
		"BI": facts{"program": "bilingual"},
		"CO": facts{"program": "compensatory"},
		"GI": facts{"program": "gifted-and-talented"},
		"OP": facts{"program": "other"},
		"RE": facts{"program": "regular"},
		"SP": facts{"program": "special-education"},
		"VO": facts{"program": "vocational"},
		// Races
		"BL": facts{"race": "black"},
		"WH": facts{"race": "white"},
		"HI": facts{"race": "hispanic"},
		"IN": facts{"race": "indian-alaskan"},
		"NA": facts{"race": "native-american"},
		"AS": facts{"race": "asian"},
		"PA": facts{"race": "asian-pacific-islander"},
		"PI": facts{"race": "pacific-islander"},
		"OE": facts{"race": "other"},
		"TW": facts{"race": "two-or-more-races"},
		// Genders
		"FE": facts{"gender": "female"},
		"MA": facts{"gender": "male"},
		// Degrees
		"NO": facts{"degree": "none"},
		"BA": facts{"degree": "bachelors"},
		"MS": facts{"degree": "masters"},
		"PH": facts{"degree": "phd"},
		// Permits
		"CA": facts{"permit": "temporary-assignment"},
		"ET": facts{"permit": "emergency-teaching"},
		"NR": facts{"permit": "non-renewable"},
		"SA": facts{"permit": "special-assignment"},
	}

	staffRoles = decoder.Lookup{
		"A": decoder.Value("all"),
		"C": decoder.Value("central-administrators"),
		"E": decoder.Value("educational-aides"),
		"P": decoder.Value("professionals"),
		"S": decoder.Value("school-administrators"),
		"U": decoder.Value("support"),
		"X": decoder.Value("auxiliary"),
		"O": decoder.Value("contract-service"),
	}

	staffCodes = decoder.Lookup{
		"MI": facts{"group": "minority"},
		"TO": facts{"field": "staff.total"},
		"CO": facts{"program": "compensatory"},
	}

	staffStatus = map[string]facts{
		"F": {"status": "full-time"},
		"P": {"status": "permit"},
		"S": {"field": "salary"},
	}
)

// staf covers class sizes and staff counts, salaries and demographics.
func staf() decoder.RuleSet {
	status := decoder.Literals(staffStatus)

	classSize := decoder.Pattern(`(?P<field>PCT|PET)`, decoder.Capture(
		decoder.Resolvers{"field": decoder.Constant("class-size")},
		decoder.Literals(classSubjects),
		decoder.RuleSet{decoder.Literal("G", decoder.Branch(facts{}, decoder.RuleSet{
			decoder.Pattern(`(?P<grade>\w\w)`, decoder.Capture(decoder.Resolvers{"grade": decoder.TwoDigitGrade})),
		}))},
	))

	teachers := decoder.Literal("T", decoder.Branch(facts{"role": "teachers"},
		decoder.Literals(teacherFields),
		decoder.RuleSet{decoder.Pattern(`(?P<code>\w\w)`, decoder.Capture(decoder.Resolvers{"code": teacherCodes}, status))},
	))

	otherStaff := decoder.Pattern(`(?P<role>[A-Z])`, decoder.Capture(decoder.Resolvers{"role": staffRoles},
		decoder.RuleSet{decoder.Pattern(`(?P<code>\w{2})`, decoder.Capture(decoder.Resolvers{"code": staffCodes}, status))},
	))

	return decoder.RuleSet{
		classSize,
		decoder.Literal("PS", decoder.Branch(facts{"field": "staff"},
			decoder.RuleSet{decoder.Literal("AINHP", decoder.Terminal(facts{"field": "instructional-staff-percent"}))},
			decoder.RuleSet{teachers, otherStaff},
		)),
	}
}
