package grammar

import "github.com/c360studio/semaeis/decoder"

var (
	taasTests = decoder.Lookup{
		"A": decoder.Value("all"),
		"M": decoder.Value("math"),
		"R": decoder.Value("reading"),
		"W": decoder.Value("writing"),
	}

	taksFields = decoder.Lookup{
		"C": facts{"field": "taks.commended"},
		"F": facts{"field": "taks.failed-previous-year"},
		"M": facts{"field": "taks.modified.met-standard"},
		"T": facts{"field": "taks.met-standard"},
	}

	taksTests = decoder.Lookup{
		"A": decoder.Value("all"),
		"C": decoder.Value("science"),
		"E": decoder.Value("english-language-arts"),
		"M": decoder.Value("mathematics"),
		"R": decoder.Value("reading-ela"),
		"S": decoder.Value("social-studies"),
	}

	taksSummaryFields = decoder.Lookup{
		"CT":  decoder.Unconfirmed(facts{"field": "taks.cumulative"}, "CT taken to be cumulative met standard"),
		"TSI": facts{"field": "taks.texas-success-initiative"},
	}

	participation = decoder.Lookup{
		"00": decoder.Value("tested.total"),
		"NA": decoder.Value("not-tested.absent"),
		"NO": decoder.Value("not-tested.other"),
		"NT": decoder.Value("not-tested.total"),
		"YA": decoder.Value("tested.in-accountability-system"),
		"YM": decoder.Value("tested.mobile"),
		"YX": decoder.Value("tested.excluded-under-rules"),
	}

	participationMeasures = decoder.Lookup{
		"R": decoder.Value("ratio"),
		"N": decoder.Value("numerator"),
		"D": decoder.Value("denominator"),
	}
)

// taas covers the TAAS passing rates, one grammar shared by the taas, tasa,
// tasb and tasc extracts.
func taas() decoder.RuleSet {
	year := yearSet()
	test := decoder.RuleSet{decoder.Pattern(`(?P<test>A|M|R|W)`, decoder.Capture(decoder.Resolvers{"test": taasTests}, year))}
	field := decoder.RuleSet{decoder.Pattern(`(?P<field>T)`, decoder.Capture(
		decoder.Resolvers{"field": decoder.Lookup{"T": decoder.Value("taas.passing")}}, test))}
	grade := decoder.RuleSet{decoder.Pattern(`(?P<grade>[0-8]|X|Z)`, decoder.Capture(
		decoder.Resolvers{"grade": decoder.OneDigitGrade}, field))}

	return decoder.RuleSet{
		decoder.Pattern(`(?P<group>[A-Z])`, decoder.Capture(decoder.Resolvers{"group": groupCodes}, grade)),
	}
}

// taks covers the TAKS results shared by the taks and taks1 through taks5 extracts.
func taks() decoder.RuleSet {
	return decoder.RuleSet{
		decoder.Pattern(`(?P<group>\w)(?P<grade>\d\d\d)(?P<field>\w)(?P<test>\w)(?P<year>\d\d)`, decoder.Capture(decoder.Resolvers{
			"group": groupCodes,
			"grade": decoder.ThreeDigitGrade,
			"field": taksFields,
			"test":  taksTests,
			"year":  decoder.AbbreviatedYear,
		})),
		decoder.Pattern(`(?P<group>\w)(?P<field>TSI|CT)(?P<test>\w)(?P<year>\d\d)`, decoder.Capture(decoder.Resolvers{
			"group": groupCodes,
			"field": taksSummaryFields,
			"test":  taksTests,
			"year":  decoder.AbbreviatedYear,
		})),
	}
}

// participation2013 covers the 2013 test participation extracts, part1 and part2.
func participation2013() decoder.RuleSet {
	return decoder.RuleSet{
		decoder.Pattern(`(?P<group>\w)(?P<participation>00|NA|NO|NT|YA|YM|YX)(?P<test>A)(?P<unknown>00T)(?P<year>013)(?P<measure>R|N|D)`,
			decoder.Capture(decoder.Resolvers{
				"group":         groupCodes,
				"participation": participation,
				"test":          decoder.Lookup{"A": decoder.Value("all")},
				"unknown":       decoder.Lookup{"00T": decoder.Unconfirmed(facts{}, "00T segment has no known meaning")},
				"year":          decoder.AbbreviatedYear,
				"measure":       participationMeasures,
			})),
	}
}
