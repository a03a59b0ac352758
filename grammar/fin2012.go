package grammar

import "github.com/c360studio/semaeis/decoder"

// From 2012 the financial codes carry a fund letter ahead of most functions.
var finFunds = decoder.Lookup{
	"A": facts{"fund": "all"},
	"G": facts{"fund": "general"},
}

var (
	fin2012Objects = map[string]facts{
		"OPO": {"object": "total-operating"},
		"NOO": {"object": "non-operating"},
		"OOP": {"object": "other-operating"},
		"PAY": {"object": "payroll"},
		"PLA": {"object": "plant-services"},
	}

	fin2012Functions = decoder.Lookup{
		"ALL": facts{"function": "all"},
		"ADI": facts{"function": "administration.instructional"},
		"ADC": facts{"function": "administration.central"},
		"ADS": facts{"function": "administration.leadership"},
		"COC": facts{"function": "cocurricular-extracurricular-activities"},
		"COF": facts{"function": "community-services"},
		"DAT": facts{"function": "community-services"},
		"DEB": facts{"function": "debt-service"},
		"FOO": facts{"function": "food-services"},
		"INS": facts{"function": "administration.leadership"},
		"OPF": facts{"function": "operating-total"},
		"OPR": facts{"function": "operating-total"},
		"OTH": facts{"function": "other"},
		"PAY": facts{"function": "payroll"},
		"PLA": facts{"function": "plant-services"},
		"REL": facts{"function": "instruction-related"},
		"SEC": facts{"function": "security-and-monitoring-services"},
		"SUP": facts{"function": "support-services.student"},
		"TRA": facts{"function": "student-transportation"},
		"CAP": facts{"object": "capital-outlay"},
		"OOP": facts{"object": "other-operating"},
	}

	fin2012Programs = map[string]facts{
		"AALL": {"program": "all"},
		"AREG": {"program": "regular"},
		"ASPE": {"program": "special"},
		"AATH": {"program": "athletics"},
		"ABIL": {"program": "bilingual"},
		"ACOM": {"program": "compensatory"},
		"AGIF": {"program": "gifted-and-talented"},
		"AHSA": {"program": "high-school-allotment"},
		"AOTH": {"program": "other"},
		"AVOC": {"program": "vocational"},
		"GALL": {"fund": "general", "program": "all"},
		"GREG": {"fund": "general", "program": "regular"},
		"GSPE": {"fund": "general", "program": "special"},
		"GATH": {"fund": "general", "program": "athletics"},
		"GBIL": {"fund": "general", "program": "bilingual"},
		"GCOM": {"fund": "general", "program": "compensatory"},
		"GGIF": {"fund": "general", "program": "gifted-and-talented"},
		"GHSA": {"fund": "general", "program": "high-school-allotment"},
		"GOTH": {"fund": "general", "program": "other"},
		"GVOC": {"fund": "general", "program": "vocational"},
	}

	fin2012Sources = decoder.Lookup{
		"ALL": facts{"source": "all"},
		"FED": facts{"source": "federal"},
		"LOC": facts{"source": "local"},
		"OTH": facts{"source": "other-local-and-intermediate"},
		"STA": facts{"source": "state"},
		"SFS": facts{"source": "state-fiscal-stabilization-fund"},
	}

	fin2012TaxRates = map[string]facts{
		"AIS": {"rate": "interest-and-sinking"},
		"AMO": {"rate": "maintenance-and-operations"},
	}
)

// fin2012Exclusions resolves the three-letter exclusion captured after a fund.
func fin2012Exclusions() decoder.Lookup {
	out := decoder.Lookup{}
	for code, f := range finExclusions {
		if note, ok := finExclusionNotes[code]; ok {
			out[code] = decoder.Unconfirmed(f, note)
			continue
		}
		out[code] = f
	}
	return out
}

// fin2012 is the financial grammar for the 2012 report year.
func fin2012() decoder.RuleSet {
	root := finShared()
	return append(root,
		decoder.Literal("PFE", decoder.Branch(facts{"field": "expenditure"},
			decoder.RuleSet{decoder.Literal("OPR", decoder.Terminal(facts{"function": "total-operating"}))},
			decoder.Literals(fin2012Objects),
			decoder.RuleSet{decoder.Literal("IER", decoder.Terminal(facts{"function": "instruction"}))},
			decoder.RuleSet{decoder.Pattern(`(?P<fund>A|G)(?P<function>\w\w\w)`, decoder.Capture(decoder.Resolvers{
				"fund":     finFunds,
				"function": fin2012Functions,
			}))},
			decoder.Literals(finFunctions),
		)),
		decoder.Literal("PFP", decoder.Branch(facts{"field": "expenditure"},
			decoder.Literals(fin2012Programs),
			decoder.Literals(finPrograms),
		)),
		decoder.Literal("PFR", decoder.Branch(facts{"field": "revenue"},
			decoder.RuleSet{decoder.Pattern(`(?P<fund>A|G)(?P<function>\w\w\w)`, decoder.Capture(decoder.Resolvers{
				"fund":     finFunds,
				"function": fin2012Sources,
			}))},
			decoder.Literals(finSources),
		)),
		decoder.Literal("PFT", decoder.Branch(facts{"field": "tax"},
			decoder.Literals(fin2012TaxRates),
			decoder.Literals(finTaxRates),
		)),
		decoder.Literal("PFX", decoder.Branch(facts{"field": "expenditure.exclusion"},
			decoder.RuleSet{decoder.Pattern(`(?P<fund>A|G)(?P<exclusion>\w\w\w)`, decoder.Capture(decoder.Resolvers{
				"fund":      finFunds,
				"exclusion": fin2012Exclusions(),
			}))},
			flag(decoder.Literals(finExclusions), finExclusionNotes),
		).Unconfirmed(exclusionFieldNote)),
	)
}
