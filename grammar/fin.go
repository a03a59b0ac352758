package grammar

import "github.com/c360studio/semaeis/decoder"

var (
	finFunctions = map[string]facts{
		"ALL": {"function": "all"},
		"ADI": {"function": "administration.instructional"},
		"ADC": {"function": "administration.central"},
		"ADS": {"function": "administration.campus"},
		"CAP": {"function": "capital-outlay"},
		"COM": {"function": "community-services"},
		"DEB": {"function": "debt-service"},
		"INR": {"function": "administration.instruction-related"},
		"INS": {"function": "instruction"},
		"NOF": {"function": "non-operating"},
		"OPF": {"function": "operating"},
		"OTH": {"function": "other"},
		"OTR": {"function": "other"},
		"SUP": {"function": "support-services.student"},
	}

	finObjectTypes = map[string]facts{
		"NOO": {"object-type": "non-operating"},
		"OOP": {"object-type": "other-operating"},
	}

	finObjects = map[string]facts{
		"PAY": {"object": "payroll"},
		"PLA": {"object": "plant-services"},
	}

	finPrograms = map[string]facts{
		"BIL": {"program": "bilingual"},
		"COM": {"program": "compensatory"},
		"GIF": {"program": "gifted-and-talented"},
		"REG": {"program": "regular"},
		"SPE": {"program": "special"},
		"VOC": {"program": "vocational"},
	}

	finSources = map[string]facts{
		"ALL": {"source": "all"},
		"FED": {"source": "federal"},
		"LOC": {"source": "local"},
		"OTH": {"source": "other-local-and-intermediate"},
		"STA": {"source": "state"},
	}

	finCoopRevenue = map[string]facts{
		"TO": {"source": "all"},
		"LO": {"source": "local"},
		"ST": {"source": "state"},
		"FE": {"source": "federal"},
	}

	finCoopExpenditure = map[string]facts{
		"TO": {"function": "all"},
		"IN": {"function": "instructional"},
		"OP": {"function": "operating-total"},
		"NO": {"function": "non-operating-objects"},
	}

	finTaxRates = map[string]facts{
		"ADP": {"rate": "nominal"},
		"INS": {"rate": "interest-and-sinking"},
		"MNO": {"rate": "maintenance-and-operations"},
		"TOT": {"rate": "total"},
	}

	finPropertyValues = map[string]facts{
		"BUS": {"category": "business"},
		"LAN": {"category": "land"},
		"OIL": {"category": "oil-and-gas"},
		"OTH": {"category": "other"},
		"RES": {"category": "residential"},
	}

	finExclusions = map[string]facts{
		"SSA": {"exclusion": "ssa-and-payments-to-fiscal-agents"},
		"EAD": {"exclusion": "fund-31"},
		"ECA": {"exclusion": "fund-60"},
		"RCA": {"exclusion": "fund-60"},
		"EAE": {"exclusion": "adult-education-programs"},
		"RAD": {"exclusion": "adult-education-programs"},
		"ECP": {"exclusion": "capital-projects"},
		"WLH": {"exclusion": "wealth-equalization-transfers"},
	}

	finExclusionNotes = map[string]string{
		"EAD": "EAD taken to be fund 31",
		"ECA": "ECA taken to be fund 60",
		"RCA": "RCA taken to be fund 60",
		"ECP": "ECP taken to be capital projects",
		"WLH": "WLH taken to be wealth equalization transfers",
	}
)

const exclusionFieldNote = "PFX taken to be expenditure exclusions"

// finShared are the fin transitions identical in every revision.
func finShared() decoder.RuleSet {
	return decoder.RuleSet{
		decoder.Literal("PFFENDT", decoder.Terminal(facts{"field": "fund-balance.ending"})),
		decoder.Literal("PFFENDP", decoder.Terminal(facts{"field": "fund-balance.percent-of-expenditure"})),
		decoder.Literal("PFVTOT", decoder.Terminal(facts{"field": "tax.property-value.total"})),
		decoder.Literal("PFV", decoder.Branch(facts{"field": "tax.property-value"}, decoder.Literals(finPropertyValues))),
		decoder.Literal("PFCR", decoder.Branch(facts{"field": "revenue.cooperative"}, decoder.Literals(finCoopRevenue))),
		decoder.Literal("PFCE", decoder.Branch(facts{"field": "expenditure.cooperative"}, decoder.Literals(finCoopExpenditure))),
	}
}

// fin is the financial grammar used for every year without a revision.
func fin() decoder.RuleSet {
	root := finShared()
	return append(root,
		decoder.Literal("PFE", decoder.Branch(facts{"field": "expenditure"},
			decoder.RuleSet{
				decoder.Literal("OPR", decoder.Terminal(facts{"field": "expenditure.total", "function": "operating"})),
				decoder.Literal("OPO", decoder.Terminal(facts{"field": "expenditure.total", "object": "operating"})),
			},
			decoder.Literals(finFunctions),
			decoder.Literals(finObjectTypes),
			decoder.Literals(finObjects),
		)),
		decoder.Literal("PFP", decoder.Branch(facts{"field": "expenditure"}, decoder.Literals(finPrograms))),
		decoder.Literal("PFR", decoder.Branch(facts{"field": "revenue"}, decoder.Literals(finSources))),
		decoder.Literal("PFT", decoder.Branch(facts{"field": "tax"}, decoder.Literals(finTaxRates))),
		decoder.Literal("PFX", decoder.Branch(facts{"field": "expenditure.exclusion"},
			flag(decoder.Literals(finExclusions), finExclusionNotes),
		).Unconfirmed(exclusionFieldNote)),
	)
}
