// Package grammar declares the column code grammars of every AEIS dataset kind
// and registers them with the decoder's default registry.
package grammar

import "github.com/c360studio/semaeis/decoder"

type facts = decoder.Facts

// groupCodes are the one-character student group codes shared by most kinds.
var groupCodes = decoder.Lookup{
	// Groups
	"A": facts{"group": "all"},
	"E": facts{"group": "economically-disadvantaged"},
	"L": facts{"group": "limited-english-proficient"},
	"R": facts{"group": "at-risk"},
	"S": facts{"group": "special-education"},
	// Bilingual programs
	"5": facts{"group": "lep-with-services"},
	"C": facts{"group": "esl"},
	"J": facts{"group": "transitional-bilingual-early-exit"},
	"K": facts{"group": "transitional-bilingual-late-exit"},
	"Q": facts{"group": "dual-language-immersion-two-way"},
	"T": facts{"group": "dual-language-immersion-one-way"},
	"U": facts{"group": "bilingual"},
	"X": facts{"group": "esl-content-based"},
	"Y": facts{"group": "esl-pullout"},
	"Z": facts{"group": "lep-no-services"},
	// Genders
	"F": facts{"gender": "female"},
	"M": facts{"gender": "male"},
	// Races
	"2": facts{"race": "two-or-more-races"},
	"3": facts{"race": "asian"},
	"4": facts{"race": "pacific-islander"},
	"B": facts{"race": "black"},
	"H": facts{"race": "hispanic"},
	"I": facts{"race": "native-american"},
	"O": facts{"race": "other"},
	"W": facts{"race": "white"},
	// 2013 testing groups
	"1": facts{"group": "cte.elective"},
	"V": facts{"group": "cte"},
	"D": facts{"group": "non-cte"},
	"6": facts{"group": "non-special-ed"},
	"7": facts{"group": "not-at-risk"},
	"8": facts{"group": "non-ell"},
	"9": facts{"group": "non-migrant"},
	"G": facts{"group": "migrant"},
	"N": facts{"group": "non-educationally-disadvantaged"},
	"P": facts{"group": "second-year-monitored-ell"},
}

// yearSet is a decision point for a two-digit year followed by children.
func yearSet(children ...decoder.RuleSet) decoder.RuleSet {
	return decoder.RuleSet{
		decoder.Pattern(`(?P<year>\d\d)`, decoder.Capture(decoder.Resolvers{"year": decoder.AbbreviatedYear}, children...)),
	}
}

// flag marks literal entries of set whose mapping is unconfirmed.
func flag(set decoder.RuleSet, notes map[string]string) decoder.RuleSet {
	for i := range set {
		if note, ok := notes[set[i].On.Text]; ok {
			set[i].Rule.Note = note
		}
	}
	return set
}
