package decoder

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, root RuleSet) *Tree {
	t.Helper()
	tree, err := Compile("test", 0, root)
	require.NoError(t, err)
	return tree
}

func TestLiteralWinsOverPattern(t *testing.T) {
	// The pattern is declared first and would also match "ALL".
	tree := mustCompile(t, RuleSet{
		Pattern(`(?P<group>\w\w\w)`, Capture(Resolvers{"group": Constant("pattern")})),
		Literal("ALL", Branch(Facts{"group": "all"}, RuleSet{
			Literal("X", Terminal(Facts{"test": "x"})),
		})),
	})

	steps, err := tree.Decode("ALLX")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "ALL", steps[0].Evidence)
	assert.Equal(t, Facts{"group": "all"}, steps[0].Facts)
	assert.Equal(t, "X", steps[1].Evidence)
}

func TestDeclarationOrderWithinKind(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Literal("PFVTOT", Terminal(Facts{"field": "tax.property-value.total"})),
		Literal("PFV", Branch(Facts{"field": "tax.property-value"}, RuleSet{
			Literal("TOT", Terminal(Facts{"category": "total"})),
		})),
	})

	steps, err := tree.Decode("PFVTOT")
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "tax.property-value.total", steps[0].Facts["field"])
}

func TestGroupsVisitedInPatternOrder(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Pattern(`(?P<test>\w)(?P<year>\d\d)`, Capture(Resolvers{
			"year": AbbreviatedYear,
			"test": Lookup{"M": Value("math")},
		})),
	})

	steps, err := tree.Decode("M94")
	require.NoError(t, err)
	want := []Step{
		{Evidence: "M", Offset: 0, Facts: Facts{"test": "math"}},
		{Evidence: "94", Offset: 1, Facts: Facts{"year": 1994}},
	}
	assert.Empty(t, cmp.Diff(want, steps))
}

func TestNonParticipatingGroupsSkipped(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Pattern(`(?P<group>G|R)((?P<grade>\d\d)|(?P<code>PK|KN))`, Capture(Resolvers{
			"group": Lookup{"G": Facts{}, "R": Facts{"program": "regular"}},
			"grade": Integer,
			"code":  Lookup{"PK": Facts{"grade": "pre-kindergarten"}, "KN": Facts{"grade": "kindergarten"}},
		})),
	})

	steps, err := tree.Decode("G07")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, Facts{"grade": 7}, steps[1].Facts)

	steps, err = tree.Decode("RPK")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, Facts{"program": "regular"}, steps[0].Facts)
	assert.Equal(t, Facts{"grade": "pre-kindergarten"}, steps[1].Facts)
}

func TestUngroupedPatternTextIsEvidence(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Pattern(`PF(?P<fund>A|G)-`, Capture(Resolvers{
			"fund": Lookup{"A": Facts{"fund": "all"}, "G": Facts{"fund": "general"}},
		})),
	})

	steps, err := tree.Decode("PFG-")
	require.NoError(t, err)
	require.NoError(t, VerifyEvidence("PFG-", steps))
	require.Len(t, steps, 3)
	assert.Equal(t, "PF", steps[0].Evidence)
	assert.Empty(t, steps[0].Facts)
	assert.Equal(t, Facts{"fund": "general"}, steps[1].Facts)
	assert.Equal(t, "-", steps[2].Evidence)
}

func TestUnresolvedCapture(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Pattern(`(?P<group>\w)(?P<field>\w\w\w)`, Capture(Resolvers{
			"group": Lookup{"A": Facts{"group": "all"}},
			"field": Lookup{"PID": Facts{"field": "pid-error"}},
		})),
	})

	_, err := tree.Decode("AXYZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedCapture))
	assert.True(t, errors.Is(err, ErrUnparsedRemainder))

	de, ok := AsDecodeError(err)
	require.True(t, ok)
	assert.Equal(t, 1, de.Offset)
	assert.Equal(t, "XYZ", de.Remainder)
	assert.Equal(t, "field", de.Group)
	assert.Equal(t, Facts{"group": "all"}, de.Partial)
}

func TestTerminalRuleLeavesTrailingText(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Literal("AB", Terminal(Facts{"field": "ab"})),
	})

	_, err := tree.Decode("ABC")
	require.Error(t, err)
	de, ok := AsDecodeError(err)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrUnparsedRemainder)
	assert.Equal(t, "C", de.Remainder)
	assert.Equal(t, 2, de.Offset)
	assert.Equal(t, Facts{"field": "ab"}, de.Partial)
}

func TestChildSetsAreConcatenated(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Literal("PFE", Branch(Facts{"field": "expenditure"},
			RuleSet{Literal("OPR", Terminal(Facts{"function": "operating"}))},
			RuleSet{Literal("PAY", Terminal(Facts{"object": "payroll"}))},
		)),
	})

	for code, key := range map[string]string{"PFEOPR": "function", "PFEPAY": "object"} {
		steps, err := tree.Decode(code)
		require.NoError(t, err, code)
		assert.Contains(t, mergeSteps(steps), key)
	}
}

func TestUnconfirmedNotes(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Literal("PFX", Branch(Facts{"field": "expenditure.exclusion"}, RuleSet{
			Pattern(`(?P<exclusion>\w\w\w)`, Capture(Resolvers{
				"exclusion": Lookup{
					"SSA": Facts{"exclusion": "ssa"},
					"EAD": Unconfirmed(Facts{"exclusion": "fund-31"}, "EAD may not be fund 31"),
				},
			})),
		}).Unconfirmed("exclusion field name")),
	})

	steps, err := tree.Decode("PFXEAD")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "exclusion field name", steps[0].Note)
	assert.Equal(t, "EAD may not be fund 31", steps[1].Note)
	assert.Equal(t, Facts{"exclusion": "fund-31"}, steps[1].Facts)

	steps, err = tree.Decode("PFXSSA")
	require.NoError(t, err)
	assert.Empty(t, steps[1].Note)
}

func TestDecodeIsDeterministic(t *testing.T) {
	tree := mustCompile(t, RuleSet{
		Pattern(`(?P<group>\w)`, Capture(Resolvers{"group": Lookup{"A": Facts{"group": "all"}, "F": Facts{"gender": "female"}}},
			RuleSet{Pattern(`(?P<year>\d\d)`, Capture(Resolvers{"year": AbbreviatedYear}))},
		)),
	})

	first, err := tree.Decode("F05")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := tree.Decode("F05")
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("decode %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestStepsDoNotAliasTree(t *testing.T) {
	tree := mustCompile(t, RuleSet{Literal("A", Terminal(Facts{"group": "all"}))})

	steps, err := tree.Decode("A")
	require.NoError(t, err)
	steps[0].Facts["group"] = "mutated"

	again, err := tree.Decode("A")
	require.NoError(t, err)
	assert.Equal(t, "all", again[0].Facts["group"])
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		root RuleSet
	}{
		{"invalid regexp", RuleSet{Pattern(`(?P<x>\w`, Capture(Resolvers{"x": Integer}))}},
		{"zero length pattern", RuleSet{Pattern(`(?P<x>\d*)`, Capture(Resolvers{"x": Integer}))}},
		{"empty literal", RuleSet{Literal("", Terminal(Facts{}))}},
		{"group without resolver", RuleSet{Pattern(`(?P<x>\d)(?P<y>\d)`, Capture(Resolvers{"x": Integer}))}},
		{"resolver without group", RuleSet{Pattern(`(?P<x>\d)`, Capture(Resolvers{"x": Integer, "y": Integer}))}},
		{"facts and resolvers", RuleSet{Pattern(`(?P<x>\d)`, Rule{Facts: Facts{"a": "b"}, Resolvers: Resolvers{"x": Integer}})}},
		{"literal with resolvers", RuleSet{Literal("A", Capture(Resolvers{"x": Integer}))}},
		{"nested invalid", RuleSet{Literal("A", Branch(Facts{}, RuleSet{Pattern(`[`, Terminal(Facts{}))}))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("test", 0, tt.root)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidGrammar)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestVerifyEvidence(t *testing.T) {
	ok := []Step{{Evidence: "C", Offset: 0}, {Evidence: "XY", Offset: 1}}
	assert.NoError(t, VerifyEvidence("CXY", ok))

	gap := []Step{{Evidence: "C", Offset: 0}, {Evidence: "Y", Offset: 2}}
	assert.ErrorIs(t, VerifyEvidence("CXY", gap), ErrInvariant)

	double := []Step{{Evidence: "CX", Offset: 0}, {Evidence: "X", Offset: 1}, {Evidence: "Y", Offset: 2}}
	assert.ErrorIs(t, VerifyEvidence("CXY", double), ErrInvariant)

	short := []Step{{Evidence: "C", Offset: 0}}
	assert.ErrorIs(t, VerifyEvidence("CXY", short), ErrInvariant)
}
