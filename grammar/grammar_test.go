package grammar

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/semaeis/decoder"
)

type goldenCase struct {
	Kind        string         `yaml:"kind"`
	Year        int            `yaml:"year"`
	Code        string         `yaml:"code"`
	Revision    int            `yaml:"revision"`
	Unconfirmed int            `yaml:"unconfirmed"`
	Facts       map[string]any `yaml:"facts"`
}

func loadGolden(t *testing.T) []goldenCase {
	t.Helper()
	data, err := os.ReadFile("testdata/golden.yaml")
	require.NoError(t, err)

	var cases []goldenCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)
	return cases
}

func TestGolden(t *testing.T) {
	p := decoder.NewPipeline(nil)

	for _, tc := range loadGolden(t) {
		t.Run(fmt.Sprintf("%s/%d/%s", tc.Kind, tc.Year, tc.Code), func(t *testing.T) {
			rec, err := p.Decode(tc.Kind, tc.Year, tc.Code)
			require.NoError(t, err)

			assert.Equal(t, decoder.Facts(tc.Facts), rec.Facts)
			assert.Equal(t, tc.Code, rec.Evidence())
			assert.Equal(t, tc.Revision, rec.Revision)
			assert.Len(t, rec.Unconfirmed(), tc.Unconfirmed)
			assert.NoError(t, decoder.VerifyEvidence(tc.Code, rec.Steps))
		})
	}
}

func TestFinFallsBackToBaseGrammar(t *testing.T) {
	p := decoder.NewPipeline(nil)

	for _, year := range []int{2011, 2015} {
		rec, err := p.Decode("fin", year, "DPFEINSP")
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Revision, "year %d", year)
		assert.Equal(t, "instruction", rec.Facts["function"])
	}

	// The fund letter only exists in the 2012 revision.
	_, err := p.Decode("fin", 2015, "DPFEAINSP")
	assert.ErrorIs(t, err, decoder.ErrUnparsedRemainder)
}

func TestParticipationOnlyIn2013(t *testing.T) {
	p := decoder.NewPipeline(nil)

	_, err := p.Decode("part1", 2014, "CA00A00T013R")
	require.Error(t, err)
	assert.ErrorIs(t, err, decoder.ErrNoGrammar)
	assert.True(t, decoder.IsConfigError(err))
}

func TestDecodeFailures(t *testing.T) {
	p := decoder.NewPipeline(nil)

	tests := []struct {
		kind      string
		year      int
		code      string
		err       error
		offset    int
		remainder string
	}{
		{"taks", 2008, "CA013TM08", decoder.ErrUnresolvedCapture, 2, "013TM08"},
		{"othr", 1994, "CA0ZZ94", decoder.ErrUnparsedRemainder, 2, "0ZZ94"},
		{"cad", 2010, "CAXYZ10", decoder.ErrUnresolvedCapture, 2, "XYZ10"},
		{"comp", 2008, "XAGC408", decoder.ErrUnparsedRemainder, 0, "XAGC408"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := p.Decode(tt.kind, tt.year, tt.code)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			de, ok := decoder.AsDecodeError(err)
			require.True(t, ok)
			assert.Equal(t, tt.offset, de.Offset)
			assert.Equal(t, tt.remainder, de.Remainder)
		})
	}
}

func TestRegisterIntoFreshRegistry(t *testing.T) {
	r := decoder.NewRegistry()
	require.NoError(t, Register(r))

	assert.Len(t, r.Grammars(), len(baseGrammars)+len(revisions))
	for _, kind := range Kinds() {
		assert.True(t, r.Has(kind, 2013), kind)
	}

	// A second registration collides with the first.
	assert.ErrorIs(t, Register(r), decoder.ErrInvalidGrammar)
}

func TestKindsSorted(t *testing.T) {
	kinds := Kinds()
	assert.Contains(t, kinds, "part1")
	assert.Contains(t, kinds, "fin")
	assert.IsNonDecreasing(t, kinds)
}
