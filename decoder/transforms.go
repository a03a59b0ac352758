package decoder

import (
	"fmt"
	"strconv"
)

// yearPivot separates 1900s from 2000s in abbreviated years.
const yearPivot = 90

// ParseAbbreviatedYear expands a two- or three-digit year. Values above 90 are
// in the 1900s, everything else in the 2000s: "94" is 1994, "05" is 2005 and
// "013" is 2013.
func ParseAbbreviatedYear(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	if n > yearPivot {
		return 1900 + n, nil
	}
	return 2000 + n, nil
}

// ParseOneDigitGrade decodes single-character grade codes.
func ParseOneDigitGrade(s string) (string, error) {
	switch s {
	case "0":
		return "3-8-and-10", nil
	case "Z":
		return "4-8-and-10", nil
	case "X":
		return "10", nil
	case "K":
		return "kindergarten", nil
	}
	return numericGrade(s)
}

// ParseTwoDigitGrade decodes two-character grade codes.
func ParseTwoDigitGrade(s string) (string, error) {
	switch s {
	case "KG":
		return "kindergarten", nil
	case "ME":
		return "mixed-elementary", nil
	}
	return numericGrade(s)
}

// ParseThreeDigitGrade decodes three-character grade codes. Grades above 12
// are rejected, except the 10-11 sums reported as 311 and 411.
func ParseThreeDigitGrade(s string) (string, error) {
	switch s {
	case "311", "411":
		return "10-11", nil
	}
	g, err := numericGrade(s)
	if err != nil {
		return "", err
	}
	if n, _ := strconv.Atoi(g); n > 12 {
		return "", fmt.Errorf("grade %q out of range", s)
	}
	return g, nil
}

func numericGrade(s string) (string, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid grade %q", s)
	}
	return strconv.Itoa(n), nil
}

// Transforms usable as resolvers.
var (
	AbbreviatedYear Transform = func(s string) (any, error) { return ParseAbbreviatedYear(s) }
	OneDigitGrade   Transform = func(s string) (any, error) { return ParseOneDigitGrade(s) }
	TwoDigitGrade   Transform = func(s string) (any, error) { return ParseTwoDigitGrade(s) }
	ThreeDigitGrade Transform = func(s string) (any, error) { return ParseThreeDigitGrade(s) }

	// Integer decodes the capture as a base-10 integer.
	Integer Transform = func(s string) (any, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", s)
		}
		return n, nil
	}
)

// Constant returns a transform that ignores the capture and yields v.
func Constant(v any) Transform {
	return func(string) (any, error) { return v, nil }
}
