package churn

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrUnknownField = errors.New("unknown profile field")

// Apply returns a copy of p with field set from raw. Numeric fields are parsed
// as float64; an unparsable value (including empty input) becomes NaN and is
// only rejected later by Validate. Categorical fields are stored verbatim.
// p itself is never modified.
func Apply(p CustomerProfile, field Field, raw string) (CustomerProfile, error) {
	if !field.Valid() {
		return p, ErrUnknownField
	}
	next := p
	if ptr := next.numeric(field); ptr != nil {
		*ptr = parseNumber(raw)
		return next, nil
	}
	switch field {
	case FieldGeography:
		next.Geography = Geography(raw)
	case FieldGender:
		next.Gender = Gender(raw)
	}
	return next, nil
}

func parseNumber(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
