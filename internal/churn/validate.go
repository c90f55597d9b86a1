package churn

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidProfile = errors.New("invalid customer profile")

type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the pre-submit validation result. A nil or empty value means
// the profile may be sent.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return ErrInvalidProfile.Error() + ": " + strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrInvalidProfile }

type numericRule struct {
	field   Field
	min     float64
	max     float64
	integer bool
}

var numericRules = []numericRule{
	{FieldCreditScore, 300, 900, false},
	{FieldAge, 1, math.Inf(1), true},
	{FieldTenure, 0, math.Inf(1), true},
	{FieldBalance, 0, math.Inf(1), false},
	{FieldNumOfProducts, 1, 4, true},
	{FieldHasCreditCard, 0, 1, true},
	{FieldIsActiveMember, 0, 1, true},
	{FieldEstimatedSalary, 0, math.Inf(1), false},
}

// Validate checks every field for finiteness and domain membership.
func Validate(p CustomerProfile) FieldErrors {
	var errs FieldErrors
	if !p.Geography.Valid() {
		errs = append(errs, FieldError{FieldGeography, "must be one of France, Germany, Spain"})
	}
	if !p.Gender.Valid() {
		errs = append(errs, FieldError{FieldGender, "must be Male or Female"})
	}
	for _, r := range numericRules {
		v := *p.numeric(r.field)
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			errs = append(errs, FieldError{r.field, "must be a number"})
		case r.integer && v != math.Trunc(v):
			errs = append(errs, FieldError{r.field, "must be a whole number"})
		case v < r.min || v > r.max:
			errs = append(errs, FieldError{r.field, rangeMessage(r)})
		}
	}
	return errs
}

func rangeMessage(r numericRule) string {
	if math.IsInf(r.max, 1) {
		return fmt.Sprintf("must be at least %g", r.min)
	}
	return fmt.Sprintf("must be between %g and %g", r.min, r.max)
}
