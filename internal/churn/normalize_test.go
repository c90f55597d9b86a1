package churn

import (
	"errors"
	"math"
	"testing"
)

func TestApplyNumericFields(t *testing.T) {
	base := DefaultProfile()
	for _, f := range Fields {
		if f.Kind() != KindNumeric {
			continue
		}
		next, err := Apply(base, f, " 3 ")
		if err != nil {
			t.Fatalf("%s: %v", f, err)
		}
		v, _ := next.Get(f)
		if got, ok := v.(float64); !ok || got != 3 {
			t.Fatalf("%s: value=%v (%T)", f, v, v)
		}
		assertOnlyChanged(t, base, next, f)
	}
}

func TestApplyCategoricalFields(t *testing.T) {
	base := DefaultProfile()
	next, err := Apply(base, FieldGeography, "Spain")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v, _ := next.Get(FieldGeography)
	if s, ok := v.(string); !ok || s != "Spain" {
		t.Fatalf("geography=%v (%T)", v, v)
	}
	assertOnlyChanged(t, base, next, FieldGeography)

	// categorical values are passed through untouched; validation happens later
	next, _ = Apply(base, FieldGender, "12")
	if next.Gender != "12" {
		t.Fatalf("gender=%q", next.Gender)
	}
}

func TestApplyEmptyNumericIsNaN(t *testing.T) {
	base := DefaultProfile()
	next, err := Apply(base, FieldBalance, "")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !math.IsNaN(next.Balance) {
		t.Fatalf("balance=%v", next.Balance)
	}
	if base.Balance != 50000 {
		t.Fatalf("input mutated: %v", base.Balance)
	}
	if next.FormValues()[FieldBalance] != "" {
		t.Fatalf("form value=%q", next.FormValues()[FieldBalance])
	}
}

func TestApplyUnknownField(t *testing.T) {
	base := DefaultProfile()
	next, err := Apply(base, Field("Surname"), "x")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err=%v", err)
	}
	if next != base {
		t.Fatalf("profile changed")
	}
}

func TestParseField(t *testing.T) {
	cases := map[string]Field{
		"CreditScore":   FieldCreditScore,
		"creditScore":   FieldCreditScore,
		"hasCreditCard": FieldHasCreditCard,
		"HasCrCard":     FieldHasCreditCard,
		" gender ":      FieldGender,
	}
	for in, want := range cases {
		got, err := ParseField(in)
		if err != nil || got != want {
			t.Fatalf("ParseField(%q)=%q,%v", in, got, err)
		}
	}
	if _, err := ParseField("RowNumber"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err=%v", err)
	}
}

func assertOnlyChanged(t *testing.T, before, after CustomerProfile, changed Field) {
	t.Helper()
	for _, f := range Fields {
		if f == changed {
			continue
		}
		a, _ := before.Get(f)
		b, _ := after.Get(f)
		if a != b {
			t.Fatalf("field %s changed from %v to %v while editing %s", f, a, b, changed)
		}
	}
}
