package churn

import (
	"math"
	"strconv"
)

type Geography string

const (
	GeographyFrance  Geography = "France"
	GeographyGermany Geography = "Germany"
	GeographySpain   Geography = "Spain"
)

func (g Geography) Valid() bool {
	switch g {
	case GeographyFrance, GeographyGermany, GeographySpain:
		return true
	default:
		return false
	}
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// CustomerProfile is the input to a single prediction. It is a value type:
// edits go through Apply and return a new profile.
type CustomerProfile struct {
	Geography       Geography `json:"Geography"`
	Gender          Gender    `json:"Gender"`
	CreditScore     float64   `json:"CreditScore"`
	Age             float64   `json:"Age"`
	Tenure          float64   `json:"Tenure"`
	Balance         float64   `json:"Balance"`
	NumOfProducts   float64   `json:"NumOfProducts"`
	HasCreditCard   float64   `json:"HasCrCard"`
	IsActiveMember  float64   `json:"IsActiveMember"`
	EstimatedSalary float64   `json:"EstimatedSalary"`
}

// DefaultProfile is the form's initial state.
func DefaultProfile() CustomerProfile {
	return CustomerProfile{
		Geography:       GeographyFrance,
		Gender:          GenderMale,
		CreditScore:     650,
		Age:             40,
		Tenure:          5,
		Balance:         50000,
		NumOfProducts:   2,
		HasCreditCard:   1,
		IsActiveMember:  1,
		EstimatedSalary: 60000,
	}
}

// Get returns the field's current value: float64 for numeric fields, string
// for categorical ones.
func (p CustomerProfile) Get(f Field) (any, bool) {
	if ptr := p.numeric(f); ptr != nil {
		return *ptr, true
	}
	switch f {
	case FieldGeography:
		return string(p.Geography), true
	case FieldGender:
		return string(p.Gender), true
	}
	return nil, false
}

func (p *CustomerProfile) numeric(f Field) *float64 {
	switch f {
	case FieldCreditScore:
		return &p.CreditScore
	case FieldAge:
		return &p.Age
	case FieldTenure:
		return &p.Tenure
	case FieldBalance:
		return &p.Balance
	case FieldNumOfProducts:
		return &p.NumOfProducts
	case FieldHasCreditCard:
		return &p.HasCreditCard
	case FieldIsActiveMember:
		return &p.IsActiveMember
	case FieldEstimatedSalary:
		return &p.EstimatedSalary
	}
	return nil
}

// FormValues renders every field as the text a form input would hold. NaN
// (a cleared numeric input) renders as the empty string.
func (p CustomerProfile) FormValues() map[Field]string {
	out := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		v, _ := p.Get(f)
		switch t := v.(type) {
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				out[f] = ""
			} else {
				out[f] = strconv.FormatFloat(t, 'f', -1, 64)
			}
		case string:
			out[f] = t
		}
	}
	return out
}
