package churn

import (
	"fmt"
	"strings"
)

// Field names a CustomerProfile attribute by its wire name.
type Field string

const (
	FieldGeography       Field = "Geography"
	FieldGender          Field = "Gender"
	FieldCreditScore     Field = "CreditScore"
	FieldAge             Field = "Age"
	FieldTenure          Field = "Tenure"
	FieldBalance         Field = "Balance"
	FieldNumOfProducts   Field = "NumOfProducts"
	FieldHasCreditCard   Field = "HasCrCard"
	FieldIsActiveMember  Field = "IsActiveMember"
	FieldEstimatedSalary Field = "EstimatedSalary"
)

type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "categorical"
}

// Fields lists every profile field in form order.
var Fields = []Field{
	FieldGeography,
	FieldGender,
	FieldCreditScore,
	FieldAge,
	FieldTenure,
	FieldBalance,
	FieldNumOfProducts,
	FieldHasCreditCard,
	FieldIsActiveMember,
	FieldEstimatedSalary,
}

var fieldKinds = map[Field]Kind{
	FieldGeography:       KindCategorical,
	FieldGender:          KindCategorical,
	FieldCreditScore:     KindNumeric,
	FieldAge:             KindNumeric,
	FieldTenure:          KindNumeric,
	FieldBalance:         KindNumeric,
	FieldNumOfProducts:   KindNumeric,
	FieldHasCreditCard:   KindNumeric,
	FieldIsActiveMember:  KindNumeric,
	FieldEstimatedSalary: KindNumeric,
}

// camelCase aliases accepted from form posts.
var fieldAliases = map[string]Field{
	"geography":       FieldGeography,
	"gender":          FieldGender,
	"creditscore":     FieldCreditScore,
	"age":             FieldAge,
	"tenure":          FieldTenure,
	"balance":         FieldBalance,
	"numofproducts":   FieldNumOfProducts,
	"hascrcard":       FieldHasCreditCard,
	"hascreditcard":   FieldHasCreditCard,
	"isactivemember":  FieldIsActiveMember,
	"estimatedsalary": FieldEstimatedSalary,
}

func (f Field) Kind() Kind { return fieldKinds[f] }

func (f Field) Valid() bool {
	_, ok := fieldKinds[f]
	return ok
}

// ParseField resolves a wire name or its case-insensitive alias.
func ParseField(name string) (Field, error) {
	n := strings.TrimSpace(name)
	if f := Field(n); f.Valid() {
		return f, nil
	}
	if f, ok := fieldAliases[strings.ToLower(n)]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

var labels = map[Field]string{
	FieldGeography:       "Geography",
	FieldGender:          "Gender",
	FieldCreditScore:     "Credit Score",
	FieldAge:             "Age",
	FieldTenure:          "Tenure (Years)",
	FieldBalance:         "Balance ($)",
	FieldNumOfProducts:   "Number of Products",
	FieldHasCreditCard:   "Has Credit Card?",
	FieldIsActiveMember:  "Is Active Member?",
	FieldEstimatedSalary: "Estimated Salary ($)",
}

func (f Field) Label() string { return labels[f] }
