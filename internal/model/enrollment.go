package model

import "time"

// Plan is the membership plan chosen at enrollment.
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
	PlanZen     Plan = "zen"
)

var planPrices = map[Plan]float64{
	PlanBasic:   89.90,
	PlanPremium: 149.90,
	PlanZen:     119.90,
}

// Valid reports whether p is one of the offered plans.
func (p Plan) Valid() bool {
	_, ok := planPrices[p]
	return ok
}

// MonthlyPrice returns the monthly fee in BRL, or zero for unknown plans.
func (p Plan) MonthlyPrice() float64 {
	return planPrices[p]
}

// Enrollment is a membership sign-up.
type Enrollment struct {
	ID            string    `json:"id"`
	Name          string    `json:"nome"`
	Email         string    `json:"email"`
	Phone         string    `json:"telefone"`
	CPF           string    `json:"cpf,omitempty"`
	Plan          Plan      `json:"plano"`
	TermsAccepted bool      `json:"aceite_termos"`
	CreatedAt     time.Time `json:"data_cadastro"`
	Status        Status    `json:"status"` // "ativa" | "inativa"
}
