package model

import "time"

const (
	// DefaultModality is stored when a trial-class request names no modality.
	DefaultModality = "Não especificado"
	// LeadKindTrialClass tags every lead created from the trial-class form.
	LeadKindTrialClass = "aula_experimental"
)

// Lead is a trial-class request submitted from the public site.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefone"`
	Modality  string    `json:"modalidade"`
	Kind      string    `json:"tipo"`
	CreatedAt time.Time `json:"data_cadastro"`
	Status    Status    `json:"status"` // "novo" | "ativo"
}
