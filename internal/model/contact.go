package model

import "time"

const (
	// DefaultContactPhone is stored when the sender leaves the phone blank.
	DefaultContactPhone = "Não informado"
	// DefaultSubject is stored when the sender picks no subject.
	DefaultSubject = "Contato geral"
)

// ContactMessage represents a message submitted via the contact form.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefone"`
	Subject   string    `json:"assunto"`
	Message   string    `json:"mensagem"`
	CreatedAt time.Time `json:"dataContato"`
	Status    Status    `json:"status"` // "Pendente" | "Respondido"
}
