package repository

import (
	"time"

	"github.com/zenstudio/backend/internal/model"
	"github.com/zenstudio/backend/pkg/cpf"
)

// LeadSchema describes trial-class requests.
var LeadSchema = Schema[model.Lead]{
	Collection: model.CollectionLeads,
	Required:   []string{"nome", "email", "telefone"},
	Build: func(f Fields, id string, now time.Time) (model.Lead, []string) {
		var invalid []string
		name := requireString(f, "nome", &invalid)
		email := requireString(f, "email", &invalid)
		phone := requireString(f, "telefone", &invalid)
		modality := optionalString(f, "modalidade", model.DefaultModality, &invalid)
		return model.Lead{
			ID:        id,
			Name:      name,
			Email:     email,
			Phone:     phone,
			Modality:  modality,
			Kind:      model.LeadKindTrialClass,
			CreatedAt: now,
			Status:    model.InitialStatus(model.CollectionLeads),
		}, invalid
	},
	ID:     func(l *model.Lead) string { return l.ID },
	Status: func(l *model.Lead) model.Status { return l.Status },
	Check: func(l *model.Lead) []string {
		return checkStatus(model.CollectionLeads, l.Status)
	},
}

// EnrollmentSchema describes membership sign-ups.
var EnrollmentSchema = Schema[model.Enrollment]{
	Collection: model.CollectionEnrollments,
	Required:   []string{"nome", "email", "telefone", "plano"},
	Build: func(f Fields, id string, now time.Time) (model.Enrollment, []string) {
		var invalid []string
		name := requireString(f, "nome", &invalid)
		email := requireString(f, "email", &invalid)
		phone := requireString(f, "telefone", &invalid)
		plan := model.Plan(requireString(f, "plano", &invalid))
		if plan != "" && !plan.Valid() {
			invalid = append(invalid, "plano")
		}
		doc := optionalString(f, "cpf", "", &invalid)
		if doc != "" && !cpf.Valid(doc) {
			invalid = append(invalid, "cpf")
		}
		return model.Enrollment{
			ID:            id,
			Name:          name,
			Email:         email,
			Phone:         phone,
			CPF:           doc,
			Plan:          plan,
			TermsAccepted: f.truthy("aceite_termos"),
			CreatedAt:     now,
			Status:        model.InitialStatus(model.CollectionEnrollments),
		}, invalid
	},
	ID:     func(e *model.Enrollment) string { return e.ID },
	Status: func(e *model.Enrollment) model.Status { return e.Status },
	Check: func(e *model.Enrollment) []string {
		invalid := checkStatus(model.CollectionEnrollments, e.Status)
		if !e.Plan.Valid() {
			invalid = append(invalid, "plano")
		}
		return invalid
	},
}

// ContactSchema describes contact-form messages.
var ContactSchema = Schema[model.ContactMessage]{
	Collection: model.CollectionContacts,
	Required:   []string{"nome", "email", "mensagem"},
	Build: func(f Fields, id string, now time.Time) (model.ContactMessage, []string) {
		var invalid []string
		name := requireString(f, "nome", &invalid)
		email := requireString(f, "email", &invalid)
		message := requireString(f, "mensagem", &invalid)
		phone := optionalString(f, "telefone", model.DefaultContactPhone, &invalid)
		subject := optionalString(f, "assunto", model.DefaultSubject, &invalid)
		return model.ContactMessage{
			ID:        id,
			Name:      name,
			Email:     email,
			Phone:     phone,
			Subject:   subject,
			Message:   message,
			CreatedAt: now,
			Status:    model.InitialStatus(model.CollectionContacts),
		}, invalid
	},
	ID:     func(m *model.ContactMessage) string { return m.ID },
	Status: func(m *model.ContactMessage) model.Status { return m.Status },
	Check: func(m *model.ContactMessage) []string {
		return checkStatus(model.CollectionContacts, m.Status)
	},
}

func requireString(f Fields, key string, invalid *[]string) string {
	s, ok := f.str(key)
	if !ok {
		*invalid = append(*invalid, key)
	}
	return s
}

// optionalString returns def when the key is absent or empty.
func optionalString(f Fields, key, def string, invalid *[]string) string {
	if !present(f[key]) {
		return def
	}
	return requireString(f, key, invalid)
}

func checkStatus(c model.Collection, s model.Status) []string {
	if model.ValidStatus(c, s) {
		return nil
	}
	return []string{"status"}
}
