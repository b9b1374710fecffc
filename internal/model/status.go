package model

// Status is a record's triage state. Each collection has its own closed
// two-value enumeration; the first value is the initial status.
type Status string

const (
	LeadNew    Status = "novo"
	LeadActive Status = "ativo"

	EnrollmentActive   Status = "ativa"
	EnrollmentInactive Status = "inativa"

	ContactPending  Status = "Pendente"
	ContactAnswered Status = "Respondido"
)

var statusPairs = map[Collection][2]Status{
	CollectionLeads:       {LeadNew, LeadActive},
	CollectionEnrollments: {EnrollmentActive, EnrollmentInactive},
	CollectionContacts:    {ContactPending, ContactAnswered},
}

// InitialStatus returns the status assigned to new records of c.
func InitialStatus(c Collection) Status {
	return statusPairs[c][0]
}

// Statuses returns the allowed statuses of c.
func Statuses(c Collection) []Status {
	pair, ok := statusPairs[c]
	if !ok {
		return nil
	}
	return []Status{pair[0], pair[1]}
}

// ValidStatus reports whether s belongs to c's enumeration.
func ValidStatus(c Collection, s Status) bool {
	pair, ok := statusPairs[c]
	return ok && (s == pair[0] || s == pair[1])
}

// ToggleStatus returns the opposite of current within c's enumeration.
// Anything other than the initial status toggles back to the initial one.
func ToggleStatus(c Collection, current Status) Status {
	pair := statusPairs[c]
	if current == pair[0] {
		return pair[1]
	}
	return pair[0]
}
