package model

// Dataset is the whole persisted state: all three collections, stored and
// replaced as one unit.
type Dataset struct {
	Leads       []Lead           `json:"leads"`
	Enrollments []Enrollment     `json:"matriculas"`
	Contacts    []ContactMessage `json:"contatos"`
}

// NewDataset returns a dataset with three empty collections.
func NewDataset() *Dataset {
	return &Dataset{
		Leads:       []Lead{},
		Enrollments: []Enrollment{},
		Contacts:    []ContactMessage{},
	}
}

// Normalize replaces missing collections with empty ones so the dataset
// always serializes as three arrays.
func (d *Dataset) Normalize() {
	if d.Leads == nil {
		d.Leads = []Lead{}
	}
	if d.Enrollments == nil {
		d.Enrollments = []Enrollment{}
	}
	if d.Contacts == nil {
		d.Contacts = []ContactMessage{}
	}
}

// Stats are the figures shown on top of the admin dashboard.
type Stats struct {
	Leads             int     `json:"leads"`
	ActiveEnrollments int     `json:"active_enrollments"`
	Contacts          int     `json:"contacts"`
	EstimatedRevenue  float64 `json:"estimated_revenue"`
}

// ComputeStats derives dashboard figures. Revenue counts the monthly fee of
// every active enrollment.
func ComputeStats(leads []Lead, enrollments []Enrollment, contacts []ContactMessage) Stats {
	s := Stats{Leads: len(leads), Contacts: len(contacts)}
	for _, e := range enrollments {
		if e.Status != EnrollmentActive {
			continue
		}
		s.ActiveEnrollments++
		s.EstimatedRevenue += e.Plan.MonthlyPrice()
	}
	return s
}
