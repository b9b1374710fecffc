// Package console renders the admin dashboard to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zenstudio/backend/internal/client"
	"github.com/zenstudio/backend/internal/model"
)

// Column widths for the record tables. Wider values are truncated with "…".
const (
	columnWidthID     = 10
	columnWidthName   = 22
	columnWidthEmail  = 26
	columnWidthDetail = 18
	columnWidthDate   = 17
	columnWidthStatus = 11
)

type theme struct {
	title    lipgloss.Style
	header   lipgloss.Style
	stat     lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	offline  lipgloss.Style
	faint    lipgloss.Style
	statuses map[model.Status]lipgloss.Style
}

func newTheme(r *lipgloss.Renderer) theme {
	positive := r.NewStyle().Foreground(lipgloss.Color("42"))
	pending := r.NewStyle().Foreground(lipgloss.Color("214"))
	idle := r.NewStyle().Foreground(lipgloss.Color("245"))
	return theme{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		header:  r.NewStyle().Bold(true).Underline(true),
		stat:    r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		offline: r.NewStyle().Foreground(lipgloss.Color("196")).Italic(true),
		faint:   r.NewStyle().Faint(true),
		statuses: map[model.Status]lipgloss.Style{
			model.LeadNew:            pending,
			model.LeadActive:         positive,
			model.EnrollmentActive:   positive,
			model.EnrollmentInactive: idle,
			model.ContactPending:     pending,
			model.ContactAnswered:    positive,
		},
	}
}

// Renderer writes each client.View to w, one full screen per call.
type Renderer struct {
	mu    sync.Mutex
	out   io.Writer
	theme theme
}

// New creates a Renderer. With color false output carries no escape codes.
func New(w io.Writer, color bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	if !color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{out: w, theme: newTheme(lr)}
}

// Render implements client.Renderer.
func (r *Renderer) Render(v client.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.Format(v))
}

// Format lays out the view as text.
func (r *Renderer) Format(v client.View) string {
	t := r.theme
	var b strings.Builder

	b.WriteString(t.title.Render("Zen Studio · Painel Administrativo"))
	b.WriteString("  ")
	b.WriteString(t.faint.Render(v.UpdatedAt.Format("02/01/2006 15:04")))
	b.WriteString("\n")

	if v.Offline {
		b.WriteString(t.offline.Render("modo offline: sem conexão com o servidor"))
		b.WriteString("\n")
	}
	if v.Notice != nil {
		style := t.success
		if v.Notice.Level == client.NoticeError {
			style = t.failure
		}
		b.WriteString(style.Render(v.Notice.Text))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	stats := []string{
		"Matrículas ativas: " + t.stat.Render(fmt.Sprint(v.Stats.ActiveEnrollments)),
		"Receita estimada: " + t.stat.Render(FormatBRL(v.Stats.EstimatedRevenue)),
		"Aulas experimentais: " + t.stat.Render(fmt.Sprint(v.Stats.Leads)),
		"Contatos: " + t.stat.Render(fmt.Sprint(v.Stats.Contacts)),
	}
	b.WriteString(strings.Join(stats, "   "))
	b.WriteString("\n\n")

	b.WriteString(r.table("Aulas experimentais", []string{"ID", "Nome", "E-mail", "Modalidade", "Data", "Status"}, leadRows(v.Leads)))
	b.WriteString(r.table("Matrículas", []string{"ID", "Nome", "E-mail", "Plano", "Data", "Status"}, enrollmentRows(v.Enrollments)))
	b.WriteString(r.table("Contatos", []string{"ID", "Nome", "E-mail", "Assunto", "Data", "Status"}, contactRows(v.Contacts)))

	return strings.TrimRight(b.String(), "\n")
}

type row struct {
	cells  [5]string
	status model.Status
}

var widths = [6]int{columnWidthID, columnWidthName, columnWidthEmail, columnWidthDetail, columnWidthDate, columnWidthStatus}

func (r *Renderer) table(title string, headers []string, rows []row) string {
	t := r.theme
	var b strings.Builder
	b.WriteString(t.title.Render(fmt.Sprintf("%s (%d)", title, len(rows))))
	b.WriteString("\n")

	var hdr []string
	for i, h := range headers {
		hdr = append(hdr, t.header.Render(pad(h, widths[i])))
	}
	b.WriteString(strings.Join(hdr, " "))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(t.faint.Render("nenhum registro"))
		b.WriteString("\n\n")
		return b.String()
	}
	for _, rw := range rows {
		cols := make([]string, 0, len(widths))
		for i, c := range rw.cells {
			cols = append(cols, pad(c, widths[i]))
		}
		style, ok := t.statuses[rw.status]
		if !ok {
			style = t.faint
		}
		cols = append(cols, style.Render(pad(string(rw.status), columnWidthStatus)))
		b.WriteString(strings.Join(cols, " "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func leadRows(leads []model.Lead) []row {
	rows := make([]row, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, row{
			cells:  [5]string{shortID(l.ID), l.Name, l.Email, l.Modality, formatDate(l.CreatedAt)},
			status: l.Status,
		})
	}
	return rows
}

func enrollmentRows(enrollments []model.Enrollment) []row {
	rows := make([]row, 0, len(enrollments))
	for _, e := range enrollments {
		rows = append(rows, row{
			cells:  [5]string{shortID(e.ID), e.Name, e.Email, string(e.Plan), formatDate(e.CreatedAt)},
			status: e.Status,
		})
	}
	return rows
}

func contactRows(contacts []model.ContactMessage) []row {
	rows := make([]row, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, row{
			cells:  [5]string{shortID(c.ID), c.Name, c.Email, c.Subject, formatDate(c.CreatedAt)},
			status: c.Status,
		})
	}
	return rows
}

// shortID keeps the leading segment of a UUID, which is enough to pick a
// record on the command line.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "Data inválida"
	}
	return t.Local().Format("02/01/2006 15:04")
}

// pad fits s into exactly width terminal cells.
func pad(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

// FormatBRL renders an amount the way Brazilian Portuguese does,
// e.g. 1234.5 -> "R$ 1.234,50".
func FormatBRL(v float64) string {
	cents := int64(v*100 + 0.5)
	if v < 0 {
		cents = int64(v*100 - 0.5)
	}
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprint(cents / 100)
	var grouped []string
	for len(whole) > 3 {
		grouped = append([]string{whole[len(whole)-3:]}, grouped...)
		whole = whole[:len(whole)-3]
	}
	grouped = append([]string{whole}, grouped...)
	return fmt.Sprintf("%sR$ %s,%02d", sign, strings.Join(grouped, "."), cents%100)
}
