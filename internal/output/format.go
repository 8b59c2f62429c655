// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskdash/internal/service"
	"taskdash/internal/viewmodel"
)

const (
	// OverdueBadge marks overdue tasks.
	OverdueBadge = "OVERDUE"

	// NoDueDate is shown in the due column for tasks without a due date.
	NoDueDate = "-"

	statusWidth = 11 // len("IN PROGRESS")
	dueWidth    = 10 // len("2006-01-02")
)

// Status colors.
var (
	Blue   = lipgloss.Color("#007bff")
	Yellow = lipgloss.Color("#ffc107")
	Green  = lipgloss.Color("#28a745")
	Red    = lipgloss.Color("#dc3545")
	Grey   = lipgloss.Color("#6c757d")
)

// StatusColor returns the display color of a status.
func StatusColor(s service.Status) lipgloss.Color {
	switch s {
	case service.StatusNew:
		return Blue
	case service.StatusInProgress:
		return Yellow
	case service.StatusCompleted:
		return Green
	case service.StatusCancelled:
		return Red
	default:
		return Grey
	}
}

// Styles are the output styles bound to one renderer. Writers that are not
// terminals get plain text.
type Styles struct {
	r       *lipgloss.Renderer
	Header  lipgloss.Style
	Overdue lipgloss.Style
	Faded   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
}

// NewStyles creates styles for w.
func NewStyles(w io.Writer) Styles {
	return StylesFor(lipgloss.NewRenderer(w))
}

// StylesFor creates styles for an existing renderer.
func StylesFor(r *lipgloss.Renderer) Styles {
	return Styles{
		r:       r,
		Header:  r.NewStyle().Bold(true),
		Overdue: r.NewStyle().Bold(true).Foreground(Red),
		Faded:   r.NewStyle().Foreground(Grey),
		Error:   r.NewStyle().Foreground(Red),
		Success: r.NewStyle().Foreground(Green),
	}
}

// Status returns the style of a status.
func (s Styles) Status(status service.Status) lipgloss.Style {
	return s.r.NewStyle().Foreground(StatusColor(status))
}

// StatusCell renders a status padded to the status column width.
func (s Styles) StatusCell(status service.Status) string {
	return s.Status(status).Render(fmt.Sprintf("%-*s", statusWidth, status.Label()))
}

// StatsLine renders the statistics line.
// Format: "Total: 5  NEW: 2  IN PROGRESS: 1  ...  Overdue: 1"
func (s Styles) StatsLine(stats viewmodel.Stats) string {
	parts := []string{fmt.Sprintf("Total: %d", stats.Total)}
	for _, sc := range stats.ByStatus {
		parts = append(parts, s.Status(sc.Status).Render(fmt.Sprintf("%s: %d", sc.Status.Label(), sc.Count)))
	}
	overdue := fmt.Sprintf("Overdue: %d", stats.Overdue)
	if stats.Overdue > 0 {
		overdue = s.Overdue.Render(overdue)
	}
	parts = append(parts, overdue)
	return strings.Join(parts, "  ")
}

// HeaderRow renders the column header of the task table.
func (s Styles) HeaderRow() string {
	return s.Header.Render(fmt.Sprintf("%4s  %-*s  %-*s  %s", "#", statusWidth, "STATUS", dueWidth, "DUE", "TITLE"))
}

// Row renders one table row.
// Format: "{N:>4}  {STATUS:<11}  {DUE:<10}  {TITLE}[  OVERDUE]"
func (s Styles) Row(task service.Task, now time.Time) string {
	return fmt.Sprintf("%4d  %s  %-*s  %s%s",
		task.Ordinal(),
		s.StatusCell(task.Status),
		dueWidth, dueCell(task),
		normalizeTitle(task.Title),
		badge(s, task, now))
}

// FormatStats formats the statistics line.
func FormatStats(w io.Writer, stats viewmodel.Stats) {
	fmt.Fprintln(w, NewStyles(w).StatsLine(stats))
}

// FormatTable formats the header and one row per task, or "no tasks found".
func FormatTable(w io.Writer, tasks []service.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks found")
		return
	}
	st := NewStyles(w)
	fmt.Fprintln(w, st.HeaderRow())
	for _, t := range tasks {
		fmt.Fprintln(w, st.Row(t, now))
	}
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task service.Task, now time.Time) {
	st := NewStyles(w)
	fmt.Fprintf(w, "ID:          %d\n", task.ID)
	if task.Tasknum != nil {
		fmt.Fprintf(w, "Number:      %d\n", *task.Tasknum)
	}
	fmt.Fprintf(w, "Title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "Status:      %s\n", st.Status(task.Status).Render(task.Status.Label()))
	if task.DueDate != "" {
		fmt.Fprintf(w, "Due:         %s%s\n", task.DueDate, badge(st, task, now))
	}
	if strings.TrimSpace(task.Description) != "" {
		fmt.Fprintf(w, "Description: %s\n", task.Description)
	}
}

// FormatStatuses formats one status per line.
func FormatStatuses(w io.Writer, statuses []service.Status) {
	st := NewStyles(w)
	for _, s := range statuses {
		fmt.Fprintln(w, st.Status(s).Render(string(s)))
	}
}

func dueCell(task service.Task) string {
	if task.DueDate == "" {
		return NoDueDate
	}
	return task.DueDay()
}

func badge(st Styles, task service.Task, now time.Time) string {
	if !viewmodel.IsOverdue(task, now) {
		return ""
	}
	return "  " + st.Overdue.Render(OverdueBadge)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
