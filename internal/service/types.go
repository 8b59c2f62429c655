// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is a task lifecycle state as reported by the backend.
type Status string

// Statuses observed on the backend. The authoritative set comes from
// Service.ListStatuses.
const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// DefaultStatuses is used until the backend has supplied its own set.
var DefaultStatuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusCancelled}

// Label returns the status for display, e.g. "IN PROGRESS".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

var (
	// ErrNotFound is matched by errors for missing tasks.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTask is returned when a task fails client-side validation.
	ErrInvalidTask = errors.New("invalid task")
)

// Task represents a single task record.
type Task struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status"`
	DueDate     string `json:"dueDate,omitempty"`
	Tasknum     *int   `json:"tasknum,omitempty"`
}

// dueLayouts are the date formats accepted for DueDate, most specific first.
var dueLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateOnly,
}

// Due parses DueDate. ok is false when the task has no usable due date.
// Date-times without a zone are read in the local zone.
func (t Task) Due() (due time.Time, ok bool) {
	s := strings.TrimSpace(t.DueDate)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dueLayouts {
		if d, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// dateOnly is the layout of a due date without a time of day.
const dateOnly = "2006-01-02"

// NormalizeDue returns due in the form the backend stores: a local
// date-time. A bare date becomes midnight of that day; other accepted
// layouts are returned trimmed but otherwise unchanged. ok is false when due
// is not a date in any accepted layout.
func NormalizeDue(due string) (normalized string, ok bool) {
	due = strings.TrimSpace(due)
	if due == "" {
		return "", true
	}
	if d, err := time.ParseInLocation(dateOnly, due, time.Local); err == nil {
		return d.Format("2006-01-02T15:04:05"), true
	}
	if _, ok := (Task{DueDate: due}).Due(); !ok {
		return "", false
	}
	return due, true
}

// DueDay returns the YYYY-MM-DD prefix of DueDate, or all of it when shorter.
func (t Task) DueDay() string {
	if len(t.DueDate) < 10 {
		return t.DueDate
	}
	return t.DueDate[:10]
}

// Ordinal is the number shown to users: tasknum when set, otherwise id.
func (t Task) Ordinal() int64 {
	if t.Tasknum != nil && *t.Tasknum != 0 {
		return int64(*t.Tasknum)
	}
	return t.ID
}

// Validate checks the fields the backend requires on create and update.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if t.Status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidTask)
	}
	return nil
}

// SearchFilters narrows SearchTasks. Empty fields are not applied.
type SearchFilters struct {
	Title   string
	Status  Status
	DueDate string // YYYY-MM-DD
}

// IsEmpty reports whether no filter is set.
func (f SearchFilters) IsEmpty() bool {
	return f.Title == "" && f.Status == "" && f.DueDate == ""
}

// Match applies the filters to a task the way the backend search does:
// case-insensitive title substring, exact status, exact due day.
func (f SearchFilters) Match(t Task) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.DueDate != "" && t.DueDay() != f.DueDate {
		return false
	}
	return true
}

// SearchSource tells where search results came from.
type SearchSource int

const (
	// SourceServer means the backend search endpoint answered.
	SourceServer SearchSource = iota
	// SourceLocalFallback means the full list was filtered client-side.
	SourceLocalFallback
)

func (s SearchSource) String() string {
	switch s {
	case SourceServer:
		return "server"
	case SourceLocalFallback:
		return "local-fallback"
	default:
		return "unknown"
	}
}

// SearchResult is the outcome of Service.SearchTasks.
type SearchResult struct {
	Tasks  []Task
	Source SearchSource
	// Cause is the server search failure when Source is SourceLocalFallback.
	Cause error
}

// Degraded reports whether the server search failed and results were
// filtered locally.
func (r SearchResult) Degraded() bool {
	return r.Source == SourceLocalFallback
}
