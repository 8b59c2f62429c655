package viewmodel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"taskdash/internal/service"
)

// AllStatuses is the status filter that shows every task.
const AllStatuses = "all"

// SortField names a task field to sort by.
type SortField string

const (
	SortDueDate     SortField = "dueDate"
	SortTitle       SortField = "title"
	SortDescription SortField = "description"
	SortStatus      SortField = "status"
	SortID          SortField = "id"
	SortTasknum     SortField = "tasknum"
)

// SortFields lists the accepted sort fields.
var SortFields = []SortField{SortDueDate, SortTitle, SortDescription, SortStatus, SortID, SortTasknum}

// ParseSortField accepts a field name case-insensitively; "due" is short for dueDate.
func ParseSortField(s string) (SortField, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "due" {
		return SortDueDate, nil
	}
	for _, f := range SortFields {
		if strings.ToLower(string(f)) == key {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field: %s", s)
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Sort is the active sort.
type Sort struct {
	Field     SortField
	Direction Direction
}

// Filter is the active filter.
type Filter struct {
	// Status is AllStatuses or one status.
	Status string
	// Search matches title or description, case-insensitively.
	Search string
}

// Apply filters and sorts tasks. The input is not modified. Ties keep their
// input order.
func Apply(tasks []service.Task, f Filter, s Sort) []service.Task {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	result := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && f.Status != AllStatuses && string(t.Status) != f.Status {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		result = append(result, t)
	}

	sort.SliceStable(result, func(i, j int) bool {
		c := compare(result[i], result[j], s.Field)
		if s.Direction == Desc {
			return c > 0
		}
		return c < 0
	})
	return result
}

func compare(a, b service.Task, field SortField) int {
	switch field {
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case SortStatus:
		return strings.Compare(strings.ToLower(string(a.Status)), strings.ToLower(string(b.Status)))
	case SortID:
		return cmpInt(a.ID, b.ID)
	case SortTasknum:
		return cmpInt(tasknum(a), tasknum(b))
	default:
		return cmpInt(dueMillis(a), dueMillis(b))
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func tasknum(t service.Task) int64 {
	if t.Tasknum == nil {
		return 0
	}
	return int64(*t.Tasknum)
}

// dueMillis is the due date in Unix milliseconds, 0 without one.
func dueMillis(t service.Task) int64 {
	due, ok := t.Due()
	if !ok {
		return 0
	}
	return due.UnixMilli()
}

// IsOverdue reports whether task has a due date strictly before now and is
// not completed.
func IsOverdue(task service.Task, now time.Time) bool {
	if task.Status == service.StatusCompleted {
		return false
	}
	due, ok := task.Due()
	return ok && due.Before(now)
}

// StatusCount is the number of tasks in one status.
type StatusCount struct {
	Status service.Status
	Count  int
}

// Stats are aggregates over the unfiltered tasks.
type Stats struct {
	Total int
	// ByStatus has every known status in order, then any other status seen
	// in the tasks in order of appearance.
	ByStatus []StatusCount
	Overdue  int
}

// Count returns the number of tasks with status.
func (s Stats) Count(status service.Status) int {
	for _, sc := range s.ByStatus {
		if sc.Status == status {
			return sc.Count
		}
	}
	return 0
}

// ComputeStats counts tasks per status and overdue tasks at now.
func ComputeStats(tasks []service.Task, statuses []service.Status, now time.Time) Stats {
	stats := Stats{Total: len(tasks)}
	index := make(map[service.Status]int, len(statuses))
	for _, s := range statuses {
		if _, ok := index[s]; ok {
			continue
		}
		index[s] = len(stats.ByStatus)
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: s})
	}

	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			i = len(stats.ByStatus)
			index[t.Status] = i
			stats.ByStatus = append(stats.ByStatus, StatusCount{Status: t.Status})
		}
		stats.ByStatus[i].Count++
		if IsOverdue(t, now) {
			stats.Overdue++
		}
	}
	return stats
}
