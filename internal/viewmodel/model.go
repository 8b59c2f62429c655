// Package viewmodel holds the dashboard state between the task backend and
// the presentation layer: the loaded tasks, filter and sort settings, and the
// delete and status-change actions that reload the collection afterwards.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"taskdash/internal/service"
)

// MessageTTL is how long a success message stays visible.
const MessageTTL = 3 * time.Second

// User-facing error prefixes.
const (
	loadFailed   = "Failed to load tasks"
	deleteFailed = "Failed to delete task"
	statusFailed = "Failed to update status"
)

var (
	// ErrUnknownStatus is returned by ChangeStatus for a status outside the known set.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrStatusUpdating is returned by ChangeStatus while the same task is
	// already being updated.
	ErrStatusUpdating = errors.New("status update already in progress")
)

// ConfirmFunc asks the user whether a task may be deleted.
type ConfirmFunc func(service.Task) bool

// State is a snapshot of the model for rendering.
type State struct {
	Tasks    []service.Task
	Statuses []service.Status
	Loading  bool
	Err      string
	Message  string
	Sort     Sort
	Filter   Filter

	// StatusUpdating is the id of the task whose status change is in
	// flight, or 0.
	StatusUpdating int64
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now, for overdue checks and message expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithSort sets the initial sort.
func WithSort(s Sort) Option {
	return func(m *Model) { m.sort = s }
}

// WithFilter sets the initial filter.
func WithFilter(f Filter) Option {
	return func(m *Model) { m.filter = f }
}

// Model is the task view-model. It is safe for concurrent use.
type Model struct {
	svc service.Service
	now func() time.Time

	mu             sync.Mutex
	tasks          []service.Task
	statuses       []service.Status
	loading        bool
	err            string
	message        string
	messageExpires time.Time
	sort           Sort
	filter         Filter
	statusUpdating int64
}

// New creates a model over svc, sorted by due date ascending and showing all
// statuses.
func New(svc service.Service, opts ...Option) *Model {
	m := &Model{
		svc:      svc,
		now:      time.Now,
		statuses: append([]service.Status(nil), service.DefaultStatuses...),
		sort:     Sort{Field: SortDueDate, Direction: Asc},
		filter:   Filter{Status: AllStatuses},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the model's current time.
func (m *Model) Now() time.Time {
	return m.now()
}

// State returns a snapshot. Expired messages are left out.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Tasks:          append([]service.Task(nil), m.tasks...),
		Statuses:       append([]service.Status(nil), m.statuses...),
		Loading:        m.loading,
		Err:            m.err,
		Sort:           m.sort,
		Filter:         m.filter,
		StatusUpdating: m.statusUpdating,
	}
	if m.message != "" && m.now().Before(m.messageExpires) {
		s.Message = m.message
	}
	return s
}

// Load replaces the tasks with the backend's list. On failure the previous
// tasks are kept and the error is recorded as "Failed to load tasks".
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.err = ""
	m.mu.Unlock()

	tasks, err := m.svc.ListTasks(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		log.Debug().Err(err).Msg("failed to load tasks")
		m.err = loadFailed
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	m.tasks = tasks
	return nil
}

// LoadStatuses fetches the known statuses. On failure, or when the backend
// returns none, the defaults stay in place.
func (m *Model) LoadStatuses(ctx context.Context) error {
	statuses, err := m.svc.ListStatuses(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("failed to load statuses, using defaults")
		return err
	}
	if len(statuses) == 0 {
		return nil
	}
	m.mu.Lock()
	m.statuses = statuses
	m.mu.Unlock()
	return nil
}

// Statuses returns the known statuses.
func (m *Model) Statuses() []service.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Status(nil), m.statuses...)
}

// KnownStatus reports whether s is in the known set.
func (m *Model) KnownStatus(s service.Status) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.known(s)
}

func (m *Model) known(s service.Status) bool {
	for _, k := range m.statuses {
		if k == s {
			return true
		}
	}
	return false
}

// NextStatus returns the status after s in the known set, wrapping around.
// Unknown statuses map to the first known one.
func (m *Model) NextStatus(s service.Status) service.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) == 0 {
		return s
	}
	for i, k := range m.statuses {
		if k == s {
			return m.statuses[(i+1)%len(m.statuses)]
		}
	}
	return m.statuses[0]
}

// View returns the filtered and sorted tasks.
func (m *Model) View() []service.Task {
	m.mu.Lock()
	tasks, f, s := m.tasks, m.filter, m.sort
	m.mu.Unlock()
	return Apply(tasks, f, s)
}

// Stats summarizes the unfiltered tasks.
func (m *Model) Stats() Stats {
	m.mu.Lock()
	tasks, statuses := m.tasks, m.statuses
	m.mu.Unlock()
	return ComputeStats(tasks, statuses, m.now())
}

// ToggleSort sorts by field. The same field again flips the direction; a new
// field starts ascending.
func (m *Model) ToggleSort(field SortField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sort.Field == field {
		m.sort.Direction = m.sort.Direction.Reverse()
		return
	}
	m.sort = Sort{Field: field, Direction: Asc}
}

// SetSort sets field and direction.
func (m *Model) SetSort(s Sort) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sort = s
}

// SetStatusFilter shows only tasks with status, or every task for AllStatuses.
func (m *Model) SetStatusFilter(status string) {
	if status == "" {
		status = AllStatuses
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter.Status = status
}

// SetSearch sets the free-text search term.
func (m *Model) SetSearch(q string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter.Search = q
}

// ClearMessage drops the success message before it expires.
func (m *Model) ClearMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.message = ""
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.messageExpires = m.now().Add(MessageTTL)
}

// Delete deletes task after confirm approves it, then reloads. It reports
// whether the delete was issued. A declined or missing confirmation is a
// no-op.
// Reload failures after a successful delete are recorded in the state only.
func (m *Model) Delete(ctx context.Context, task service.Task, confirm ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(task) {
		return false, nil
	}

	if err := m.svc.DeleteTask(ctx, task.ID); err != nil {
		log.Debug().Err(err).Int64("id", task.ID).Msg("failed to delete task")
		m.mu.Lock()
		m.err = fmt.Sprintf("%s: %v", deleteFailed, err)
		m.mu.Unlock()
		return false, fmt.Errorf("failed to delete task: %w", err)
	}

	m.mu.Lock()
	m.setMessage(fmt.Sprintf("Task \"%s\" deleted successfully", task.Title))
	m.mu.Unlock()

	_ = m.Load(ctx)
	return true, nil
}

// ChangeStatus sets the status of task and reloads. The status must be one
// of the known statuses. While the call is in flight State.StatusUpdating
// holds the task id.
func (m *Model) ChangeStatus(ctx context.Context, task service.Task, status service.Status) error {
	m.mu.Lock()
	if !m.known(status) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownStatus, status)
	}
	if m.statusUpdating != 0 && m.statusUpdating == task.ID {
		m.mu.Unlock()
		return ErrStatusUpdating
	}
	m.statusUpdating = task.ID
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.statusUpdating = 0
		m.mu.Unlock()
	}()

	if _, err := m.svc.UpdateStatus(ctx, task.ID, status); err != nil {
		log.Debug().Err(err).Int64("id", task.ID).Str("status", string(status)).Msg("failed to update status")
		m.mu.Lock()
		m.err = fmt.Sprintf("%s: %v", statusFailed, err)
		m.mu.Unlock()
		return fmt.Errorf("failed to update status: %w", err)
	}

	m.mu.Lock()
	m.setMessage(fmt.Sprintf("Task status updated to %s", status))
	m.mu.Unlock()

	_ = m.Load(ctx)
	return nil
}
