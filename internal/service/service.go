// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All REST calls go through this interface.
// Commands and the view-model never build HTTP requests directly.
type Service interface {
	// ListTasks returns every task known to the backend.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns one task. Missing tasks yield an error matching ErrNotFound.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it with its backend-assigned ID.
	CreateTask(ctx context.Context, task Task) (Task, error)

	// UpdateTask replaces the task identified by task.ID.
	UpdateTask(ctx context.Context, task Task) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error

	// UpdateStatus changes only the status of a task.
	UpdateStatus(ctx context.Context, id int64, status Status) (Task, error)

	// ListStatuses returns the statuses the backend accepts.
	ListStatuses(ctx context.Context) ([]Status, error)

	// SearchTasks filters tasks on the backend. A failing backend search
	// degrades to local filtering; see SearchResult.Source.
	SearchTasks(ctx context.Context, filters SearchFilters) (SearchResult, error)
}
