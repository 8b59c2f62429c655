// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"taskdash/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	tasks    map[int64]service.Task
	nextID   int64
	statuses []service.Status
	calls    []string

	// Error injection for testing
	ListTasksErr    error
	GetTaskErr      error
	CreateTaskErr   error
	UpdateTaskErr   error
	DeleteTaskErr   error
	UpdateStatusErr error
	ListStatusesErr error
	SearchErr       error // server search failure; triggers the local fallback
}

// NewFakeService creates a new FakeService holding tasks.
// Tasks without an ID are numbered from 1.
func NewFakeService(tasks ...service.Task) *FakeService {
	f := &FakeService{
		tasks:    make(map[int64]service.Task),
		nextID:   1,
		statuses: append([]service.Status(nil), service.DefaultStatuses...),
	}
	for _, t := range tasks {
		f.AddTask(t)
	}
	return f
}

// AddTask stores a task and returns its ID.
func (f *FakeService) AddTask(t service.Task) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.nextID
	}
	if t.ID >= f.nextID {
		f.nextID = t.ID + 1
	}
	f.tasks[t.ID] = t
	return t.ID
}

// SetStatuses replaces the statuses returned by ListStatuses.
func (f *FakeService) SetStatuses(statuses ...service.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = statuses
}

// Calls returns the names of the methods called so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.calls...)
}

// Task returns a stored task.
func (f *FakeService) Task(id int64) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	return t, ok
}

func (f *FakeService) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *FakeService) sorted() []service.Task {
	result := make([]service.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func notFound(id int64) error {
	return fmt.Errorf("%w: task %d", service.ErrNotFound, id)
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sorted(), nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, notFound(id)
	}
	return t, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if err := task.Validate(); err != nil {
		return service.Task{}, err
	}
	task.ID = 0
	id := f.AddTask(task)
	task.ID = id
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, task service.Task) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	if err := task.Validate(); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return service.Task{}, notFound(task.ID)
	}
	f.tasks[task.ID] = task
	return task, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return notFound(id)
	}
	delete(f.tasks, id)
	return nil
}

// UpdateStatus implements service.Service.
func (f *FakeService) UpdateStatus(ctx context.Context, id int64, status service.Status) (service.Task, error) {
	f.record("UpdateStatus")
	if f.UpdateStatusErr != nil {
		return service.Task{}, f.UpdateStatusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, notFound(id)
	}
	t.Status = status
	f.tasks[id] = t
	return t, nil
}

// ListStatuses implements service.Service.
func (f *FakeService) ListStatuses(ctx context.Context) ([]service.Status, error) {
	f.record("ListStatuses")
	if f.ListStatusesErr != nil {
		return nil, f.ListStatusesErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Status(nil), f.statuses...), nil
}

// SearchTasks implements service.Service.
func (f *FakeService) SearchTasks(ctx context.Context, filters service.SearchFilters) (service.SearchResult, error) {
	f.record("SearchTasks")
	source := service.SourceServer
	if f.SearchErr != nil {
		if f.ListTasksErr != nil {
			return service.SearchResult{}, f.ListTasksErr
		}
		source = service.SourceLocalFallback
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	matched := []service.Task{}
	for _, t := range f.sorted() {
		if filters.Match(t) {
			matched = append(matched, t)
		}
	}
	return service.SearchResult{Tasks: matched, Source: source, Cause: f.SearchErr}, nil
}
