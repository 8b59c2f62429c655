package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"taskdash/internal/service"
)

// Request is a request recorded by FakeBackend.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// String formats the request as "METHOD /path?query".
func (r Request) String() string {
	if r.Query == "" {
		return r.Method + " " + r.Path
	}
	return r.Method + " " + r.Path + "?" + r.Query
}

// FakeBackend is an HTTP task backend served by gin on an httptest server.
// It mounts the task API under /api plus the health endpoints and a
// frontend root page.
type FakeBackend struct {
	mu       sync.Mutex
	tasks    map[int64]service.Task
	nextID   int64
	statuses []service.Status
	requests []Request

	// ListShape wraps list responses: "" or "array", "content", "items",
	// "data", or anything else for an unrecognized object.
	ListShape string

	// SearchStatus, when non-zero, makes /api/tasks/search answer with it.
	SearchStatus int

	// ListStatus, when non-zero, makes GET /api/tasks answer with it.
	ListStatus int

	// MutationStatus, when non-zero, makes PUT and DELETE answer with it.
	MutationStatus int

	// HealthStatus is returned by /health and /actuator/health (default 200).
	HealthStatus int

	// FrontendStatus is returned by GET / (default 200).
	FrontendStatus int

	server *httptest.Server
}

// NewFakeBackend starts a fake backend holding tasks. It is closed when the
// test ends.
func NewFakeBackend(t testing.TB, tasks ...service.Task) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &FakeBackend{
		tasks:    make(map[int64]service.Task),
		nextID:   1,
		statuses: append([]service.Status(nil), service.DefaultStatuses...),
	}
	for _, task := range tasks {
		b.put(task)
	}

	r := gin.New()
	r.Use(b.record)

	r.GET("/", b.frontend)
	r.GET("/health", b.health)
	r.GET("/actuator/health", b.health)

	api := r.Group("/api")
	api.GET("/tasks", b.listTasks)
	api.GET("/tasks/statuses", b.listStatuses)
	api.GET("/tasks/search", b.searchTasks)
	api.GET("/tasks/:id", b.getTask)
	api.POST("/tasks", b.createTask)
	api.PUT("/tasks/:id", b.updateTask)
	api.PUT("/tasks/:id/status", b.updateStatus)
	api.DELETE("/tasks/:id", b.deleteTask)

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the server root, e.g. http://127.0.0.1:1234.
func (b *FakeBackend) URL() string {
	return b.server.URL
}

// APIURL returns the task API root.
func (b *FakeBackend) APIURL() string {
	return b.server.URL + "/api"
}

// Client returns an HTTP client for the server.
func (b *FakeBackend) Client() *http.Client {
	return b.server.Client()
}

// Requests returns the requests received so far.
func (b *FakeBackend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestLines returns Requests formatted with Request.String.
func (b *FakeBackend) RequestLines() []string {
	var lines []string
	for _, r := range b.Requests() {
		lines = append(lines, r.String())
	}
	return lines
}

// ResetRequests forgets the recorded requests.
func (b *FakeBackend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// Tasks returns the stored tasks ordered by ID.
func (b *FakeBackend) Tasks() []service.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sorted()
}

// SetStatuses replaces the statuses served by /api/tasks/statuses.
func (b *FakeBackend) SetStatuses(statuses ...service.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = statuses
}

func (b *FakeBackend) put(t service.Task) service.Task {
	if t.ID == 0 {
		t.ID = b.nextID
	}
	if t.ID >= b.nextID {
		b.nextID = t.ID + 1
	}
	b.tasks[t.ID] = t
	return t
}

func (b *FakeBackend) sorted() []service.Task {
	result := make([]service.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (b *FakeBackend) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Body:   string(body),
	})
	b.mu.Unlock()
	c.Next()
}

func (b *FakeBackend) writeList(c *gin.Context, tasks []service.Task) {
	switch b.ListShape {
	case "", "array":
		c.JSON(http.StatusOK, tasks)
	case "content", "items", "data":
		c.JSON(http.StatusOK, gin.H{b.ListShape: tasks, "total": len(tasks)})
	default:
		c.JSON(http.StatusOK, gin.H{b.ListShape: tasks})
	}
}

func fail(c *gin.Context, status int) {
	c.JSON(status, gin.H{"status": status, "error": http.StatusText(status)})
}

func (b *FakeBackend) frontend(c *gin.Context) {
	status := b.FrontendStatus
	if status == 0 {
		status = http.StatusOK
	}
	c.Data(status, "text/html; charset=utf-8", []byte("<!doctype html><title>tasks</title>"))
}

func (b *FakeBackend) health(c *gin.Context) {
	status := b.HealthStatus
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"status": "UP"})
}

func (b *FakeBackend) listTasks(c *gin.Context) {
	if b.ListStatus != 0 {
		fail(c, b.ListStatus)
		return
	}
	b.mu.Lock()
	tasks := b.sorted()
	b.mu.Unlock()
	b.writeList(c, tasks)
}

func (b *FakeBackend) listStatuses(c *gin.Context) {
	b.mu.Lock()
	statuses := append([]service.Status(nil), b.statuses...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, statuses)
}

func (b *FakeBackend) searchTasks(c *gin.Context) {
	if b.SearchStatus != 0 {
		fail(c, b.SearchStatus)
		return
	}
	filters := service.SearchFilters{
		Title:   c.Query("title"),
		Status:  service.Status(c.Query("status")),
		DueDate: c.Query("dueDate"),
	}
	b.mu.Lock()
	matched := []service.Task{}
	for _, t := range b.sorted() {
		if filters.Match(t) {
			matched = append(matched, t)
		}
	}
	b.mu.Unlock()
	b.writeList(c, matched)
}

func (b *FakeBackend) lookup(c *gin.Context) (service.Task, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest)
		return service.Task{}, false
	}
	b.mu.Lock()
	t, ok := b.tasks[id]
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "error": "Not Found", "message": "Task not found"})
		return service.Task{}, false
	}
	return t, true
}

func (b *FakeBackend) getTask(c *gin.Context) {
	if t, ok := b.lookup(c); ok {
		c.JSON(http.StatusOK, t)
	}
}

func (b *FakeBackend) createTask(c *gin.Context) {
	var t service.Task
	if err := c.ShouldBindJSON(&t); err != nil || strings.TrimSpace(t.Title) == "" {
		fail(c, http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	t.ID = 0
	t = b.put(t)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, t)
}

func (b *FakeBackend) updateTask(c *gin.Context) {
	if b.MutationStatus != 0 {
		fail(c, b.MutationStatus)
		return
	}
	existing, ok := b.lookup(c)
	if !ok {
		return
	}
	var t service.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		fail(c, http.StatusBadRequest)
		return
	}
	t.ID = existing.ID
	b.mu.Lock()
	b.tasks[t.ID] = t
	b.mu.Unlock()
	c.JSON(http.StatusOK, t)
}

func (b *FakeBackend) updateStatus(c *gin.Context) {
	if b.MutationStatus != 0 {
		fail(c, b.MutationStatus)
		return
	}
	t, ok := b.lookup(c)
	if !ok {
		return
	}
	status := c.Query("status")
	if status == "" {
		fail(c, http.StatusBadRequest)
		return
	}
	t.Status = service.Status(status)
	b.mu.Lock()
	b.tasks[t.ID] = t
	b.mu.Unlock()
	c.JSON(http.StatusOK, t)
}

func (b *FakeBackend) deleteTask(c *gin.Context) {
	if b.MutationStatus != 0 {
		fail(c, b.MutationStatus)
		return
	}
	t, ok := b.lookup(c)
	if !ok {
		return
	}
	b.mu.Lock()
	delete(b.tasks, t.ID)
	b.mu.Unlock()
	c.Status(http.StatusNoContent)
}
