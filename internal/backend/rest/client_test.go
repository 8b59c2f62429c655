package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"taskdash/internal/config"
	"taskdash/internal/service"
	"taskdash/internal/testutil"
)

func intPtr(n int) *int { return &n }

func sampleTasks() []service.Task {
	return []service.Task{
		{ID: 1, Title: "Write report", Status: service.StatusNew, DueDate: "2024-03-01T09:00:00"},
		{ID: 2, Title: "Buy food", Status: service.StatusInProgress},
		{ID: 3, Title: "Food review", Description: "weekly", Status: service.StatusCompleted, DueDate: "2024-03-02"},
	}
}

func newTestClient(t *testing.T, b *testutil.FakeBackend) *Client {
	t.Helper()
	c, err := NewWithHTTPClient(b.APIURL(), b.Client())
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	return c
}

func TestListTasks_Shapes(t *testing.T) {
	for _, shape := range []string{"array", "content", "items", "data"} {
		t.Run(shape, func(t *testing.T) {
			b := testutil.NewFakeBackend(t, sampleTasks()...)
			b.ListShape = shape
			c := newTestClient(t, b)

			tasks, err := c.ListTasks(context.Background())
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			if len(tasks) != 3 {
				t.Fatalf("expected 3 tasks, got %d", len(tasks))
			}
			if tasks[0].Title != "Write report" {
				t.Errorf("expected first title %q, got %q", "Write report", tasks[0].Title)
			}
		})
	}
}

func TestListTasks_UnrecognizedShape(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	b.ListShape = "results"
	c := newTestClient(t, b)

	_, err := c.ListTasks(context.Background())
	if !errors.Is(err, ErrUnrecognizedListShape) {
		t.Fatalf("expected ErrUnrecognizedListShape, got %v", err)
	}
}

func TestListTasks_HTTPError(t *testing.T) {
	b := testutil.NewFakeBackend(t)
	b.ListStatus = http.StatusInternalServerError
	c := newTestClient(t, b)

	_, err := c.ListTasks(context.Background())
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *googleapi.Error, got %v", err)
	}
	if gerr.Code != http.StatusInternalServerError {
		t.Errorf("expected code 500, got %d", gerr.Code)
	}
}

func TestHTTPError_Message(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	b.MutationStatus = http.StatusInternalServerError
	c := newTestClient(t, b)

	err := c.DeleteTask(context.Background(), 1)
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if herr.Code != http.StatusInternalServerError {
		t.Errorf("expected code 500, got %d", herr.Code)
	}
	if err.Error() != "HTTP 500: Internal Server Error" {
		t.Errorf("unexpected message %q", err.Error())
	}

	_, err = c.GetTask(context.Background(), 99)
	if err.Error() != "not found: HTTP 404: Task not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if strings.Contains(err.Error(), "googleapi") {
		t.Errorf("expected no library prefix in %q", err.Error())
	}
}

func TestGetTask(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	c := newTestClient(t, b)

	task, err := c.GetTask(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Title != "Buy food" {
		t.Errorf("expected %q, got %q", "Buy food", task.Title)
	}

	_, err = c.GetTask(context.Background(), 99)
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusNotFound {
		t.Fatalf("expected googleapi 404, got %v", err)
	}
	if !strings.Contains(err.Error(), "Task not found") {
		t.Errorf("expected backend message in error, got %q", err.Error())
	}
}

func TestCreateTask(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	c := newTestClient(t, b)

	created, err := c.CreateTask(context.Background(), service.Task{
		ID:      42,
		Title:   "New one",
		Status:  service.StatusNew,
		Tasknum: intPtr(7),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID != 4 {
		t.Errorf("expected server-assigned id 4, got %d", created.ID)
	}

	reqs := b.Requests()
	last := reqs[len(reqs)-1]
	if last.Method != http.MethodPost || last.Path != "/api/tasks" {
		t.Errorf("unexpected request %s", last)
	}
	if strings.Contains(last.Body, `"id"`) {
		t.Errorf("expected body without id, got %s", last.Body)
	}
}

func TestCreateTask_Invalid(t *testing.T) {
	b := testutil.NewFakeBackend(t)
	c := newTestClient(t, b)

	_, err := c.CreateTask(context.Background(), service.Task{Status: service.StatusNew})
	if !errors.Is(err, service.ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got %v", err)
	}
	if len(b.Requests()) != 0 {
		t.Errorf("expected no request, got %v", b.RequestLines())
	}
}

func TestUpdateTask_StripsID(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	c := newTestClient(t, b)

	updated, err := c.UpdateTask(context.Background(), service.Task{ID: 2, Title: "Buy more food", Status: service.StatusNew})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.ID != 2 || updated.Title != "Buy more food" {
		t.Errorf("unexpected task %+v", updated)
	}

	reqs := b.Requests()
	last := reqs[len(reqs)-1]
	if last.String() != "PUT /api/tasks/2" {
		t.Errorf("expected PUT /api/tasks/2, got %s", last)
	}
	if strings.Contains(last.Body, `"id"`) {
		t.Errorf("expected body without id, got %s", last.Body)
	}
}

func TestDeleteTask(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	c := newTestClient(t, b)

	if err := c.DeleteTask(context.Background(), 1); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if len(b.Tasks()) != 2 {
		t.Errorf("expected 2 tasks left, got %d", len(b.Tasks()))
	}
	if err := c.DeleteTask(context.Background(), 1); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdateStatus_QueryParam(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	c := newTestClient(t, b)

	task, err := c.UpdateStatus(context.Background(), 1, service.StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if task.Status != service.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", task.Status)
	}

	got := b.RequestLines()
	want := "PUT /api/tasks/1/status?status=COMPLETED"
	if len(got) != 1 || got[0] != want {
		t.Errorf("expected [%s], got %v", want, got)
	}
	if body := b.Requests()[0].Body; body != "" {
		t.Errorf("expected empty body, got %q", body)
	}
}

func TestListStatuses(t *testing.T) {
	b := testutil.NewFakeBackend(t)
	b.SetStatuses(service.StatusNew, "BLOCKED")
	c := newTestClient(t, b)

	statuses, err := c.ListStatuses(context.Background())
	if err != nil {
		t.Fatalf("ListStatuses: %v", err)
	}
	if len(statuses) != 2 || statuses[1] != "BLOCKED" {
		t.Errorf("unexpected statuses %v", statuses)
	}
}

func TestSearchTasks_Server(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	c := newTestClient(t, b)

	res, err := c.SearchTasks(context.Background(), service.SearchFilters{Title: "food"})
	if err != nil {
		t.Fatalf("SearchTasks: %v", err)
	}
	if res.Source != service.SourceServer || res.Degraded() {
		t.Errorf("expected server source, got %s", res.Source)
	}
	if len(res.Tasks) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(res.Tasks))
	}

	got := b.RequestLines()
	if len(got) != 1 || got[0] != "GET /api/tasks/search?title=food" {
		t.Errorf("expected only non-empty params, got %v", got)
	}
}

func TestSearchTasks_Fallback(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	b.SearchStatus = http.StatusInternalServerError
	c := newTestClient(t, b)

	res, err := c.SearchTasks(context.Background(), service.SearchFilters{Title: "foo"})
	if err != nil {
		t.Fatalf("SearchTasks: %v", err)
	}
	if res.Source != service.SourceLocalFallback {
		t.Fatalf("expected local fallback, got %s", res.Source)
	}
	var gerr *googleapi.Error
	if !errors.As(res.Cause, &gerr) || gerr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 cause, got %v", res.Cause)
	}
	if len(res.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(res.Tasks))
	}
	for _, task := range res.Tasks {
		if !strings.Contains(strings.ToLower(task.Title), "foo") {
			t.Errorf("unexpected task %q", task.Title)
		}
	}

	got := b.RequestLines()
	want := []string{"GET /api/tasks/search?title=foo", "GET /api/tasks"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSearchTasks_FallbackFilters(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	b.SearchStatus = http.StatusBadGateway
	c := newTestClient(t, b)

	res, err := c.SearchTasks(context.Background(), service.SearchFilters{DueDate: "2024-03-01", Status: service.StatusNew})
	if err != nil {
		t.Fatalf("SearchTasks: %v", err)
	}
	if len(res.Tasks) != 1 || res.Tasks[0].ID != 1 {
		t.Errorf("expected task 1, got %+v", res.Tasks)
	}
}

func TestSearchTasks_FallbackListFails(t *testing.T) {
	b := testutil.NewFakeBackend(t, sampleTasks()...)
	b.SearchStatus = http.StatusInternalServerError
	b.ListStatus = http.StatusServiceUnavailable
	c := newTestClient(t, b)

	_, err := c.SearchTasks(context.Background(), service.SearchFilters{Title: "x"})
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected the list error, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewWithHTTPClient(srv.URL+"/api", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	c.SetTimeout(20 * time.Millisecond)

	_, err = c.ListTasks(context.Background())
	if err == nil || !strings.Contains(err.Error(), "request timed out") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestNew_BearerToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := &config.Config{BackendURL: srv.URL, APIBase: "/api", Token: "s3cret"}
	c, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if auth != "Bearer s3cret" {
		t.Errorf("expected bearer header, got %q", auth)
	}
}

func TestNewWithHTTPClient_InvalidURL(t *testing.T) {
	if _, err := NewWithHTTPClient("/api", nil); err == nil {
		t.Error("expected error for relative url")
	}
}
