package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/task"
	"github.com/amirhosseinghanipour/taskmanager/internal/application/user"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	users := user.NewManager(store.Users())
	tasks := task.NewManager(store.Tasks(), users, nil)
	th := NewTasksHandler(tasks, zerolog.Nop())
	th.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	uh := NewUsersHandler(users, zerolog.Nop())

	r := chi.NewRouter()
	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/", th.Create)
		r.Get("/", th.List)
		r.Get("/export", th.Export)
		r.Get("/{id}", th.Get)
		r.Put("/{id}", th.Update)
		r.Patch("/{id}/status", th.UpdateStatus)
		r.Delete("/{id}", th.Delete)
	})
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", uh.Create)
		r.Get("/", uh.List)
		r.Get("/{id}", uh.Get)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func fieldNames(resp middleware.ErrorResponse) []string {
	out := make([]string, 0, len(resp.Errors))
	for _, f := range resp.Errors {
		out = append(out, f.Field)
	}
	return out
}

func TestCreateUser(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/users", `{"name":"Ann","email":"  Ann@X.com "}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	u := decode[UserResponse](t, rec)
	if u.ID == 0 || u.Email != "ann@x.com" || u.Name != "Ann" {
		t.Errorf("unexpected user %+v", u)
	}

	rec = do(t, h, http.MethodPost, "/api/users", `{"name":"Other","email":"ANN@x.com"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	e := decode[middleware.ErrorResponse](t, rec)
	if e.Message != "user with email 'ann@x.com' already exists" || e.Code != middleware.ErrCodeConflict {
		t.Errorf("unexpected error body %+v", e)
	}

	rec = do(t, h, http.MethodPost, "/api/users", `{"name":"B","email":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	e = decode[middleware.ErrorResponse](t, rec)
	if got := strings.Join(fieldNames(e), ","); got != "name,email" {
		t.Errorf("failed fields = %s", got)
	}
	if e.Path != "/api/users" || e.Status != http.StatusBadRequest {
		t.Errorf("unexpected error envelope %+v", e)
	}
}

func TestGetUser(t *testing.T) {
	h := newTestRouter(t)
	if rec := do(t, h, http.MethodGet, "/api/users/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/users/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decode[middleware.ErrorResponse](t, rec); e.Message != "user not found with id: 42" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"ab","status":"OPEN","dueDate":"01/02/2026","assignedToId":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	e := decode[middleware.ErrorResponse](t, rec)
	if e.Code != middleware.ErrCodeValidation {
		t.Errorf("code = %s", e.Code)
	}
	if got := strings.Join(fieldNames(e), ","); got != "title,status,priority,dueDate,assignedToId" {
		t.Errorf("failed fields = %s", got)
	}

	if rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestCreateTask_UnknownAssignee(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"Fix bug","status":"TODO","priority":"HIGH","assignedToId":99}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decode[middleware.ErrorResponse](t, rec); e.Message != "user not found with id: 99" {
		t.Errorf("message = %q", e.Message)
	}
	list := decode[PageResponse[TaskResponse]](t, do(t, h, http.MethodGet, "/api/tasks", ""))
	if list.TotalElements != 0 {
		t.Errorf("expected no task stored, got %d", list.TotalElements)
	}
}

func TestTaskLifecycle(t *testing.T) {
	h := newTestRouter(t)
	u := decode[UserResponse](t, do(t, h, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@x.com"}`))

	rec := do(t, h, http.MethodPost, "/api/tasks",
		`{"title":"Fix bug","status":"TODO","priority":"HIGH","dueDate":"2026-07-01","assignedToId":`+itoa(u.ID)+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	created := decode[TaskResponse](t, rec)
	if created.AssignedTo == nil || created.AssignedTo.Email != "ann@x.com" {
		t.Fatalf("assignee missing: %+v", created)
	}
	if created.DueDate == nil || *created.DueDate != "2026-07-01" || created.Description != nil {
		t.Errorf("unexpected optional fields: %+v", created)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("createdAt %v != updatedAt %v", created.CreatedAt, created.UpdatedAt)
	}
	path := "/api/tasks/" + itoa(created.ID)

	rec = do(t, h, http.MethodPatch, path+"/status", `{"status":"IN_PROGRESS"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status: %d %s", rec.Code, rec.Body.String())
	}
	patched := decode[TaskResponse](t, rec)
	if patched.Status != "IN_PROGRESS" || patched.Title != created.Title || patched.AssignedTo == nil {
		t.Errorf("status update changed more than status: %+v", patched)
	}
	if patched.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("updatedAt went backwards")
	}

	if rec := do(t, h, http.MethodPatch, path+"/status", `{"status":"later"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPut, path, `{"title":"Fix bug fast","description":"now","status":"DONE","priority":"LOW"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rec.Code, rec.Body.String())
	}
	updated := decode[TaskResponse](t, rec)
	if updated.AssignedTo != nil || updated.DueDate != nil || updated.Description == nil || *updated.Description != "now" {
		t.Errorf("full update did not replace fields: %+v", updated)
	}

	if rec := do(t, h, http.MethodPut, "/api/tasks/777", `{"title":"Nope","status":"DONE","priority":"LOW"}`); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 updating missing task, got %d", rec.Code)
	}

	if rec := do(t, h, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/tasks/0", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for id 0, got %d", rec.Code)
	}
}

func TestListTasks_FiltersAndPaging(t *testing.T) {
	h := newTestRouter(t)
	u := decode[UserResponse](t, do(t, h, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@x.com"}`))
	for i := 0; i < 15; i++ {
		status := "TODO"
		if i%3 == 0 {
			status = "DONE"
		}
		body := `{"title":"Task ` + itoa(int64(i)) + `","status":"` + status + `","priority":"MEDIUM"`
		if i%2 == 0 {
			body += `,"assignedToId":` + itoa(u.ID)
		}
		body += `}`
		if rec := do(t, h, http.MethodPost, "/api/tasks", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}

	p := decode[PageResponse[TaskResponse]](t, do(t, h, http.MethodGet, "/api/tasks", ""))
	if p.PageSize != 10 || len(p.Content) != 10 || p.TotalElements != 15 || p.TotalPages != 2 || !p.First || p.Last {
		t.Errorf("default page = %+v", p)
	}
	p = decode[PageResponse[TaskResponse]](t, do(t, h, http.MethodGet, "/api/tasks?page=1&size=10", ""))
	if len(p.Content) != 5 || p.First || !p.Last {
		t.Errorf("second page = %+v", p)
	}
	p = decode[PageResponse[TaskResponse]](t, do(t, h, http.MethodGet, "/api/tasks?page=5", ""))
	if len(p.Content) != 0 || p.TotalElements != 15 {
		t.Errorf("page past the end = %+v", p)
	}

	p = decode[PageResponse[TaskResponse]](t, do(t, h, http.MethodGet, "/api/tasks?status=done&size=100", ""))
	if p.TotalElements != 5 {
		t.Errorf("status filter total = %d", p.TotalElements)
	}
	p = decode[PageResponse[TaskResponse]](t, do(t, h, http.MethodGet, "/api/tasks?assignedToId="+itoa(u.ID)+"&status=DONE", ""))
	if p.TotalElements != 3 {
		t.Errorf("combined filter total = %d", p.TotalElements)
	}

	for _, q := range []string{"size=0", "size=101", "page=-1", "page=x", "status=LATER", "assignedToId=0"} {
		if rec := do(t, h, http.MethodGet, "/api/tasks?"+q, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestExportTasks(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/tasks", `{"title":"Fix bug","status":"TODO","priority":"HIGH"}`)
	do(t, h, http.MethodPost, "/api/tasks", `{"title":"Ship it","status":"DONE","priority":"LOW"}`)

	rec := do(t, h, http.MethodGet, "/api/tasks/export?status=TODO", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="tasks-20260102-030405.csv"` {
		t.Errorf("content disposition = %s", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Fix bug") || strings.Contains(body, "Ship it") {
		t.Errorf("export body = %s", body)
	}

	if rec := do(t, h, http.MethodGet, "/api/tasks/export?format=xlsx", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}, "memory", nil, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	var logs bytes.Buffer
	NewHealthHandler(stubPinger{err: errors.New("dial tcp 10.0.0.5:5432: refused")}, "database", nil, zerolog.New(&logs)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	resp := decode[healthResponse](t, rec)
	if resp.Checks["database"] != "down" || strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("health body leaks details: %s", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "10.0.0.5") {
		t.Errorf("failure not logged: %s", logs.String())
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestListPageBeyondRange(t *testing.T) {
	h := newTestRouter(t)
	do(t, h, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@x.com"}`)
	do(t, h, http.MethodPost, "/api/tasks", `{"title":"Fix bug","status":"TODO","priority":"HIGH"}`)

	for _, path := range []string{
		"/api/tasks?page=92233720368547759&size=100",
		"/api/users?page=92233720368547759&size=100",
		"/api/tasks?page=21474837&size=100",
	} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		p := decode[PageResponse[json.RawMessage]](t, rec)
		if len(p.Content) != 0 || p.TotalElements != 1 || p.TotalPages != 1 || p.First || !p.Last {
			t.Errorf("%s: page = %+v", path, p)
		}
	}
}

func TestCreateTask_KeepsTitleAsSent(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"  ab  ","status":"TODO","priority":"LOW"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[TaskResponse](t, rec).Title; got != "  ab  " {
		t.Errorf("title = %q", got)
	}
	if rec := do(t, h, http.MethodPost, "/api/tasks", `{"title":"   ","status":"TODO","priority":"LOW"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank title: expected 400, got %d", rec.Code)
	}
}

func TestLogMutation_UsesRemoteAddr(t *testing.T) {
	var logs bytes.Buffer
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	req.RemoteAddr = "203.0.113.9"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	logMutation(zerolog.New(&logs), req, "task.create", 5, nil)

	var entry map[string]interface{}
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["ip"] != "203.0.113.9" || entry["operation"] != "task.create" || entry["id"] != float64(5) {
		t.Errorf("log entry = %v", entry)
	}
}
