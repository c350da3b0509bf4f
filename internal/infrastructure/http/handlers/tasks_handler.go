package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/task"
	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/report"
)

// MaxExportRows bounds a single export.
const MaxExportRows = 5000

// TasksHandler serves /api/tasks.
type TasksHandler struct {
	tasks    *task.Manager
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

// NewTasksHandler creates a handler over the task manager.
func NewTasksHandler(tasks *task.Manager, log zerolog.Logger) *TasksHandler {
	return &TasksHandler{tasks: tasks, validate: validator.New(), log: log, now: time.Now}
}

func (req taskRequest) input() task.CreateInput {
	return task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     parseDate(req.DueDate),
		AssigneeID:  req.AssignedToID,
	}
}

// taskID parses the {id} path segment; it has written a 400 when ok is false.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErr(w, r, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body taskRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := taskRules.check(h.validate, body); err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	created, err := h.tasks.Create(r.Context(), body.input())
	if err != nil {
		logMutation(h.log, r, "task.create", 0, err)
		writeDomainErr(w, r, h.log, err)
		return
	}
	logMutation(h.log, r, "task.create", created.ID, nil)
	writeJSON(w, http.StatusCreated, toTaskResponse(created))
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := readListQuery(r.URL.Query())
	page, size, pageErr := q.pageParams(h.validate)
	filter, filterErr := q.filter(h.validate)
	if err := mergeErrors(pageErr, filterErr); err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	result, err := h.tasks.List(r.Context(), task.ListInput{Page: page, Size: size, Filter: filter})
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(result, toTaskResponse))
}

// Get handles GET /api/tasks/{id}.
func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

// Update handles PUT /api/tasks/{id}. Every field is replaced; an absent
// assignedToId clears the assignment.
func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var body taskRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := taskRules.check(h.validate, body); err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	updated, err := h.tasks.Update(r.Context(), id, task.UpdateInput(body.input()))
	logMutation(h.log, r, "task.update", id, err)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

// UpdateStatus handles PATCH /api/tasks/{id}/status.
func (h *TasksHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var body statusRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := statusRules.check(h.validate, body); err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	updated, err := h.tasks.UpdateStatus(r.Context(), id, domain.TaskStatus(body.Status))
	logMutation(h.log, r, "task.update_status", id, err)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(updated))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	err := h.tasks.Delete(r.Context(), id)
	logMutation(h.log, r, "task.delete", id, err)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /api/tasks/export. It accepts the list filters and
// returns every matching task, newest first, as a file.
func (h *TasksHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := readListQuery(r.URL.Query())
	filter, err := q.filter(h.validate)
	if q.Format == "" {
		q.Format = report.FormatCSV
	}
	if !validFormat(q.Format) {
		verr := &domerrors.ValidationError{}
		verr.Add("format", "format must be one of "+strings.Join(report.Formats, ", "))
		err = mergeErrors(err, verr)
	}
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	tasks, err := h.tasks.Collect(r.Context(), filter, MaxExportRows)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	out, err := report.Render(q.Format, tasks, h.now())
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func validFormat(format string) bool {
	for _, f := range report.Formats {
		if f == format {
			return true
		}
	}
	return false
}
