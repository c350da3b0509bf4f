package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskmanager/internal/domain/errors"
)

// Validation limits.
const (
	MaxEmailLength  = 254
	DefaultPageSize = 10
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// SanitizeEmail trims and lowercases email; returns empty if invalid length.
func SanitizeEmail(email string) string {
	s := strings.TrimSpace(strings.ToLower(email))
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}

// rule is one validator tag applied to one extracted field.
type rule[T any] struct {
	field   string
	tag     string
	message string
	value   func(T) interface{}
}

// rules are checked in order; the first failure per field is reported.
// Blank checks trim, length checks and stored values do not.
type rules[T any] []rule[T]

func (rs rules[T]) check(v *validator.Validate, in T) error {
	verr := &domerrors.ValidationError{}
	failed := make(map[string]bool)
	for _, r := range rs {
		if failed[r.field] {
			continue
		}
		if err := v.Var(r.value(in), r.tag); err != nil {
			failed[r.field] = true
			verr.Add(r.field, r.message)
		}
	}
	return verr.OrNil()
}

func oneOf[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return "oneof=" + strings.Join(parts, " ")
}

func listOf[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

var (
	statusTag   = oneOf(domain.TaskStatuses)
	priorityTag = oneOf(domain.TaskPriorities)
	statusMsg   = "status must be one of " + listOf(domain.TaskStatuses)
	priorityMsg = "priority must be one of " + listOf(domain.TaskPriorities)
)

var userRules = rules[userRequest]{
	{"name", "required", "name is required", func(u userRequest) interface{} { return strings.TrimSpace(u.Name) }},
	{"name", "min=2,max=100", "name must be between 2 and 100 characters", func(u userRequest) interface{} { return u.Name }},
	{"email", "required", "email is required", func(u userRequest) interface{} { return u.Email }},
	{"email", "email", "email must be a valid address", func(u userRequest) interface{} { return u.Email }},
}

var taskRules = rules[taskRequest]{
	{"title", "required", "title is required", func(t taskRequest) interface{} { return strings.TrimSpace(t.Title) }},
	{"title", "min=3,max=100", "title must be between 3 and 100 characters", func(t taskRequest) interface{} { return t.Title }},
	{"description", "max=500", "description must be at most 500 characters", func(t taskRequest) interface{} { return t.Description }},
	{"status", "required", "status is required", func(t taskRequest) interface{} { return t.Status }},
	{"status", statusTag, statusMsg, func(t taskRequest) interface{} { return t.Status }},
	{"priority", "required", "priority is required", func(t taskRequest) interface{} { return t.Priority }},
	{"priority", priorityTag, priorityMsg, func(t taskRequest) interface{} { return t.Priority }},
	{"dueDate", "omitempty,datetime=2006-01-02", "dueDate must be a date in YYYY-MM-DD format", func(t taskRequest) interface{} { return t.DueDate }},
	{"assignedToId", "gt=0", "assignedToId must be a positive id", func(t taskRequest) interface{} { return derefOr(t.AssignedToID, 1) }},
}

var statusRules = rules[statusRequest]{
	{"status", "required", "status is required", func(s statusRequest) interface{} { return s.Status }},
	{"status", statusTag, statusMsg, func(s statusRequest) interface{} { return s.Status }},
}

// listQuery is the raw form of the list and export query strings.
type listQuery struct {
	Page         string
	Size         string
	Status       string
	Priority     string
	AssignedToID string
	Format       string
}

func readListQuery(q url.Values) listQuery {
	return listQuery{
		Page:         q.Get("page"),
		Size:         q.Get("size"),
		Status:       strings.ToUpper(q.Get("status")),
		Priority:     strings.ToUpper(q.Get("priority")),
		AssignedToID: q.Get("assignedToId"),
		Format:       strings.ToLower(q.Get("format")),
	}
}

var pageRules = rules[listQuery]{
	{"page", "omitempty,number", "page must be a non-negative integer", func(q listQuery) interface{} { return q.Page }},
	{"page", "gte=0", "page must be a non-negative integer", func(q listQuery) interface{} { return intValue(q.Page, 0) }},
	{"size", "omitempty,number", "size must be between 1 and 100", func(q listQuery) interface{} { return q.Size }},
	{"size", "min=1,max=100", "size must be between 1 and 100", func(q listQuery) interface{} { return intValue(q.Size, DefaultPageSize) }},
}

var filterRules = rules[listQuery]{
	{"status", "omitempty," + statusTag, statusMsg, func(q listQuery) interface{} { return q.Status }},
	{"priority", "omitempty," + priorityTag, priorityMsg, func(q listQuery) interface{} { return q.Priority }},
	{"assignedToId", "omitempty,number", "assignedToId must be a positive id", func(q listQuery) interface{} { return q.AssignedToID }},
	{"assignedToId", "gt=0", "assignedToId must be a positive id", func(q listQuery) interface{} { return int64Value(q.AssignedToID, 1) }},
}

// intValue parses s, returning def when s is empty and -1 when it does not
// fit an int.
func intValue(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func int64Value(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// pageParams returns the validated page number and size.
func (q listQuery) pageParams(v *validator.Validate) (int, int, error) {
	if err := pageRules.check(v, q); err != nil {
		return 0, 0, err
	}
	return intValue(q.Page, 0), intValue(q.Size, DefaultPageSize), nil
}

// filter returns the validated task filter.
func (q listQuery) filter(v *validator.Validate) (domain.TaskFilter, error) {
	var f domain.TaskFilter
	if err := filterRules.check(v, q); err != nil {
		return f, err
	}
	if q.Status != "" {
		s := domain.TaskStatus(q.Status)
		f.Status = &s
	}
	if q.Priority != "" {
		p := domain.TaskPriority(q.Priority)
		f.Priority = &p
	}
	if q.AssignedToID != "" {
		id := int64Value(q.AssignedToID, 0)
		f.AssigneeID = &id
	}
	return f, nil
}

func derefOr(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &d
}

// mergeErrors joins the field failures of several validation errors.
func mergeErrors(errs ...error) error {
	merged := &domerrors.ValidationError{}
	for _, err := range errs {
		if verr, ok := err.(*domerrors.ValidationError); ok {
			merged.Fields = append(merged.Fields, verr.Fields...)
		} else if err != nil {
			return err
		}
	}
	return merged.OrNil()
}
