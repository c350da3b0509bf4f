package handlers

import (
	"time"

	"github.com/amirhosseinghanipour/taskmanager/internal/domain"
)

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type taskRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	DueDate      string `json:"dueDate"`
	AssignedToID *int64 `json:"assignedToId"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// UserResponse is the JSON shape of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AssigneeResponse is the user summary embedded in a task.
type AssigneeResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskResponse is the JSON shape of a task. Absent optional fields encode as null.
type TaskResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     *string           `json:"dueDate"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	AssignedTo  *AssigneeResponse `json:"assignedTo"`
}

// PageResponse wraps one page of results.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toTaskResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Description != "" {
		d := t.Description
		resp.Description = &d
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(DateLayout)
		resp.DueDate = &d
	}
	if t.Assignee != nil {
		resp.AssignedTo = &AssigneeResponse{ID: t.Assignee.ID, Name: t.Assignee.Name, Email: t.Assignee.Email}
	}
	return resp
}

func toPageResponse[T, R any](p domain.Page[T], conv func(T) R) PageResponse[R] {
	content := make([]R, 0, len(p.Content))
	for _, item := range p.Content {
		content = append(content, conv(item))
	}
	return PageResponse[R]{
		Content:       content,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		First:         p.First,
		Last:          p.Last,
	}
}
