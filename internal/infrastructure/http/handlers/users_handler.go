package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/user"
)

// UsersHandler serves /api/users.
type UsersHandler struct {
	users    *user.Manager
	validate *validator.Validate
	log      zerolog.Logger
}

// NewUsersHandler creates a handler for user resource endpoints.
func NewUsersHandler(users *user.Manager, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{users: users, validate: validator.New(), log: log}
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body userRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	body.Email = SanitizeEmail(body.Email)
	if err := userRules.check(h.validate, body); err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	created, err := h.users.Create(r.Context(), user.CreateInput{
		Name:  body.Name,
		Email: body.Email,
	})
	if err != nil {
		logMutation(h.log, r, "user.create", 0, err)
		writeDomainErr(w, r, h.log, err)
		return
	}
	logMutation(h.log, r, "user.create", created.ID, nil)
	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

// List handles GET /api/users, newest first.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, size, err := readListQuery(r.URL.Query()).pageParams(h.validate)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	result, err := h.users.List(r.Context(), page, size)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(result, toUserResponse))
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeErr(w, r, http.StatusBadRequest, "invalid user id")
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}
