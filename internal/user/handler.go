// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireRole(access.RoleAdmin, access.RoleManager)).
			Post("/", h.CreateUser)
		r.With(middleware.RequireRole(access.RoleAdmin, access.RoleManager)).
			Get("/", h.ListUsers)
		r.With(middleware.RequireRole(access.RoleManager, access.RoleTelecaller)).
			Get("/team", h.ListTeam)
		r.Get("/{userID}", h.GetUser)
		r.Patch("/{userID}", h.UpdateUser)
	})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return
	}

	user, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Respond(w, http.StatusCreated, CreatedUserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}, "user created, OTP sent to email")
}

// ListUsers returns manager trees; ADMIN may narrow to one manager with
// ?managerId=.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	trees, err := h.service.List(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		r.URL.Query().Get("managerId"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, UserTreeResponse{Users: trees})
}

func (h *Handler) ListTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.service.Team(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		r.URL.Query().Get("role"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, TeamResponse{Users: team})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return
	}

	user, err := h.service.Update(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "userID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, ToUserResponse(user), "user updated")
}
