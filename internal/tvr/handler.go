// AngelaMos | 2026
// handler.go

package tvr

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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
	r.Route("/tvr", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/lead/{leadID}", h.Create)
		r.Get("/{tvrID}", h.Get)
		r.Put("/{tvrID}", h.Update)
		r.Delete("/{tvrID}", h.Delete)
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (FormRequest, bool) {
	var req FormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return req, false
	}
	return req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	form, err := h.service.Create(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "leadID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Respond(w, http.StatusCreated, ToFormResponse(form),
		"TVR created and linked to the lead successfully")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:  parseIntQuery(r, "page", 1),
		Limit: parseIntQuery(r, "limit", 10),
	}
	params.Normalize()

	forms, total, err := h.service.List(r.Context(), middleware.ActorFromContext(r.Context()), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToFormResponseList(forms), params.Page, params.Limit, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.service.Get(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "tvrID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToFormResponse(form))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	form, err := h.service.Update(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "tvrID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, ToFormResponse(form), "TVR updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "tvrID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, nil, "TVR deleted successfully")
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
