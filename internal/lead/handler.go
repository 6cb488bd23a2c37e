// AngelaMos | 2026
// handler.go

package lead

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/finyara/leadflow/internal/access"
	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/middleware"
)

const uploadField = "file"

type Handler struct {
	service        *Service
	validator      *validator.Validate
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		validator:      validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	managerOnly := middleware.RequireRole(access.RoleManager)
	telecallerOnly := middleware.RequireRole(access.RoleTelecaller)

	r.Route("/leads", func(r chi.Router) {
		r.Use(authenticator)

		r.With(managerOnly).Post("/upload", h.Upload)
		r.With(managerOnly).Patch("/assign-bulk", h.Assign)
		r.With(managerOnly).Get("/manager-leads", h.ManagerLeads)
		r.With(managerOnly).Get("/status", h.ByStatus)
		r.With(managerOnly).Post("/delete-bulk", h.DeleteMany)
		r.With(middleware.RequireRole(access.RoleManager, access.RoleAdmin)).
			Get("/export", h.Export)
		r.With(middleware.RequireRole(access.RoleAdmin, access.RoleManager, access.RoleTelecaller)).
			Get("/my-leads", h.MyLeads)
		r.With(telecallerOnly).Get("/followups/upcoming", h.UpcomingFollowups)

		r.Route("/{leadID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.With(telecallerOnly).Patch("/", h.UpdateProgress)
			r.With(managerOnly).Delete("/", h.Delete)
			r.With(managerOnly).Patch("/reassign", h.Reassign)
		})
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return false
	}
	return true
}

// Upload accepts a multipart xlsx under the "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.NewAppError(
				core.ErrInvalidInput,
				fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes),
				http.StatusRequestEntityTooLarge,
				"PAYLOAD_TOO_LARGE",
			))
			return
		}
		core.BadRequest(w, "no file uploaded")
		return
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		core.BadRequest(w, "no file uploaded")
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := ParseSheet(file)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	count, err := h.service.Upload(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		header.Filename,
		rows,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, UploadResponse{Count: count}, "leads uploaded successfully")
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if !h.decode(w, r, &req) {
		return
	}

	n, err := h.service.Assign(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, AssignResponse{AssignedCount: n}, "leads assigned successfully")
}

func (h *Handler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req ReassignRequest
	if !h.decode(w, r, &req) {
		return
	}

	lead, err := h.service.Reassign(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "leadID"),
		req.NewTelecallerID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, ToLeadResponse(lead), "lead reassigned successfully")
}

func (h *Handler) ManagerLeads(w http.ResponseWriter, r *http.Request) {
	leads, assignment, err := h.service.ManagerLeads(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		r.URL.Query().Get("type"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToLeadList(leads, string(assignment)))
}

func (h *Handler) ByStatus(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")

	leads, err := h.service.ByStatus(r.Context(), middleware.ActorFromContext(r.Context()), value)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, ToLeadList(leads, ""), fmt.Sprintf("leads with status %q", value))
}

func (h *Handler) MyLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.MyLeads(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToLeadList(leads, ""))
}

func (h *Handler) UpcomingFollowups(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.UpcomingFollowups(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, ToLeadList(leads, ""), "upcoming follow-ups")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.service.Get(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "leadID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToLeadResponse(lead))
}

func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeadRequest
	if !h.decode(w, r, &req) {
		return
	}

	lead, err := h.service.UpdateProgress(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "leadID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, ToLeadResponse(lead), "lead updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		chi.URLParam(r, "leadID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, nil, "lead deleted successfully")
}

func (h *Handler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !h.decode(w, r, &req) {
		return
	}

	n, err := h.service.DeleteMany(r.Context(), middleware.ActorFromContext(r.Context()), req.IDs)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, BulkDeleteResponse{DeletedCount: n}, "leads deleted successfully")
}

// Export streams an xlsx of the caller's exportable leads.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.Export(
		r.Context(),
		middleware.ActorFromContext(r.Context()),
		r.URL.Query().Get("type"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteSheet(&buf, leads); err != nil {
		core.JSONError(w, err)
		return
	}

	w.Header().Set("Content-Type", XLSXMimeType)
	w.Header().Set("Content-Disposition", "attachment; filename=leads.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
