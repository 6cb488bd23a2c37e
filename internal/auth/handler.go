// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/finyara/leadflow/internal/core"
	"github.com/finyara/leadflow/internal/middleware"
)

type Handler struct {
	service    *Service
	validator  *validator.Validate
	cookieName string
	secure     bool
	otpLimiter func(http.Handler) http.Handler
}

type HandlerConfig struct {
	CookieName   string
	SecureCookie bool
	OTPLimiter   func(http.Handler) http.Handler
}

func NewHandler(service *Service, cfg HandlerConfig) *Handler {
	limiter := cfg.OTPLimiter
	if limiter == nil {
		limiter = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{
		service:    service,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
		cookieName: cfg.CookieName,
		secure:     cfg.SecureCookie,
		otpLimiter: limiter,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(h.otpLimiter).Post("/send-otp", h.SendOTP)
		r.With(h.otpLimiter).Post("/verify-otp", h.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) decodeIdentity(w http.ResponseWriter, r *http.Request, req any, id *Identity) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(err))
		return false
	}

	if id.Empty() {
		core.BadRequest(w, "email or userName is required")
		return false
	}

	return true
}

func (h *Handler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if !h.decodeIdentity(w, r, &req, &req.Identity) {
		return
	}

	if err := h.service.SendOTP(r.Context(), req.Identity); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OKWithMessage(w, nil, "OTP sent to registered email")
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !h.decodeIdentity(w, r, &req, &req.Identity) {
		return
	}

	result, err := h.service.VerifyOTP(r.Context(), req.Identity, req.OTP)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		MaxAge:   int(time.Until(result.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	core.OKWithMessage(w, LoginResponse{
		User:      ToSessionUser(result.User),
		ExpiresAt: result.ExpiresAt,
	}, "login successful")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.GetClaims(r.Context())); err != nil {
		core.JSONError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	core.OKWithMessage(w, nil, "logged out")
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToSessionUser(user))
}
