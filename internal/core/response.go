// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type SuccessResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
	Data       any      `json:"data"`
	Code       string   `json:"code,omitempty"`
	Stack      []string `json:"stack,omitempty"`
}

type PaginatedData struct {
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func Respond(w http.ResponseWriter, status int, data any, message string) {
	JSON(w, status, SuccessResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func OK(w http.ResponseWriter, data any) {
	Respond(w, http.StatusOK, data, "Success")
}

func OKWithMessage(w http.ResponseWriter, data any, message string) {
	Respond(w, http.StatusOK, data, message)
}

func Paginated(w http.ResponseWriter, items any, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	OK(w, PaginatedData{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// JSONError renders err as the error envelope. Unclassified errors become 500s.
func JSONError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	errs := appErr.Errors
	if errs == nil {
		errs = []string{}
	}

	resp := ErrorResponse{
		StatusCode: appErr.StatusCode,
		Message:    appErr.Message,
		Success:    false,
		Errors:     errs,
		Code:       appErr.Code,
	}

	if exposeErrorDetail.Load() {
		resp.Stack = errorChain(err)
	}

	JSON(w, appErr.StatusCode, resp)
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, BadRequestError(message))
}

func InternalServerError(w http.ResponseWriter, err error) {
	JSONError(w, NewAppError(
		err,
		"internal server error",
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
	))
}
