// AngelaMos | 2026
// errors_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestAsAppErrorClassifies(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"wrapped app error", fmt.Errorf("get lead: %w", NotFoundError("lead")), http.StatusNotFound, "NOT_FOUND"},
		{"not found sentinel", fmt.Errorf("x: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"forbidden sentinel", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"duplicate sentinel", ErrDuplicateKey, http.StatusConflict, "CONFLICT"},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{"token revoked", ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "CONFLICT"},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusNotFound, "NOT_FOUND"},
		{"check violation", &pgconn.PgError{Code: "23514", Message: "bad"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid text", &pgconn.PgError{Code: "22P02"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"other pg error", &pgconn.PgError{Code: "40001"}, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := AsAppError(tt.err)
			require.Equal(t, tt.status, appErr.StatusCode)
			require.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestPgErrorsKeepSentinels(t *testing.T) {
	err := fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	require.True(t, IsDuplicateKeyError(err))
	require.ErrorIs(t, AsAppError(err), ErrDuplicateKey)
	require.False(t, IsDuplicateKeyError(errors.New("plain")))
}

func TestValidationErrorListsFields(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
		Count int    `validate:"gte=1"`
		Role  string `validate:"oneof=ADMIN MANAGER"`
	}

	err := validator.New().Struct(req{Email: "nope", Role: "X"})
	appErr := ValidationError(err)

	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	require.Equal(t, []string{
		"email must be a valid email",
		"count must be at least 1",
		"role must be one of [ADMIN MANAGER]",
	}, appErr.Errors)
	require.ErrorIs(t, appErr, ErrInvalidInput)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJSONErrorEnvelope(t *testing.T) {
	t.Cleanup(func() { SetExposeErrorDetail(false) })

	SetExposeErrorDetail(false)
	rec := httptest.NewRecorder()
	JSONError(rec, fmt.Errorf("delete lead: %w", NotFoundError("lead")))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeError(t, rec)
	require.Equal(t, http.StatusNotFound, body.StatusCode)
	require.Equal(t, "lead not found", body.Message)
	require.False(t, body.Success)
	require.NotNil(t, body.Errors)
	require.Empty(t, body.Errors)
	require.Nil(t, body.Data)
	require.Empty(t, body.Stack)

	SetExposeErrorDetail(true)
	rec = httptest.NewRecorder()
	JSONError(rec, fmt.Errorf("delete lead: %w", NotFoundError("lead")))

	body = decodeError(t, rec)
	require.Equal(t, "delete lead: lead not found: resource not found", body.Stack[0])
	require.Len(t, body.Stack, 3)
}

func TestPaginatedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a", "b"}, 2, 2, 5)

	var body struct {
		Success bool          `json:"success"`
		Data    PaginatedData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 3, body.Data.Pagination.TotalPages)
	require.Equal(t, 5, body.Data.Pagination.Total)
}
