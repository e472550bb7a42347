package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studenthub/backend/internal/pkg/apperrors"
)

func serveError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	HandleAPIError(c, err)
	return w
}

func TestHandleAPIErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"student not found", apperrors.ErrStudentNotFound, 404, "RES_001"},
		{"activity not found", apperrors.ErrActivityNotFound, 404, "RES_001"},
		{"file not found", apperrors.ErrFileNotFound, 404, "RES_001"},
		{"user not found", apperrors.ErrUserNotFound, 404, "RES_001"},
		{"email taken", apperrors.ErrEmailAlreadyExists, 409, "RES_002"},
		{"roll taken", apperrors.ErrRollAlreadyExists, 409, "RES_002"},
		{"generic conflict", apperrors.ErrResourceAlreadyExists, 409, "RES_002"},
		{"bad credentials", apperrors.ErrInvalidCredentials, 401, "AUTH_001"},
		{"expired token", apperrors.ErrTokenExpired, 401, "AUTH_003"},
		{"forbidden", apperrors.ErrPermissionDenied, 403, "AUTH_005"},
		{"validation", apperrors.NewValidationError("missing fields: title"), 400, "VAL_001"},
		{"not implemented", apperrors.ErrNotImplemented, 501, "SRV_002"},
		{"unknown", errors.New("pg connection reset"), 500, "SRV_001"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serveError(tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.code)
		})
	}
}

func TestValidationErrorKeepsMessage(t *testing.T) {
	w := serveError(apperrors.NewValidationError("missing fields: title, date"))
	assert.Contains(t, w.Body.String(), "missing fields: title, date")
}

func TestUnknownErrorHidesInternals(t *testing.T) {
	w := serveError(errors.New("pq: relation activities does not exist"))
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "Internal server error")
}
