package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/pkg/apperrors"
)

type fakeAuthService struct {
	registerReq *dto.RegisterRequest
	loginReq    *dto.LoginRequest
	registerErr error
	loginErr    error
}

func (f *fakeAuthService) Register(_ context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	f.registerReq = req
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &dto.RegisterResponse{User: dto.UserData{ID: 1, Email: req.Email, Role: "student"}}, nil
}

func (f *fakeAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	f.loginReq = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.LoginResponse{Token: "signed.jwt.token", User: dto.UserData{ID: 1, Email: req.Email}}, nil
}

func authTestRouter(svc *fakeAuthService) *gin.Engine {
	controller := NewAuthController(svc, zerolog.Nop())
	router := gin.New()
	router.POST("/auth/register", controller.Register)
	router.POST("/auth/login", controller.Login)
	router.POST("/auth/refresh", controller.Refresh)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	svc := &fakeAuthService{}
	router := authTestRouter(svc)

	w := postJSON(router, "/auth/register",
		`{"name":"Asha Rao","email":"asha@school.edu","roll":"CS21B042","department":"CSE","year":3,"password":"s3cret-pass"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.registerReq)
	assert.Equal(t, "CS21B042", svc.registerReq.Roll)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestRegisterMissingFields(t *testing.T) {
	svc := &fakeAuthService{}
	router := authTestRouter(svc)

	w := postJSON(router, "/auth/register", `{"email":"asha@school.edu"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_001")
	assert.Nil(t, svc.registerReq)
}

func TestRegisterDuplicateEmailEndpoint(t *testing.T) {
	svc := &fakeAuthService{registerErr: apperrors.ErrEmailAlreadyExists}
	router := authTestRouter(svc)

	w := postJSON(router, "/auth/register",
		`{"name":"Asha Rao","email":"asha@school.edu","roll":"CS21B042","department":"CSE","year":3,"password":"s3cret-pass"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RES_002")
}

func TestLoginEndpoint(t *testing.T) {
	router := authTestRouter(&fakeAuthService{})

	w := postJSON(router, "/auth/login", `{"email":"asha@school.edu","password":"s3cret-pass"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "signed.jwt.token")
}

func TestLoginBadCredentials(t *testing.T) {
	router := authTestRouter(&fakeAuthService{loginErr: apperrors.ErrInvalidCredentials})

	w := postJSON(router, "/auth/login", `{"email":"asha@school.edu","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestRefreshIsStubbed(t *testing.T) {
	router := authTestRouter(&fakeAuthService{})

	w := postJSON(router, "/auth/refresh", `{}`)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Contains(t, w.Body.String(), "refresh rotation")
}
