package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/services"
	"github.com/studenthub/backend/internal/middleware"
)

type fakeStudentService struct {
	profileID  int64
	upload     *services.UploadSubmission
	finalize   *dto.SubmitActivityRequest
	presigned  bool
	portfolios int
}

func (f *fakeStudentService) GetProfile(_ context.Context, studentID int64) (*dto.StudentProfileResponse, error) {
	f.profileID = studentID
	return &dto.StudentProfileResponse{ID: studentID, Roll: "CS21B042"}, nil
}

func (f *fakeStudentService) ListActivities(_ context.Context, studentID int64, page, limit int) (*dto.ActivityListResponse, error) {
	return &dto.ActivityListResponse{Items: []dto.ActivityResponse{}, Page: page, Limit: limit}, nil
}

func (f *fakeStudentService) SubmitUpload(_ context.Context, _ int64, submission *services.UploadSubmission) (*dto.CreatedResponse, error) {
	f.upload = submission
	return &dto.CreatedResponse{ID: 1}, nil
}

func (f *fakeStudentService) Presign(_ context.Context, studentID int64, filename, fileType string) (*dto.PresignResponse, error) {
	f.presigned = true
	return &dto.PresignResponse{UploadURL: "http://localhost/put", FileKey: "students/1/key.pdf"}, nil
}

func (f *fakeStudentService) Finalize(_ context.Context, _ int64, req *dto.SubmitActivityRequest) (*dto.CreatedResponse, error) {
	f.finalize = req
	return &dto.CreatedResponse{ID: 2}, nil
}

func (f *fakeStudentService) GeneratePortfolio(_ context.Context, studentID int64) (*dto.PortfolioResponse, error) {
	f.portfolios++
	return &dto.PortfolioResponse{URL: "http://localhost/p.pdf", Key: "portfolios/1/p.pdf"}, nil
}

func (f *fakeStudentService) ListNotifications(_ context.Context, _ int64) ([]dto.NotificationResponse, error) {
	return []dto.NotificationResponse{}, nil
}

// caller simulates what JWTAuth stores in the request context.
type caller struct {
	userID    int64
	role      models.Role
	studentID *int64
}

func studentTestRouter(svc *fakeStudentService, who caller) *gin.Engine {
	controller := NewStudentController(svc, zerolog.Nop())
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, who.userID)
		c.Set(middleware.ContextRole, string(who.role))
		if who.studentID != nil {
			c.Set(middleware.ContextStudentID, *who.studentID)
		}
	})
	router.GET("/students/:id", controller.GetProfile)
	router.GET("/students/:id/activities", controller.GetActivities)
	router.POST("/students/:id/activities", controller.PostActivity)
	router.POST("/students/:id/portfolio", controller.GeneratePortfolio)
	router.GET("/students/:id/notifications", controller.GetNotifications)
	return router
}

func asStudent(studentID int64) caller {
	return caller{userID: 10, role: models.RoleStudent, studentID: &studentID}
}

func TestGetProfileOwnRecord(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentTestRouter(svc, asStudent(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), svc.profileID)
}

func TestGetProfileOtherStudentForbidden(t *testing.T) {
	router := studentTestRouter(&fakeStudentService{}, asStudent(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/2", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_005")
}

func TestFacultyReachesAnyStudent(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentTestRouter(svc, caller{userID: 2, role: models.RoleFaculty})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), svc.profileID)
}

func TestGetProfileInvalidID(t *testing.T) {
	router := studentTestRouter(&fakeStudentService{}, asStudent(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostActivityPresign(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentTestRouter(svc, asStudent(1))

	body := bytes.NewBufferString(`{"action":"presign","filename":"cert.pdf","fileType":"application/pdf"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/1/activities", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.presigned)
	assert.Contains(t, w.Body.String(), "uploadUrl")
}

func TestPostActivityFinalize(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentTestRouter(svc, asStudent(1))

	body := bytes.NewBufferString(`{"action":"finalize","title":"NSS Camp","type":"service","date":"2025-02-01","fileKey":"students/1/k.pdf","fileType":"application/pdf"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/1/activities", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.finalize)
	assert.Equal(t, "NSS Camp", svc.finalize.Title)
}

func TestPostActivityUnknownAction(t *testing.T) {
	router := studentTestRouter(&fakeStudentService{}, asStudent(1))

	body := bytes.NewBufferString(`{"action":"teleport"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/1/activities", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid action")
}

func TestPostActivityMultipartUpload(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentTestRouter(svc, asStudent(1))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Hackathon Winner"))
	require.NoError(t, mw.WriteField("type", "competition"))
	require.NoError(t, mw.WriteField("date", "2025-03-14"))
	require.NoError(t, mw.WriteField("credits", "2"))
	part, err := mw.CreateFormFile("file", "proof.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/students/1/activities", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.upload)
	assert.Equal(t, "Hackathon Winner", svc.upload.Title)
	assert.Equal(t, "competition", svc.upload.Type)
	assert.Equal(t, 2, svc.upload.Credits)
	assert.Equal(t, []byte("%PDF-1.4 fake"), svc.upload.Data)
}

func TestGeneratePortfolioEndpoint(t *testing.T) {
	svc := &fakeStudentService{}
	router := studentTestRouter(svc, asStudent(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/students/1/portfolio", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.portfolios)
	assert.Contains(t, w.Body.String(), "portfolios/1/p.pdf")
}

func TestNotificationsForbiddenForOthers(t *testing.T) {
	router := studentTestRouter(&fakeStudentService{}, asStudent(1))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/3/notifications", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}
