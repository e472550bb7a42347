package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
)

type fakeReportService struct {
	filters    repositories.ReportFilters
	rawFilters map[string]string
}

func (f *fakeReportService) Overview(_ context.Context, filters repositories.ReportFilters) (*dto.OverviewResponse, error) {
	f.filters = filters
	return &dto.OverviewResponse{TotalStudents: 10, ActivitiesByType: []dto.TypeCount{}}, nil
}

func (f *fakeReportService) Naac(_ context.Context, filters repositories.ReportFilters, raw map[string]string) (*dto.NaacResponse, error) {
	f.filters = filters
	f.rawFilters = raw
	return &dto.NaacResponse{Mappings: map[string]int64{}}, nil
}

func (f *fakeReportService) ExportActivities(_ context.Context, filters repositories.ReportFilters) (*dto.ExportActivitiesResponse, error) {
	f.filters = filters
	return &dto.ExportActivitiesResponse{Records: []dto.ExportActivityRow{{Title: "Row"}}}, nil
}

func (f *fakeReportService) ExportActivitiesCSV(_ context.Context, filters repositories.ReportFilters) (string, error) {
	f.filters = filters
	return "title,type,date,status,credits,studentName,roll,department,year\nRow,other,2025-01-01,approved,0,A,R1,CSE,3", nil
}

func (f *fakeReportService) ExportOverview(_ context.Context, filters repositories.ReportFilters) (*dto.ExportOverviewResponse, error) {
	f.filters = filters
	return &dto.ExportOverviewResponse{TotalStudents: 7}, nil
}

func (f *fakeReportService) ExportOverviewCSV(_ context.Context, filters repositories.ReportFilters) (string, error) {
	f.filters = filters
	return "metric,value\ntotalStudents,7", nil
}

func (f *fakeReportService) StudentSummary(_ context.Context, studentID int64) (*dto.StudentSummaryResponse, error) {
	return &dto.StudentSummaryResponse{
		Student:      dto.StudentSummaryIdentity{ID: studentID},
		StatusCounts: map[string]int64{},
	}, nil
}

func reportTestRouter(svc *fakeReportService) *gin.Engine {
	controller := NewReportController(svc, zerolog.Nop())
	router := gin.New()
	router.GET("/reports/overview", controller.GetOverview)
	router.GET("/reports/naac", controller.GetNaac)
	router.GET("/reports/export", controller.Export)
	router.GET("/reports/students/:id/summary", controller.GetStudentSummary)
	return router
}

func TestOverviewParsesFilters(t *testing.T) {
	svc := &fakeReportService{}
	router := reportTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/reports/overview?department=CSE,ECE&year=2,3,notanumber&type=competition&status=approved", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"CSE", "ECE"}, svc.filters.Departments)
	assert.Equal(t, []int{2, 3}, svc.filters.Years)
	assert.Equal(t, []string{"competition"}, svc.filters.Types)
	assert.Equal(t, []string{"approved"}, svc.filters.Statuses)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestNaacForwardsRawFilters(t *testing.T) {
	svc := &fakeReportService{}
	router := reportTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/reports/naac?department=CSE&year=3", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"department": "CSE", "year": "3"}, svc.rawFilters)
}

func TestExportDefaultsToActivitiesJSON(t *testing.T) {
	router := reportTestRouter(&fakeReportService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/export", nil))

	require.Equal(t, http.StatusOK, w.Code)

	// Exports are bare payloads, not wrapped in the success envelope.
	var payload dto.ExportActivitiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Records, 1)
	assert.Equal(t, "Row", payload.Records[0].Title)
	assert.NotContains(t, w.Body.String(), `"success"`)
}

func TestExportActivitiesCSV(t *testing.T) {
	router := reportTestRouter(&fakeReportService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/export?format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "title,type,date,status")
}

func TestExportOverviewJSON(t *testing.T) {
	router := reportTestRouter(&fakeReportService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/export?scope=overview", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var payload dto.ExportOverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, int64(7), payload.TotalStudents)
}

func TestExportOverviewCSV(t *testing.T) {
	router := reportTestRouter(&fakeReportService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/export?scope=overview&format=csv", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, "metric,value\ntotalStudents,7", w.Body.String())
}

func TestStudentSummaryInvalidID(t *testing.T) {
	router := reportTestRouter(&fakeReportService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/students/abc/summary", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
