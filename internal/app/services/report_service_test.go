package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
)

type fakeReportStore struct {
	students      int64
	byType        []dto.TypeCount
	byTypeNoJoin  []dto.TypeCount
	approved      int64
	participation []dto.ParticipationRow
	exportRows    []dto.ExportActivityRow
	statusCounts  map[string]int64
	typeCounts    []dto.TypeCount
}

func (f *fakeReportStore) CountStudents(context.Context, repositories.ReportFilters) (int64, error) {
	return f.students, nil
}

func (f *fakeReportStore) ActivitiesByType(_ context.Context, _ repositories.ReportFilters, approvedOnly bool) ([]dto.TypeCount, error) {
	return f.byType, nil
}

func (f *fakeReportStore) ActivitiesByTypeUnjoined(context.Context, repositories.ReportFilters) ([]dto.TypeCount, error) {
	return f.byTypeNoJoin, nil
}

func (f *fakeReportStore) CountApproved(context.Context, repositories.ReportFilters) (int64, error) {
	return f.approved, nil
}

func (f *fakeReportStore) Participation(context.Context, repositories.ReportFilters) ([]dto.ParticipationRow, error) {
	return f.participation, nil
}

func (f *fakeReportStore) ExportRows(context.Context, repositories.ReportFilters) ([]dto.ExportActivityRow, error) {
	return f.exportRows, nil
}

func (f *fakeReportStore) StatusCounts(context.Context, int64) (map[string]int64, error) {
	return f.statusCounts, nil
}

func (f *fakeReportStore) TypeCounts(context.Context, int64) ([]dto.TypeCount, error) {
	return f.typeCounts, nil
}

func TestOverviewAggregates(t *testing.T) {
	store := &fakeReportStore{
		students: 120,
		byType: []dto.TypeCount{
			{Type: "competition", Count: 8},
			{Type: "certification", Count: 5},
			{Type: "service", Count: 2},
		},
		approved: 11,
		participation: []dto.ParticipationRow{
			{Department: "CSE", Year: 3, Participants: 14},
		},
	}
	svc := NewReportService(store, &fakeStudentGetter{})

	resp, err := svc.Overview(context.Background(), repositories.ReportFilters{})
	require.NoError(t, err)

	assert.Equal(t, int64(120), resp.TotalStudents)
	assert.Equal(t, int64(11), resp.VerifiedCount)
	require.Len(t, resp.Participation, 1)
	assert.Equal(t, int64(14), resp.Participation[0].Participants)

	var sum int64
	for _, tc := range resp.ActivitiesByType {
		sum += tc.Count
	}
	assert.Equal(t, int64(15), sum)
}

func TestNaacBucketsMapping(t *testing.T) {
	store := &fakeReportStore{
		students: 40,
		byType: []dto.TypeCount{
			{Type: "competition", Count: 2},
			{Type: "leadership", Count: 1},
			{Type: "certification", Count: 3},
			{Type: "conference", Count: 4},
			{Type: "service", Count: 5},
			{Type: "other", Count: 9},
		},
	}
	svc := NewReportService(store, &fakeStudentGetter{})

	raw := map[string]string{"department": "CSE"}
	resp, err := svc.Naac(context.Background(), repositories.ReportFilters{}, raw)
	require.NoError(t, err)

	assert.Equal(t, int64(40), resp.Totals.Students)
	assert.Equal(t, int64(24), resp.Totals.ApprovedActivities)
	assert.Equal(t, raw, resp.Meta.Filters)
	assert.False(t, resp.Meta.GeneratedAt.IsZero())

	assert.Equal(t, int64(3), resp.Mappings["5.3.1_awards_recognitions"])
	assert.Equal(t, int64(7), resp.Mappings["5.1.3_capacity_building"])
	assert.Equal(t, int64(5), resp.Mappings["3.x_extension_outreach"])
	// "other" lands in no bucket
	assert.Len(t, resp.Mappings, 3)
}

func TestExportActivitiesCSVQuoting(t *testing.T) {
	store := &fakeReportStore{
		exportRows: []dto.ExportActivityRow{
			{
				Title: "AI, ML and Robotics Workshop", Type: "conference",
				Date: "2025-03-14", Status: "approved", Credits: 2,
				StudentName: "Rao, Asha", Roll: "CS21B042", Department: "CSE", Year: 3,
			},
			{
				Title: "Plain Title", Type: "service",
				Date: "2025-01-02", Status: "pending", Credits: 0,
				StudentName: "Ben", Roll: "EC21B001", Department: "ECE", Year: 2,
			},
		},
	}
	svc := NewReportService(store, &fakeStudentGetter{})

	out, err := svc.ExportActivitiesCSV(context.Background(), repositories.ReportFilters{})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,type,date,status,credits,studentName,roll,department,year", lines[0])
	assert.Contains(t, lines[1], `"AI, ML and Robotics Workshop"`)
	assert.Contains(t, lines[1], `"Rao, Asha"`)
	assert.NotContains(t, lines[2], `"`)

	// The output must survive a standard CSV parse with fields intact.
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "AI, ML and Robotics Workshop", records[1][0])
	assert.Equal(t, "Rao, Asha", records[1][5])
	assert.Equal(t, "2025-03-14", records[1][2])
}

func TestExportActivitiesCSVEscapesQuotes(t *testing.T) {
	store := &fakeReportStore{
		exportRows: []dto.ExportActivityRow{
			{Title: `The "Best, Ever" Talk`, Type: "other", Date: "2025-06-01", Status: "approved"},
		},
	}
	svc := NewReportService(store, &fakeStudentGetter{})

	out, err := svc.ExportActivitiesCSV(context.Background(), repositories.ReportFilters{})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, `The "Best, Ever" Talk`, records[1][0])
}

func TestExportOverviewCSV(t *testing.T) {
	store := &fakeReportStore{
		students: 7,
		byTypeNoJoin: []dto.TypeCount{
			{Type: "competition", Count: 3},
			{Type: "service", Count: 1},
		},
	}
	svc := NewReportService(store, &fakeStudentGetter{})

	out, err := svc.ExportOverviewCSV(context.Background(), repositories.ReportFilters{})
	require.NoError(t, err)

	assert.Equal(t, "metric,value\ntotalStudents,7\nactivitiesByType_competition,3\nactivitiesByType_service,1", out)
}

func TestStudentSummary(t *testing.T) {
	store := &fakeReportStore{
		statusCounts: map[string]int64{"pending": 2, "approved": 1},
		typeCounts:   []dto.TypeCount{{Type: "competition", Count: 3}},
	}
	students := &fakeStudentGetter{students: map[int64]*models.Student{
		1: {ID: 1, Name: "Asha Rao", Roll: "CS21B042", Department: "CSE", Year: 3, GPA: 8.9, Credits: 15, AttendancePct: 92.5},
	}}
	svc := NewReportService(store, students)

	resp, err := svc.StudentSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "CS21B042", resp.Student.Roll)
	assert.Equal(t, 15, resp.Student.Credits)
	assert.Equal(t, int64(2), resp.StatusCounts["pending"])
	assert.Equal(t, int64(1), resp.StatusCounts["approved"])
	require.Len(t, resp.ByType, 1)

	// Summaries are pure reads; repeating the call yields the same result.
	again, err := svc.StudentSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, resp, again)
}

func TestStudentSummaryUnknownStudent(t *testing.T) {
	svc := NewReportService(&fakeReportStore{}, &fakeStudentGetter{})

	_, err := svc.StudentSummary(context.Background(), 99)
	require.Error(t, err)
}
