package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
)

// naacBuckets is the fixed activity-type → accreditation-criteria mapping.
// A type in no bucket contributes to no mapping.
var naacBuckets = map[string][]string{
	"5.3.1_awards_recognitions": {"competition", "leadership"},
	"5.1.3_capacity_building":   {"certification", "conference"},
	"3.x_extension_outreach":    {"service"},
}

// reportStore is the aggregation surface the reporting engine needs.
type reportStore interface {
	CountStudents(ctx context.Context, f repositories.ReportFilters) (int64, error)
	ActivitiesByType(ctx context.Context, f repositories.ReportFilters, approvedOnly bool) ([]dto.TypeCount, error)
	ActivitiesByTypeUnjoined(ctx context.Context, f repositories.ReportFilters) ([]dto.TypeCount, error)
	CountApproved(ctx context.Context, f repositories.ReportFilters) (int64, error)
	Participation(ctx context.Context, f repositories.ReportFilters) ([]dto.ParticipationRow, error)
	ExportRows(ctx context.Context, f repositories.ReportFilters) ([]dto.ExportActivityRow, error)
	StatusCounts(ctx context.Context, studentID int64) (map[string]int64, error)
	TypeCounts(ctx context.Context, studentID int64) ([]dto.TypeCount, error)
}

// ReportService defines the interface for the reporting engine. Every report
// is recomputed from current state on each call.
type ReportService interface {
	Overview(ctx context.Context, f repositories.ReportFilters) (*dto.OverviewResponse, error)
	Naac(ctx context.Context, f repositories.ReportFilters, rawFilters map[string]string) (*dto.NaacResponse, error)
	ExportActivities(ctx context.Context, f repositories.ReportFilters) (*dto.ExportActivitiesResponse, error)
	ExportActivitiesCSV(ctx context.Context, f repositories.ReportFilters) (string, error)
	ExportOverview(ctx context.Context, f repositories.ReportFilters) (*dto.ExportOverviewResponse, error)
	ExportOverviewCSV(ctx context.Context, f repositories.ReportFilters) (string, error)
	StudentSummary(ctx context.Context, studentID int64) (*dto.StudentSummaryResponse, error)
}

// reportServiceImpl implements ReportService
type reportServiceImpl struct {
	reportRepo  reportStore
	studentRepo studentGetter
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo reportStore, studentRepo studentGetter) ReportService {
	return &reportServiceImpl{reportRepo: reportRepo, studentRepo: studentRepo}
}

// Overview computes the dashboard aggregate. The four underlying queries are
// independent, so they run concurrently; the first failure fails the report.
func (s *reportServiceImpl) Overview(ctx context.Context, f repositories.ReportFilters) (*dto.OverviewResponse, error) {
	var response dto.OverviewResponse

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.reportRepo.CountStudents(ctx, f)
		response.TotalStudents = total
		return err
	})
	g.Go(func() error {
		byType, err := s.reportRepo.ActivitiesByType(ctx, f, false)
		response.ActivitiesByType = byType
		return err
	})
	g.Go(func() error {
		verified, err := s.reportRepo.CountApproved(ctx, f)
		response.VerifiedCount = verified
		return err
	})
	g.Go(func() error {
		participation, err := s.reportRepo.Participation(ctx, f)
		response.Participation = participation
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error computing overview: %w", err)
	}
	return &response, nil
}

// Naac computes the accreditation export over approved activities only.
func (s *reportServiceImpl) Naac(ctx context.Context, f repositories.ReportFilters, rawFilters map[string]string) (*dto.NaacResponse, error) {
	totalStudents, err := s.reportRepo.CountStudents(ctx, f)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.reportRepo.ActivitiesByType(ctx, f, true)
	if err != nil {
		return nil, err
	}

	var approvedTotal int64
	for _, tc := range breakdown {
		approvedTotal += tc.Count
	}

	return &dto.NaacResponse{
		Meta:            dto.NaacMeta{GeneratedAt: time.Now().UTC(), Filters: rawFilters},
		Totals:          dto.NaacTotals{Students: totalStudents, ApprovedActivities: approvedTotal},
		BreakdownByType: breakdown,
		Mappings:        mapNaacBuckets(breakdown),
	}, nil
}

// mapNaacBuckets folds a per-type breakdown into the criteria buckets.
func mapNaacBuckets(breakdown []dto.TypeCount) map[string]int64 {
	mappings := make(map[string]int64, len(naacBuckets))
	for bucket, types := range naacBuckets {
		var sum int64
		for _, tc := range breakdown {
			for _, t := range types {
				if tc.Type == t {
					sum += tc.Count
				}
			}
		}
		mappings[bucket] = sum
	}
	return mappings
}

// ExportActivities returns the flattened activity export as JSON records.
func (s *reportServiceImpl) ExportActivities(ctx context.Context, f repositories.ReportFilters) (*dto.ExportActivitiesResponse, error) {
	rows, err := s.reportRepo.ExportRows(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.ExportActivitiesResponse{Records: rows}, nil
}

// ExportActivitiesCSV renders the flattened activity export as CSV.
func (s *reportServiceImpl) ExportActivitiesCSV(ctx context.Context, f repositories.ReportFilters) (string, error) {
	rows, err := s.reportRepo.ExportRows(ctx, f)
	if err != nil {
		return "", err
	}
	return renderActivitiesCSV(rows), nil
}

// ExportOverview returns the flat overview export.
func (s *reportServiceImpl) ExportOverview(ctx context.Context, f repositories.ReportFilters) (*dto.ExportOverviewResponse, error) {
	totalStudents, err := s.reportRepo.CountStudents(ctx, f)
	if err != nil {
		return nil, err
	}
	byType, err := s.reportRepo.ActivitiesByTypeUnjoined(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.ExportOverviewResponse{TotalStudents: totalStudents, ActivitiesByType: byType}, nil
}

// ExportOverviewCSV renders the flat overview export as metric,value rows.
func (s *reportServiceImpl) ExportOverviewCSV(ctx context.Context, f repositories.ReportFilters) (string, error) {
	data, err := s.ExportOverview(ctx, f)
	if err != nil {
		return "", err
	}

	lines := []string{"metric,value", fmt.Sprintf("totalStudents,%d", data.TotalStudents)}
	for _, tc := range data.ActivitiesByType {
		lines = append(lines, fmt.Sprintf("activitiesByType_%s,%d", tc.Type, tc.Count))
	}
	return strings.Join(lines, "\n"), nil
}

// StudentSummary computes one student's identity, credential snapshot and
// activity counts.
func (s *reportServiceImpl) StudentSummary(ctx context.Context, studentID int64) (*dto.StudentSummaryResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.reportRepo.StatusCounts(ctx, studentID)
	if err != nil {
		return nil, err
	}
	byType, err := s.reportRepo.TypeCounts(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &dto.StudentSummaryResponse{
		Student: dto.StudentSummaryIdentity{
			ID:            student.ID,
			Name:          student.Name,
			Roll:          student.Roll,
			Department:    student.Department,
			Year:          student.Year,
			GPA:           student.GPA,
			Credits:       student.Credits,
			AttendancePct: student.AttendancePct,
		},
		StatusCounts: statusCounts,
		ByType:       byType,
	}, nil
}

// renderActivitiesCSV renders export rows as CSV. A field is wrapped in
// double quotes only when it contains a comma; embedded quotes are doubled.
func renderActivitiesCSV(rows []dto.ExportActivityRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, "title,type,date,status,credits,studentName,roll,department,year")
	for _, r := range rows {
		fields := []string{
			csvField(r.Title), csvField(r.Type), csvField(r.Date),
			csvField(r.Status), strconv.Itoa(r.Credits),
			csvField(r.StudentName), csvField(r.Roll),
			csvField(r.Department), strconv.Itoa(r.Year),
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

func csvField(v string) string {
	if strings.Contains(v, ",") {
		return "\"" + strings.ReplaceAll(v, "\"", "\"\"") + "\""
	}
	return v
}
