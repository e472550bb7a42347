package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// ReportFilters holds the shared filter vocabulary of the reporting
// endpoints. Slices are disjunctions within a dimension; department and year
// apply to the owning student, the rest to the activity itself.
type ReportFilters struct {
	Departments []string
	Years       []int
	Types       []string
	Statuses    []string
	From        *time.Time
	To          *time.Time
}

// HasStudentFilters reports whether any student-side dimension is set.
func (f ReportFilters) HasStudentFilters() bool {
	return len(f.Departments) > 0 || len(f.Years) > 0
}

// ReportRepository runs the aggregation queries behind the reporting
// endpoints. All reads, no caching; every report is recomputed per call.
type ReportRepository struct {
	DB *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{DB: db}
}

func applyStudentFilters(builder squirrel.SelectBuilder, f ReportFilters, alias string) squirrel.SelectBuilder {
	if len(f.Departments) > 0 {
		builder = builder.Where(squirrel.Eq{alias + ".department": f.Departments})
	}
	if len(f.Years) > 0 {
		builder = builder.Where(squirrel.Eq{alias + ".year": f.Years})
	}
	return builder
}

func applyActivityFilters(builder squirrel.SelectBuilder, f ReportFilters, alias string) squirrel.SelectBuilder {
	if len(f.Types) > 0 {
		builder = builder.Where(squirrel.Eq{alias + ".type": f.Types})
	}
	if len(f.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{alias + ".status": f.Statuses})
	}
	if f.From != nil {
		builder = builder.Where(squirrel.GtOrEq{alias + ".activity_date": *f.From})
	}
	if f.To != nil {
		builder = builder.Where(squirrel.LtOrEq{alias + ".activity_date": *f.To})
	}
	return builder
}

// CountStudents counts students matching the student-side filters.
func (r *ReportRepository) CountStudents(ctx context.Context, f ReportFilters) (int64, error) {
	builder := squirrel.Select("count(*)").From("students s").
		PlaceholderFormat(squirrel.Dollar)
	builder = applyStudentFilters(builder, f, "s")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return 0, err
	}
	return count, nil
}

// ActivitiesByType groups matching activities by type, largest group first.
// When approvedOnly is set the status dimension is pinned to approved
// regardless of the incoming filter.
func (r *ReportRepository) ActivitiesByType(ctx context.Context, f ReportFilters, approvedOnly bool) ([]dto.TypeCount, error) {
	if approvedOnly {
		f.Statuses = []string{string(models.StatusApproved)}
	}

	builder := squirrel.Select("a.type", "count(*)").
		From("activities a").
		Join("students s ON a.student_id = s.id").
		GroupBy("a.type").
		OrderBy("count(*) DESC").
		PlaceholderFormat(squirrel.Dollar)
	builder = applyActivityFilters(builder, f, "a")
	builder = applyStudentFilters(builder, f, "s")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTypeCounts(ctx, sqlStr, args)
}

// ActivitiesByTypeUnjoined groups activities by type using activity-side
// filters only; the flat overview export does not join students.
func (r *ReportRepository) ActivitiesByTypeUnjoined(ctx context.Context, f ReportFilters) ([]dto.TypeCount, error) {
	builder := squirrel.Select("a.type", "count(*)").
		From("activities a").
		GroupBy("a.type").
		OrderBy("count(*) DESC").
		PlaceholderFormat(squirrel.Dollar)
	builder = applyActivityFilters(builder, f, "a")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTypeCounts(ctx, sqlStr, args)
}

// CountApproved counts approved activities matching the filters.
func (r *ReportRepository) CountApproved(ctx context.Context, f ReportFilters) (int64, error) {
	f.Statuses = []string{string(models.StatusApproved)}

	builder := squirrel.Select("count(*)").
		From("activities a").
		Join("students s ON a.student_id = s.id").
		PlaceholderFormat(squirrel.Dollar)
	builder = applyActivityFilters(builder, f, "a")
	builder = applyStudentFilters(builder, f, "s")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Msg("Error counting approved activities")
		return 0, err
	}
	return count, nil
}

// Participation counts distinct students with at least one matching activity,
// grouped by department and year.
func (r *ReportRepository) Participation(ctx context.Context, f ReportFilters) ([]dto.ParticipationRow, error) {
	builder := squirrel.Select("s.department", "s.year", "count(DISTINCT a.student_id)").
		From("activities a").
		Join("students s ON a.student_id = s.id").
		GroupBy("s.department", "s.year").
		OrderBy("s.department", "s.year").
		PlaceholderFormat(squirrel.Dollar)
	builder = applyActivityFilters(builder, f, "a")
	builder = applyStudentFilters(builder, f, "s")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying participation")
		return nil, err
	}
	defer rows.Close()

	result := []dto.ParticipationRow{}
	for rows.Next() {
		var row dto.ParticipationRow
		if err := rows.Scan(&row.Department, &row.Year, &row.Participants); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ExportRows retrieves matching activities flattened with their owning
// student's identity fields.
func (r *ReportRepository) ExportRows(ctx context.Context, f ReportFilters) ([]dto.ExportActivityRow, error) {
	builder := squirrel.Select(
		"a.title", "a.type", "a.activity_date", "a.status", "a.credits",
		"s.name", "s.roll", "s.department", "s.year",
	).From("activities a").
		Join("students s ON a.student_id = s.id").
		OrderBy("a.id").
		PlaceholderFormat(squirrel.Dollar)
	builder = applyActivityFilters(builder, f, "a")
	builder = applyStudentFilters(builder, f, "s")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying export rows")
		return nil, err
	}
	defer rows.Close()

	result := []dto.ExportActivityRow{}
	for rows.Next() {
		var row dto.ExportActivityRow
		var date time.Time
		if err := rows.Scan(&row.Title, &row.Type, &date, &row.Status, &row.Credits,
			&row.StudentName, &row.Roll, &row.Department, &row.Year); err != nil {
			return nil, err
		}
		row.Date = date.Format("2006-01-02")
		result = append(result, row)
	}
	return result, rows.Err()
}

// StatusCounts groups one student's activities by status.
func (r *ReportRepository) StatusCounts(ctx context.Context, studentID int64) (map[string]int64, error) {
	sqlStr, args, err := squirrel.Select("status", "count(*)").
		From("activities").
		Where(squirrel.Eq{"student_id": studentID}).
		GroupBy("status").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying status counts")
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// TypeCounts groups one student's activities by type.
func (r *ReportRepository) TypeCounts(ctx context.Context, studentID int64) ([]dto.TypeCount, error) {
	sqlStr, args, err := squirrel.Select("type", "count(*)").
		From("activities").
		Where(squirrel.Eq{"student_id": studentID}).
		GroupBy("type").
		OrderBy("count(*) DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryTypeCounts(ctx, sqlStr, args)
}

func (r *ReportRepository) queryTypeCounts(ctx context.Context, sqlStr string, args []interface{}) ([]dto.TypeCount, error) {
	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying type counts")
		return nil, err
	}
	defer rows.Close()

	result := []dto.TypeCount{}
	for rows.Next() {
		var tc dto.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		result = append(result, tc)
	}
	return result, rows.Err()
}
