package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/pkg/apperrors"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// StudentRepository handles database operations for students.
type StudentRepository struct {
	DB *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{DB: db}
}

func selectStudentQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"id", "name", "roll", "email", "department", "year",
		"gpa", "credits", "attendance_pct", "created_at", "updated_at",
	).From("students").PlaceholderFormat(squirrel.Dollar)
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var student models.Student
	err := row.Scan(
		&student.ID, &student.Name, &student.Roll, &student.Email,
		&student.Department, &student.Year, &student.GPA, &student.Credits,
		&student.AttendancePct, &student.CreatedAt, &student.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, err
	}
	return &student, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sqlStr, args, err := selectStudentQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student by ID SQL")
		return nil, err
	}
	return scanStudent(r.DB.QueryRow(ctx, sqlStr, args...))
}

// RollExists checks whether a roll number is already registered.
func (r *StudentRepository) RollExists(ctx context.Context, roll string) (bool, error) {
	sqlStr, args, err := squirrel.Select("1").From("students").
		Where(squirrel.Eq{"roll": roll}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = r.DB.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
