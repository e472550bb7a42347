package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/db"
	"github.com/studenthub/backend/internal/pkg/apperrors"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// UserRepository handles database operations for credential records.
type UserRepository struct {
	DB       *pgxpool.Pool
	database *db.PostgresDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{DB: database.Pool, database: database}
}

func selectUserQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"id", "name", "email", "password_hash", "role", "student_id", "created_at",
	).From("users").PlaceholderFormat(squirrel.Dollar)
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Role, &user.StudentID, &user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sqlStr, args, err := selectUserQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRow(ctx, sqlStr, args...))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sqlStr, args, err := selectUserQuery().Where(squirrel.Eq{"email": email}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRow(ctx, sqlStr, args...))
}

// EmailExists checks if an email is already registered.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sqlStr, args, err := squirrel.Select("1").From("users").
		Where(squirrel.Eq{"email": email}).
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

// CreateStudentAccount creates a student row and its credential record in a
// single transaction. The user's StudentID is populated from the new student
// row before insert.
func (r *UserRepository) CreateStudentAccount(ctx context.Context, student *models.Student, user *models.User) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		studentSQL, studentArgs, err := squirrel.Insert("students").
			Columns("name", "roll", "email", "department", "year").
			Values(student.Name, student.Roll, student.Email, student.Department, student.Year).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, studentSQL, studentArgs...).Scan(&student.ID); err != nil {
			return mapUniqueViolation(err)
		}

		user.StudentID = &student.ID
		userSQL, userArgs, err := squirrel.Insert("users").
			Columns("name", "email", "password_hash", "role", "student_id").
			Values(user.Name, user.Email, user.PasswordHash, user.Role, user.StudentID).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, userSQL, userArgs...).Scan(&user.ID); err != nil {
			return mapUniqueViolation(err)
		}

		return nil
	})
}

// mapUniqueViolation translates postgres unique constraint errors into
// domain conflict errors.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "roll") {
			return apperrors.ErrRollAlreadyExists
		}
		return apperrors.ErrEmailAlreadyExists
	}
	return err
}
