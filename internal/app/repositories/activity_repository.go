package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/db"
	"github.com/studenthub/backend/internal/pkg/apperrors"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// ReviewListParams holds filters for the review queue. Each slice is a
// disjunction within its dimension; dimensions combine conjunctively.
type ReviewListParams struct {
	Statuses    []string
	Types       []string
	Departments []string
	From        *time.Time
	To          *time.Time
}

// DecisionParams describes one approval workflow transition.
type DecisionParams struct {
	ActivityID     int64
	Status         models.ActivityStatus
	Action         models.AuditAction
	VerifierID     *int64
	Note           string
	CreditsAwarded *int
}

// reviewQueueLimit caps the review queue; the queue is a working set, not an
// archive browser.
const reviewQueueLimit = 100

// ActivityRepository handles database operations for activities and their
// audit trail.
type ActivityRepository struct {
	DB       *pgxpool.Pool
	database *db.PostgresDB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(database *db.PostgresDB) *ActivityRepository {
	return &ActivityRepository{DB: database.Pool, database: database}
}

func selectActivityQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"a.id", "a.student_id", "a.title", "a.type", "a.activity_date",
		"a.description", "a.file_key", "a.file_type", "a.status",
		"a.verifier_id", "a.verification_notes", "a.credits", "a.tags",
		"a.created_at", "a.updated_at",
	).From("activities a").PlaceholderFormat(squirrel.Dollar)
}

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var activity models.Activity
	var description, notes *string
	err := row.Scan(
		&activity.ID, &activity.StudentID, &activity.Title, &activity.Type,
		&activity.Date, &description, &activity.FileKey, &activity.FileType,
		&activity.Status, &activity.VerifierID, &notes, &activity.Credits,
		&activity.Tags, &activity.CreatedAt, &activity.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrActivityNotFound
		}
		logger.Error().Err(err).Msg("Error scanning activity row")
		return nil, err
	}
	if description != nil {
		activity.Description = *description
	}
	if notes != nil {
		activity.VerificationNotes = *notes
	}
	return &activity, nil
}

// Create inserts a pending activity, its first audit entry and the owning
// student's achievement reference in one transaction.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) (int64, error) {
	err := r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sqlStr, args, err := squirrel.Insert("activities").
			Columns("student_id", "title", "type", "activity_date", "description",
				"file_key", "file_type", "status", "credits", "tags").
			Values(activity.StudentID, activity.Title, activity.Type, activity.Date,
				nullable(activity.Description), activity.FileKey, activity.FileType,
				models.StatusPending, activity.Credits, activity.Tags).
			Suffix("RETURNING id, created_at, updated_at").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, sqlStr, args...).
			Scan(&activity.ID, &activity.CreatedAt, &activity.UpdatedAt)
		if err != nil {
			logger.Error().Err(err).Msg("Error executing create activity query")
			return err
		}

		if err := insertAuditEntry(ctx, tx, activity.ID, models.AuditSubmitted, nil, ""); err != nil {
			return err
		}

		// Set semantics: re-submitting under the same student is a no-op
		achSQL, achArgs, err := squirrel.Insert("student_achievements").
			Columns("student_id", "activity_id").
			Values(activity.StudentID, activity.ID).
			Suffix("ON CONFLICT DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, achSQL, achArgs...)
		return err
	})
	if err != nil {
		return 0, err
	}

	activity.Status = models.StatusPending
	return activity.ID, nil
}

// GetByID retrieves a single activity by its ID.
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	sqlStr, args, err := selectActivityQuery().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanActivity(r.DB.QueryRow(ctx, sqlStr, args...))
}

// GetAuditTrail returns an activity's audit entries ordered oldest first.
func (r *ActivityRepository) GetAuditTrail(ctx context.Context, activityID int64) ([]models.AuditEntry, error) {
	sqlStr, args, err := squirrel.Select("id", "activity_id", "action", "actor_id", "note", "created_at").
		From("activity_audit").
		Where(squirrel.Eq{"activity_id": activityID}).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying audit trail")
		return nil, err
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var entry models.AuditEntry
		var note *string
		if err := rows.Scan(&entry.ID, &entry.ActivityID, &entry.Action,
			&entry.ActorID, &note, &entry.Timestamp); err != nil {
			return nil, err
		}
		if note != nil {
			entry.Note = *note
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListForReview retrieves the review queue: activities joined with their
// owning student, newest submissions first, capped at reviewQueueLimit.
func (r *ActivityRepository) ListForReview(ctx context.Context, params ReviewListParams) ([]*models.Activity, error) {
	builder := squirrel.Select(
		"a.id", "a.student_id", "a.title", "a.type", "a.activity_date",
		"a.description", "a.file_key", "a.file_type", "a.status",
		"a.verifier_id", "a.verification_notes", "a.credits", "a.tags",
		"a.created_at", "a.updated_at",
		"s.id", "s.name", "s.roll", "s.email", "s.department", "s.year",
		"s.gpa", "s.credits", "s.attendance_pct", "s.created_at", "s.updated_at",
	).From("activities a").
		Join("students s ON a.student_id = s.id").
		PlaceholderFormat(squirrel.Dollar)

	if len(params.Statuses) > 0 {
		builder = builder.Where(squirrel.Eq{"a.status": params.Statuses})
	} else {
		builder = builder.Where(squirrel.Eq{"a.status": models.StatusPending})
	}
	if len(params.Types) > 0 {
		builder = builder.Where(squirrel.Eq{"a.type": params.Types})
	}
	if len(params.Departments) > 0 {
		builder = builder.Where(squirrel.Eq{"s.department": params.Departments})
	}
	if params.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"a.activity_date": *params.From})
	}
	if params.To != nil {
		builder = builder.Where(squirrel.LtOrEq{"a.activity_date": *params.To})
	}

	sqlStr, args, err := builder.
		OrderBy("a.created_at DESC").
		Limit(reviewQueueLimit).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building review queue SQL")
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying review queue")
		return nil, err
	}
	defer rows.Close()

	activities := []*models.Activity{}
	for rows.Next() {
		var activity models.Activity
		var student models.Student
		var description, notes *string
		err := rows.Scan(
			&activity.ID, &activity.StudentID, &activity.Title, &activity.Type,
			&activity.Date, &description, &activity.FileKey, &activity.FileType,
			&activity.Status, &activity.VerifierID, &notes, &activity.Credits,
			&activity.Tags, &activity.CreatedAt, &activity.UpdatedAt,
			&student.ID, &student.Name, &student.Roll, &student.Email,
			&student.Department, &student.Year, &student.GPA, &student.Credits,
			&student.AttendancePct, &student.CreatedAt, &student.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if description != nil {
			activity.Description = *description
		}
		if notes != nil {
			activity.VerificationNotes = *notes
		}
		activity.Student = &student
		activities = append(activities, &activity)
	}
	return activities, rows.Err()
}

// ListByStudent retrieves a page of a student's activities, newest first,
// along with the total count.
func (r *ActivityRepository) ListByStudent(ctx context.Context, studentID int64, offset, limit int) ([]*models.Activity, int64, error) {
	countSQL, countArgs, err := squirrel.Select("count(*)").From("activities").
		Where(squirrel.Eq{"student_id": studentID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting student activities")
		return nil, 0, err
	}

	sqlStr, args, err := selectActivityQuery().
		Where(squirrel.Eq{"a.student_id": studentID}).
		OrderBy("a.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	activities, err := r.queryActivities(ctx, sqlStr, args)
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// ListApprovedByStudent retrieves a student's approved activities ordered by
// activity date, newest first.
func (r *ActivityRepository) ListApprovedByStudent(ctx context.Context, studentID int64) ([]*models.Activity, error) {
	sqlStr, args, err := selectActivityQuery().
		Where(squirrel.Eq{"a.student_id": studentID, "a.status": models.StatusApproved}).
		OrderBy("a.activity_date DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.queryActivities(ctx, sqlStr, args)
}

// CountByStudentAndStatus counts a student's activities in a given status.
func (r *ActivityRepository) CountByStudentAndStatus(ctx context.Context, studentID int64, status models.ActivityStatus) (int64, error) {
	sqlStr, args, err := squirrel.Select("count(*)").From("activities").
		Where(squirrel.Eq{"student_id": studentID, "status": status}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.DB.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyDecision applies an approval workflow transition. The activity update,
// the audit entry and any credit award commit or roll back together. The
// existing verification note survives unless the decision carries one; a
// positive credit award also increments the owning student's credit total.
func (r *ActivityRepository) ApplyDecision(ctx context.Context, params DecisionParams) (*models.Activity, error) {
	var updated *models.Activity
	err := r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		lockSQL, lockArgs, err := selectActivityQuery().
			Where(squirrel.Eq{"a.id": params.ActivityID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return err
		}

		activity, err := scanActivity(tx.QueryRow(ctx, lockSQL, lockArgs...))
		if err != nil {
			return err
		}

		activity.Status = params.Status
		activity.VerifierID = params.VerifierID
		if params.Note != "" {
			activity.VerificationNotes = params.Note
		}
		if params.Status == models.StatusApproved && params.CreditsAwarded != nil {
			activity.Credits = *params.CreditsAwarded
		}

		updateSQL, updateArgs, err := squirrel.Update("activities").
			Set("status", activity.Status).
			Set("verifier_id", activity.VerifierID).
			Set("verification_notes", nullable(activity.VerificationNotes)).
			Set("credits", activity.Credits).
			Set("updated_at", squirrel.Expr("now()")).
			Where(squirrel.Eq{"id": activity.ID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, updateSQL, updateArgs...); err != nil {
			logger.Error().Err(err).Int64("activityId", activity.ID).Msg("Error updating activity decision")
			return err
		}

		if err := insertAuditEntry(ctx, tx, activity.ID, params.Action, params.VerifierID, params.Note); err != nil {
			return err
		}

		if params.Status == models.StatusApproved &&
			params.CreditsAwarded != nil && *params.CreditsAwarded > 0 {
			creditSQL, creditArgs, err := squirrel.Update("students").
				Set("credits", squirrel.Expr("credits + ?", *params.CreditsAwarded)).
				Set("updated_at", squirrel.Expr("now()")).
				Where(squirrel.Eq{"id": activity.StudentID}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, creditSQL, creditArgs...); err != nil {
				logger.Error().Err(err).Int64("studentId", activity.StudentID).Msg("Error awarding credits")
				return err
			}
		}

		updated = activity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ActivityRepository) queryActivities(ctx context.Context, sqlStr string, args []interface{}) ([]*models.Activity, error) {
	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying activities")
		return nil, err
	}
	defer rows.Close()

	activities := []*models.Activity{}
	for rows.Next() {
		var activity models.Activity
		var description, notes *string
		err := rows.Scan(
			&activity.ID, &activity.StudentID, &activity.Title, &activity.Type,
			&activity.Date, &description, &activity.FileKey, &activity.FileType,
			&activity.Status, &activity.VerifierID, &notes, &activity.Credits,
			&activity.Tags, &activity.CreatedAt, &activity.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if description != nil {
			activity.Description = *description
		}
		if notes != nil {
			activity.VerificationNotes = *notes
		}
		activities = append(activities, &activity)
	}
	return activities, rows.Err()
}

func insertAuditEntry(ctx context.Context, tx pgx.Tx, activityID int64, action models.AuditAction, actorID *int64, note string) error {
	sqlStr, args, err := squirrel.Insert("activity_audit").
		Columns("activity_id", "action", "actor_id", "note").
		Values(activityID, action, actorID, nullable(note)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		logger.Error().Err(err).Int64("activityId", activityID).Msg("Error appending audit entry")
		return err
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
