package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// NotificationRepository handles database operations for notifications.
type NotificationRepository struct {
	DB *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	sqlStr, args, err := squirrel.Insert("notifications").
		Columns("student_id", "activity_id", "type", "message").
		Values(notification.StudentID, notification.ActivityID, notification.Type, notification.Message).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	err = r.DB.QueryRow(ctx, sqlStr, args...).Scan(&notification.ID, &notification.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Int64("studentId", notification.StudentID).Msg("Error creating notification")
		return err
	}
	return nil
}

// ListByStudent retrieves a student's notifications, newest first.
func (r *NotificationRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Notification, error) {
	sqlStr, args, err := squirrel.Select("id", "student_id", "activity_id", "type", "message", "read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying notifications")
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.StudentID, &n.ActivityID, &n.Type,
			&n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
