package models

import "time"

// Notification is an in-app message created as a side effect of an approval
// workflow transition. Only the read flag may ever change after creation.
type Notification struct {
	ID         int64            `json:"id" db:"id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	ActivityID *int64           `json:"activityId,omitempty" db:"activity_id"`
	Type       NotificationType `json:"type" db:"type" example:"approval"`
	Message    string           `json:"message" db:"message"`
	Read       bool             `json:"read" db:"read"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
}
