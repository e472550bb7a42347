package models

import "time"

// Activity defines a student-submitted achievement claim pending review.
// Proof is an opaque storage key plus its content type. Activities are never
// deleted; only the approval workflow mutates status, verifier, notes and
// credits.
type Activity struct {
	ID                int64          `json:"id" db:"id" example:"17"`
	StudentID         int64          `json:"studentId" db:"student_id" example:"1"`
	Title             string         `json:"title" db:"title" example:"Smart India Hackathon Finalist"`
	Type              ActivityType   `json:"type" db:"type" example:"competition"`
	Date              time.Time      `json:"date" db:"activity_date"`
	Description       string         `json:"description,omitempty" db:"description"`
	FileKey           string         `json:"fileKey" db:"file_key"`
	FileType          string         `json:"fileType" db:"file_type" example:"application/pdf"`
	Status            ActivityStatus `json:"status" db:"status" example:"pending"`
	VerifierID        *int64         `json:"verifierId,omitempty" db:"verifier_id"`
	VerificationNotes string         `json:"verificationNotes,omitempty" db:"verification_notes"`
	Credits           int            `json:"credits" db:"credits" example:"2"`
	Tags              []string       `json:"tags,omitempty" db:"tags"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student    *Student     `json:"student,omitempty"`
	AuditTrail []AuditEntry `json:"auditTrail,omitempty"`
}

// AuditEntry is one append-only row of an activity's audit trail.
type AuditEntry struct {
	ID         int64       `json:"id" db:"id"`
	ActivityID int64       `json:"activityId" db:"activity_id"`
	Action     AuditAction `json:"action" db:"action" example:"approved"`
	ActorID    *int64      `json:"by,omitempty" db:"actor_id"`
	Note       string      `json:"note,omitempty" db:"note"`
	Timestamp  time.Time   `json:"timestamp" db:"created_at"`
}
