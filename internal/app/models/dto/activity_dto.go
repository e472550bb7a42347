package dto

import (
	"time"

	"github.com/studenthub/backend/internal/app/models"
)

// SubmitActivityRequest is the JSON body for the two-phase submission flow.
// Action selects the mode: "presign" requests an upload target, "finalize"
// records the activity once the proof blob exists.
type SubmitActivityRequest struct {
	Action      string   `json:"action"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Credits     int      `json:"credits"`
	Tags        []string `json:"tags"`
	FileKey     string   `json:"fileKey"`
	FileType    string   `json:"fileType"`
	Filename    string   `json:"filename"`
}

// PresignResponse is the write target for a two-phase upload.
type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

// CreatedResponse carries the identifier of a newly created resource.
type CreatedResponse struct {
	ID int64 `json:"id" example:"17"`
}

// ActivityResponse is one activity row, optionally with its audit trail and a
// resolved proof download URL.
type ActivityResponse struct {
	ID                int64               `json:"id"`
	StudentID         int64               `json:"studentId"`
	Title             string              `json:"title"`
	Type              string              `json:"type"`
	Date              string              `json:"date" example:"2025-03-14"`
	Description       string              `json:"description,omitempty"`
	FileKey           string              `json:"fileKey"`
	FileType          string              `json:"fileType"`
	Status            string              `json:"status"`
	VerifierID        *int64              `json:"verifierId,omitempty"`
	VerifierName      string              `json:"verifierName,omitempty"`
	VerificationNotes string              `json:"verificationNotes,omitempty"`
	Credits           int                 `json:"credits"`
	Tags              []string            `json:"tags,omitempty"`
	ProofURL          string              `json:"proofUrl,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	AuditTrail        []models.AuditEntry `json:"auditTrail,omitempty"`
}

// FromActivity converts a model to its response form. Dates are rendered as
// YYYY-MM-DD everywhere they leave the API.
func FromActivity(a *models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:                a.ID,
		StudentID:         a.StudentID,
		Title:             a.Title,
		Type:              string(a.Type),
		Date:              a.Date.Format("2006-01-02"),
		Description:       a.Description,
		FileKey:           a.FileKey,
		FileType:          a.FileType,
		Status:            string(a.Status),
		VerifierID:        a.VerifierID,
		VerificationNotes: a.VerificationNotes,
		Credits:           a.Credits,
		Tags:              a.Tags,
		CreatedAt:         a.CreatedAt,
		AuditTrail:        a.AuditTrail,
	}
}

// ActivityListResponse is a paginated activity listing.
type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StudentProfileResponse is the public profile plus credential snapshot and
// verification counters.
type StudentProfileResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Roll          string  `json:"roll"`
	Department    string  `json:"department"`
	Year          int     `json:"year"`
	GPA           float64 `json:"gpa"`
	Credits       int     `json:"credits"`
	AttendancePct float64 `json:"attendancePct"`
	VerifiedCount int64   `json:"verifiedCount"`
	PendingCount  int64   `json:"pendingCount"`
}

// PortfolioResponse points at a rendered portfolio document.
type PortfolioResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// NotificationResponse is one in-app notification row.
type NotificationResponse struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"studentId"`
	ActivityID *int64    `json:"activityId,omitempty"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}
