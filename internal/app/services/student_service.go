package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/pkg/apperrors"
	"github.com/studenthub/backend/internal/pkg/filestorage"
	"github.com/studenthub/backend/internal/pkg/helpers"
	"github.com/studenthub/backend/internal/pkg/logger"
	"github.com/studenthub/backend/internal/pkg/pdf"
)

// activityStore is the activity persistence surface the submission flow
// needs.
type activityStore interface {
	Create(ctx context.Context, activity *models.Activity) (int64, error)
	ListByStudent(ctx context.Context, studentID int64, offset, limit int) ([]*models.Activity, int64, error)
	ListApprovedByStudent(ctx context.Context, studentID int64) ([]*models.Activity, error)
	CountByStudentAndStatus(ctx context.Context, studentID int64, status models.ActivityStatus) (int64, error)
}

type notificationLister interface {
	ListByStudent(ctx context.Context, studentID int64) ([]models.Notification, error)
}

// UploadSubmission is a direct multipart submission: proof bytes plus the
// activity fields that arrived alongside them.
type UploadSubmission struct {
	Title       string
	Type        string
	Date        string
	Description string
	Credits     int
	Tags        []string
	Data        []byte
	ContentType string
}

// StudentService defines the interface for student profile and submission
// operations
type StudentService interface {
	GetProfile(ctx context.Context, studentID int64) (*dto.StudentProfileResponse, error)
	ListActivities(ctx context.Context, studentID int64, page, limit int) (*dto.ActivityListResponse, error)
	SubmitUpload(ctx context.Context, studentID int64, submission *UploadSubmission) (*dto.CreatedResponse, error)
	Presign(ctx context.Context, studentID int64, filename, fileType string) (*dto.PresignResponse, error)
	Finalize(ctx context.Context, studentID int64, req *dto.SubmitActivityRequest) (*dto.CreatedResponse, error)
	GeneratePortfolio(ctx context.Context, studentID int64) (*dto.PortfolioResponse, error)
	ListNotifications(ctx context.Context, studentID int64) ([]dto.NotificationResponse, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo      studentGetter
	activityRepo     activityStore
	notificationRepo notificationLister
	storage          filestorage.Storage
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo studentGetter,
	activityRepo activityStore,
	notificationRepo notificationLister,
	storage filestorage.Storage,
) StudentService {
	return &studentServiceImpl{
		studentRepo:      studentRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		storage:          storage,
	}
}

// GetProfile returns a student's profile with credential snapshot and
// verification counters.
func (s *studentServiceImpl) GetProfile(ctx context.Context, studentID int64) (*dto.StudentProfileResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	verifiedCount, err := s.activityRepo.CountByStudentAndStatus(ctx, studentID, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	pendingCount, err := s.activityRepo.CountByStudentAndStatus(ctx, studentID, models.StatusPending)
	if err != nil {
		return nil, err
	}

	return &dto.StudentProfileResponse{
		ID:            student.ID,
		Name:          student.Name,
		Roll:          student.Roll,
		Department:    student.Department,
		Year:          student.Year,
		GPA:           student.GPA,
		Credits:       student.Credits,
		AttendancePct: student.AttendancePct,
		VerifiedCount: verifiedCount,
		PendingCount:  pendingCount,
	}, nil
}

// ListActivities returns one page of a student's activities, newest first.
// Each item carries a best-effort proof download URL; a URL that cannot be
// resolved leaves the field empty rather than failing the listing.
func (s *studentServiceImpl) ListActivities(ctx context.Context, studentID int64, page, limit int) (*dto.ActivityListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, limit)

	activities, total, err := s.activityRepo.ListByStudent(ctx, studentID, int(offset), limit)
	if err != nil {
		return nil, fmt.Errorf("error listing activities: %w", err)
	}

	items := make([]dto.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		item := dto.FromActivity(activity)
		if activity.FileKey != "" {
			url, err := s.storage.PresignDownload(ctx, activity.FileKey)
			if err != nil {
				logger.Debug().Err(err).Str("fileKey", activity.FileKey).Msg("Could not resolve proof URL")
			} else {
				item.ProofURL = url
			}
		}
		items = append(items, item)
	}

	return &dto.ActivityListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// SubmitUpload handles a direct multipart submission: the proof blob is
// stored under the student's prefix, then the pending activity is recorded.
func (s *studentServiceImpl) SubmitUpload(ctx context.Context, studentID int64, submission *UploadSubmission) (*dto.CreatedResponse, error) {
	if err := validateSubmissionFields(submission.Title, submission.Type, submission.Date); err != nil {
		return nil, err
	}
	date, err := helpers.ParseDate(submission.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date format, expected YYYY-MM-DD")
	}

	fileKey, err := s.storage.Save(ctx, submission.Data, submission.ContentType,
		fmt.Sprintf("students/%d", studentID))
	if err != nil {
		return nil, fmt.Errorf("error storing proof file: %w", err)
	}

	activity := &models.Activity{
		StudentID:   studentID,
		Title:       submission.Title,
		Type:        models.ActivityType(submission.Type),
		Date:        date,
		Description: submission.Description,
		Credits:     submission.Credits,
		Tags:        submission.Tags,
		FileKey:     fileKey,
		FileType:    submission.ContentType,
	}
	id, err := s.activityRepo.Create(ctx, activity)
	if err != nil {
		return nil, err
	}
	return &dto.CreatedResponse{ID: id}, nil
}

// Presign issues a write target for a two-phase upload.
func (s *studentServiceImpl) Presign(ctx context.Context, studentID int64, filename, fileType string) (*dto.PresignResponse, error) {
	if filename == "" || fileType == "" {
		return nil, apperrors.NewValidationError("filename and fileType required")
	}

	uploadURL, fileKey, err := s.storage.PresignUpload(ctx, filestorage.UploadMeta{
		KeyPrefix:   fmt.Sprintf("students/%d", studentID),
		Filename:    filename,
		ContentType: fileType,
	})
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}
	return &dto.PresignResponse{UploadURL: uploadURL, FileKey: fileKey}, nil
}

// Finalize records a pending activity once its proof blob exists under an
// already-issued key.
func (s *studentServiceImpl) Finalize(ctx context.Context, studentID int64, req *dto.SubmitActivityRequest) (*dto.CreatedResponse, error) {
	missing := missingFinalizeFields(req)
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing fields: " + strings.Join(missing, ", "))
	}
	if !models.ValidActivityType(req.Type) {
		return nil, apperrors.NewValidationError("unknown activity type: " + req.Type)
	}
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date format, expected YYYY-MM-DD")
	}

	activity := &models.Activity{
		StudentID:   studentID,
		Title:       req.Title,
		Type:        models.ActivityType(req.Type),
		Date:        date,
		Description: req.Description,
		Credits:     req.Credits,
		Tags:        req.Tags,
		FileKey:     req.FileKey,
		FileType:    req.FileType,
	}
	id, err := s.activityRepo.Create(ctx, activity)
	if err != nil {
		return nil, err
	}
	return &dto.CreatedResponse{ID: id}, nil
}

// GeneratePortfolio renders the student's approved activities to a PDF and
// stores it for download.
func (s *studentServiceImpl) GeneratePortfolio(ctx context.Context, studentID int64) (*dto.PortfolioResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	approved, err := s.activityRepo.ListApprovedByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	activities := make([]models.Activity, 0, len(approved))
	for _, a := range approved {
		activities = append(activities, *a)
	}

	document, err := pdf.RenderPortfolio(student, activities)
	if err != nil {
		return nil, fmt.Errorf("error rendering portfolio: %w", err)
	}

	key, err := s.storage.Save(ctx, document, "application/pdf",
		fmt.Sprintf("portfolios/%d", studentID))
	if err != nil {
		return nil, fmt.Errorf("error storing portfolio: %w", err)
	}

	url, err := s.storage.PresignDownload(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error resolving portfolio URL: %w", err)
	}

	logger.Info().Int64("studentId", studentID).Str("key", key).Msg("Portfolio generated")
	return &dto.PortfolioResponse{URL: url, Key: key}, nil
}

// ListNotifications returns a student's notifications, newest first.
func (s *studentServiceImpl) ListNotifications(ctx context.Context, studentID int64) ([]dto.NotificationResponse, error) {
	notifications, err := s.notificationRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:         n.ID,
			StudentID:  n.StudentID,
			ActivityID: n.ActivityID,
			Type:       string(n.Type),
			Message:    n.Message,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt,
		})
	}
	return items, nil
}

func validateSubmissionFields(title, activityType, date string) error {
	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if activityType == "" {
		missing = append(missing, "type")
	}
	if date == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing fields: " + strings.Join(missing, ", "))
	}
	if !models.ValidActivityType(activityType) {
		return apperrors.NewValidationError("unknown activity type: " + activityType)
	}
	return nil
}

func missingFinalizeFields(req *dto.SubmitActivityRequest) []string {
	var missing []string
	if req.Title == "" {
		missing = append(missing, "title")
	}
	if req.Type == "" {
		missing = append(missing, "type")
	}
	if req.Date == "" {
		missing = append(missing, "date")
	}
	if req.FileKey == "" {
		missing = append(missing, "fileKey")
	}
	if req.FileType == "" {
		missing = append(missing, "fileType")
	}
	return missing
}
