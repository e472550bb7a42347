package services

import (
	"context"
	"fmt"

	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
	"github.com/studenthub/backend/internal/pkg/email"
	"github.com/studenthub/backend/internal/pkg/logger"
)

// reviewStore is the activity persistence surface the approval workflow
// needs. ApplyDecision is transactional: the status change, audit entry and
// any credit award land together or not at all.
type reviewStore interface {
	ListForReview(ctx context.Context, params repositories.ReviewListParams) ([]*models.Activity, error)
	GetByID(ctx context.Context, id int64) (*models.Activity, error)
	GetAuditTrail(ctx context.Context, activityID int64) ([]models.AuditEntry, error)
	ApplyDecision(ctx context.Context, params repositories.DecisionParams) (*models.Activity, error)
}

type studentGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
}

type userGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type notificationCreator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// ApprovalService defines the interface for the activity review workflow
type ApprovalService interface {
	ListPending(ctx context.Context, params repositories.ReviewListParams) (*dto.PendingListResponse, error)
	GetActivity(ctx context.Context, activityID int64) (*dto.ActivityResponse, error)
	Approve(ctx context.Context, activityID int64, verifierID *int64, req *dto.ApproveRequest) (*dto.DecisionResponse, error)
	Reject(ctx context.Context, activityID int64, verifierID *int64, req *dto.RejectRequest) (*dto.DecisionResponse, error)
	RequestChanges(ctx context.Context, activityID int64, verifierID *int64, req *dto.RequestChangesRequest) (*dto.DecisionResponse, error)
}

// approvalServiceImpl implements ApprovalService
type approvalServiceImpl struct {
	activityRepo     reviewStore
	studentRepo      studentGetter
	userRepo         userGetter
	notificationRepo notificationCreator
	emailService     email.Service
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	activityRepo reviewStore,
	studentRepo studentGetter,
	userRepo userGetter,
	notificationRepo notificationCreator,
	emailService email.Service,
) ApprovalService {
	return &approvalServiceImpl{
		activityRepo:     activityRepo,
		studentRepo:      studentRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		emailService:     emailService,
	}
}

// ListPending returns the review queue with joined student identity.
func (s *approvalServiceImpl) ListPending(ctx context.Context, params repositories.ReviewListParams) (*dto.PendingListResponse, error) {
	activities, err := s.activityRepo.ListForReview(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("error listing review queue: %w", err)
	}

	items := make([]dto.PendingActivityResponse, 0, len(activities))
	for _, activity := range activities {
		item := dto.PendingActivityResponse{ActivityResponse: dto.FromActivity(activity)}
		if activity.Student != nil {
			item.Student = dto.StudentRef{
				ID:         activity.Student.ID,
				Name:       activity.Student.Name,
				Roll:       activity.Student.Roll,
				Department: activity.Student.Department,
				Year:       activity.Student.Year,
			}
		}
		items = append(items, item)
	}
	return &dto.PendingListResponse{Items: items}, nil
}

// GetActivity returns one activity with its full audit trail and, when set,
// the verifier's display name.
func (s *approvalServiceImpl) GetActivity(ctx context.Context, activityID int64) (*dto.ActivityResponse, error) {
	activity, err := s.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	trail, err := s.activityRepo.GetAuditTrail(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("error loading audit trail: %w", err)
	}

	response := dto.FromActivity(activity)
	response.AuditTrail = trail
	if activity.VerifierID != nil {
		verifier, err := s.userRepo.GetByID(ctx, *activity.VerifierID)
		if err != nil {
			logger.Warn().Err(err).Int64("verifierId", *activity.VerifierID).Msg("Failed to resolve verifier")
		} else {
			response.VerifierName = verifier.Name
		}
	}
	return &response, nil
}

// Approve marks an activity approved. A supplied creditsAwarded overwrites
// the activity's credits and, when positive, increments the owning student's
// credit total in the same transaction.
func (s *approvalServiceImpl) Approve(ctx context.Context, activityID int64, verifierID *int64, req *dto.ApproveRequest) (*dto.DecisionResponse, error) {
	activity, err := s.activityRepo.ApplyDecision(ctx, repositories.DecisionParams{
		ActivityID:     activityID,
		Status:         models.StatusApproved,
		Action:         models.AuditApproved,
		VerifierID:     verifierID,
		Note:           req.Note,
		CreditsAwarded: req.CreditsAwarded,
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your activity \"%s\" was approved.", activity.Title)
	s.notifyStudent(ctx, activity, models.NotificationApproval, message)
	s.emailStudent(ctx, activity.StudentID, "Activity Approved", message)

	return &dto.DecisionResponse{Success: true, Status: string(activity.Status), ID: activity.ID}, nil
}

// Reject marks an activity rejected. Credits are never touched.
func (s *approvalServiceImpl) Reject(ctx context.Context, activityID int64, verifierID *int64, req *dto.RejectRequest) (*dto.DecisionResponse, error) {
	activity, err := s.activityRepo.ApplyDecision(ctx, repositories.DecisionParams{
		ActivityID: activityID,
		Status:     models.StatusRejected,
		Action:     models.AuditRejected,
		VerifierID: verifierID,
		Note:       req.Reason,
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your activity \"%s\" was rejected.", activity.Title)
	if req.Reason != "" {
		message = fmt.Sprintf("%s (%s)", message, req.Reason)
	}
	s.notifyStudent(ctx, activity, models.NotificationRejection, message)
	s.emailStudent(ctx, activity.StudentID, "Activity Rejected", message)

	return &dto.DecisionResponse{Success: true, Status: string(activity.Status), ID: activity.ID}, nil
}

// RequestChanges sends an activity back to its student for changes.
func (s *approvalServiceImpl) RequestChanges(ctx context.Context, activityID int64, verifierID *int64, req *dto.RequestChangesRequest) (*dto.DecisionResponse, error) {
	activity, err := s.activityRepo.ApplyDecision(ctx, repositories.DecisionParams{
		ActivityID: activityID,
		Status:     models.StatusChangesRequested,
		Action:     models.AuditRequestChanges,
		VerifierID: verifierID,
		Note:       req.Comments,
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Changes requested for \"%s\": %s", activity.Title, req.Comments)
	s.notifyStudent(ctx, activity, models.NotificationRequestChanges, message)
	s.emailStudent(ctx, activity.StudentID, "Changes Requested", message)

	return &dto.DecisionResponse{Success: true, Status: string(activity.Status), ID: activity.ID}, nil
}

// notifyStudent records an in-app notification. The decision already
// committed; a failed side effect is logged and swallowed.
func (s *approvalServiceImpl) notifyStudent(ctx context.Context, activity *models.Activity, notificationType models.NotificationType, message string) {
	notification := &models.Notification{
		StudentID:  activity.StudentID,
		ActivityID: &activity.ID,
		Type:       notificationType,
		Message:    message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		logger.Warn().Err(err).Int64("activityId", activity.ID).Msg("Failed to create decision notification")
	}
}

// emailStudent sends a best-effort decision email to the owning student.
func (s *approvalServiceImpl) emailStudent(ctx context.Context, studentID int64, subject, text string) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		logger.Warn().Err(err).Int64("studentId", studentID).Msg("Failed to load student for decision email")
		return
	}
	if student.Email == "" {
		return
	}
	if err := s.emailService.Send(student.Email, subject, text); err != nil {
		logger.Warn().Err(err).Str("to", student.Email).Msg("Failed to send decision email")
	}
}
