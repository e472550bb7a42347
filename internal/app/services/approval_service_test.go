package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
	"github.com/studenthub/backend/internal/pkg/apperrors"
)

type fakeReviewStore struct {
	listResult []*models.Activity
	listErr    error
	listParams repositories.ReviewListParams

	activity    *models.Activity
	activityErr error
	trail       []models.AuditEntry
	trailErr    error

	decision     *repositories.DecisionParams
	decisionOut  *models.Activity
	decisionErr  error
	decisionHits int
	audit        []models.AuditEntry
	students     *fakeStudentGetter
}

func (f *fakeReviewStore) ListForReview(_ context.Context, params repositories.ReviewListParams) ([]*models.Activity, error) {
	f.listParams = params
	return f.listResult, f.listErr
}

func (f *fakeReviewStore) GetByID(_ context.Context, id int64) (*models.Activity, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	if f.activity == nil || f.activity.ID != id {
		return nil, apperrors.ErrActivityNotFound
	}
	return f.activity, nil
}

func (f *fakeReviewStore) GetAuditTrail(_ context.Context, _ int64) ([]models.AuditEntry, error) {
	return f.trail, f.trailErr
}

// ApplyDecision mirrors the repository contract: status and verifier always
// overwritten, prior note kept unless the decision carries one, credits
// overwritten only on approval, an audit entry appended, and a positive
// award added to the owning student's credit total.
func (f *fakeReviewStore) ApplyDecision(_ context.Context, params repositories.DecisionParams) (*models.Activity, error) {
	f.decision = &params
	f.decisionHits++
	if f.decisionErr != nil {
		return nil, f.decisionErr
	}

	activity := f.decisionOut
	activity.Status = params.Status
	activity.VerifierID = params.VerifierID
	if params.Note != "" {
		activity.VerificationNotes = params.Note
	}
	if params.Status == models.StatusApproved && params.CreditsAwarded != nil {
		activity.Credits = *params.CreditsAwarded
	}

	f.audit = append(f.audit, models.AuditEntry{
		ActivityID: activity.ID,
		Action:     params.Action,
		ActorID:    params.VerifierID,
		Note:       params.Note,
	})

	if params.Status == models.StatusApproved &&
		params.CreditsAwarded != nil && *params.CreditsAwarded > 0 && f.students != nil {
		if s, ok := f.students.students[activity.StudentID]; ok {
			s.Credits += *params.CreditsAwarded
		}
	}

	out := *activity
	return &out, nil
}

type fakeStudentGetter struct {
	students map[int64]*models.Student
}

func (f *fakeStudentGetter) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

type fakeUserGetter struct {
	users map[int64]*models.User
}

func (f *fakeUserGetter) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

type fakeNotificationCreator struct {
	created []*models.Notification
	err     error
}

func (f *fakeNotificationCreator) Create(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, n)
	return nil
}

type fakeEmailService struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	To      string
	Subject string
	Text    string
}

func (f *fakeEmailService) Send(toEmail, subject, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{To: toEmail, Subject: subject, Text: text})
	return nil
}

func newApprovalFixture() (*fakeReviewStore, *fakeStudentGetter, *fakeNotificationCreator, *fakeEmailService, ApprovalService) {
	store := &fakeReviewStore{
		decisionOut: &models.Activity{
			ID:        17,
			StudentID: 1,
			Title:     "Hackathon Winner",
			Type:      models.TypeCompetition,
			Status:    models.StatusPending,
			Credits:   0,
		},
	}
	students := &fakeStudentGetter{students: map[int64]*models.Student{
		1: {ID: 1, Name: "Asha Rao", Roll: "CS21B042", Email: "asha@school.edu", Department: "CSE", Year: 3},
	}}
	users := &fakeUserGetter{users: map[int64]*models.User{
		9: {ID: 9, Name: "Dr. Mehta", Email: "mehta@school.edu", Role: models.RoleFaculty},
	}}
	store.students = students
	notifications := &fakeNotificationCreator{}
	emails := &fakeEmailService{}
	svc := NewApprovalService(store, students, users, notifications, emails)
	return store, students, notifications, emails, svc
}

func TestApproveAppliesDecisionAndNotifies(t *testing.T) {
	store, _, notifications, emails, svc := newApprovalFixture()

	verifier := int64(9)
	credits := 5
	resp, err := svc.Approve(context.Background(), 17, &verifier, &dto.ApproveRequest{
		Note:           "verified certificate",
		CreditsAwarded: &credits,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, int64(17), resp.ID)

	require.NotNil(t, store.decision)
	assert.Equal(t, 1, store.decisionHits)
	assert.Equal(t, int64(17), store.decision.ActivityID)
	assert.Equal(t, models.StatusApproved, store.decision.Status)
	assert.Equal(t, models.AuditApproved, store.decision.Action)
	assert.Equal(t, &verifier, store.decision.VerifierID)
	assert.Equal(t, "verified certificate", store.decision.Note)
	require.NotNil(t, store.decision.CreditsAwarded)
	assert.Equal(t, 5, *store.decision.CreditsAwarded)

	require.Len(t, notifications.created, 1)
	n := notifications.created[0]
	assert.Equal(t, int64(1), n.StudentID)
	require.NotNil(t, n.ActivityID)
	assert.Equal(t, int64(17), *n.ActivityID)
	assert.Equal(t, models.NotificationApproval, n.Type)
	assert.Equal(t, `Your activity "Hackathon Winner" was approved.`, n.Message)

	require.Len(t, emails.sent, 1)
	assert.Equal(t, "asha@school.edu", emails.sent[0].To)
	assert.Equal(t, "Activity Approved", emails.sent[0].Subject)
}

func TestApproveWithoutCreditsLeavesThemAlone(t *testing.T) {
	store, _, _, _, svc := newApprovalFixture()

	_, err := svc.Approve(context.Background(), 17, nil, &dto.ApproveRequest{})
	require.NoError(t, err)

	require.NotNil(t, store.decision)
	assert.Nil(t, store.decision.CreditsAwarded)
	assert.Nil(t, store.decision.VerifierID)
}

func TestApproveUnknownActivity(t *testing.T) {
	store, _, notifications, emails, svc := newApprovalFixture()
	store.decisionErr = apperrors.ErrActivityNotFound

	_, err := svc.Approve(context.Background(), 404, nil, &dto.ApproveRequest{})
	require.ErrorIs(t, err, apperrors.ErrActivityNotFound)

	assert.Empty(t, notifications.created)
	assert.Empty(t, emails.sent)
}

func TestRejectNeverAwardsCredits(t *testing.T) {
	store, _, notifications, emails, svc := newApprovalFixture()

	resp, err := svc.Reject(context.Background(), 17, nil, &dto.RejectRequest{Reason: "proof unreadable"})
	require.NoError(t, err)

	assert.Equal(t, "rejected", resp.Status)
	require.NotNil(t, store.decision)
	assert.Equal(t, models.StatusRejected, store.decision.Status)
	assert.Equal(t, models.AuditRejected, store.decision.Action)
	assert.Nil(t, store.decision.CreditsAwarded)
	assert.Equal(t, "proof unreadable", store.decision.Note)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, models.NotificationRejection, notifications.created[0].Type)
	assert.Equal(t, `Your activity "Hackathon Winner" was rejected. (proof unreadable)`, notifications.created[0].Message)
	require.Len(t, emails.sent, 1)
	assert.Equal(t, "Activity Rejected", emails.sent[0].Subject)
}

func TestRejectWithoutReason(t *testing.T) {
	_, _, notifications, _, svc := newApprovalFixture()

	_, err := svc.Reject(context.Background(), 17, nil, &dto.RejectRequest{})
	require.NoError(t, err)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, `Your activity "Hackathon Winner" was rejected.`, notifications.created[0].Message)
}

func TestRequestChanges(t *testing.T) {
	store, _, notifications, _, svc := newApprovalFixture()

	resp, err := svc.RequestChanges(context.Background(), 17, nil, &dto.RequestChangesRequest{Comments: "attach the certificate"})
	require.NoError(t, err)

	assert.Equal(t, "changes_requested", resp.Status)
	require.NotNil(t, store.decision)
	assert.Equal(t, models.StatusChangesRequested, store.decision.Status)
	assert.Equal(t, models.AuditRequestChanges, store.decision.Action)
	assert.Nil(t, store.decision.CreditsAwarded)

	require.Len(t, notifications.created, 1)
	assert.Equal(t, models.NotificationRequestChanges, notifications.created[0].Type)
	assert.Equal(t, `Changes requested for "Hackathon Winner": attach the certificate`, notifications.created[0].Message)
}

func TestApproveAddsAwardToStudentCredits(t *testing.T) {
	store, students, _, _, svc := newApprovalFixture()
	students.students[1].Credits = 10

	verifier := int64(9)
	credits := 5
	_, err := svc.Approve(context.Background(), 17, &verifier, &dto.ApproveRequest{CreditsAwarded: &credits})
	require.NoError(t, err)

	assert.Equal(t, 15, students.students[1].Credits)
	assert.Equal(t, 5, store.decisionOut.Credits)
	require.Len(t, store.audit, 1)
	assert.Equal(t, models.AuditApproved, store.audit[0].Action)
}

func TestRejectAfterApproveOverwritesState(t *testing.T) {
	store, students, _, _, svc := newApprovalFixture()

	verifier := int64(9)
	credits := 5
	_, err := svc.Approve(context.Background(), 17, &verifier, &dto.ApproveRequest{
		Note:           "looks right",
		CreditsAwarded: &credits,
	})
	require.NoError(t, err)

	// No transition guard: a later reject lands on the approved activity,
	// overwrites its state and appends a second audit entry. Already-awarded
	// credits are not clawed back.
	resp, err := svc.Reject(context.Background(), 17, &verifier, &dto.RejectRequest{Reason: "certificate revoked"})
	require.NoError(t, err)

	assert.Equal(t, "rejected", resp.Status)
	assert.Equal(t, 2, store.decisionHits)
	assert.Equal(t, models.StatusRejected, store.decisionOut.Status)
	assert.Equal(t, "certificate revoked", store.decisionOut.VerificationNotes)
	require.Len(t, store.audit, 2)
	assert.Equal(t, models.AuditApproved, store.audit[0].Action)
	assert.Equal(t, models.AuditRejected, store.audit[1].Action)
	assert.Equal(t, 5, students.students[1].Credits)
}

func TestReapproveReappliesAward(t *testing.T) {
	store, students, _, _, svc := newApprovalFixture()
	students.students[1].Credits = 10

	verifier := int64(9)
	credits := 5
	for i := 0; i < 2; i++ {
		_, err := svc.Approve(context.Background(), 17, &verifier, &dto.ApproveRequest{CreditsAwarded: &credits})
		require.NoError(t, err)
	}

	// Retried approves re-apply the award; there is no idempotency key.
	assert.Equal(t, 20, students.students[1].Credits)
	require.Len(t, store.audit, 2)
}

func TestDecisionPreservesPriorNote(t *testing.T) {
	store, _, _, _, svc := newApprovalFixture()

	verifier := int64(9)
	_, err := svc.Approve(context.Background(), 17, &verifier, &dto.ApproveRequest{Note: "first pass"})
	require.NoError(t, err)

	_, err = svc.RequestChanges(context.Background(), 17, &verifier, &dto.RequestChangesRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.StatusChangesRequested, store.decisionOut.Status)
	assert.Equal(t, "first pass", store.decisionOut.VerificationNotes)
}

func TestDecisionSucceedsWhenSideEffectsFail(t *testing.T) {
	_, students, notifications, emails, svc := newApprovalFixture()
	notifications.err = errors.New("notification table gone")
	emails.err = errors.New("smtp down")
	students.students = map[int64]*models.Student{}

	resp, err := svc.Approve(context.Background(), 17, nil, &dto.ApproveRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestListPendingJoinsStudents(t *testing.T) {
	store, _, _, _, svc := newApprovalFixture()
	store.listResult = []*models.Activity{
		{
			ID:        3,
			StudentID: 1,
			Title:     "NSS Camp",
			Type:      models.TypeService,
			Status:    models.StatusPending,
			Student:   &models.Student{ID: 1, Name: "Asha Rao", Roll: "CS21B042", Department: "CSE", Year: 3},
		},
		{ID: 4, StudentID: 2, Title: "Orphan Row", Type: models.TypeOther, Status: models.StatusPending},
	}

	resp, err := svc.ListPending(context.Background(), repositories.ReviewListParams{})
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, "NSS Camp", resp.Items[0].Title)
	assert.Equal(t, "CS21B042", resp.Items[0].Student.Roll)
	assert.Equal(t, "CSE", resp.Items[0].Student.Department)
	assert.Zero(t, resp.Items[1].Student.ID)
}

func TestListPendingForwardsFilters(t *testing.T) {
	store, _, _, _, svc := newApprovalFixture()

	params := repositories.ReviewListParams{
		Statuses:    []string{"pending", "changes_requested"},
		Types:       []string{"competition"},
		Departments: []string{"CSE", "ECE"},
	}
	_, err := svc.ListPending(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, params.Statuses, store.listParams.Statuses)
	assert.Equal(t, params.Types, store.listParams.Types)
	assert.Equal(t, params.Departments, store.listParams.Departments)
}

func TestGetActivityIncludesTrailAndVerifier(t *testing.T) {
	store, _, _, _, svc := newApprovalFixture()

	verifier := int64(9)
	store.activity = &models.Activity{
		ID:         17,
		StudentID:  1,
		Title:      "Hackathon Winner",
		Type:       models.TypeCompetition,
		Status:     models.StatusApproved,
		VerifierID: &verifier,
		Date:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	store.trail = []models.AuditEntry{
		{ID: 1, ActivityID: 17, Action: models.AuditCreated},
		{ID: 2, ActivityID: 17, Action: models.AuditSubmitted},
		{ID: 3, ActivityID: 17, Action: models.AuditApproved, ActorID: &verifier, Note: "verified certificate"},
	}

	resp, err := svc.GetActivity(context.Background(), 17)
	require.NoError(t, err)

	assert.Equal(t, "Hackathon Winner", resp.Title)
	assert.Equal(t, "2025-03-14", resp.Date)
	assert.Equal(t, "Dr. Mehta", resp.VerifierName)
	require.Len(t, resp.AuditTrail, 3)
	assert.Equal(t, models.AuditApproved, resp.AuditTrail[2].Action)
	assert.Equal(t, "verified certificate", resp.AuditTrail[2].Note)
}

func TestGetActivityUnknownVerifierOmitsName(t *testing.T) {
	store, _, _, _, svc := newApprovalFixture()

	gone := int64(404)
	store.activity = &models.Activity{
		ID:         17,
		StudentID:  1,
		Title:      "Hackathon Winner",
		Type:       models.TypeCompetition,
		Status:     models.StatusApproved,
		VerifierID: &gone,
		Date:       time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}

	resp, err := svc.GetActivity(context.Background(), 17)
	require.NoError(t, err)
	assert.Empty(t, resp.VerifierName)
}

func TestGetActivityNotFound(t *testing.T) {
	_, _, _, _, svc := newApprovalFixture()

	_, err := svc.GetActivity(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrActivityNotFound)
}
