package models

// Role defines the user role type
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// ActivityType classifies a submitted achievement
type ActivityType string

const (
	TypeConference    ActivityType = "conference"
	TypeCertification ActivityType = "certification"
	TypeClub          ActivityType = "club"
	TypeCompetition   ActivityType = "competition"
	TypeLeadership    ActivityType = "leadership"
	TypeInternship    ActivityType = "internship"
	TypeService       ActivityType = "service"
	TypeCredit        ActivityType = "credit"
	TypeAttendance    ActivityType = "attendance"
	TypeOther         ActivityType = "other"
)

// ValidActivityType reports whether t belongs to the closed activity type set.
func ValidActivityType(t string) bool {
	switch ActivityType(t) {
	case TypeConference, TypeCertification, TypeClub, TypeCompetition,
		TypeLeadership, TypeInternship, TypeService, TypeCredit,
		TypeAttendance, TypeOther:
		return true
	}
	return false
}

// ActivityStatus is the review state of an activity
type ActivityStatus string

const (
	StatusPending          ActivityStatus = "pending"
	StatusApproved         ActivityStatus = "approved"
	StatusRejected         ActivityStatus = "rejected"
	StatusChangesRequested ActivityStatus = "changes_requested"
)

// AuditAction is an action recorded in an activity's audit trail
type AuditAction string

const (
	AuditCreated        AuditAction = "created"
	AuditSubmitted      AuditAction = "submitted"
	AuditApproved       AuditAction = "approved"
	AuditRejected       AuditAction = "rejected"
	AuditRequestChanges AuditAction = "request_changes"
)

// NotificationType categorizes a student notification
type NotificationType string

const (
	NotificationApproval       NotificationType = "approval"
	NotificationRejection      NotificationType = "rejection"
	NotificationRequestChanges NotificationType = "request_changes"
)
