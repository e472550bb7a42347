package services

// Services defined in this package:
// - AuthService: registration and credential validation
// - ApprovalService: the activity review workflow and its side effects
// - ReportService: dashboard, accreditation and export aggregates
// - StudentService: profiles, submissions, portfolios and notifications
