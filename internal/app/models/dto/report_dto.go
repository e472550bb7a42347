package dto

import "time"

// TypeCount is an activity count for one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// ParticipationRow counts distinct participating students for one
// (department, year) pair.
type ParticipationRow struct {
	Department   string `json:"department"`
	Year         int    `json:"year"`
	Participants int64  `json:"participants"`
}

// OverviewResponse is the dashboard aggregate.
type OverviewResponse struct {
	TotalStudents    int64              `json:"totalStudents"`
	ActivitiesByType []TypeCount        `json:"activitiesByType"`
	VerifiedCount    int64              `json:"verifiedCount"`
	Participation    []ParticipationRow `json:"participation"`
}

// NaacMeta describes when and under which filters an export was generated.
type NaacMeta struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Filters     map[string]string `json:"filters"`
}

// NaacTotals are the headline numbers of an accreditation export.
type NaacTotals struct {
	Students           int64 `json:"students"`
	ApprovedActivities int64 `json:"approvedActivities"`
}

// NaacResponse maps approved activity counts into accreditation metric
// buckets. Bucket keys follow the NAAC criteria numbering.
type NaacResponse struct {
	Meta            NaacMeta         `json:"meta"`
	Totals          NaacTotals       `json:"totals"`
	BreakdownByType []TypeCount      `json:"breakdownByType"`
	Mappings        map[string]int64 `json:"mappings"`
}

// ExportActivityRow is one flattened activity row with joined student fields.
type ExportActivityRow struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Date        string `json:"date" example:"2025-03-14"`
	Status      string `json:"status"`
	Credits     int    `json:"credits"`
	StudentName string `json:"studentName"`
	Roll        string `json:"roll"`
	Department  string `json:"department"`
	Year        int    `json:"year"`
}

// ExportActivitiesResponse is the JSON form of an activities export.
type ExportActivitiesResponse struct {
	Records []ExportActivityRow `json:"records"`
}

// ExportOverviewResponse is the JSON form of an overview export.
type ExportOverviewResponse struct {
	TotalStudents    int64       `json:"totalStudents"`
	ActivitiesByType []TypeCount `json:"activitiesByType"`
}

// StudentSummaryResponse is the per-student aggregate.
type StudentSummaryResponse struct {
	Student      StudentSummaryIdentity `json:"student"`
	StatusCounts map[string]int64       `json:"statusCounts"`
	ByType       []TypeCount            `json:"byType"`
}

// StudentSummaryIdentity is the identity and credential snapshot inside a
// per-student summary.
type StudentSummaryIdentity struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Roll          string  `json:"roll"`
	Department    string  `json:"department"`
	Year          int     `json:"year"`
	GPA           float64 `json:"gpa"`
	Credits       int     `json:"credits"`
	AttendancePct float64 `json:"attendancePct"`
}
