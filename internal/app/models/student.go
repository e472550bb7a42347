package models

import "time"

// Student defines the student model based on the 'students' table.
// The credential snapshot (gpa, credits, attendancePct) is flattened into
// columns; credits are mutated only by the approval workflow.
type Student struct {
	ID            int64     `json:"id" db:"id" example:"1"`
	Name          string    `json:"name" db:"name" example:"Asha Rao"`
	Roll          string    `json:"roll" db:"roll" example:"CS21B042"`
	Email         string    `json:"email" db:"email" example:"asha@school.edu"`
	Department    string    `json:"department" db:"department" example:"CSE"`
	Year          int       `json:"year" db:"year" example:"3"`
	GPA           float64   `json:"gpa" db:"gpa" example:"8.4"`
	Credits       int       `json:"credits" db:"credits" example:"12"`
	AttendancePct float64   `json:"attendancePct" db:"attendance_pct" example:"91.5"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}
