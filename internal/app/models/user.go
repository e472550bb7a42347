package models

import "time"

// User is a credential record, separate from the Student entity. When the
// role is student the record carries a back-reference to the Student row.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role" example:"student"`
	StudentID    *int64    `json:"studentId,omitempty" db:"student_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
