package dto

// RegisterRequest is the payload for student self-registration.
// All fields are required; registration creates both the Student record and
// its credential User in one transaction.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required" example:"Asha Rao"`
	Email      string `json:"email" binding:"required,email" example:"asha@school.edu"`
	Roll       string `json:"roll" binding:"required" example:"CS21B042"`
	Department string `json:"department" binding:"required" example:"CSE"`
	Year       int    `json:"year" binding:"required,min=1" example:"3"`
	Password   string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for credential validation.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"asha@school.edu"`
	Password string `json:"password" binding:"required"`
}

// UserData is the sanitized credential record returned by auth endpoints.
type UserData struct {
	ID        int64  `json:"id" example:"5"`
	Name      string `json:"name" example:"Asha Rao"`
	Email     string `json:"email" example:"asha@school.edu"`
	Role      string `json:"role" example:"student"`
	StudentID *int64 `json:"studentId,omitempty" example:"1"`
}

// LoginResponse carries the signed identity token plus the sanitized user.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserData `json:"user"`
}

// RegisterResponse wraps the newly created user.
type RegisterResponse struct {
	User UserData `json:"user"`
}
