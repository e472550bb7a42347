package dto

// ApproveRequest is the body for approving an activity. Both fields are
// optional; a supplied creditsAwarded overwrites the activity's credits and,
// when positive, is added to the owning student's credit ledger.
type ApproveRequest struct {
	Note           string `json:"note"`
	CreditsAwarded *int   `json:"creditsAwarded"`
}

// RejectRequest is the body for rejecting an activity.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RequestChangesRequest is the body for sending an activity back for changes.
type RequestChangesRequest struct {
	Comments string `json:"comments"`
}

// DecisionResponse confirms a review decision.
type DecisionResponse struct {
	Success bool   `json:"success" example:"true"`
	Status  string `json:"status" example:"approved"`
	ID      int64  `json:"id" example:"17"`
}

// PendingActivityResponse is one review-queue row joined with its owning
// student.
type PendingActivityResponse struct {
	ActivityResponse
	Student StudentRef `json:"student"`
}

// StudentRef is the joined student projection used by review and export rows.
type StudentRef struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Roll       string `json:"roll"`
	Department string `json:"department"`
	Year       int    `json:"year"`
}

// PendingListResponse wraps the review queue.
type PendingListResponse struct {
	Items []PendingActivityResponse `json:"items"`
}
