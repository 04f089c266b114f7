package application

import (
	"time"

	"github.com/google/uuid"
)

// SubmitRequest for POST /scholarships/{id}/applications
type SubmitRequest struct {
	Essay       string   `json:"essay" validate:"required,min=50,max=10000"`
	Motivation  string   `json:"motivation" validate:"required,max=5000"`
	ProjectPlan string   `json:"project_plan" validate:"omitempty,max=5000"`
	Timeline    string   `json:"timeline" validate:"omitempty,max=2000"`
	Documents   []string `json:"documents" validate:"omitempty,max=10,dive,max=500"`
}

// DecisionRequest for PATCH /applications/{id}/decision
type DecisionRequest struct {
	Status string `json:"status" validate:"required,decision"`
}

// ReceiptRequest for PATCH /applications/{id}/receipt
type ReceiptRequest struct {
	Key string `json:"key" validate:"required,max=500"`
}

// ApplicationResponse represents application in API response
type ApplicationResponse struct {
	ID               uuid.UUID  `json:"id"`
	StudentID        uuid.UUID  `json:"student_id"`
	ScholarshipID    uuid.UUID  `json:"scholarship_id"`
	ScholarshipTitle string     `json:"scholarship_title,omitempty"`
	Status           string     `json:"status"`
	Essay            string     `json:"essay"`
	Motivation       string     `json:"motivation"`
	ProjectPlan      string     `json:"project_plan,omitempty"`
	Timeline         string     `json:"timeline,omitempty"`
	Documents        []string   `json:"documents"`
	Amount           int64      `json:"amount"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	FundedAt         *time.Time `json:"funded_at,omitempty"`
	ReceiptKey       string     `json:"receipt_key,omitempty"`
	ReceiptVerified  bool       `json:"receipt_verified"`
	SubmittedAt      time.Time  `json:"submitted_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ResponseFromEntity converts entity to response DTO
func ResponseFromEntity(a *Application) *ApplicationResponse {
	docs := []string(a.Documents)
	if docs == nil {
		docs = []string{}
	}
	return &ApplicationResponse{
		ID:               a.ID,
		StudentID:        a.StudentID,
		ScholarshipID:    a.ScholarshipID,
		ScholarshipTitle: a.ScholarshipTitle,
		Status:           string(a.Status),
		Essay:            a.Essay,
		Motivation:       a.Motivation,
		ProjectPlan:      a.ProjectPlan,
		Timeline:         a.Timeline,
		Documents:        docs,
		Amount:           a.Amount,
		ReviewedAt:       a.ReviewedAt,
		FundedAt:         a.FundedAt,
		ReceiptKey:       a.ReceiptKey,
		ReceiptVerified:  a.ReceiptVerified,
		SubmittedAt:      a.SubmittedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func toResponses(items []*Application) []*ApplicationResponse {
	out := make([]*ApplicationResponse, len(items))
	for i, a := range items {
		out[i] = ResponseFromEntity(a)
	}
	return out
}
