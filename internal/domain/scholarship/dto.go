package scholarship

import (
	"time"

	"github.com/google/uuid"
)

// CreateScholarshipRequest for POST /scholarships
type CreateScholarshipRequest struct {
	Title                string    `json:"title" validate:"required,min=3,max=200"`
	Description          string    `json:"description" validate:"required,min=10,max=5000"`
	Category             string    `json:"category" validate:"omitempty,max=100"`
	Difficulty           string    `json:"difficulty" validate:"omitempty,difficulty"`
	EligibilityCriteria  string    `json:"eligibility_criteria" validate:"required,max=5000"`
	SubmissionGuidelines string    `json:"submission_guidelines" validate:"required,max=5000"`
	EvaluationCriteria   string    `json:"evaluation_criteria" validate:"required,max=5000"`
	Requirements         []string  `json:"requirements" validate:"omitempty,max=20,dive,max=200"`
	Tags                 []string  `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	AmountPerAward       int64     `json:"amount_per_award"`
	NumberOfAwards       int       `json:"number_of_awards"`
	Deadline             time.Time `json:"deadline" validate:"required"`
}

// UpdateScholarshipRequest for PUT /scholarships/{id}
type UpdateScholarshipRequest struct {
	Title                *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description          *string    `json:"description" validate:"omitempty,min=10,max=5000"`
	Category             *string    `json:"category" validate:"omitempty,max=100"`
	Difficulty           *string    `json:"difficulty" validate:"omitempty,difficulty"`
	EligibilityCriteria  *string    `json:"eligibility_criteria" validate:"omitempty,max=5000"`
	SubmissionGuidelines *string    `json:"submission_guidelines" validate:"omitempty,max=5000"`
	EvaluationCriteria   *string    `json:"evaluation_criteria" validate:"omitempty,max=5000"`
	Requirements         []string   `json:"requirements" validate:"omitempty,max=20,dive,max=200"`
	Tags                 []string   `json:"tags" validate:"omitempty,max=10,dive,max=50"`
	AmountPerAward       *int64     `json:"amount_per_award"`
	NumberOfAwards       *int       `json:"number_of_awards"`
	Deadline             *time.Time `json:"deadline"`
}

// changesBudget reports whether the request touches fields the deposit was computed from
func (r *UpdateScholarshipRequest) changesBudget() bool {
	return r.AmountPerAward != nil || r.NumberOfAwards != nil || r.Deadline != nil
}

// ListFilter for public browsing
type ListFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

func (f *ListFilter) offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ScholarshipResponse represents scholarship in API response
type ScholarshipResponse struct {
	ID                   uuid.UUID `json:"id"`
	SponsorID            uuid.UUID `json:"sponsor_id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Category             string    `json:"category,omitempty"`
	Difficulty           string    `json:"difficulty,omitempty"`
	EligibilityCriteria  string    `json:"eligibility_criteria"`
	SubmissionGuidelines string    `json:"submission_guidelines"`
	EvaluationCriteria   string    `json:"evaluation_criteria"`
	Requirements         []string  `json:"requirements"`
	Tags                 []string  `json:"tags"`
	AmountPerAward       int64     `json:"amount_per_award"`
	NumberOfAwards       int       `json:"number_of_awards"`
	TotalBudget          int64     `json:"total_budget"`
	RemainingAwards      int       `json:"remaining_awards"`
	Status               string    `json:"status"`
	PaymentStatus        string    `json:"payment_status"`
	Deadline             string    `json:"deadline"`
	CreatedAt            string    `json:"created_at"`
	UpdatedAt            string    `json:"updated_at"`
}

// ResponseFromEntity converts entity to response DTO
func ResponseFromEntity(s *Scholarship) *ScholarshipResponse {
	return &ScholarshipResponse{
		ID:                   s.ID,
		SponsorID:            s.SponsorID,
		Title:                s.Title,
		Description:          s.Description,
		Category:             s.Category,
		Difficulty:           string(s.Difficulty),
		EligibilityCriteria:  s.EligibilityCriteria,
		SubmissionGuidelines: s.SubmissionGuidelines,
		EvaluationCriteria:   s.EvaluationCriteria,
		Requirements:         nonNil(s.Requirements),
		Tags:                 nonNil(s.Tags),
		AmountPerAward:       s.AmountPerAward,
		NumberOfAwards:       s.NumberOfAwards,
		TotalBudget:          s.TotalBudget,
		RemainingAwards:      s.RemainingAwards(),
		Status:               string(s.Status),
		PaymentStatus:        string(s.PaymentStatus),
		Deadline:             s.Deadline.Format(time.RFC3339),
		CreatedAt:            s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            s.UpdatedAt.Format(time.RFC3339),
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
