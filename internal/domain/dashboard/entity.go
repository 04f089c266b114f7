package dashboard

// SponsorStats represents aggregated stats for the sponsor dashboard
type SponsorStats struct {
	// Scholarships
	ScholarshipsByStatus map[string]int `json:"scholarships_by_status"`
	TotalScholarships    int            `json:"total_scholarships"`
	CommittedBudget      int64          `json:"committed_budget"`

	// Deposits
	TotalDeposited int64 `json:"total_deposited"`

	// Applications
	Applicants   int   `json:"applicants"`
	Awarded      int   `json:"awarded"`
	FundedAmount int64 `json:"funded_amount"`
}

// StudentStats represents aggregated stats for the student dashboard
type StudentStats struct {
	ApplicationsByStatus map[string]int `json:"applications_by_status"`
	TotalApplications    int            `json:"total_applications"`

	// Wallet
	Balance        int64 `json:"balance"`
	TotalEarned    int64 `json:"total_earned"`
	TotalWithdrawn int64 `json:"total_withdrawn"`
}

// StatusCount is one GROUP BY status row
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func countsToMap(rows []StatusCount) (map[string]int, int) {
	out := make(map[string]int, len(rows))
	total := 0
	for _, r := range rows {
		out[r.Status] = r.Count
		total += r.Count
	}
	return out, total
}
