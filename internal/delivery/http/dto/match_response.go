package dto

import "github.com/google/uuid"

type RankedMatchResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
	Qualified bool      `json:"qualified"`
}

type SkippedCandidateResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Reason string    `json:"reason"`
}

type MatchRunResponse struct {
	JobID     uuid.UUID                  `json:"job_id"`
	Matches   []RankedMatchResponse      `json:"matches"`
	Persisted int                        `json:"persisted"`
	Skipped   []SkippedCandidateResponse `json:"skipped"`
	Stats     StatsResponse              `json:"stats"`
}

type SendErrorResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Reason    string    `json:"reason"`
	Permanent bool      `json:"permanent"`
}

type DispatchResponse struct {
	JobID     uuid.UUID           `json:"job_id"`
	Eligible  int                 `json:"eligible"`
	Attempted int                 `json:"attempted"`
	Sent      int                 `json:"sent"`
	Failed    int                 `json:"failed"`
	Errors    []SendErrorResponse `json:"errors"`
}

type StatsResponse struct {
	TotalCandidates  int     `json:"total_candidates"`
	HighScoreMatches int     `json:"high_score_matches"`
	Notified         int     `json:"notified"`
	Opened           int     `json:"opened"`
	Clicked          int     `json:"clicked"`
	AverageScore     float64 `json:"average_score"`
	TopScore         float64 `json:"top_score"`
}
