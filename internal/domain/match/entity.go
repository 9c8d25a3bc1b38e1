package match

import (
	"time"

	"github.com/google/uuid"
)

// MatchTypeAIPipeline tags rows produced by the automated embedding pipeline,
// as opposed to matches created by recruiters or other sources.
const MatchTypeAIPipeline = "ai_pipeline"

type Match struct {
	JobID     uuid.UUID
	UserID    uuid.UUID
	Score     float64
	Reasons   []string
	MatchType string

	Sent      bool
	SentAt    *time.Time
	Opened    bool
	OpenedAt  *time.Time
	Clicked   bool
	ClickedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats is the aggregated read-side view over the Match rows of one job.
// AverageScore is computed over every candidate considered in a run, not just
// the qualifying rows that were persisted.
type Stats struct {
	TotalCandidates  int     `json:"total_candidates"`
	HighScoreMatches int     `json:"high_score_matches"`
	Notified         int     `json:"notified"`
	Opened           int     `json:"opened"`
	Clicked          int     `json:"clicked"`
	AverageScore     float64 `json:"average_score"`
	TopScore         float64 `json:"top_score"`
}
