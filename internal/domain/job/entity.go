package job

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingID    = errors.New("job id is required")
	ErrMissingTitle = errors.New("job title is required")
)

type Job struct {
	ID          uuid.UUID
	Title       string
	Company     string
	Location    string
	Description string
	Skills      []string
	JobType     string
	Featured    bool
	CreatedAt   time.Time
}

func (j Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrMissingID
	}
	if strings.TrimSpace(j.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// EmbeddingText is the canonical text fed to the embedding provider. Title,
// description and required skills all contribute to the job's position in
// vector space.
func (j Job) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if t := strings.TrimSpace(j.Title); t != "" {
		parts = append(parts, t)
	}
	if d := strings.TrimSpace(j.Description); d != "" {
		parts = append(parts, d)
	}
	if len(j.Skills) > 0 {
		parts = append(parts, strings.Join(j.Skills, ", "))
	}
	return strings.Join(parts, "\n")
}
