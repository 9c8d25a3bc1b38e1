package candidate

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingUserID  = errors.New("candidate user id is required")
	ErrEmptyEmbedding = errors.New("candidate embedding is empty")
)

// Profile is the read-side view of a candidate produced by the upstream
// embedding pipeline. This package never mutates it.
type Profile struct {
	UserID       uuid.UUID
	Email        string
	FullName     string
	Embedding    []float64
	Skills       []string
	JobTitles    []string
	Industries   []string
	Location     string
	NotifyOptIn  bool
	LastActiveAt time.Time
	EmbeddedAt   time.Time
}

func (p Profile) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrMissingUserID
	}
	if len(p.Embedding) == 0 {
		return ErrEmptyEmbedding
	}
	return nil
}
