package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type MatchRunCompletedEvent struct {
	Type      string  `json:"type"`
	JobID     string  `json:"job_id"`
	Persisted int     `json:"persisted"`
	TopScore  float64 `json:"top_score"`
	Timestamp string  `json:"timestamp"`
}

type DispatchCompletedEvent struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Timestamp string `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

func NotifyMatchRunCompleted(jobID uuid.UUID, persisted int, topScore float64) {
	h := defaultHub.Load()
	if h == nil {
		return
	}

	evt := MatchRunCompletedEvent{
		Type:      "match_run_completed",
		JobID:     jobID.String(),
		Persisted: persisted,
		TopScore:  topScore,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(b)
}

func NotifyDispatchCompleted(jobID uuid.UUID, sent, failed int) {
	h := defaultHub.Load()
	if h == nil {
		return
	}

	evt := DispatchCompletedEvent{
		Type:      "dispatch_completed",
		JobID:     jobID.String(),
		Sent:      sent,
		Failed:    failed,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(b)
}
