package notification

import (
	"strings"
	"testing"

	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/job"
	"talent-match/internal/domain/match"

	"github.com/google/uuid"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("https://app.example.com/")
	m := match.Match{JobID: uuid.New(), UserID: uuid.New(), Score: 92.4, Reasons: []string{"strong_match", "skills_match"}}
	j := job.Job{ID: m.JobID, Title: "Forklift Operator", Company: "Acme Logistics", Location: "Rotterdam"}
	p := candidate.Profile{UserID: m.UserID, Email: "jan@example.com", FullName: "Jan"}

	msg := b.Build(m, j, p)

	if msg.To != "jan@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "Forklift Operator") {
		t.Fatalf("subject must name the job: %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Hi Jan,") {
		t.Fatalf("body must greet the candidate: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "92% fit") {
		t.Fatalf("body must state the rounded score: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "strong_match, skills_match") {
		t.Fatalf("body must list the match reasons: %q", msg.Body)
	}

	open := "https://app.example.com/track/open?job_id=" + m.JobID.String() + "&user_id=" + m.UserID.String()
	click := "https://app.example.com/track/click?job_id=" + m.JobID.String() + "&user_id=" + m.UserID.String()
	if !strings.Contains(msg.Body, open) {
		t.Fatalf("body must embed the open pixel URL:\n%s", msg.Body)
	}
	if !strings.Contains(msg.Body, click) {
		t.Fatalf("body must embed the click URL:\n%s", msg.Body)
	}

	if msg.TrackingRefs["job_id"] != m.JobID.String() || msg.TrackingRefs["user_id"] != m.UserID.String() {
		t.Fatalf("tracking refs must identify the match: %v", msg.TrackingRefs)
	}
}

func TestBuilder_Fallbacks(t *testing.T) {
	b := NewBuilder("https://app.example.com")
	msg := b.Build(match.Match{Score: 81}, job.Job{Title: "Welder"}, candidate.Profile{Email: "x@example.com"})

	if !strings.Contains(msg.Body, "Hi there,") {
		t.Fatalf("missing name must fall back to a generic greeting: %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "a hiring company") {
		t.Fatalf("missing company must fall back: %q", msg.Body)
	}
}
