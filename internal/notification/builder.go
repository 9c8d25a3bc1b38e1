package notification

import (
	"fmt"
	"net/url"
	"strings"

	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/job"
	"talent-match/internal/domain/match"
)

// Builder renders the personalized notification for one match. Content is a
// peripheral concern; what matters is the contract: a Match+Job+Profile triple
// in, subject/body plus opaque tracking references out.
type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

func (b *Builder) Build(m match.Match, j job.Job, p candidate.Profile) Message {
	name := strings.TrimSpace(p.FullName)
	if name == "" {
		name = "there"
	}

	company := strings.TrimSpace(j.Company)
	if company == "" {
		company = "a hiring company"
	}

	openURL := b.trackURL("/track/open", m)
	clickURL := b.trackURL("/track/click", m)

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\n", name)
	fmt.Fprintf(&body, "We found a role that looks like a %.0f%% fit for your profile:\n\n", m.Score)
	fmt.Fprintf(&body, "%s at %s", j.Title, company)
	if loc := strings.TrimSpace(j.Location); loc != "" {
		fmt.Fprintf(&body, " (%s)", loc)
	}
	body.WriteString("\n\n")
	if len(m.Reasons) > 0 {
		body.WriteString("Why you match: " + strings.Join(m.Reasons, ", ") + "\n\n")
	}
	fmt.Fprintf(&body, "View the job: %s\n", clickURL)
	fmt.Fprintf(&body, "<img src=%q width=\"1\" height=\"1\" alt=\"\">\n", openURL)

	return Message{
		To:      p.Email,
		Subject: fmt.Sprintf("New featured job for you: %s", j.Title),
		Body:    body.String(),
		TrackingRefs: map[string]string{
			"job_id":  m.JobID.String(),
			"user_id": m.UserID.String(),
		},
	}
}

func (b *Builder) trackURL(path string, m match.Match) string {
	q := url.Values{}
	q.Set("job_id", m.JobID.String())
	q.Set("user_id", m.UserID.String())
	return b.baseURL + path + "?" + q.Encode()
}
