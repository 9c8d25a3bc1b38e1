package matching

import (
	"strings"

	"talent-match/internal/domain/candidate"
	"talent-match/internal/domain/job"
)

const (
	ReasonExceptionalMatch   = "exceptional_match"
	ReasonStrongMatch        = "strong_match"
	ReasonGoodMatch          = "good_match"
	ReasonDecentMatch        = "decent_match"
	ReasonSkillsMatch        = "skills_match"
	ReasonIndustryExperience = "industry_experience"
	ReasonTitleMatch         = "title_match"
	ReasonLocationMatch      = "location_match"
	ReasonAISimilarity       = "ai_similarity"
)

// Reasons derives the human-readable tags explaining why a candidate matched
// a job. It explains the score, it never computes it: every rule is a plain
// case-insensitive text overlap, independent of the embeddings. The result is
// never empty; when no rule fires the generic ai_similarity tag is emitted.
func Reasons(j job.Job, p candidate.Profile, score float64) []string {
	out := make([]string, 0, 5)

	switch {
	case score >= 95:
		out = append(out, ReasonExceptionalMatch)
	case score >= 90:
		out = append(out, ReasonStrongMatch)
	case score >= 85:
		out = append(out, ReasonGoodMatch)
	case score >= 80:
		out = append(out, ReasonDecentMatch)
	}

	if anyOverlap(j.Skills, p.Skills) {
		out = append(out, ReasonSkillsMatch)
	}
	if anyContained(j.Description, p.Industries) {
		out = append(out, ReasonIndustryExperience)
	}
	if anyOverlapOne(j.Title, p.JobTitles) {
		out = append(out, ReasonTitleMatch)
	}
	if bidirContains(j.Location, p.Location) {
		out = append(out, ReasonLocationMatch)
	}

	if len(out) == 0 {
		out = append(out, ReasonAISimilarity)
	}
	return out
}

// bidirContains reports whether either string contains the other,
// case-insensitively. Blank strings never match.
func bidirContains(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func anyOverlap(required, owned []string) bool {
	for _, r := range required {
		for _, o := range owned {
			if bidirContains(r, o) {
				return true
			}
		}
	}
	return false
}

func anyOverlapOne(target string, owned []string) bool {
	for _, o := range owned {
		if bidirContains(target, o) {
			return true
		}
	}
	return false
}

func anyContained(text string, terms []string) bool {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
