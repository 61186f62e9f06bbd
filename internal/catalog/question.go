package catalog

import "strings"

// Difficulty is the canonical difficulty of a problem.
type Difficulty string

const (
	Easy    Difficulty = "Easy"
	Medium  Difficulty = "Medium"
	Hard    Difficulty = "Hard"
	Unknown Difficulty = "Unknown"
)

// Difficulties lists the recognised difficulties in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// DefaultSubTopic is the sub-topic assigned when none is given.
const DefaultSubTopic = "General"

// ParseDifficulty maps a free-text value to a Difficulty. Matching is
// case-insensitive; anything unrecognised is Unknown.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy
	case "medium":
		return Medium
	case "hard":
		return Hard
	default:
		return Unknown
	}
}

// Reference is the canonical problem a question points at. Several
// questions may share one reference.
type Reference struct {
	ExternalID string     `json:"_id"`
	Name       string     `json:"name"`
	Difficulty Difficulty `json:"difficulty"`
	ProblemURL string     `json:"problemUrl,omitempty"`
}

// Question is one catalog entry.
type Question struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Topic     string     `json:"topic"`
	SubTopic  string     `json:"subTopic"`
	Reference *Reference `json:"questionId,omitempty"`
}

// Name returns the reference name, falling back to the title.
func (q Question) Name() string {
	if q.Reference != nil && q.Reference.Name != "" {
		return q.Reference.Name
	}
	return q.Title
}

// Difficulty returns the reference difficulty, or Unknown when the
// reference is missing or carries an unrecognised value.
func (q Question) Difficulty() Difficulty {
	if q.Reference == nil {
		return Unknown
	}
	return ParseDifficulty(string(q.Reference.Difficulty))
}

// DifficultyLabel is the table label for the difficulty: the raw value
// when present, "N/A" otherwise.
func (q Question) DifficultyLabel() string {
	if q.Reference == nil || q.Reference.Difficulty == "" {
		return "N/A"
	}
	return string(q.Reference.Difficulty)
}

// ProblemURL returns the problem link, or "" when there is none.
func (q Question) ProblemURL() string {
	if q.Reference == nil {
		return ""
	}
	return q.Reference.ProblemURL
}

// clone returns a deep copy so callers cannot mutate store internals.
func (q Question) clone() Question {
	if q.Reference != nil {
		ref := *q.Reference
		q.Reference = &ref
	}
	return q
}

// Patch holds the fields to merge into an existing question. Nil fields
// are left untouched.
type Patch struct {
	Title     *string
	Topic     *string
	SubTopic  *string
	Reference *Reference
}

func (p Patch) apply(q Question) Question {
	if p.Title != nil {
		q.Title = *p.Title
	}
	if p.Topic != nil {
		q.Topic = *p.Topic
	}
	if p.SubTopic != nil {
		q.SubTopic = *p.SubTopic
	}
	if p.Reference != nil {
		ref := *p.Reference
		q.Reference = &ref
	}
	return q
}
