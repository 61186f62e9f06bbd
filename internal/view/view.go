// Package view derives read-only projections of the catalog for display:
// search filtering, topic grouping and progress figures.
package view

import (
	"strings"

	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/solved"
)

// OtherTopic labels questions without a topic.
const OtherTopic = "Other"

// SubTopicGroup is one sub-topic's questions in catalog order.
type SubTopicGroup struct {
	Name      string
	Questions []catalog.Question
}

// TopicGroup is one topic's sub-topics in first-appearance order.
type TopicGroup struct {
	Name      string
	SubTopics []SubTopicGroup
}

// Len returns the number of questions in the topic.
func (g TopicGroup) Len() int {
	n := 0
	for _, st := range g.SubTopics {
		n += len(st.Questions)
	}
	return n
}

// Filter returns the questions whose title, reference name, topic or
// sub-topic contains query, ignoring case. An empty query matches all.
func Filter(questions []catalog.Question, query string) []catalog.Question {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return questions
	}

	var out []catalog.Question
	for _, q := range questions {
		if matches(q, query) {
			out = append(out, q)
		}
	}
	return out
}

func matches(q catalog.Question, query string) bool {
	fields := []string{q.Title, q.Topic, q.SubTopic}
	if q.Reference != nil {
		fields = append(fields, q.Reference.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// Group nests questions by topic then sub-topic. Groups appear in the order
// their first question does.
func Group(questions []catalog.Question) []TopicGroup {
	var groups []TopicGroup
	topicIdx := map[string]int{}
	subIdx := map[string]map[string]int{}

	for _, q := range questions {
		topic := q.Topic
		if topic == "" {
			topic = OtherTopic
		}
		sub := q.SubTopic
		if sub == "" {
			sub = catalog.DefaultSubTopic
		}

		ti, ok := topicIdx[topic]
		if !ok {
			ti = len(groups)
			topicIdx[topic] = ti
			subIdx[topic] = map[string]int{}
			groups = append(groups, TopicGroup{Name: topic})
		}

		si, ok := subIdx[topic][sub]
		if !ok {
			si = len(groups[ti].SubTopics)
			subIdx[topic][sub] = si
			groups[ti].SubTopics = append(groups[ti].SubTopics, SubTopicGroup{Name: sub})
		}

		st := &groups[ti].SubTopics[si]
		st.Questions = append(st.Questions, q)
	}
	return groups
}

// Flatten is the inverse of Group up to ordering.
func Flatten(groups []TopicGroup) []catalog.Question {
	var out []catalog.Question
	for _, g := range groups {
		for _, st := range g.SubTopics {
			out = append(out, st.Questions...)
		}
	}
	return out
}

// Progress summarises how much of the catalog is solved.
type Progress struct {
	Solved  int
	Total   int
	Percent int
}

// ComputeProgress counts catalog questions present in mapping. Mapping
// entries for ids outside the catalog are ignored. Percent rounds half up.
func ComputeProgress(questions []catalog.Question, mapping solved.Mapping) Progress {
	p := Progress{Total: len(questions)}
	for _, q := range questions {
		if mapping[q.ID] {
			p.Solved++
		}
	}
	if p.Total > 0 {
		p.Percent = (p.Solved*200 + p.Total) / (2 * p.Total)
	}
	return p
}

// Solved returns the catalog questions present in mapping, in catalog order.
func Solved(questions []catalog.Question, mapping solved.Mapping) []catalog.Question {
	var out []catalog.Question
	for _, q := range questions {
		if mapping[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

// ByDifficulty counts questions per difficulty. Easy, Medium and Hard are
// always present; Unknown only when some question has it.
func ByDifficulty(questions []catalog.Question) map[catalog.Difficulty]int {
	counts := make(map[catalog.Difficulty]int, len(catalog.Difficulties))
	for _, d := range catalog.Difficulties {
		counts[d] = 0
	}
	for _, q := range questions {
		counts[q.Difficulty()]++
	}
	return counts
}
