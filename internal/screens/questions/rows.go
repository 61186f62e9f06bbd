package questions

import (
	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/view"
)

type rowKind int

const (
	rowTopic rowKind = iota
	rowSubTopic
	rowQuestion
)

type row struct {
	kind     rowKind
	topic    string
	subTopic string
	question catalog.Question
	total    int
	solved   int
}

// key identifies a row across rebuilds.
func (r row) key() string {
	switch r.kind {
	case rowTopic:
		return "t/" + r.topic
	case rowSubTopic:
		return "s/" + r.topic + "/" + r.subTopic
	default:
		return "q/" + r.question.ID
	}
}

// buildRows flattens grouped questions into display rows. Collapsed topics
// and sub-topics hide their children unless expandAll is set.
func buildRows(groups []view.TopicGroup, mapping solved.Mapping, collapsed map[string]bool, expandAll bool) []row {
	var rows []row
	for _, g := range groups {
		topicRow := row{kind: rowTopic, topic: g.Name}
		for _, st := range g.SubTopics {
			topicRow.total += len(st.Questions)
			topicRow.solved += countSolved(st.Questions, mapping)
		}
		rows = append(rows, topicRow)
		if collapsed[topicRow.key()] && !expandAll {
			continue
		}

		for _, st := range g.SubTopics {
			subRow := row{
				kind:     rowSubTopic,
				topic:    g.Name,
				subTopic: st.Name,
				total:    len(st.Questions),
				solved:   countSolved(st.Questions, mapping),
			}
			rows = append(rows, subRow)
			if collapsed[subRow.key()] && !expandAll {
				continue
			}
			for _, q := range st.Questions {
				rows = append(rows, row{
					kind:     rowQuestion,
					topic:    g.Name,
					subTopic: st.Name,
					question: q,
				})
			}
		}
	}
	return rows
}

func countSolved(qs []catalog.Question, mapping solved.Mapping) int {
	n := 0
	for _, q := range qs {
		if mapping[q.ID] {
			n++
		}
	}
	return n
}
