package evaluate

import (
	"cmp"
	"math"
	"slices"

	"github.com/pavelanni/interviewer/internal/model"
)

// topicLimit is how many strongest and weakest topics are reported.
const topicLimit = 3

// TopicAccuracy is the share of correct answers within one topic.
type TopicAccuracy struct {
	Topic    string
	Correct  int
	Total    int
	Accuracy float64
}

// RoundScore is the scored outcome of a set of evaluated questions.
type RoundScore struct {
	Score     float64
	Correct   int
	Total     int
	Topics    []TopicAccuracy
	Strongest []string
	Weakest   []string
}

// Score returns 100*correct/total rounded to two decimals, or 0 when total is 0.
func Score(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(correct) / float64(total))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ScoreRound scores evaluated questions.
func ScoreRound(questions []model.Question) RoundScore {
	correct := 0
	for _, q := range questions {
		if q.IsCorrect() {
			correct++
		}
	}
	topics := TopicBreakdown(questions)
	return RoundScore{
		Score:     Score(correct, len(questions)),
		Correct:   correct,
		Total:     len(questions),
		Topics:    topics,
		Strongest: names(Strongest(topics)),
		Weakest:   names(Weakest(topics)),
	}
}

// TopicBreakdown computes per-topic accuracy in first-encountered topic order.
func TopicBreakdown(questions []model.Question) []TopicAccuracy {
	index := make(map[string]int)
	var out []TopicAccuracy
	for _, q := range questions {
		i, ok := index[q.Topic]
		if !ok {
			i = len(out)
			index[q.Topic] = i
			out = append(out, TopicAccuracy{Topic: q.Topic})
		}
		out[i].Total++
		if q.IsCorrect() {
			out[i].Correct++
		}
	}
	for i := range out {
		out[i].Accuracy = 100 * float64(out[i].Correct) / float64(out[i].Total)
	}
	return out
}

// Strongest returns up to three topics by descending accuracy. Ties keep input order.
func Strongest(topics []TopicAccuracy) []TopicAccuracy {
	sorted := slices.Clone(topics)
	slices.SortStableFunc(sorted, func(a, b TopicAccuracy) int {
		return cmp.Compare(b.Accuracy, a.Accuracy)
	})
	return head(sorted)
}

// Weakest returns up to three topics by ascending accuracy. Ties keep input order.
func Weakest(topics []TopicAccuracy) []TopicAccuracy {
	sorted := slices.Clone(topics)
	slices.SortStableFunc(sorted, func(a, b TopicAccuracy) int {
		return cmp.Compare(a.Accuracy, b.Accuracy)
	})
	return head(sorted)
}

func head(topics []TopicAccuracy) []TopicAccuracy {
	if len(topics) > topicLimit {
		return topics[:topicLimit]
	}
	return topics
}

func names(topics []TopicAccuracy) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = t.Topic
	}
	return out
}
