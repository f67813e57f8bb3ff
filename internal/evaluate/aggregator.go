package evaluate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pavelanni/interviewer/internal/model"
)

// Fixed analysis texts used when no narrative is requested or it cannot be produced.
const (
	ExcellentAnalysis   = "Excellent performance! All answers were correct or near-perfect."
	UnavailableAnalysis = "Detailed analysis could not be generated at this time."
)

// Accuracy bands for failure-mode recommendations.
const (
	fundamentalsBelow = 50
	practiceBelow     = 70
)

// Analyst writes narrative feedback about incorrect answers.
type Analyst interface {
	Analyze(ctx context.Context, questions []model.Question, score float64, final bool) (string, error)
}

// Aggregator builds Feedback for failed rounds and completed interviews.
type Aggregator struct {
	analyst Analyst
}

// NewAggregator creates an Aggregator. A nil analyst skips narrative analysis.
func NewAggregator(a Analyst) *Aggregator {
	return &Aggregator{analyst: a}
}

// Failure builds feedback scoped to the failed round only.
func (a *Aggregator) Failure(ctx context.Context, r model.RoundResult) model.Feedback {
	topics := TopicBreakdown(r.Questions)
	weakest := Weakest(topics)

	var recs []model.Recommendation
	for _, t := range weakest {
		switch {
		case t.Accuracy < fundamentalsBelow:
			recs = append(recs, Recommend(model.RecommendFundamentals, t.Topic))
		case t.Accuracy < practiceBelow:
			recs = append(recs, Recommend(model.RecommendPractice, t.Topic))
		}
	}

	return model.Feedback{
		Score:           r.Score,
		StrongestTopics: names(Strongest(topics)),
		WeakestTopics:   names(weakest),
		Recommendations: recs,
		TimeSpent:       map[string]float64{roundKey(r.Round): r.TimeSpent},
		Reviews:         reviews(r.Questions),
		Analysis:        a.analyze(ctx, r.Questions, r.Score, false),
	}
}

// Completion builds feedback across every round of a finished interview.
func (a *Aggregator) Completion(ctx context.Context, rounds []model.RoundResult) model.Feedback {
	var all []model.Question
	timeSpent := make(map[string]float64, len(rounds)+1)
	total := 0.0
	for _, r := range rounds {
		all = append(all, r.Questions...)
		timeSpent[roundKey(r.Round)] = r.TimeSpent
		total += r.TimeSpent
	}
	timeSpent["total"] = total

	topics := TopicBreakdown(all)
	strongest := names(Strongest(topics))
	weakest := names(Weakest(topics))

	strongTopic, weakTopic := "multiple areas", "various topics"
	if len(strongest) > 0 {
		strongTopic = strongest[0]
	}
	if len(weakest) > 0 {
		weakTopic = weakest[0]
	}

	score := WeightedScore(rounds)
	return model.Feedback{
		Score:           score,
		StrongestTopics: strongest,
		WeakestTopics:   weakest,
		Recommendations: []model.Recommendation{
			Recommend(model.RecommendStrongest, strongTopic),
			Recommend(model.RecommendConsider, weakTopic),
		},
		TimeSpent: timeSpent,
		Reviews:   reviews(all),
		Analysis:  a.analyze(ctx, all, score, true),
	}
}

// WeightedScore averages round scores weighted by their question counts.
func WeightedScore(rounds []model.RoundResult) float64 {
	sum, count := 0.0, 0
	for _, r := range rounds {
		sum += r.Score * float64(r.Total)
		count += r.Total
	}
	if count == 0 {
		return 0
	}
	return round2(sum / float64(count))
}

// Recommend renders the English recommendation line for kind and topic.
func Recommend(kind model.RecommendationKind, topic string) model.Recommendation {
	var text string
	switch kind {
	case model.RecommendFundamentals:
		text = fmt.Sprintf("Focus on %s fundamentals", topic)
	case model.RecommendPractice:
		text = fmt.Sprintf("Practice more %s problems", topic)
	case model.RecommendStrongest:
		text = fmt.Sprintf("Your strongest area is %s", topic)
	case model.RecommendConsider:
		text = fmt.Sprintf("Consider practicing %s", topic)
	}
	return model.Recommendation{Kind: kind, Topic: topic, Text: text}
}

func (a *Aggregator) analyze(ctx context.Context, questions []model.Question, score float64, final bool) string {
	allCorrect := true
	for _, q := range questions {
		if !q.IsCorrect() {
			allCorrect = false
			break
		}
	}
	if allCorrect {
		return ExcellentAnalysis
	}
	if a.analyst == nil {
		return UnavailableAnalysis
	}
	text, err := a.analyst.Analyze(ctx, questions, score, final)
	if err != nil {
		slog.Warn("detailed analysis failed", "final", final, "error", err)
		return UnavailableAnalysis
	}
	return text
}

func reviews(questions []model.Question) []model.AnswerReview {
	out := make([]model.AnswerReview, len(questions))
	for i, q := range questions {
		out[i] = model.AnswerReview{
			Question:      q.Prompt,
			Topic:         q.Topic,
			UserAnswer:    q.UserAnswer,
			CorrectAnswer: q.Reference,
			IsCorrect:     q.IsCorrect(),
		}
	}
	return out
}

func roundKey(n int) string {
	return fmt.Sprintf("round_%d", n)
}
