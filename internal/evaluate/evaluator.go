// Package evaluate decides answer correctness, scores rounds and aggregates feedback.
package evaluate

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sourcegraph/conc/iter"

	"github.com/pavelanni/interviewer/internal/model"
)

const (
	// JudgePassScore is the lowest delegated 0-100 score counted as correct.
	JudgePassScore = 70
	// MinSolutionRunes is the length a coding answer must exceed to count as an attempt.
	MinSolutionRunes = 30

	keyTermCount     = 5
	keyTermThreshold = 0.6
)

// Judge is the delegated correctness capability. Implementations may fail;
// failures degrade to the local policy for the question type.
type Judge interface {
	Match(ctx context.Context, q model.Question, answer string) (bool, error)
	Score(ctx context.Context, q model.Question, answer string) (int, error)
}

// Evaluator applies the per-type correctness policy.
type Evaluator struct {
	judge       Judge
	concurrency int
}

// NewEvaluator creates an Evaluator. judge may be nil, in which case only local
// rules are used. concurrency bounds parallel judge calls within one round.
func NewEvaluator(judge Judge, concurrency int) *Evaluator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Evaluator{judge: judge, concurrency: concurrency}
}

// EvaluateAll returns copies of questions with their verdicts set.
// Each question's UserAnswer is the answer evaluated.
func (e *Evaluator) EvaluateAll(ctx context.Context, questions []model.Question) []model.Question {
	mapper := iter.Mapper[model.Question, model.Question]{MaxGoroutines: e.concurrency}
	return mapper.Map(questions, func(q *model.Question) model.Question {
		out := *q
		ok := e.Evaluate(ctx, out, out.UserAnswer)
		out.Correct = &ok
		return out
	})
}

// Evaluate reports whether answer is correct for q. It never fails.
func (e *Evaluator) Evaluate(ctx context.Context, q model.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	reference := strings.TrimSpace(q.Reference)

	switch q.Type() {
	case model.TypeMultipleChoice:
		return strings.EqualFold(answer, reference)

	case model.TypeOneWord, model.TypeFillBlank:
		if strings.EqualFold(answer, reference) {
			return true
		}
		if e.judge == nil {
			return false
		}
		ok, err := e.judge.Match(ctx, q, answer)
		if err != nil {
			slog.Warn("judge match failed, marking incorrect",
				"question_id", q.ID, "type", q.Type(), "topic", q.Topic, "error", err)
			return false
		}
		return ok

	case model.TypeOutputPrediction:
		return stripSpace(answer) == stripSpace(reference)

	case model.TypeTheory, model.TypeCodeSnippet:
		if e.judge != nil {
			score, err := e.judge.Score(ctx, q, answer)
			if err == nil {
				return score >= JudgePassScore
			}
			slog.Warn("judge score failed, using keyword overlap",
				"question_id", q.ID, "type", q.Type(), "topic", q.Topic, "error", err)
		}
		return keywordOverlap(reference, answer)

	case model.TypeCodingProblem:
		return utf8.RuneCountInString(answer) > MinSolutionRunes
	}
	return false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// keywordOverlap takes the first words of reference as key terms and requires
// most of them to appear among the answer's words.
func keywordOverlap(reference, answer string) bool {
	terms := strings.Fields(strings.ToLower(reference))
	if len(terms) > keyTermCount {
		terms = terms[:keyTermCount]
	}
	if len(terms) == 0 {
		return false
	}
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(answer)) {
		words[w] = struct{}{}
	}
	matched := 0
	for _, t := range terms {
		if _, ok := words[t]; ok {
			matched++
		}
	}
	return float64(matched)/float64(len(terms)) >= keyTermThreshold
}
