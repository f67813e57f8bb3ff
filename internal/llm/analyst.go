package llm

import (
	"context"
	"time"

	"github.com/pavelanni/interviewer/internal/llm/prompts"
	"github.com/pavelanni/interviewer/internal/model"
)

// Analyst writes the narrative interviewer feedback for a finished round.
type Analyst struct {
	llm     Completer
	timeout time.Duration
}

// NewAnalyst creates an Analyst bounded by timeout per call.
func NewAnalyst(c Completer, timeout time.Duration) *Analyst {
	return &Analyst{llm: c, timeout: timeout}
}

// Analyze summarizes up to three incorrect answers of questions into a short paragraph.
func (a *Analyst) Analyze(ctx context.Context, questions []model.Question, score float64, final bool) (string, error) {
	p, err := prompts.BuildAnalysisPrompt(questions, score, final)
	if err != nil {
		return "", err
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.llm.Complete(ctx, Request{Prompt: p.User, System: p.System, Temperature: 0.5})
}
