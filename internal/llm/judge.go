package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pavelanni/interviewer/internal/llm/prompts"
	"github.com/pavelanni/interviewer/internal/model"
)

// Completer is the generation collaborator: send a prompt, receive text or fail.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var scoreRegex = regexp.MustCompile(`^(\d{1,3})\s*(?:%|/\s*100)?\.?$`)

// Judge delegates correctness decisions to the generation collaborator.
// Each call is bounded by the judge timeout.
type Judge struct {
	llm     Completer
	variant prompts.PromptVariant
	timeout time.Duration
}

// NewJudge creates a Judge. A zero timeout leaves calls bounded only by the caller's context.
func NewJudge(c Completer, variant prompts.PromptVariant, timeout time.Duration) *Judge {
	return &Judge{llm: c, variant: variant, timeout: timeout}
}

// Match asks for a yes/no verdict on a short answer.
func (j *Judge) Match(ctx context.Context, q model.Question, answer string) (bool, error) {
	p, err := prompts.BuildMatchPrompt(q, answer)
	if err != nil {
		return false, err
	}
	reply, err := j.complete(ctx, p)
	if err != nil {
		return false, err
	}
	return parseVerdict(reply)
}

// Score asks for a 0-100 quality score on a free-form answer.
func (j *Judge) Score(ctx context.Context, q model.Question, answer string) (int, error) {
	p, err := prompts.BuildScorePrompt(j.variant, q, answer)
	if err != nil {
		return 0, err
	}
	reply, err := j.complete(ctx, p)
	if err != nil {
		return 0, err
	}
	return parseScore(reply)
}

func (j *Judge) complete(ctx context.Context, p prompts.Prompt) (string, error) {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	return j.llm.Complete(ctx, Request{Prompt: p.User, System: p.System, Temperature: 0.1})
}

func parseVerdict(reply string) (bool, error) {
	fields := strings.Fields(strings.ToLower(reply))
	if len(fields) == 0 {
		return false, fmt.Errorf("empty verdict")
	}
	switch strings.Trim(fields[0], ".,!:;\"'*") {
	case "yes", "correct", "true":
		return true, nil
	case "no", "incorrect", "false":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized verdict %q", reply)
	}
}

func parseScore(reply string) (int, error) {
	m := scoreRegex.FindStringSubmatch(strings.TrimSpace(reply))
	if m == nil {
		return 0, fmt.Errorf("non-numeric score %q", reply)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse score: %w", err)
	}
	if n > 100 {
		return 0, fmt.Errorf("score %d out of range", n)
	}
	return n, nil
}
