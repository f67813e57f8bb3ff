// Package question turns (round, role, level, topic, difficulty) into interview
// questions, either through the generation collaborator or from the fallback bank,
// and assembles de-duplicated round question sets.
package question

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/interviewer/internal/llm"
	"github.com/pavelanni/interviewer/internal/llm/prompts"
	"github.com/pavelanni/interviewer/internal/model"
)

// ErrGenerationUnavailable wraps collaborator failures (transport, timeout, empty reply).
var ErrGenerationUnavailable = errors.New("generation unavailable")

// Request describes one question to synthesize.
type Request struct {
	Round      int
	Role       string
	Level      model.ExperienceLevel
	Topic      string
	Difficulty model.Difficulty
	Type       model.QuestionType
}

type options struct {
	intn func(int) int
}

// Option configures a Synthesizer or Builder.
type Option func(*options)

// WithRand makes random draws come from r. r is not safe for concurrent use,
// so this is meant for tests.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.intn = r.IntN }
}

func buildOptions(opts []Option) options {
	o := options{intn: rand.IntN}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Synthesizer produces single questions. It never fails: generation and parse
// errors are absorbed into a fallback question.
type Synthesizer struct {
	llm     llm.Completer
	bank    *Bank
	timeout time.Duration
	intn    func(int) int
}

// NewSynthesizer creates a Synthesizer. A nil completer makes every question a fallback.
func NewSynthesizer(c llm.Completer, bank *Bank, timeout time.Duration, opts ...Option) *Synthesizer {
	if bank == nil {
		bank = DefaultBank
	}
	o := buildOptions(opts)
	return &Synthesizer{llm: c, bank: bank, timeout: timeout, intn: o.intn}
}

// Synthesize returns a generated question, or a fallback of the same type.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) model.Question {
	q, err := s.generate(ctx, req)
	if err == nil {
		return q
	}
	slog.Warn("question generation failed, using fallback",
		"round", req.Round, "type", req.Type, "topic", req.Topic, "error", err)
	return s.Fallback(req, nil)
}

// Fallback builds a question of req.Type from the template bank, preferring
// templates whose hash is not reported as used. The requested topic and
// difficulty replace the template's own when set.
func (s *Synthesizer) Fallback(req Request, used func(hash string) bool) model.Question {
	tmpl := s.bank.Pick(req.Type, s.intn, used)
	v, err := model.NewVariant(tmpl.Type, tmpl.Options)
	if err != nil {
		// Bank templates are validated by NewBank.
		panic(err)
	}
	q := model.Question{
		ID:         uuid.NewString(),
		Round:      req.Round,
		Topic:      tmpl.Topic,
		Difficulty: tmpl.Difficulty,
		Prompt:     tmpl.Prompt,
		Reference:  tmpl.Reference,
		Variant:    v,
		Fallback:   true,
	}
	if req.Topic != "" {
		q.Topic = req.Topic
	}
	if req.Difficulty != "" {
		q.Difficulty = req.Difficulty
	}
	return q
}

func (s *Synthesizer) generate(ctx context.Context, req Request) (model.Question, error) {
	if s.llm == nil {
		return model.Question{}, fmt.Errorf("%w: no generation endpoint configured", ErrGenerationUnavailable)
	}
	p, err := prompts.BuildGeneratePrompt(req.Type, prompts.GenerateData{
		Role:       req.Role,
		Level:      req.Level,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		return model.Question{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.llm.Complete(ctx, llm.Request{
		Prompt:      p.User,
		System:      p.System,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		return model.Question{}, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	parsed, err := parse(req.Type, reply)
	if err != nil {
		slog.Debug("unparseable generation reply", "type", req.Type, "reply", reply)
		return model.Question{}, err
	}
	v, err := model.NewVariant(req.Type, parsed.options)
	if err != nil {
		return model.Question{}, err
	}
	return model.Question{
		ID:         uuid.NewString(),
		Round:      req.Round,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Prompt:     parsed.prompt,
		Reference:  parsed.reference,
		Variant:    v,
	}, nil
}
