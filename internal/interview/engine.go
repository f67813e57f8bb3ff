// Package interview runs the interview session state machine.
package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/interviewer/internal/evaluate"
	"github.com/pavelanni/interviewer/internal/model"
	"github.com/pavelanni/interviewer/internal/question"
)

var (
	// ErrSessionNotFound is returned for IDs that were never issued or have been removed.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyComplete is returned for submissions to a failed or completed session.
	ErrSessionAlreadyComplete = errors.New("session already complete")
	// ErrRoundMismatch is returned when a submission answers none of the current round's questions.
	ErrRoundMismatch = errors.New("submission does not match the current round")
	// ErrInvalidRequest is returned for a missing role or unknown level.
	ErrInvalidRequest = errors.New("invalid request")
)

// Outcome is the result kind of a round submission.
type Outcome string

const (
	OutcomeFailed    Outcome = "failed"
	OutcomeCompleted Outcome = "completed"
	OutcomeAdvanced  Outcome = "advanced"
)

// Archiver persists sessions that reached a terminal state.
type Archiver interface {
	Archive(ctx context.Context, s *model.Session, fb model.Feedback) error
}

// Answer is one submitted answer, keyed by the issued question ID.
type Answer struct {
	QuestionID string
	UserAnswer string
	TimeSpent  float64
}

// Started is returned by Start.
type Started struct {
	SessionID string
	Round     model.RoundConfig
	Questions []model.Question
}

// RoundOutcome is returned by SubmitRound. Fields are populated per Status:
// failed carries PassingScore and Feedback, completed carries Feedback,
// advanced carries NextRound, Questions and PreviousScore.
type RoundOutcome struct {
	Status        Outcome
	Round         int
	Score         float64
	PassingScore  float64
	Feedback      *model.Feedback
	NextRound     model.RoundConfig
	Questions     []model.Question
	PreviousScore float64
}

// Status is a read-only view of a session.
type Status struct {
	SessionID       string
	TargetRole      string
	Level           model.ExperienceLevel
	State           model.SessionState
	CurrentRound    int
	Complete        bool
	CompletedRounds int
	StartedAt       time.Time
}

// Engine owns sessions and drives them through their rounds.
// Operations on different sessions run concurrently; operations on one
// session are serialized.
type Engine struct {
	repo      Repository
	builder   *question.Builder
	evaluator *evaluate.Evaluator
	feedback  *evaluate.Aggregator
	archive   Archiver

	now   func() time.Time
	newID func() string
}

// NewEngine creates an Engine. archive may be nil.
func NewEngine(repo Repository, b *question.Builder, ev *evaluate.Evaluator, agg *evaluate.Aggregator, archive Archiver) *Engine {
	return &Engine{
		repo:      repo,
		builder:   b,
		evaluator: ev,
		feedback:  agg,
		archive:   archive,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Start creates a session and its round 1 question set.
func (e *Engine) Start(ctx context.Context, role string, level model.ExperienceLevel) (Started, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return Started{}, fmt.Errorf("%w: target role is required", ErrInvalidRequest)
	}
	if _, err := model.ParseExperienceLevel(string(level)); err != nil {
		return Started{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	now := e.now()
	s := model.NewSession(e.newID(), role, level, now)
	qs, err := e.builder.Build(ctx, 1, role, level, s.SeenHashes)
	if err != nil {
		return Started{}, fmt.Errorf("build round 1: %w", err)
	}
	s.Pending = qs
	e.repo.Put(newEntry(s, now))

	slog.Info("interview started", "session_id", s.ID, "role", role, "level", level, "questions", len(qs))
	return Started{
		SessionID: s.ID,
		Round:     model.MustRound(1),
		Questions: slices.Clone(qs),
	}, nil
}

// SubmitRound evaluates answers to the current round and moves the session on.
// timeSpent is the round's total time in seconds; when not positive the
// per-answer times are summed. On error the session is left unchanged.
//
// Once accepted, a submission runs to completion even if ctx is cancelled;
// only the per-call judge, analysis and generation timeouts bound it.
func (e *Engine) SubmitRound(ctx context.Context, id string, answers []Answer, timeSpent float64) (RoundOutcome, error) {
	entry, ok := e.repo.Get(id)
	if !ok {
		return RoundOutcome{}, ErrSessionNotFound
	}
	ctx = context.WithoutCancel(ctx)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	s := entry.session
	if s.Complete {
		return RoundOutcome{}, ErrSessionAlreadyComplete
	}
	entry.touch(e.now())

	next, out, err := e.advance(ctx, s, answers, timeSpent)
	if err != nil {
		return RoundOutcome{}, err
	}
	*s = next
	s.LastActive = e.now()
	entry.touch(s.LastActive)
	entry.publish()

	slog.Info("round submitted", "session_id", s.ID, "round", out.Round,
		"score", out.Score, "status", out.Status)
	if s.Complete && e.archive != nil && out.Feedback != nil {
		if err := e.archive.Archive(ctx, s, *out.Feedback); err != nil {
			slog.Error("failed to archive interview", "session_id", s.ID, "error", err)
		}
	}
	return out, nil
}

// advance computes the session after a submission without touching s.
// A panic anywhere in evaluation or feedback becomes an error.
func (e *Engine) advance(ctx context.Context, s *model.Session, answers []Answer, timeSpent float64) (next model.Session, out RoundOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("round evaluation panicked", "session_id", s.ID, "round", s.CurrentRound, "panic", r)
			err = fmt.Errorf("evaluate round %d: %v", s.CurrentRound, r)
		}
	}()

	questions, matched := applyAnswers(s.Pending, answers)
	if matched == 0 {
		return next, out, ErrRoundMismatch
	}
	if timeSpent <= 0 {
		timeSpent = 0
		for _, q := range questions {
			timeSpent += q.TimeSpent
		}
	}

	cfg := model.MustRound(s.CurrentRound)
	evaluated := e.evaluator.EvaluateAll(ctx, questions)
	rs := evaluate.ScoreRound(evaluated)
	result := model.RoundResult{
		Round:     cfg.Number,
		Score:     rs.Score,
		Total:     rs.Total,
		Correct:   rs.Correct,
		TimeSpent: timeSpent,
		Questions: evaluated,
		Passed:    rs.Score >= cfg.PassingScore,
	}

	next = *s
	next.Rounds = append(slices.Clone(s.Rounds), result)
	out = RoundOutcome{Round: cfg.Number, Score: result.Score}

	switch {
	case !result.Passed:
		fb := e.feedback.Failure(ctx, result)
		next.Complete = true
		next.Pending = nil
		out.Status = OutcomeFailed
		out.PassingScore = cfg.PassingScore
		out.Feedback = &fb

	case cfg.Number == model.FinalRound:
		fb := e.feedback.Completion(ctx, next.Rounds)
		next.Complete = true
		next.Pending = nil
		out.Status = OutcomeCompleted
		out.Feedback = &fb

	default:
		nextRound := model.MustRound(cfg.Number + 1)
		next.SeenHashes = maps.Clone(s.SeenHashes)
		qs, err := e.builder.Build(ctx, nextRound.Number, s.TargetRole, s.Level, next.SeenHashes)
		if err != nil {
			return model.Session{}, RoundOutcome{}, fmt.Errorf("build round %d: %w", nextRound.Number, err)
		}
		next.CurrentRound = nextRound.Number
		next.Pending = qs
		out.Status = OutcomeAdvanced
		out.NextRound = nextRound
		out.Questions = slices.Clone(qs)
		out.PreviousScore = result.Score
	}
	return next, out, nil
}

// applyAnswers copies pending and fills in the answers whose IDs match.
// Unanswered questions stay in the round and count as incorrect.
func applyAnswers(pending []model.Question, answers []Answer) ([]model.Question, int) {
	byID := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}
	out := slices.Clone(pending)
	matched := 0
	for i := range out {
		a, ok := byID[out[i].ID]
		if !ok {
			continue
		}
		out[i].UserAnswer = a.UserAnswer
		out[i].Answered = true
		out[i].TimeSpent = max(a.TimeSpent, 0)
		matched++
	}
	return out, matched
}

// Status returns the last committed snapshot of the session. It does not wait
// for a submission in progress.
func (e *Engine) Status(id string) (Status, error) {
	entry, ok := e.repo.Get(id)
	if !ok {
		return Status{}, ErrSessionNotFound
	}
	return *entry.status.Load(), nil
}

// Pending returns the questions awaiting submission in the current round.
func (e *Engine) Pending(id string) ([]model.Question, model.RoundConfig, error) {
	entry, ok := e.repo.Get(id)
	if !ok {
		return nil, model.RoundConfig{}, ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	s := entry.session
	if s.Complete {
		return nil, model.RoundConfig{}, ErrSessionAlreadyComplete
	}
	return slices.Clone(s.Pending), model.MustRound(s.CurrentRound), nil
}

// Close removes a session. Unfinished sessions are discarded without archiving.
func (e *Engine) Close(id string) error {
	if !e.repo.Remove(id) {
		return ErrSessionNotFound
	}
	slog.Info("interview closed", "session_id", id)
	return nil
}
