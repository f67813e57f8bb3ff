package question

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pavelanni/interviewer/internal/model"
)

// attemptsPerQuestion bounds synthesis calls for a round at this multiple of its size.
const attemptsPerQuestion = 3

// Builder assembles a round's full, de-duplicated question list.
type Builder struct {
	synth   *Synthesizer
	catalog Catalog
	intn    func(int) int
}

// NewBuilder creates a Builder drawing topics from catalog.
func NewBuilder(s *Synthesizer, catalog Catalog, opts ...Option) *Builder {
	if catalog == nil {
		catalog = DefaultCatalog
	}
	o := buildOptions(opts)
	return &Builder{synth: s, catalog: catalog, intn: o.intn}
}

// Build returns exactly the configured number of questions for round.
// seen holds the session's content hashes; accepted questions are recorded in it.
// Questions padded in after the attempt budget is spent skip the uniqueness check.
func (b *Builder) Build(ctx context.Context, round int, role string, level model.ExperienceLevel, seen map[string]struct{}) ([]model.Question, error) {
	cfg, ok := model.Round(round)
	if !ok {
		return nil, fmt.Errorf("unknown round %d", round)
	}
	target := cfg.TotalQuestions
	budget := attemptsPerQuestion * target
	topics := b.catalog.Topics(role, level)
	diffs := difficulties(level, round)
	types := roundTypes[round]

	questions := make([]model.Question, 0, target)
	attempts, duplicates := 0, 0
	for ; len(questions) < target && attempts < budget; attempts++ {
		if ctx.Err() != nil {
			break
		}
		q := b.synth.Synthesize(ctx, b.request(round, role, level, topics, diffs, types))
		h := ContentHash(q.Prompt)
		if _, dup := seen[h]; dup {
			duplicates++
			continue
		}
		seen[h] = struct{}{}
		questions = append(questions, q)
	}

	padded := 0
	for len(questions) < target {
		used := func(h string) bool {
			_, ok := seen[h]
			return ok
		}
		q := b.synth.Fallback(b.request(round, role, level, topics, diffs, types), used)
		seen[ContentHash(q.Prompt)] = struct{}{}
		questions = append(questions, q)
		padded++
	}

	slog.Info("built round questions",
		"round", round, "role", role, "level", level,
		"questions", len(questions), "attempts", attempts,
		"duplicates", duplicates, "padded", padded)
	return questions, nil
}

// request draws a topic, difficulty and type for one question slot.
func (b *Builder) request(round int, role string, level model.ExperienceLevel, topics []string, diffs []model.Difficulty, types []model.QuestionType) Request {
	return Request{
		Round:      round,
		Role:       role,
		Level:      level,
		Topic:      topics[b.intn(len(topics))],
		Difficulty: diffs[b.intn(len(diffs))],
		Type:       types[b.intn(len(types))],
	}
}
