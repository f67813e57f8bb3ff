package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pavelanni/interviewer/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func answered(id, topic string, qt model.QuestionType, options []string, answer string, correct bool) model.Question {
	v, err := model.NewVariant(qt, options)
	if err != nil {
		panic(err)
	}
	return model.Question{
		ID: id, Topic: topic, Difficulty: model.DifficultyMedium,
		Prompt: "prompt " + id, Reference: "ref " + id, Variant: v,
		UserAnswer: answer, Answered: true, Correct: &correct, TimeSpent: 12.5,
	}
}

func finishedSession(id string, passedRounds int, failLast bool) *model.Session {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := model.NewSession(id, "Software Engineer", model.LevelMid, start)
	for r := 1; r <= passedRounds; r++ {
		s.Rounds = append(s.Rounds, model.RoundResult{
			Round: r, Score: 100, Total: 1, Correct: 1, TimeSpent: 60, Passed: true,
			Questions: []model.Question{
				answered(id+"-mcq", "Go", model.TypeMultipleChoice, []string{"a", "b"}, "a", true),
			},
		})
	}
	if failLast {
		unanswered := answered(id+"-skip", "SQL", model.TypeTheory, nil, "", false)
		unanswered.Answered = false
		unanswered.Correct = nil
		s.Rounds = append(s.Rounds, model.RoundResult{
			Round: passedRounds + 1, Score: 0, Total: 2, Correct: 0, TimeSpent: 90,
			Questions: []model.Question{
				answered(id+"-th", "SQL", model.TypeTheory, nil, "no idea", false),
				unanswered,
			},
		})
	}
	s.CurrentRound = len(s.Rounds)
	s.Complete = true
	s.LastActive = start.Add(time.Duration(len(s.Rounds)) * time.Minute)
	return s
}

func TestArchiveRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sess := finishedSession("s-1", 1, true)
	fb := model.Feedback{
		Score:         0,
		WeakestTopics: []string{"SQL"},
		Recommendations: []model.Recommendation{
			{Kind: model.RecommendFundamentals, Topic: "SQL", Text: "Focus on SQL fundamentals"},
		},
		TimeSpent: map[string]float64{"round_2": 90},
		Analysis:  "Review joins.",
	}
	if err := st.Archive(ctx, sess, fb); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	rec, err := st.GetInterview(ctx, "s-1")
	if err != nil {
		t.Fatalf("GetInterview: %v", err)
	}
	if rec.Status != model.StateFailed {
		t.Errorf("status = %s, want failed", rec.Status)
	}
	if rec.TargetRole != "Software Engineer" || rec.Level != model.LevelMid {
		t.Errorf("role/level = %q/%q", rec.TargetRole, rec.Level)
	}
	if !rec.StartedAt.Equal(sess.StartedAt) || !rec.FinishedAt.Equal(sess.LastActive) {
		t.Errorf("times = %v/%v", rec.StartedAt, rec.FinishedAt)
	}
	if len(rec.Rounds) != 2 {
		t.Fatalf("rounds = %d, want 2", len(rec.Rounds))
	}
	if !rec.Rounds[0].Passed || rec.Rounds[1].Passed {
		t.Errorf("passed flags = %v/%v", rec.Rounds[0].Passed, rec.Rounds[1].Passed)
	}

	mcq := rec.Rounds[0].Questions[0]
	if mcq.Type() != model.TypeMultipleChoice || len(mcq.Options()) != 2 || !mcq.IsCorrect() {
		t.Errorf("mcq = %+v", mcq)
	}
	failed := rec.Rounds[1].Questions
	if len(failed) != 2 || failed[0].UserAnswer != "no idea" || failed[0].IsCorrect() {
		t.Errorf("failed round questions = %+v", failed)
	}
	if failed[1].Answered || failed[1].Correct != nil {
		t.Errorf("unanswered question restored as answered: %+v", failed[1])
	}
	if rec.Feedback == nil || rec.Feedback.Analysis != "Review joins." || len(rec.Feedback.Recommendations) != 1 {
		t.Errorf("feedback = %+v", rec.Feedback)
	}

	// Archiving again replaces the record.
	if err := st.Archive(ctx, sess, fb); err != nil {
		t.Fatalf("re-Archive: %v", err)
	}
	counts, err := st.CountInterviews(ctx)
	if err != nil {
		t.Fatalf("CountInterviews: %v", err)
	}
	if counts[model.StateFailed] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestArchiveRejectsUnfinished(t *testing.T) {
	st := newTestStore(t)
	s := model.NewSession("live", "Data Scientist", model.LevelEntry, time.Now())
	if err := st.Archive(context.Background(), s, model.Feedback{}); err == nil {
		t.Error("expected error for unfinished session")
	}
}

func TestGetInterviewNotFound(t *testing.T) {
	st := newTestStore(t)
	if _, err := st.GetInterview(context.Background(), "missing"); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestExportInterviews(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	empty, err := st.ExportInterviews(ctx, "")
	if err != nil {
		t.Fatalf("ExportInterviews: %v", err)
	}
	if empty.Count != 0 || empty.Interviews == nil {
		t.Errorf("empty export = %+v", empty)
	}

	if err := st.Archive(ctx, finishedSession("a", 1, true), model.Feedback{Score: 50}); err != nil {
		t.Fatal(err)
	}
	if err := st.Archive(ctx, finishedSession("b", 3, false), model.Feedback{Score: 100}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetArchiveInfo(model.ArchiveInfo{LLMModel: "llama3.2", PromptVariant: "strict", Language: "en"}); err != nil {
		t.Fatalf("SetArchiveInfo: %v", err)
	}

	all, err := st.ExportInterviews(ctx, "")
	if err != nil {
		t.Fatalf("ExportInterviews: %v", err)
	}
	if all.Count != 2 || len(all.Interviews) != 2 {
		t.Fatalf("count = %d", all.Count)
	}
	if all.Archive.LLMModel != "llama3.2" || all.Archive.PromptVariant != "strict" {
		t.Errorf("archive info = %+v", all.Archive)
	}

	completed, err := st.ExportInterviews(ctx, model.StateCompleted)
	if err != nil {
		t.Fatalf("ExportInterviews: %v", err)
	}
	if completed.Count != 1 || completed.Interviews[0].SessionID != "b" {
		t.Errorf("completed export = %+v", completed.Interviews)
	}
	if len(completed.Interviews[0].Rounds) != 3 || completed.Interviews[0].Score != 100 {
		t.Errorf("completed record = %+v", completed.Interviews[0])
	}
}

func TestMetadata(t *testing.T) {
	st := newTestStore(t)
	v, err := st.GetMetadata("missing")
	if err != nil || v != "" {
		t.Errorf("GetMetadata(missing) = %q, %v", v, err)
	}
	if err := st.SetMetadata("k", "1"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetMetadata("k", "2"); err != nil {
		t.Fatal(err)
	}
	if v, _ := st.GetMetadata("k"); v != "2" {
		t.Errorf("GetMetadata(k) = %q, want 2", v)
	}
}
