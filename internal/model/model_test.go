package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRoundConfig(t *testing.T) {
	tests := []struct {
		round   int
		total   int
		passing float64
		limit   int
	}{
		{1, 20, 70, 600},
		{2, 15, 70, 900},
		{3, 3, 0, 1800},
	}
	for _, tt := range tests {
		c, ok := Round(tt.round)
		if !ok {
			t.Fatalf("Round(%d) missing", tt.round)
		}
		if c.TotalQuestions != tt.total || c.PassingScore != tt.passing || c.TimeLimitSeconds() != tt.limit {
			t.Errorf("Round(%d) = %+v", tt.round, c)
		}
	}
	if _, ok := Round(4); ok {
		t.Error("Round(4) should not exist")
	}
}

func TestParseExperienceLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    ExperienceLevel
		wantErr bool
	}{
		{"entry", LevelEntry, false},
		{" Senior ", LevelSenior, false},
		{"MID", LevelMid, false},
		{"principal", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExperienceLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionState(t *testing.T) {
	s := NewSession("s1", "Software Engineer", LevelEntry, time.Now())
	if s.State() != StateAwaitingRound1 {
		t.Fatalf("new session state = %s", s.State())
	}
	s.CurrentRound = 2
	if s.State() != StateAwaitingRound2 {
		t.Errorf("state = %s, want awaiting_round_2", s.State())
	}

	s.Rounds = append(s.Rounds, RoundResult{Round: 2, Passed: false})
	s.Complete = true
	if s.State() != StateFailed {
		t.Errorf("state = %s, want failed", s.State())
	}

	s.Rounds[0].Passed = true
	if s.State() != StateCompleted {
		t.Errorf("state = %s, want completed", s.State())
	}
	if !s.State().Terminal() {
		t.Error("completed should be terminal")
	}
}

func TestQuestionJSONKeepsOnlyVariantFields(t *testing.T) {
	q := Question{
		ID:        "q1",
		Round:     1,
		Topic:     "SQL",
		Prompt:    "Which command removes a table?",
		Reference: "DROP",
		Variant:   OneWord{},
	}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal raw: %v", err)
	}
	if _, ok := raw["options"]; ok {
		t.Error("one_word question should not carry options")
	}
	if raw["type"] != "one_word" {
		t.Errorf("type = %v", raw["type"])
	}

	mc := `{"id":"q2","type":"mcq","text":"Pick","options":["A","B"],"correct_answer":"A","user_answer":"a"}`
	var got Question
	if err := json.Unmarshal([]byte(mc), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Options()) != 2 || !got.Answered || got.UserAnswer != "a" {
		t.Errorf("decoded = %+v", got)
	}

	if err := json.Unmarshal([]byte(`{"type":"essay"}`), &got); err == nil {
		t.Error("expected error for unknown type")
	}
}
