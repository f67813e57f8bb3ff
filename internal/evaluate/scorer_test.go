package evaluate

import (
	"slices"
	"testing"

	"github.com/pavelanni/interviewer/internal/model"
)

func scored(topic string, correct bool) model.Question {
	return model.Question{Topic: topic, Variant: model.Theory{}, Correct: &correct}
}

func TestScore(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{7, 10, 70},
		{2, 3, 66.67},
		{20, 20, 100},
		{1, 15, 6.67},
	}
	for _, tt := range tests {
		if got := Score(tt.correct, tt.total); got != tt.want {
			t.Errorf("Score(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestScoreRound(t *testing.T) {
	qs := []model.Question{
		scored("Go", true),
		scored("SQL", false),
		scored("Go", true),
		scored("Git", true),
		scored("SQL", true),
		scored("HTTP", false),
		{Topic: "HTTP", Variant: model.Theory{}}, // unevaluated counts as incorrect
	}
	rs := ScoreRound(qs)
	if rs.Correct != 4 || rs.Total != 7 || rs.Score != 57.14 {
		t.Errorf("ScoreRound = %+v", rs)
	}

	order := make([]string, len(rs.Topics))
	for i, ta := range rs.Topics {
		order[i] = ta.Topic
	}
	if !slices.Equal(order, []string{"Go", "SQL", "Git", "HTTP"}) {
		t.Errorf("topic order = %v", order)
	}
	if !slices.Equal(rs.Strongest, []string{"Go", "Git", "SQL"}) {
		t.Errorf("strongest = %v", rs.Strongest)
	}
	if !slices.Equal(rs.Weakest, []string{"HTTP", "SQL", "Go"}) {
		t.Errorf("weakest = %v", rs.Weakest)
	}
}

func TestTopicTiesKeepFirstEncounteredOrder(t *testing.T) {
	qs := []model.Question{
		scored("Zeta", false),
		scored("Alpha", false),
		scored("Mid", false),
		scored("Beta", false),
	}
	if got := names(Weakest(TopicBreakdown(qs))); !slices.Equal(got, []string{"Zeta", "Alpha", "Mid"}) {
		t.Errorf("weakest = %v", got)
	}
	if got := names(Strongest(TopicBreakdown(qs))); !slices.Equal(got, []string{"Zeta", "Alpha", "Mid"}) {
		t.Errorf("strongest = %v", got)
	}
}
