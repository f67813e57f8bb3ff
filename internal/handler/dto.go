package handler

import (
	"time"

	"github.com/pavelanni/interviewer/internal/model"
)

type startRequest struct {
	TargetRole      string `json:"target_role"`
	ExperienceLevel string `json:"experience_level"`
}

// answerRequest accepts the full question echo some clients send back;
// only the ID, answer and time are used.
type answerRequest struct {
	QuestionID string  `json:"question_id"`
	UserAnswer string  `json:"user_answer"`
	TimeSpent  float64 `json:"time_spent"`
}

type submitRequest struct {
	Answers   []answerRequest `json:"answers"`
	TimeSpent float64         `json:"time_spent"`
}

// questionView omits the reference answer of questions still awaiting submission.
type questionView struct {
	ID         string             `json:"id"`
	Round      int                `json:"round_number"`
	Type       model.QuestionType `json:"type"`
	Text       string             `json:"text"`
	Topic      string             `json:"topic"`
	Difficulty model.Difficulty   `json:"difficulty"`
	Options    []string           `json:"options,omitempty"`
}

type roundView struct {
	Number           int     `json:"number"`
	Name             string  `json:"name"`
	TotalQuestions   int     `json:"total_questions"`
	PassingScore     float64 `json:"passing_score"`
	TimeLimitSeconds int     `json:"time_limit_seconds"`
}

type startResponse struct {
	SessionID    string         `json:"session_id"`
	CurrentRound int            `json:"current_round"`
	Round        roundView      `json:"round"`
	Questions    []questionView `json:"questions"`
	Message      string         `json:"message"`
}

type submitResponse struct {
	Status        string          `json:"status"`
	Round         int             `json:"round"`
	Score         float64         `json:"score"`
	PassingScore  *float64        `json:"passing_score,omitempty"`
	Feedback      *model.Feedback `json:"feedback,omitempty"`
	NextRound     *roundView      `json:"next_round,omitempty"`
	Questions     []questionView  `json:"questions,omitempty"`
	PreviousScore *float64        `json:"previous_score,omitempty"`
	Message       string          `json:"message"`
}

type statusResponse struct {
	SessionID       string                `json:"session_id"`
	TargetRole      string                `json:"target_role"`
	ExperienceLevel model.ExperienceLevel `json:"experience_level"`
	State           model.SessionState    `json:"state"`
	CurrentRound    int                   `json:"current_round"`
	IsComplete      bool                  `json:"is_complete"`
	CompletedRounds int                   `json:"completed_rounds"`
	StartedAt       time.Time             `json:"started_at"`
}

type pendingResponse struct {
	SessionID string         `json:"session_id"`
	Round     roundView      `json:"round"`
	Questions []questionView `json:"questions"`
}

func newRoundView(c model.RoundConfig) roundView {
	return roundView{
		Number:           c.Number,
		Name:             c.Name,
		TotalQuestions:   c.TotalQuestions,
		PassingScore:     c.PassingScore,
		TimeLimitSeconds: c.TimeLimitSeconds(),
	}
}

func newQuestionViews(qs []model.Question) []questionView {
	out := make([]questionView, len(qs))
	for i, q := range qs {
		out[i] = questionView{
			ID:         q.ID,
			Round:      q.Round,
			Type:       q.Type(),
			Text:       q.Prompt,
			Topic:      q.Topic,
			Difficulty: q.Difficulty,
			Options:    q.Options(),
		}
	}
	return out
}
