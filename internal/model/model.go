package model

import (
	"fmt"
	"strings"
	"time"
)

// ExperienceLevel is the seniority band an interview targets.
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

// ParseExperienceLevel normalizes s and checks it names a known level.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelEntry, LevelMid, LevelSenior:
		return l, nil
	default:
		return "", fmt.Errorf("unknown experience level %q", s)
	}
}

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// FinalRound is the last round of every interview.
const FinalRound = 3

// RoundConfig is the fixed shape of one interview round.
type RoundConfig struct {
	Number         int           `json:"round"`
	Name           string        `json:"name"`
	TotalQuestions int           `json:"total_questions"`
	PassingScore   float64       `json:"passing_score"`
	TimeLimit      time.Duration `json:"-"`
}

// TimeLimitSeconds is the advisory time limit reported to clients.
func (c RoundConfig) TimeLimitSeconds() int {
	return int(c.TimeLimit / time.Second)
}

// Round 3 has a zero passing score: it always completes the interview.
var rounds = map[int]RoundConfig{
	1: {Number: 1, Name: "screening", TotalQuestions: 20, PassingScore: 70, TimeLimit: 600 * time.Second},
	2: {Number: 2, Name: "intermediate", TotalQuestions: 15, PassingScore: 70, TimeLimit: 900 * time.Second},
	3: {Number: 3, Name: "coding", TotalQuestions: 3, PassingScore: 0, TimeLimit: 1800 * time.Second},
}

// Round returns the configuration for round n.
func Round(n int) (RoundConfig, bool) {
	c, ok := rounds[n]
	return c, ok
}

// MustRound is Round for callers that already validated n.
func MustRound(n int) RoundConfig {
	c, ok := rounds[n]
	if !ok {
		panic(fmt.Sprintf("model: no configuration for round %d", n))
	}
	return c
}

// SessionState is the lifecycle state of an interview session.
type SessionState string

const (
	StateAwaitingRound1 SessionState = "awaiting_round_1"
	StateAwaitingRound2 SessionState = "awaiting_round_2"
	StateAwaitingRound3 SessionState = "awaiting_round_3"
	StateFailed         SessionState = "failed"
	StateCompleted      SessionState = "completed"
)

// Terminal reports whether no further rounds are accepted in s.
func (s SessionState) Terminal() bool {
	return s == StateFailed || s == StateCompleted
}

// Session is one candidate's attempt across up to three rounds.
type Session struct {
	ID           string
	TargetRole   string
	Level        ExperienceLevel
	StartedAt    time.Time
	CurrentRound int
	Rounds       []RoundResult
	Complete     bool

	// Pending holds the questions issued for CurrentRound. Submitted answers are
	// matched against it by question ID; reference answers never come from the client.
	Pending []Question

	// SeenHashes holds content hashes of every generated question in this session.
	SeenHashes map[string]struct{}
	LastActive time.Time
}

// NewSession creates a session positioned at round 1.
func NewSession(id, role string, level ExperienceLevel, now time.Time) *Session {
	return &Session{
		ID:           id,
		TargetRole:   role,
		Level:        level,
		StartedAt:    now,
		CurrentRound: 1,
		SeenHashes:   make(map[string]struct{}),
		LastActive:   now,
	}
}

// State derives the lifecycle state from the round history.
func (s *Session) State() SessionState {
	if s.Complete {
		if n := len(s.Rounds); n > 0 && !s.Rounds[n-1].Passed {
			return StateFailed
		}
		return StateCompleted
	}
	switch s.CurrentRound {
	case 2:
		return StateAwaitingRound2
	case 3:
		return StateAwaitingRound3
	default:
		return StateAwaitingRound1
	}
}

// RoundResult is the immutable outcome of one submitted round.
type RoundResult struct {
	Round     int        `json:"round"`
	Score     float64    `json:"score"`
	Total     int        `json:"total_questions"`
	Correct   int        `json:"correct_answers"`
	TimeSpent float64    `json:"time_spent"`
	Questions []Question `json:"questions"`
	Passed    bool       `json:"passed"`
}

// RecommendationKind identifies the template a recommendation line is rendered from.
type RecommendationKind string

const (
	RecommendFundamentals RecommendationKind = "fundamentals"
	RecommendPractice     RecommendationKind = "practice"
	RecommendStrongest    RecommendationKind = "strongest"
	RecommendConsider     RecommendationKind = "consider"
)

// Recommendation is one line of study advice tied to a topic.
type Recommendation struct {
	Kind  RecommendationKind `json:"kind"`
	Topic string             `json:"topic"`
	Text  string             `json:"text"`
}

// AnswerReview pairs a candidate answer with the reference answer.
type AnswerReview struct {
	Question      string `json:"question"`
	Topic         string `json:"topic"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// Feedback summarizes one failed round or a whole completed interview.
type Feedback struct {
	Score           float64            `json:"score"`
	StrongestTopics []string           `json:"strongest_topics"`
	WeakestTopics   []string           `json:"weakest_topics"`
	Recommendations []Recommendation   `json:"recommendations"`
	TimeSpent       map[string]float64 `json:"time_spent"`
	Reviews         []AnswerReview     `json:"correct_answers"`
	Analysis        string             `json:"detailed_analysis"`
}
