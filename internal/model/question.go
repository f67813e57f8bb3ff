package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType is the wire name of a question variant.
type QuestionType string

const (
	TypeMultipleChoice   QuestionType = "mcq"
	TypeOneWord          QuestionType = "one_word"
	TypeTheory           QuestionType = "theory"
	TypeCodeSnippet      QuestionType = "code_snippet"
	TypeOutputPrediction QuestionType = "output_prediction"
	TypeFillBlank        QuestionType = "fill_blank"
	TypeCodingProblem    QuestionType = "coding_problem"
)

// Variant carries the fields specific to one question type.
// The set of implementations is closed.
type Variant interface {
	Type() QuestionType
	variant()
}

// MultipleChoice is the only variant with a list of choices.
type MultipleChoice struct {
	Options []string
}

type OneWord struct{}

type Theory struct{}

// CodeSnippet asks about the behavior of a code fragment embedded in the prompt.
type CodeSnippet struct {
	Language string
}

// OutputPrediction asks for the exact output of a code fragment.
type OutputPrediction struct {
	Language string
}

type FillBlank struct{}

// CodingProblem asks for a complete solution.
type CodingProblem struct {
	Language string
}

func (MultipleChoice) Type() QuestionType   { return TypeMultipleChoice }
func (OneWord) Type() QuestionType          { return TypeOneWord }
func (Theory) Type() QuestionType           { return TypeTheory }
func (CodeSnippet) Type() QuestionType      { return TypeCodeSnippet }
func (OutputPrediction) Type() QuestionType { return TypeOutputPrediction }
func (FillBlank) Type() QuestionType        { return TypeFillBlank }
func (CodingProblem) Type() QuestionType    { return TypeCodingProblem }

func (MultipleChoice) variant()   {}
func (OneWord) variant()          {}
func (Theory) variant()           {}
func (CodeSnippet) variant()      {}
func (OutputPrediction) variant() {}
func (FillBlank) variant()        {}
func (CodingProblem) variant()    {}

const defaultLanguage = "python"

// NewVariant builds the variant for t. Options are kept only for multiple choice.
func NewVariant(t QuestionType, options []string) (Variant, error) {
	switch t {
	case TypeMultipleChoice:
		return MultipleChoice{Options: options}, nil
	case TypeOneWord:
		return OneWord{}, nil
	case TypeTheory:
		return Theory{}, nil
	case TypeCodeSnippet:
		return CodeSnippet{Language: defaultLanguage}, nil
	case TypeOutputPrediction:
		return OutputPrediction{Language: defaultLanguage}, nil
	case TypeFillBlank:
		return FillBlank{}, nil
	case TypeCodingProblem:
		return CodingProblem{Language: defaultLanguage}, nil
	default:
		return nil, fmt.Errorf("unknown question type %q", t)
	}
}

// Question is a single interview question, answered or not.
type Question struct {
	ID         string
	Round      int
	Topic      string
	Difficulty Difficulty
	Prompt     string
	Reference  string
	Variant    Variant
	// Fallback marks questions drawn from the static template bank.
	Fallback bool

	UserAnswer string
	Answered   bool
	Correct    *bool
	TimeSpent  float64
}

// Type returns the question's variant type.
func (q Question) Type() QuestionType {
	if q.Variant == nil {
		return ""
	}
	return q.Variant.Type()
}

// Options returns the choices of a multiple-choice question, nil otherwise.
func (q Question) Options() []string {
	if mc, ok := q.Variant.(MultipleChoice); ok {
		return mc.Options
	}
	return nil
}

// IsCorrect reports the evaluated verdict; unevaluated questions count as incorrect.
func (q Question) IsCorrect() bool {
	return q.Correct != nil && *q.Correct
}

type questionJSON struct {
	ID         string       `json:"id"`
	Round      int          `json:"round_number"`
	Type       QuestionType `json:"type"`
	Text       string       `json:"text"`
	Topic      string       `json:"topic"`
	Difficulty Difficulty   `json:"difficulty"`
	Options    []string     `json:"options,omitempty"`
	Correct    string       `json:"correct_answer"`
	Fallback   bool         `json:"fallback,omitempty"`
	UserAnswer *string      `json:"user_answer,omitempty"`
	IsCorrect  *bool        `json:"is_correct,omitempty"`
	TimeSpent  float64      `json:"time_spent"`
}

// MarshalJSON flattens the variant into a "type" discriminator.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:         q.ID,
		Round:      q.Round,
		Type:       q.Type(),
		Text:       q.Prompt,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
		Options:    q.Options(),
		Correct:    q.Reference,
		Fallback:   q.Fallback,
		IsCorrect:  q.Correct,
		TimeSpent:  q.TimeSpent,
	}
	if q.Answered {
		answer := q.UserAnswer
		out.UserAnswer = &answer
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the variant from the "type" discriminator.
func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v, err := NewVariant(in.Type, in.Options)
	if err != nil {
		return err
	}
	*q = Question{
		ID:         in.ID,
		Round:      in.Round,
		Topic:      in.Topic,
		Difficulty: in.Difficulty,
		Prompt:     in.Text,
		Reference:  in.Correct,
		Variant:    v,
		Fallback:   in.Fallback,
		Correct:    in.IsCorrect,
		TimeSpent:  in.TimeSpent,
	}
	if in.UserAnswer != nil {
		q.UserAnswer = *in.UserAnswer
		q.Answered = true
	}
	return nil
}
