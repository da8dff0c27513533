package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type QuestionType string

const (
	TypeMultiple  QuestionType = "multiple"
	TypeTrueFalse QuestionType = "truefalse"
	TypeShort     QuestionType = "short"
)

// ID identifies a question within a quiz set. Sources send either strings or
// integers; both decode to the same string key used in picks.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// UnmarshalYAML accepts scalar ids of any kind.
func (id *ID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*id = ID(t)
	case int:
		*id = ID(strconv.Itoa(t))
	case int64:
		*id = ID(strconv.FormatInt(t, 10))
	case uint64:
		*id = ID(strconv.FormatUint(t, 10))
	case float64:
		*id = ID(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return fmt.Errorf("question id must be a string or number, got %T", v)
	}
	return nil
}

func IDFromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

type Question struct {
	ID                 ID           `json:"id" yaml:"id"`
	Type               QuestionType `json:"type,omitempty" yaml:"type,omitempty"`
	Prompt             string       `json:"prompt" yaml:"prompt"`
	Choices            []string     `json:"choices" yaml:"choices"`
	Answer             int          `json:"answer" yaml:"answer"`
	Explanation        string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	ChoiceExplanations []string     `json:"choiceExplanations,omitempty" yaml:"choiceExplanations,omitempty"`
}

// IsCorrect reports whether choice is the question's answer.
func (q Question) IsCorrect(choice int) bool {
	return choice == q.Answer
}

type Meta struct {
	Title            string `json:"title" yaml:"title"`
	ShuffleQuestions *bool  `json:"shuffleQuestions,omitempty" yaml:"shuffleQuestions,omitempty"`
	ShuffleChoices   bool   `json:"shuffleChoices,omitempty" yaml:"shuffleChoices,omitempty"`
}

// QuizSet is an ordered list of questions as loaded from the source. The
// source order has no bearing on presentation order.
type QuizSet struct {
	// ID tags persisted progress so a state saved for one set is never
	// applied to another set of the same size.
	ID        string     `json:"id,omitempty" yaml:"id,omitempty"`
	Meta      Meta       `json:"meta" yaml:"meta"`
	Questions []Question `json:"questions" yaml:"questions"`
}

func (s QuizSet) Len() int {
	return len(s.Questions)
}

// QuestionOrderShuffled reports the shuffleQuestions flag, which defaults to on.
func (m Meta) QuestionOrderShuffled() bool {
	return m.ShuffleQuestions == nil || *m.ShuffleQuestions
}
