package quizset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quiz-club/backend/internal/quiz"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the decoder from a file extension. Anything that is not
// .yaml or .yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid quiz set: %s", strings.Join(e.Errors, "; "))
}

type fileSet struct {
	ID        string         `json:"id" yaml:"id"`
	Meta      quiz.Meta      `json:"meta" yaml:"meta"`
	Questions []fileQuestion `json:"questions" yaml:"questions"`
}

type fileQuestion struct {
	ID     quiz.ID           `json:"id" yaml:"id"`
	Type   quiz.QuestionType `json:"type" yaml:"type"`
	Prompt string            `json:"prompt" yaml:"prompt"`
	// Question is the prompt field name used by older bundled sets.
	Question           string   `json:"question" yaml:"question"`
	Choices            []string `json:"choices" yaml:"choices"`
	Answer             *int     `json:"answer" yaml:"answer"`
	Explanation        string   `json:"explanation" yaml:"explanation"`
	ChoiceExplanations []string `json:"choiceExplanations" yaml:"choiceExplanations"`
}

// Load reads and validates a bundled quiz set. A set without an id is tagged
// with its file name.
func Load(path string) (quiz.QuizSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return quiz.QuizSet{}, fmt.Errorf("read quiz set: %w", err)
	}
	set, err := Parse(data, FormatFor(path))
	if err != nil {
		return quiz.QuizSet{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	if set.ID == "" {
		set.ID = "file:" + strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return set, nil
}

// Parse decodes a quiz set, rejecting unknown fields, and validates it.
func Parse(data []byte, format Format) (quiz.QuizSet, error) {
	var raw fileSet
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return quiz.QuizSet{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return quiz.QuizSet{}, fmt.Errorf("decode json: %w", err)
		}
	}

	set, err := normalize(raw)
	if err != nil {
		return quiz.QuizSet{}, err
	}
	return set, nil
}

func normalize(raw fileSet) (quiz.QuizSet, error) {
	set := quiz.QuizSet{ID: raw.ID, Meta: raw.Meta}
	var errs []string
	seen := make(map[quiz.ID]bool, len(raw.Questions))

	for i, fq := range raw.Questions {
		label := fmt.Sprintf("question %d", i+1)
		if fq.ID != "" {
			label = fmt.Sprintf("question %d (id %s)", i+1, fq.ID)
		}

		q := quiz.Question{
			ID:                 fq.ID,
			Type:               fq.Type,
			Prompt:             strings.TrimSpace(fq.Prompt),
			Choices:            fq.Choices,
			Explanation:        fq.Explanation,
			ChoiceExplanations: fq.ChoiceExplanations,
		}
		if q.Prompt == "" {
			q.Prompt = strings.TrimSpace(fq.Question)
		}
		if q.Type == "" {
			q.Type = quiz.TypeMultiple
		}
		if q.Type == quiz.TypeTrueFalse && len(q.Choices) == 0 {
			q.Choices = []string{"True", "False"}
		}

		switch {
		case q.ID == "":
			errs = append(errs, label+": missing id")
		case seen[q.ID]:
			errs = append(errs, label+": duplicate id")
		}
		seen[q.ID] = true

		if q.Prompt == "" {
			errs = append(errs, label+": missing prompt")
		}

		switch q.Type {
		case quiz.TypeMultiple, quiz.TypeTrueFalse:
			if len(q.Choices) < 2 {
				errs = append(errs, fmt.Sprintf("%s: needs at least 2 choices, got %d", label, len(q.Choices)))
			}
		case quiz.TypeShort:
			if len(q.Choices) < 1 {
				errs = append(errs, label+": short answer needs an accepted answer in choices")
			}
		default:
			errs = append(errs, fmt.Sprintf("%s: unknown type %q", label, q.Type))
		}

		if fq.Answer == nil {
			errs = append(errs, label+": missing answer")
		} else {
			q.Answer = *fq.Answer
			if q.Answer < 0 || q.Answer >= len(q.Choices) {
				errs = append(errs, fmt.Sprintf("%s: answer %d out of range [0,%d)", label, q.Answer, len(q.Choices)))
			}
		}

		if len(q.ChoiceExplanations) > 0 && len(q.ChoiceExplanations) != len(q.Choices) {
			errs = append(errs, fmt.Sprintf("%s: %d choice explanations for %d choices", label, len(q.ChoiceExplanations), len(q.Choices)))
		}

		set.Questions = append(set.Questions, q)
	}

	if len(errs) > 0 {
		return quiz.QuizSet{}, &ValidationError{Errors: errs}
	}
	return set, nil
}
