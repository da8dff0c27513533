package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quiz-club/backend/internal/models"
)

// DraftBatch is the JSON shape the model is asked to produce.
type DraftBatch struct {
	Questions []DraftQuestion `json:"questions"`
}

type DraftQuestion struct {
	Question    string        `json:"question"`
	Choices     []DraftChoice `json:"choices"`
	Explanation string        `json:"explanation"`
}

type DraftChoice struct {
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseResponse decodes a model reply, tolerating markdown code fences.
func ParseResponse(responseBody string) (*DraftBatch, error) {
	cleaned := stripCodeFences(responseBody)

	var batch DraftBatch
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if len(batch.Questions) == 0 {
		return nil, &ValidationError{Errors: []string{"no questions in batch"}}
	}
	return &batch, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// validateDraft checks one drafted question against the house rules.
func validateDraft(q DraftQuestion) error {
	var errs []string

	if strings.TrimSpace(q.Question) == "" {
		errs = append(errs, "empty question")
	}
	if len(q.Choices) != 4 {
		errs = append(errs, fmt.Sprintf("expected 4 choices, got %d", len(q.Choices)))
	}

	correct := 0
	seen := make(map[string]bool, len(q.Choices))
	for i, c := range q.Choices {
		text := strings.ToLower(strings.TrimSpace(c.Text))
		if text == "" {
			errs = append(errs, fmt.Sprintf("choice %d is empty", i+1))
		}
		if seen[text] {
			errs = append(errs, fmt.Sprintf("choice %d repeats an earlier choice", i+1))
		}
		seen[text] = true
		if strings.Contains(text, "all of the above") || strings.Contains(text, "none of the above") {
			errs = append(errs, fmt.Sprintf("choice %d uses a catch-all answer", i+1))
		}
		if c.Correct {
			correct++
		}
		if strings.TrimSpace(c.Explanation) == "" {
			errs = append(errs, fmt.Sprintf("choice %d has empty explanation", i+1))
		}
	}
	if correct != 1 {
		errs = append(errs, fmt.Sprintf("expected exactly 1 correct choice, got %d", correct))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// toUploadItem converts a validated draft into the catalog upload shape.
func toUploadItem(q DraftQuestion) models.UploadQuestionItem {
	item := models.UploadQuestionItem{
		Content:     strings.TrimSpace(q.Question),
		Explanation: strings.TrimSpace(q.Explanation),
	}
	for _, c := range q.Choices {
		item.Choices = append(item.Choices, models.UploadChoice{
			Content:     strings.TrimSpace(c.Text),
			IsCorrect:   c.Correct,
			Explanation: strings.TrimSpace(c.Explanation),
		})
	}
	return item
}

func correctIndex(q DraftQuestion) int {
	for i, c := range q.Choices {
		if c.Correct {
			return i
		}
	}
	return -1
}
