package models

import (
	"bytes"
	"encoding/json"
)

type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Lecture struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SubjectID int64  `json:"subjectId,omitempty"`
}

type AnswerDTO struct {
	ID          int64  `json:"id"`
	Content     string `json:"content"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation,omitempty"`
}

type ExplanationDTO struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// QuestionDTO is a stored question with its answers and explanations, in
// stored order.
type QuestionDTO struct {
	ID           int64            `json:"id"`
	Content      string           `json:"content"`
	Lecture      Lecture          `json:"lecture"`
	Answers      []AnswerDTO      `json:"answers"`
	Explanations []ExplanationDTO `json:"explanations"`
}

// ── Requests ────────────────────────────────────────────

type UploadQuestionRequest struct {
	LectureID int64                `json:"lectureId"`
	Questions []UploadQuestionItem `json:"questions"`
}

type UploadQuestionItem struct {
	Content     string         `json:"content"`
	Choices     []UploadChoice `json:"choices"`
	AnswerIndex *int           `json:"answerIndex,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
}

// CorrectIndex returns the index of the correct choice: AnswerIndex when set,
// otherwise the first choice flagged correct, otherwise -1.
func (it UploadQuestionItem) CorrectIndex() int {
	if it.AnswerIndex != nil {
		return *it.AnswerIndex
	}
	for i, c := range it.Choices {
		if c.IsCorrect {
			return i
		}
	}
	return -1
}

// UploadChoice decodes from either a bare string or an object.
type UploadChoice struct {
	Content     string `json:"content"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty"`
}

func (c *UploadChoice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*c = UploadChoice{}
		return json.Unmarshal(data, &c.Content)
	}
	type plain UploadChoice
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = UploadChoice(p)
	return nil
}

type CreateSubjectRequest struct {
	Name string `json:"name"`
}

type CreateLectureRequest struct {
	Name      string `json:"name"`
	SubjectID int64  `json:"subjectId"`
}

type GenerateQuestionsRequest struct {
	Count int    `json:"count"`
	Topic string `json:"topic,omitempty"`
}

// ── Responses ───────────────────────────────────────────

type UploadResponse struct {
	LectureID int64 `json:"lectureId"`
	Created   int   `json:"created"`
}

type GenerateQuestionsResponse struct {
	LectureID int64    `json:"lectureId"`
	Created   int      `json:"created"`
	Rejected  int      `json:"rejected"`
	Problems  []string `json:"problems,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
