package quizset

import (
	"fmt"
	"strings"

	"github.com/quiz-club/backend/internal/models"
	"github.com/quiz-club/backend/internal/quiz"
)

// LectureSetID is the set tag for questions served for a lecture.
func LectureSetID(lectureID int64) string {
	return fmt.Sprintf("lecture:%d", lectureID)
}

// FromAPI converts a lecture's questions as served by the catalog into a quiz
// set. The answer is the first answer flagged correct, or 0 when none is.
// Questions that cannot be played (no prompt, fewer than 2 answers, a repeated
// id) are left out and described in problems.
func FromAPI(lecture models.Lecture, dtos []models.QuestionDTO) (set quiz.QuizSet, problems []string) {
	set = quiz.QuizSet{
		ID:   LectureSetID(lecture.ID),
		Meta: quiz.Meta{Title: lecture.Name},
	}
	seen := make(map[int64]bool, len(dtos))
	for _, dto := range dtos {
		switch {
		case seen[dto.ID]:
			problems = append(problems, fmt.Sprintf("question %d: duplicate id", dto.ID))
			continue
		case strings.TrimSpace(dto.Content) == "":
			problems = append(problems, fmt.Sprintf("question %d: prompt is required", dto.ID))
			continue
		case len(dto.Answers) < 2:
			problems = append(problems, fmt.Sprintf("question %d: needs at least 2 answers, got %d", dto.ID, len(dto.Answers)))
			continue
		}
		seen[dto.ID] = true
		set.Questions = append(set.Questions, questionFromDTO(dto))
	}
	return set, problems
}

func questionFromDTO(dto models.QuestionDTO) quiz.Question {
	q := quiz.Question{
		ID:      quiz.IDFromInt(dto.ID),
		Type:    quiz.TypeMultiple,
		Prompt:  dto.Content,
		Choices: make([]string, len(dto.Answers)),
	}

	answer := -1
	hasChoiceExplanations := false
	for i, a := range dto.Answers {
		q.Choices[i] = a.Content
		if a.Correct && answer < 0 {
			answer = i
		}
		if a.Explanation != "" {
			hasChoiceExplanations = true
		}
	}
	if answer < 0 {
		answer = 0
	}
	q.Answer = answer

	if hasChoiceExplanations {
		q.ChoiceExplanations = make([]string, len(dto.Answers))
		for i, a := range dto.Answers {
			q.ChoiceExplanations[i] = a.Explanation
		}
	}

	var parts []string
	for _, e := range dto.Explanations {
		if s := strings.TrimSpace(e.Content); s != "" {
			parts = append(parts, s)
		}
	}
	q.Explanation = strings.Join(parts, "\n\n")
	return q
}
