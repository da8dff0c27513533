package catalog

import (
	"context"
	"sort"

	"github.com/quiz-club/backend/internal/models"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	nextID    int64
	subjects  map[int64]models.Subject
	lectures  map[int64]models.Lecture
	questions map[int64]models.QuestionDTO
	inserts   int
}

func newMemRepo() *memRepo {
	return &memRepo{
		subjects:  map[int64]models.Subject{},
		lectures:  map[int64]models.Lecture{},
		questions: map[int64]models.QuestionDTO{},
	}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) ListSubjects(context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range m.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) SubjectExists(_ context.Context, id int64) (bool, error) {
	_, ok := m.subjects[id]
	return ok, nil
}

func (m *memRepo) CreateSubject(_ context.Context, name string) (models.Subject, error) {
	s := models.Subject{ID: m.id(), Name: name}
	m.subjects[s.ID] = s
	return s, nil
}

func (m *memRepo) SubjectHasLectures(_ context.Context, id int64) (bool, error) {
	for _, l := range m.lectures {
		if l.SubjectID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) DeleteSubject(_ context.Context, id int64) error {
	if _, ok := m.subjects[id]; !ok {
		return ErrNotFound
	}
	delete(m.subjects, id)
	return nil
}

func (m *memRepo) ListLectures(_ context.Context, subjectID *int64) ([]models.Lecture, error) {
	var out []models.Lecture
	for _, l := range m.lectures {
		if subjectID == nil || l.SubjectID == *subjectID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) GetLecture(_ context.Context, id int64) (models.Lecture, error) {
	l, ok := m.lectures[id]
	if !ok {
		return models.Lecture{}, ErrNotFound
	}
	return l, nil
}

func (m *memRepo) CreateLecture(_ context.Context, name string, subjectID int64) (models.Lecture, error) {
	l := models.Lecture{ID: m.id(), Name: name, SubjectID: subjectID}
	m.lectures[l.ID] = l
	return l, nil
}

func (m *memRepo) LectureHasQuestions(_ context.Context, id int64) (bool, error) {
	for _, q := range m.questions {
		if q.Lecture.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) DeleteLecture(_ context.Context, id int64) error {
	if _, ok := m.lectures[id]; !ok {
		return ErrNotFound
	}
	delete(m.lectures, id)
	return nil
}

func (m *memRepo) ListQuestions(_ context.Context, lectureID *int64) ([]models.QuestionDTO, error) {
	var out []models.QuestionDTO
	for _, q := range m.questions {
		if lectureID == nil || q.Lecture.ID == *lectureID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) InsertQuestions(_ context.Context, lectureID int64, items []NewQuestion) (int, error) {
	m.inserts++
	for _, it := range items {
		q := models.QuestionDTO{ID: m.id(), Content: it.Content, Lecture: m.lectures[lectureID]}
		for pos, c := range it.Choices {
			q.Answers = append(q.Answers, models.AnswerDTO{
				ID: m.id(), Content: c.Content, Correct: pos == it.Correct, Explanation: c.Explanation,
			})
		}
		if it.Explanation != "" {
			q.Explanations = append(q.Explanations, models.ExplanationDTO{ID: m.id(), Content: it.Explanation})
		}
		m.questions[q.ID] = q
	}
	return len(items), nil
}

func (m *memRepo) DeleteQuestion(_ context.Context, id int64) error {
	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

// stubDrafter returns fixed drafts.
type stubDrafter struct {
	items    []models.UploadQuestionItem
	problems []string
	err      error
	gotCount int
}

func (s *stubDrafter) Draft(_ context.Context, _ models.Lecture, count int, _ string) ([]models.UploadQuestionItem, []string, error) {
	s.gotCount = count
	return s.items, s.problems, s.err
}
