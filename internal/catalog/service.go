package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/quiz-club/backend/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	// ErrConflict reports a delete blocked by rows that still reference the
	// target.
	ErrConflict           = errors.New("still referenced")
	// ErrGenerationDisabled is returned by Generate when no drafter is set.
	ErrGenerationDisabled = errors.New("question generation is not configured")
)

// MaxNameLength bounds subject and lecture names, in characters.
const MaxNameLength = 30

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func invalid(format string, args ...any) error {
	return &ValidationError{Errors: []string{fmt.Sprintf(format, args...)}}
}

// NewQuestion is a validated upload item ready to be stored.
type NewQuestion struct {
	Content     string
	Choices     []models.UploadChoice
	Correct     int
	Explanation string
}

// Repository is the persistence the catalog needs. *Store implements it.
type Repository interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
	SubjectExists(ctx context.Context, id int64) (bool, error)
	CreateSubject(ctx context.Context, name string) (models.Subject, error)
	SubjectHasLectures(ctx context.Context, id int64) (bool, error)
	DeleteSubject(ctx context.Context, id int64) error

	ListLectures(ctx context.Context, subjectID *int64) ([]models.Lecture, error)
	GetLecture(ctx context.Context, id int64) (models.Lecture, error)
	CreateLecture(ctx context.Context, name string, subjectID int64) (models.Lecture, error)
	LectureHasQuestions(ctx context.Context, id int64) (bool, error)
	DeleteLecture(ctx context.Context, id int64) error

	ListQuestions(ctx context.Context, lectureID *int64) ([]models.QuestionDTO, error)
	InsertQuestions(ctx context.Context, lectureID int64, items []NewQuestion) (int, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// Drafter writes new questions for a lecture. problems lists drafts that were
// discarded; items are ready to upload.
type Drafter interface {
	Draft(ctx context.Context, lecture models.Lecture, count int, topic string) (items []models.UploadQuestionItem, problems []string, err error)
}

type Service struct {
	repo    Repository
	drafter Drafter
}

// NewService builds the catalog service. drafter may be nil, in which case
// generation is unavailable.
func NewService(repo Repository, drafter Drafter) *Service {
	return &Service{repo: repo, drafter: drafter}
}

// ── Subjects ────────────────────────────────────────────

func (s *Service) Subjects(ctx context.Context) ([]models.Subject, error) {
	return s.repo.ListSubjects(ctx)
}

func (s *Service) CreateSubject(ctx context.Context, req models.CreateSubjectRequest) (models.Subject, error) {
	name, err := validName("subject", req.Name)
	if err != nil {
		return models.Subject{}, err
	}
	return s.repo.CreateSubject(ctx, name)
}

func (s *Service) DeleteSubject(ctx context.Context, id int64) error {
	exists, err := s.repo.SubjectExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	busy, err := s.repo.SubjectHasLectures(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("subject %d has lectures: %w", id, ErrConflict)
	}
	return s.repo.DeleteSubject(ctx, id)
}

// ── Lectures ────────────────────────────────────────────

func (s *Service) Lectures(ctx context.Context, subjectID *int64) ([]models.Lecture, error) {
	return s.repo.ListLectures(ctx, subjectID)
}

func (s *Service) CreateLecture(ctx context.Context, req models.CreateLectureRequest) (models.Lecture, error) {
	name, err := validName("lecture", req.Name)
	if err != nil {
		return models.Lecture{}, err
	}
	exists, err := s.repo.SubjectExists(ctx, req.SubjectID)
	if err != nil {
		return models.Lecture{}, err
	}
	if !exists {
		return models.Lecture{}, invalid("subject %d does not exist", req.SubjectID)
	}
	return s.repo.CreateLecture(ctx, name, req.SubjectID)
}

func (s *Service) DeleteLecture(ctx context.Context, id int64) error {
	if _, err := s.repo.GetLecture(ctx, id); err != nil {
		return err
	}
	busy, err := s.repo.LectureHasQuestions(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("lecture %d has questions: %w", id, ErrConflict)
	}
	return s.repo.DeleteLecture(ctx, id)
}

// ── Questions ───────────────────────────────────────────

// LectureQuestions returns a lecture's questions; ErrNotFound when the lecture
// does not exist.
func (s *Service) LectureQuestions(ctx context.Context, lectureID int64) ([]models.QuestionDTO, error) {
	if _, err := s.repo.GetLecture(ctx, lectureID); err != nil {
		return nil, err
	}
	return s.repo.ListQuestions(ctx, &lectureID)
}

func (s *Service) AllQuestions(ctx context.Context) ([]models.QuestionDTO, error) {
	return s.repo.ListQuestions(ctx, nil)
}

func (s *Service) DeleteQuestion(ctx context.Context, id int64) error {
	return s.repo.DeleteQuestion(ctx, id)
}

// Upload validates every item and stores them all, or none.
func (s *Service) Upload(ctx context.Context, req models.UploadQuestionRequest) (int, error) {
	if req.LectureID <= 0 {
		return 0, invalid("lectureId is required")
	}
	items, err := ValidateUpload(req.Questions)
	if err != nil {
		return 0, err
	}
	if _, err := s.repo.GetLecture(ctx, req.LectureID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, invalid("lecture %d does not exist", req.LectureID)
		}
		return 0, err
	}

	n, err := s.repo.InsertQuestions(ctx, req.LectureID, items)
	if err != nil {
		return 0, err
	}
	log.Printf("[catalog] uploaded %d questions to lecture %d", n, req.LectureID)
	return n, nil
}

// Generate drafts count questions for a lecture and stores the ones that
// pass validation.
func (s *Service) Generate(ctx context.Context, lectureID int64, req models.GenerateQuestionsRequest) (models.GenerateQuestionsResponse, error) {
	if s.drafter == nil {
		return models.GenerateQuestionsResponse{}, ErrGenerationDisabled
	}
	if req.Count <= 0 {
		req.Count = 5
	}
	if req.Count > 20 {
		return models.GenerateQuestionsResponse{}, invalid("count must be at most 20")
	}

	lecture, err := s.repo.GetLecture(ctx, lectureID)
	if err != nil {
		return models.GenerateQuestionsResponse{}, err
	}

	drafts, problems, err := s.drafter.Draft(ctx, lecture, req.Count, req.Topic)
	if err != nil {
		return models.GenerateQuestionsResponse{}, fmt.Errorf("draft questions: %w", err)
	}

	resp := models.GenerateQuestionsResponse{LectureID: lectureID, Problems: problems}
	var keep []NewQuestion
	for i, d := range drafts {
		items, err := ValidateUpload([]models.UploadQuestionItem{d})
		if err != nil {
			resp.Problems = append(resp.Problems, fmt.Sprintf("draft %d: %v", i+1, err))
			continue
		}
		keep = append(keep, items...)
	}
	resp.Rejected = len(resp.Problems)

	if len(keep) > 0 {
		n, err := s.repo.InsertQuestions(ctx, lectureID, keep)
		if err != nil {
			return models.GenerateQuestionsResponse{}, err
		}
		resp.Created = n
	}
	log.Printf("[catalog] generated %d questions for lecture %d (%d rejected)", resp.Created, lectureID, resp.Rejected)
	return resp, nil
}

// ValidateUpload checks upload items and resolves each one's correct choice.
// All problems are reported together.
func ValidateUpload(items []models.UploadQuestionItem) ([]NewQuestion, error) {
	if len(items) == 0 {
		return nil, invalid("questions must not be empty")
	}

	var errs []string
	out := make([]NewQuestion, 0, len(items))
	for i, it := range items {
		label := fmt.Sprintf("question %d", i+1)
		q := NewQuestion{
			Content:     strings.TrimSpace(it.Content),
			Choices:     it.Choices,
			Correct:     it.CorrectIndex(),
			Explanation: strings.TrimSpace(it.Explanation),
		}

		if q.Content == "" {
			errs = append(errs, label+": content is required")
		}
		if len(q.Choices) < 2 {
			errs = append(errs, fmt.Sprintf("%s: needs at least 2 choices, got %d", label, len(q.Choices)))
		}
		for j, c := range q.Choices {
			if strings.TrimSpace(c.Content) == "" {
				errs = append(errs, fmt.Sprintf("%s: choice %d is empty", label, j+1))
			}
		}
		switch {
		case q.Correct == -1 && it.AnswerIndex == nil:
			errs = append(errs, label+": no correct choice")
		case q.Correct < 0 || q.Correct >= len(q.Choices):
			errs = append(errs, fmt.Sprintf("%s: answerIndex %d out of range", label, q.Correct))
		}
		out = append(out, q)
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	return out, nil
}

func validName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return "", invalid("%s name is required", kind)
	}
	if n > MaxNameLength {
		return "", invalid("%s name must be at most %d characters", kind, MaxNameLength)
	}
	return name, nil
}
