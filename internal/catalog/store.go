package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quiz-club/backend/internal/models"
)

// Store is the Postgres-backed catalog repository.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Subjects ────────────────────────────────────────────

func (s *Store) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var sub models.Subject
		if err := rows.Scan(&sub.ID, &sub.Name); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

func (s *Store) SubjectExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM subjects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subject: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateSubject(ctx context.Context, name string) (models.Subject, error) {
	sub := models.Subject{Name: name}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO subjects (name) VALUES ($1) RETURNING id`, name,
	).Scan(&sub.ID)
	if err != nil {
		return models.Subject{}, fmt.Errorf("create subject: %w", err)
	}
	return sub, nil
}

func (s *Store) SubjectHasLectures(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM lectures WHERE subject_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subject lectures: %w", err)
	}
	return exists, nil
}

func (s *Store) DeleteSubject(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "subjects", id)
}

// ── Lectures ────────────────────────────────────────────

// ListLectures returns every lecture, or only a subject's when subjectID is
// non-nil.
func (s *Store) ListLectures(ctx context.Context, subjectID *int64) ([]models.Lecture, error) {
	var filter sql.NullInt64
	if subjectID != nil {
		filter = sql.NullInt64{Int64: *subjectID, Valid: true}
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, subject_id FROM lectures
		 WHERE $1::BIGINT IS NULL OR subject_id = $1
		 ORDER BY id`,
		filter,
	)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()

	var lectures []models.Lecture
	for rows.Next() {
		var l models.Lecture
		if err := rows.Scan(&l.ID, &l.Name, &l.SubjectID); err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		lectures = append(lectures, l)
	}
	return lectures, rows.Err()
}

func (s *Store) GetLecture(ctx context.Context, id int64) (models.Lecture, error) {
	var l models.Lecture
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subject_id FROM lectures WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.SubjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Lecture{}, ErrNotFound
	}
	if err != nil {
		return models.Lecture{}, fmt.Errorf("get lecture: %w", err)
	}
	return l, nil
}

func (s *Store) CreateLecture(ctx context.Context, name string, subjectID int64) (models.Lecture, error) {
	l := models.Lecture{Name: name, SubjectID: subjectID}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO lectures (name, subject_id) VALUES ($1, $2) RETURNING id`,
		name, subjectID,
	).Scan(&l.ID)
	if err != nil {
		return models.Lecture{}, fmt.Errorf("create lecture: %w", err)
	}
	return l, nil
}

func (s *Store) LectureHasQuestions(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM questions WHERE lecture_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check lecture questions: %w", err)
	}
	return exists, nil
}

func (s *Store) DeleteLecture(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "lectures", id)
}

// ── Questions ───────────────────────────────────────────

// ListQuestions returns questions with their answers and explanations, all of
// them or one lecture's when lectureID is non-nil.
func (s *Store) ListQuestions(ctx context.Context, lectureID *int64) ([]models.QuestionDTO, error) {
	var filter sql.NullInt64
	if lectureID != nil {
		filter = sql.NullInt64{Int64: *lectureID, Valid: true}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.content, l.id, l.name, l.subject_id
		 FROM questions q JOIN lectures l ON l.id = q.lecture_id
		 WHERE $1::BIGINT IS NULL OR q.lecture_id = $1
		 ORDER BY q.id`,
		filter,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.QuestionDTO
	index := make(map[int64]int)
	for rows.Next() {
		q := models.QuestionDTO{Answers: []models.AnswerDTO{}, Explanations: []models.ExplanationDTO{}}
		if err := rows.Scan(&q.ID, &q.Content, &q.Lecture.ID, &q.Lecture.Name, &q.Lecture.SubjectID); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return questions, nil
	}

	if err := s.attachAnswers(ctx, filter, questions, index); err != nil {
		return nil, err
	}
	if err := s.attachExplanations(ctx, filter, questions, index); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) attachAnswers(ctx context.Context, filter sql.NullInt64, questions []models.QuestionDTO, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.question_id, a.id, a.content, a.is_correct, COALESCE(a.explanation, '')
		 FROM answers a JOIN questions q ON q.id = a.question_id
		 WHERE $1::BIGINT IS NULL OR q.lecture_id = $1
		 ORDER BY a.question_id, a.position`,
		filter,
	)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var qid int64
		var a models.AnswerDTO
		if err := rows.Scan(&qid, &a.ID, &a.Content, &a.Correct, &a.Explanation); err != nil {
			return fmt.Errorf("scan answer: %w", err)
		}
		if i, ok := index[qid]; ok {
			questions[i].Answers = append(questions[i].Answers, a)
		}
	}
	return rows.Err()
}

func (s *Store) attachExplanations(ctx context.Context, filter sql.NullInt64, questions []models.QuestionDTO, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.question_id, e.id, e.content
		 FROM explanations e JOIN questions q ON q.id = e.question_id
		 WHERE $1::BIGINT IS NULL OR q.lecture_id = $1
		 ORDER BY e.question_id, e.id`,
		filter,
	)
	if err != nil {
		return fmt.Errorf("list explanations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var qid int64
		var e models.ExplanationDTO
		if err := rows.Scan(&qid, &e.ID, &e.Content); err != nil {
			return fmt.Errorf("scan explanation: %w", err)
		}
		if i, ok := index[qid]; ok {
			questions[i].Explanations = append(questions[i].Explanations, e)
		}
	}
	return rows.Err()
}

// InsertQuestions stores items for a lecture in one transaction. Each item
// must already be validated; correct is the index of its correct choice.
func (s *Store) InsertQuestions(ctx context.Context, lectureID int64, items []NewQuestion) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		var questionID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO questions (lecture_id, content, correct_answer)
			 VALUES ($1, $2, $3) RETURNING id`,
			lectureID, item.Content, item.Correct,
		).Scan(&questionID)
		if err != nil {
			return 0, fmt.Errorf("insert question: %w", err)
		}

		for pos, c := range item.Choices {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO answers (question_id, position, content, is_correct, explanation)
				 VALUES ($1, $2, $3, $4, $5)`,
				questionID, pos, c.Content, pos == item.Correct, nullString(c.Explanation),
			)
			if err != nil {
				return 0, fmt.Errorf("insert answer: %w", err)
			}
		}

		if item.Explanation != "" {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO explanations (question_id, content) VALUES ($1, $2)`,
				questionID, item.Explanation,
			)
			if err != nil {
				return 0, fmt.Errorf("insert explanation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit questions: %w", err)
	}
	return len(items), nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "questions", id)
}

// deleteByID removes one row by primary key. table is always a constant.
func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
