package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quiz-club/backend/internal/models"
	"github.com/quiz-club/backend/internal/quiz"
	"github.com/quiz-club/backend/internal/quizset"
)

var ErrLectureNotFound = errors.New("lecture not found")

// Client reads lectures and their questions from a quiz server's public API.
type Client struct {
	base string
	http *http.Client
}

func New(serverURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", serverURL)
	}
	return &Client{base: u.String(), http: &http.Client{Timeout: 15 * time.Second}}, nil
}

// WithHTTPClient replaces the underlying client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// Lectures lists lectures, optionally for one subject (subjectID > 0).
func (c *Client) Lectures(ctx context.Context, subjectID int64) ([]models.Lecture, error) {
	path := "/api/lectures"
	if subjectID > 0 {
		path += fmt.Sprintf("?subject_id=%d", subjectID)
	}
	var lectures []models.Lecture
	if err := c.get(ctx, path, &lectures); err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return lectures, nil
}

func (c *Client) Questions(ctx context.Context, lectureID int64) ([]models.QuestionDTO, error) {
	var dtos []models.QuestionDTO
	if err := c.get(ctx, fmt.Sprintf("/api/lectures/%d/questions", lectureID), &dtos); err != nil {
		return nil, fmt.Errorf("lecture %d questions: %w", lectureID, err)
	}
	return dtos, nil
}

// FetchLecture implements quiz.Fetcher. The lecture title comes from the
// served questions, or from the lecture list when the lecture has none.
func (c *Client) FetchLecture(ctx context.Context, lectureID int64) (quiz.QuizSet, error) {
	dtos, err := c.Questions(ctx, lectureID)
	if err != nil {
		return quiz.QuizSet{}, err
	}

	lecture := models.Lecture{ID: lectureID, Name: fmt.Sprintf("Lecture %d", lectureID)}
	if len(dtos) > 0 && dtos[0].Lecture.Name != "" {
		lecture.Name = dtos[0].Lecture.Name
	} else if lectures, err := c.Lectures(ctx, 0); err == nil {
		for _, l := range lectures {
			if l.ID == lectureID {
				lecture.Name = l.Name
				break
			}
		}
	}
	set, problems := quizset.FromAPI(lecture, dtos)
	for _, msg := range problems {
		log.Printf("[apiclient] lecture %d: skipped %s", lectureID, msg)
	}
	return set, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrLectureNotFound
	case resp.StatusCode != http.StatusOK:
		var body models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
