package catalog

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/quiz-club/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the public routes on api and the admin routes on a
// subrouter guarded by admin.
func (h *Handler) Register(api *mux.Router, admin mux.MiddlewareFunc) {
	api.HandleFunc("/ping", h.Ping).Methods("GET")
	api.HandleFunc("/subjects", h.ListSubjects).Methods("GET")
	api.HandleFunc("/lectures", h.ListLectures).Methods("GET")
	api.HandleFunc("/lectures/{id}/questions", h.LectureQuestions).Methods("GET")
	api.HandleFunc("/questions/upload", h.Upload).Methods("POST")

	protected := api.PathPrefix("/admin").Subrouter()
	protected.Use(admin)
	protected.HandleFunc("/questions", h.AllQuestions).Methods("GET")
	protected.HandleFunc("/questions/{id}", h.DeleteQuestion).Methods("DELETE")
	protected.HandleFunc("/lectures", h.CreateLecture).Methods("POST")
	protected.HandleFunc("/lectures/{id}", h.DeleteLecture).Methods("DELETE")
	protected.HandleFunc("/lectures/{id}/generate", h.Generate).Methods("POST")
	protected.HandleFunc("/subjects", h.CreateSubject).Methods("POST")
	protected.HandleFunc("/subjects/{id}", h.DeleteSubject).Methods("DELETE")
}

func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.Context())
	if err != nil {
		h.fail(w, "list subjects", err)
		return
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *Handler) ListLectures(w http.ResponseWriter, r *http.Request) {
	var subjectID *int64
	if raw := r.URL.Query().Get("subject_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid subject_id"})
			return
		}
		subjectID = &id
	}

	lectures, err := h.service.Lectures(r.Context(), subjectID)
	if err != nil {
		h.fail(w, "list lectures", err)
		return
	}
	if lectures == nil {
		lectures = []models.Lecture{}
	}
	writeJSON(w, http.StatusOK, lectures)
}

func (h *Handler) LectureQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lecture")
	if !ok {
		return
	}
	questions, err := h.service.LectureQuestions(r.Context(), id)
	if err != nil {
		h.fail(w, "lecture questions", err)
		return
	}
	if questions == nil {
		questions = []models.QuestionDTO{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req models.UploadQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	n, err := h.service.Upload(r.Context(), req)
	if err != nil {
		h.fail(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusOK, models.UploadResponse{LectureID: req.LectureID, Created: n})
}

// ── Admin ───────────────────────────────────────────────

func (h *Handler) AllQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.AllQuestions(r.Context())
	if err != nil {
		h.fail(w, "all questions", err)
		return
	}
	if questions == nil {
		questions = []models.QuestionDTO{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "question")
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), id); err != nil {
		h.fail(w, "delete question", err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Question deleted"})
}

func (h *Handler) CreateLecture(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLectureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	lecture, err := h.service.CreateLecture(r.Context(), req)
	if err != nil {
		h.fail(w, "create lecture", err)
		return
	}
	writeJSON(w, http.StatusOK, lecture)
}

func (h *Handler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lecture")
	if !ok {
		return
	}
	if err := h.service.DeleteLecture(r.Context(), id); err != nil {
		h.fail(w, "delete lecture", err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Lecture deleted"})
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lecture")
	if !ok {
		return
	}
	var req models.GenerateQuestionsRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
			return
		}
	}
	resp, err := h.service.Generate(r.Context(), id, req)
	if err != nil {
		h.fail(w, "generate", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	subject, err := h.service.CreateSubject(r.Context(), req)
	if err != nil {
		h.fail(w, "create subject", err)
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	if err := h.service.DeleteSubject(r.Context(), id); err != nil {
		h.fail(w, "delete subject", err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Subject deleted"})
}

// fail maps service errors onto status codes. Unexpected errors are logged
// and answered with a generic 500.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: verr.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrGenerationDisabled):
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: err.Error()})
	default:
		log.Printf("[catalog] %s error: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func pathID(w http.ResponseWriter, r *http.Request, kind string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid " + kind + " ID"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
