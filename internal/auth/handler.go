package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quiz-club/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
)

const adminSubject = "admin"

type Options struct {
	// Secret is the plain admin password; it is hashed once at startup.
	Secret string
	// PasswordHash is a bcrypt hash and takes precedence over Secret.
	PasswordHash string
	SigningKey   []byte
	TTL          time.Duration
}

// Admin gates the admin API behind one shared password. Callers exchange the
// password for a signed token, or send the password itself in X-Admin-Secret.
type Admin struct {
	hash []byte
	key  []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewAdmin(opts Options) (*Admin, error) {
	if len(opts.SigningKey) == 0 {
		return nil, errors.New("admin signing key is required")
	}
	hash := []byte(opts.PasswordHash)
	if len(hash) == 0 {
		if opts.Secret == "" {
			return nil, errors.New("admin secret or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(opts.Secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin secret: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Admin{hash: hash, key: opts.SigningKey, ttl: ttl, now: time.Now}, nil
}

func (a *Admin) checkPassword(password string) bool {
	return password != "" && bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
}

// Login exchanges the admin password for a token.
func (a *Admin) Login(password string) (string, time.Time, error) {
	if !a.checkPassword(password) {
		return "", time.Time{}, ErrInvalidPassword
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Verify checks a token's signature, expiry and subject.
func (a *Admin) Verify(tokenString string) error {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.key, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(adminSubject)) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// Middleware admits requests with a valid Bearer token or the admin password
// in X-Admin-Secret.
func (a *Admin) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if a.Verify(strings.TrimPrefix(header, "Bearer ")) == nil {
				next.ServeHTTP(w, r)
				return
			}
		}
		// A stale token does not shadow a correct secret.
		if secret := r.Header.Get("X-Admin-Secret"); secret != "" && a.checkPassword(secret) {
			next.ServeHTTP(w, r)
			return
		}
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
	})
}

type Handler struct {
	admin *Admin
}

func NewHandler(admin *Admin) *Handler {
	return &Handler{admin: admin}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	token, exp, err := h.admin.Login(req.Password)
	if errors.Is(err, ErrInvalidPassword) {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid password"})
		return
	}
	if err != nil {
		log.Printf("[auth] login error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, models.AdminAuthResponse{Token: token, ExpiresAt: exp})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
