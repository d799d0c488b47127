// Package fakebackend runs an in-process imitation of the trajectory
// backend for tests: form login, JSON register, JWT-verified /me and the
// six student resources, with per-path failure and latency injection.
package fakebackend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Request is a recorded incoming request.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	RequestID     string
	Body          string
}

type account struct {
	id       int64
	email    string
	password string
	role     string
}

type failure struct {
	status int
	body   string
}

// Server is a fake backend bound to a local listener.
type Server struct {
	*httptest.Server

	secret []byte

	mu       sync.Mutex
	accounts map[string]*account
	nextID   int64
	failures map[string]failure
	delays   map[string]time.Duration
	gates    map[string]chan struct{}
	requests []Request

	// Fixtures served by the resource endpoints. Tests may replace them
	// before issuing requests.
	Profile    map[string]any
	Behavioral []map[string]any
	Skills     []map[string]any
	Prediction map[string]any
	Insights   map[string]any
	Comparison map[string]any
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		secret:     []byte("fakebackend-secret"),
		accounts:   make(map[string]*account),
		nextID:     1,
		failures:   make(map[string]failure),
		delays:     make(map[string]time.Duration),
		gates:      make(map[string]chan struct{}),
		Profile:    DefaultProfile(),
		Behavioral: DefaultBehavioral(),
		Skills:     DefaultSkills(),
		Prediction: DefaultPrediction(),
		Insights:   DefaultInsights(),
		Comparison: DefaultComparison(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/me", s.protected(s.handleMe))
	mux.HandleFunc("/api/student/profile", s.protected(s.serve(func() any { return s.Profile })))
	mux.HandleFunc("/api/student/behavioral", s.protected(s.serve(func() any {
		return map[string]any{"data": s.Behavioral, "count": len(s.Behavioral)}
	})))
	mux.HandleFunc("/api/student/skills", s.protected(s.serve(func() any {
		return map[string]any{"skills": s.Skills, "total_skills": len(s.Skills)}
	})))
	mux.HandleFunc("/api/predict", s.protected(s.serve(func() any { return s.Prediction })))
	mux.HandleFunc("/api/behavioral/insights", s.protected(s.serve(func() any { return s.Insights })))
	mux.HandleFunc("/api/behavioral/comparison", s.protected(s.serve(func() any { return s.Comparison })))

	s.Server = httptest.NewServer(s.intercept(mux))
	t.Cleanup(func() {
		s.ReleaseAll()
		s.Close()
	})
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// TEST CONTROLS
// ══════════════════════════════════════════════════════════════════════════════

// AddUser registers an account and returns its id.
func (s *Server) AddUser(email, password, role string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(email, password, role)
}

func (s *Server) addLocked(email, password, role string) int64 {
	id := s.nextID
	s.nextID++
	s.accounts[email] = &account{id: id, email: email, password: password, role: role}
	return id
}

// TokenFor issues a token for an existing account, valid for ttl.
func (s *Server) TokenFor(email string, ttl time.Duration) string {
	s.mu.Lock()
	acc := s.accounts[email]
	s.mu.Unlock()
	if acc == nil {
		panic(fmt.Sprintf("fakebackend: unknown account %q", email))
	}
	return s.issue(acc, ttl)
}

// Fail makes every request to path answer status with {"detail": detail}.
func (s *Server) Fail(path string, status int, detail string) {
	body, _ := json.Marshal(map[string]string{"detail": detail})
	s.FailRaw(path, status, string(body))
}

// FailRaw makes every request to path answer status with body.
func (s *Server) FailRaw(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, body: body}
}

// Delay holds responses to path for d.
func (s *Server) Delay(path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[path] = d
}

// Hold blocks responses to path until Release is called.
func (s *Server) Hold(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates[path] = make(chan struct{})
}

// Release unblocks responses held by Hold.
func (s *Server) Release(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.gates[path]; ok {
		close(ch)
		delete(s.gates, path)
	}
}

// ReleaseAll unblocks every held path.
func (s *Server) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, ch := range s.gates {
		close(ch)
		delete(s.gates, path)
	}
}

// Reset clears failures, delays and held paths.
func (s *Server) Reset() {
	s.ReleaseAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
	s.delays = make(map[string]time.Duration)
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests for path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issue(acc *account, ttl time.Duration) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: acc.id,
		Role:   acc.role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		fail, failing := s.failures[r.URL.Path]
		delay := s.delays[r.URL.Path]
		gate := s.gates[r.URL.Path]
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if gate != nil {
			<-gate
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	acc := s.accounts[email]
	s.mu.Unlock()

	if acc == nil || acc.password != password {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, s.tokenResponse(acc))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if in.Role == "" {
		in.Role = "student"
	}
	if in.Role != "student" && in.Role != "admin" {
		writeDetail(w, http.StatusBadRequest, "Role must be 'student' or 'admin'")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[in.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.addLocked(in.Email, in.Password, in.Role)
	acc := s.accounts[in.Email]
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, s.tokenResponse(acc))
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, acc *account) {
	writeJSON(w, http.StatusOK, map[string]any{"id": acc.id, "email": acc.email, "role": acc.role})
}

func (s *Server) tokenResponse(acc *account) map[string]any {
	return map[string]any{
		"access_token": s.issue(acc, time.Hour),
		"token_type":   "bearer",
		"user":         map[string]any{"id": acc.id, "email": acc.email, "role": acc.role},
	}
}

func (s *Server) serve(payload func() any) func(http.ResponseWriter, *http.Request, *account) {
	return func(w http.ResponseWriter, _ *http.Request, _ *account) {
		s.mu.Lock()
		p := payload()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, p)
	}
}

// protected verifies the bearer token the way the backend's
// get_current_user dependency does.
func (s *Server) protected(h func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var c claims
		_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		acc := s.accounts[c.Subject]
		s.mu.Unlock()
		if acc == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, acc)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
