// Package server provides a fixture backend that serves procedures from a
// directory of JSON files, for development and tests.
//
// Layout of the fixture directory:
//
//	login.json             accounts: [{"email", "password" or "password_hash", "user": {...}}]
//	folders.json           {"data": [FolderTree]} shared by every account
//	procedures/<id>.json   one ProcedureNode, served to QR scans
//	barcodes/<id>.png      barcode image of a procedure
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/raphaelgruber/procview/internal/models"
)

// Account is one login accepted by the fixture backend. PasswordHash is a
// bcrypt hash and takes precedence over a plain Password.
type Account struct {
	Email        string             `json:"email"`
	Password     string             `json:"password,omitempty"`
	PasswordHash string             `json:"password_hash,omitempty"`
	User         models.UserProfile `json:"user"`
}

// Matches reports whether the credentials belong to this account. Emails
// compare case-insensitively.
func (a Account) Matches(email, password string) bool {
	if !strings.EqualFold(a.Email, email) {
		return false
	}
	if a.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	}
	return a.Password != "" && a.Password == password
}

// HashPassword returns a bcrypt hash for use as an account's password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// FeedbackEntry is a feedback message received by the fixture backend.
type FeedbackEntry struct {
	UserID      string
	ProcedureID string
	Description string
}

// Server serves the backend endpoints from fixture files. Files are read on
// every request so edits show up without a restart.
type Server struct {
	router chi.Router
	fsys   fs.FS
	logger *slog.Logger

	mu       sync.Mutex
	feedback []FeedbackEntry
}

// New creates a fixture server reading from fsys.
func New(fsys fs.FS, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{fsys: fsys, logger: logger}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(s.logger))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/user/user-login", s.handleLogin)
		r.Get("/procedure/get/procedures/by/user/{userID}", s.handleTree)
		r.Get("/procedure/qr/{procedureID}", s.handleQR)
		r.Get("/procedure/barcode/{procedureID}.png", s.handleBarcode)
		r.Post("/feedback/{userID}/{procedureID}", s.handleFeedback)
	})

	s.router = r
}

// Feedback returns the feedback received so far.
func (s *Server) Feedback() []FeedbackEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]FeedbackEntry(nil), s.feedback...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, models.Result{Message: "invalid request body"})
		return
	}

	accounts, err := s.accounts()
	if err != nil {
		s.fail(w, "load accounts", err)
		return
	}
	for _, a := range accounts {
		if a.Matches(creds.Email, creds.Password) {
			writeJSON(w, http.StatusOK, models.Session{Success: true, User: a.User})
			return
		}
	}
	// Failed logins are answered with 200 and success=false, like the production backend.
	writeJSON(w, http.StatusOK, models.Result{Success: false, Message: "invalid credentials"})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if !s.knownUser(w, chi.URLParam(r, "userID")) {
		return
	}
	var env models.FolderEnvelope
	if err := s.readJSON("folders.json", &env); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusOK, models.FolderEnvelope{Data: []models.FolderTree{}})
			return
		}
		s.fail(w, "load folders", err)
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.procedure(w, chi.URLParam(r, "procedureID"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, []models.ProcedureNode{doc})
}

func (s *Server) handleBarcode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "procedureID")
	if !validID(id) {
		http.NotFound(w, r)
		return
	}
	data, err := fs.ReadFile(s.fsys, path.Join("barcodes", id+".png"))
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.fail(w, "read barcode", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !s.knownUser(w, userID) {
		return
	}
	var fb models.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil || strings.TrimSpace(fb.Description) == "" {
		writeJSON(w, http.StatusOK, models.Result{Success: false, Message: "description is required"})
		return
	}

	entry := FeedbackEntry{UserID: userID, ProcedureID: chi.URLParam(r, "procedureID"), Description: fb.Description}
	s.mu.Lock()
	s.feedback = append(s.feedback, entry)
	s.mu.Unlock()

	s.logger.Info("feedback received", "user", entry.UserID, "procedure", entry.ProcedureID, "length", len(fb.Description))
	writeJSON(w, http.StatusOK, models.Result{Success: true})
}

func (s *Server) accounts() ([]Account, error) {
	var accounts []Account
	if err := s.readJSON("login.json", &accounts); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return accounts, nil
}

// knownUser writes a 404 and returns false for ids without an account.
func (s *Server) knownUser(w http.ResponseWriter, id string) bool {
	accounts, err := s.accounts()
	if err != nil {
		s.fail(w, "load accounts", err)
		return false
	}
	for _, a := range accounts {
		if a.User.ID == id {
			return true
		}
	}
	writeJSON(w, http.StatusNotFound, models.Result{Message: "unknown user"})
	return false
}

func (s *Server) procedure(w http.ResponseWriter, id string) (models.ProcedureNode, bool) {
	var doc models.ProcedureNode
	if !validID(id) {
		writeJSON(w, http.StatusNotFound, models.Result{Message: "unknown procedure"})
		return doc, false
	}
	err := s.readJSON(path.Join("procedures", id+".json"), &doc)
	if errors.Is(err, fs.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, models.Result{Message: "unknown procedure"})
		return doc, false
	}
	if err != nil {
		s.fail(w, "load procedure", err)
		return doc, false
	}
	return doc, true
}

func (s *Server) readJSON(name string, v any) error {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger.Error(what, "error", err)
	writeJSON(w, http.StatusInternalServerError, models.Result{Message: what + " failed"})
}

// validID rejects ids that could escape the fixture directory.
func validID(id string) bool {
	return id != "" && fs.ValidPath(id) && !strings.ContainsAny(id, `/\`)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
