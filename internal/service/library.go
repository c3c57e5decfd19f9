// Package service provides the procedure library operations used by the CLI
// and the viewer.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/recent"
	"github.com/raphaelgruber/procview/internal/scan"
	"github.com/raphaelgruber/procview/internal/search"
	"github.com/raphaelgruber/procview/internal/session"
	"github.com/raphaelgruber/procview/internal/store"
)

// Sentinel errors for library operations.
var (
	// ErrNotLoggedIn indicates an operation that needs a session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrMissingCredentials indicates a blank email or password.
	ErrMissingCredentials = errors.New("email and password are required")

	// ErrProcedureNotFound indicates an id that is neither recent nor in the
	// cached folder tree.
	ErrProcedureNotFound = errors.New("procedure not found")

	// ErrEmptyFeedback indicates a blank feedback message.
	ErrEmptyFeedback = errors.New("feedback message is empty")

	// ErrNoBarcode indicates a procedure without a barcode resource.
	ErrNoBarcode = errors.New("procedure has no barcode")
)

// Backend is the remote procedure service.
type Backend interface {
	Login(ctx context.Context, creds models.Credentials) (models.Session, error)
	FetchTree(ctx context.Context, userID string) ([]models.FolderTree, error)
	FetchScanned(ctx context.Context, rawURL string) (models.ProcedureNode, error)
	SubmitFeedback(ctx context.Context, userID, procedureID, text string) error
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Library ties the backend to local storage: session, cached folder tree
// and recent procedures.
type Library struct {
	backend  Backend
	store    store.Store
	sessions *session.Manager
	recent   *recent.Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewLibrary creates a library. A nil logger uses slog.Default().
func NewLibrary(backend Backend, s store.Store, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		backend:  backend,
		store:    s,
		sessions: session.NewManager(s),
		recent:   recent.New(s, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Recent returns the recent-procedures cache, loading it on first use.
func (l *Library) Recent(ctx context.Context) *recent.Cache {
	l.recent.Load(ctx)
	return l.recent
}

// Session returns the current session or ErrNotLoggedIn.
func (l *Library) Session(ctx context.Context) (models.Session, error) {
	sess, ok, err := l.sessions.Load(ctx)
	if err != nil {
		l.logger.Warn("ignoring unreadable session record", "error", err)
		return models.Session{}, ErrNotLoggedIn
	}
	if !ok {
		return models.Session{}, ErrNotLoggedIn
	}
	return sess, nil
}

// Login authenticates and persists the session. Nothing is stored on failure.
func (l *Library) Login(ctx context.Context, email, password string) (models.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.Session{}, ErrMissingCredentials
	}

	sess, err := l.backend.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return models.Session{}, err
	}
	if err := l.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, err
	}
	l.logger.Info("logged in", "user", sess.User.ID)
	return sess, nil
}

// Logout forgets the session. Cached procedures are kept for offline use.
func (l *Library) Logout(ctx context.Context) error {
	return l.sessions.Clear(ctx)
}

// RefreshTree fetches the folder tree and caches it. When the fetch fails the
// cached tree is returned together with the error so callers can keep
// working offline.
func (l *Library) RefreshTree(ctx context.Context) ([]models.FolderTree, error) {
	sess, err := l.Session(ctx)
	if err != nil {
		return nil, err
	}

	tree, fetchErr := l.backend.FetchTree(ctx, sess.User.ID)
	if fetchErr != nil {
		cached, err := l.CachedTree(ctx)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			l.logger.Warn("cached folder tree unavailable", "error", err)
		}
		return cached, fetchErr
	}

	if err := store.SetJSON(ctx, l.store, store.KeyFolder, models.FolderEnvelope{Data: tree}); err != nil {
		l.logger.Warn("failed to cache folder tree", "error", err)
	}
	return tree, nil
}

// CachedTree returns the last fetched folder tree, or store.ErrNotFound.
func (l *Library) CachedTree(ctx context.Context) ([]models.FolderTree, error) {
	var env models.FolderEnvelope
	if err := store.GetJSON(ctx, l.store, store.KeyFolder, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Open records doc as the most recently viewed procedure.
func (l *Library) Open(ctx context.Context, doc models.ProcedureNode) models.ProcedureNode {
	l.Recent(ctx).Add(ctx, doc)
	return doc
}

// OpenByID opens a procedure from the recent list or the cached folder tree.
func (l *Library) OpenByID(ctx context.Context, id string) (models.ProcedureNode, error) {
	doc, err := l.Lookup(ctx, id)
	if err != nil {
		return models.ProcedureNode{}, err
	}
	return l.Open(ctx, doc), nil
}

// Lookup finds a procedure in the recent list or the cached folder tree
// without recording it as opened.
func (l *Library) Lookup(ctx context.Context, id string) (models.ProcedureNode, error) {
	if doc, ok := l.Recent(ctx).Find(id); ok {
		return doc, nil
	}

	tree, err := l.CachedTree(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		l.logger.Warn("cached folder tree unavailable", "error", err)
	}
	if doc, ok := search.FindProcedure(tree, id); ok {
		return doc, nil
	}
	return models.ProcedureNode{}, fmt.Errorf("%w: %s", ErrProcedureNotFound, id)
}

// Scan resolves a decoded QR payload to a procedure and opens it.
func (l *Library) Scan(ctx context.Context, payload string) (models.ProcedureNode, error) {
	doc, err := l.Resolve(ctx, payload)
	if err != nil {
		return models.ProcedureNode{}, err
	}
	return l.Open(ctx, doc), nil
}

// Resolve fetches the procedure behind a decoded QR payload without opening
// it.
func (l *Library) Resolve(ctx context.Context, payload string) (models.ProcedureNode, error) {
	target, err := scan.Normalize(payload)
	if err != nil {
		return models.ProcedureNode{}, err
	}
	return l.backend.FetchScanned(ctx, target)
}

// SubmitFeedback sends a message about a procedure on behalf of the user.
func (l *Library) SubmitFeedback(ctx context.Context, procedureID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyFeedback
	}
	sess, err := l.Session(ctx)
	if err != nil {
		return err
	}
	return l.backend.SubmitFeedback(ctx, sess.User.ID, procedureID, text)
}

// DownloadBarcode saves the procedure's barcode image into dir and returns
// the file path. A partial file is removed on failure.
func (l *Library) DownloadBarcode(ctx context.Context, doc models.ProcedureNode, dir string) (string, error) {
	if doc.URL == "" {
		return "", ErrNoBarcode
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create barcode dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("barcode_%d.png", l.now().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create barcode file: %w", err)
	}

	_, err = l.backend.Download(ctx, doc.URL, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	l.logger.Info("barcode saved", "procedure", doc.ID, "path", path)
	return path, nil
}
