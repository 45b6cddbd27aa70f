package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fermata/internal/apperr"
	"fermata/internal/config"
	"fermata/internal/filestore"
	"fermata/internal/identity"
	"fermata/internal/jamendo"
	"fermata/internal/metadata"
	"fermata/internal/session"
	"fermata/pkg/models"
)

// fakeIdentity is an in-memory identity.Provider for handler tests.
type fakeIdentity struct {
	mu        sync.Mutex
	createErr error
	lookupErr error
	created   []string
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, _ string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, email)
	return &identity.User{UID: "uid-1", Email: email}, nil
}

func (f *fakeIdentity) GetUserByEmail(_ context.Context, email string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return &identity.User{UID: "uid-1", Email: email}, nil
}

// fakeSongStore is an in-memory songstore.Store for handler tests.
type fakeSongStore struct {
	mu      sync.Mutex
	songs   []models.Song
	addErr  error
	allErr  error
	pingErr error
}

func (f *fakeSongStore) Add(_ context.Context, song models.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.songs = append(f.songs, song)
	return nil
}

func (f *fakeSongStore) All(_ context.Context) ([]models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allErr != nil {
		return nil, f.allErr
	}
	return append([]models.Song(nil), f.songs...), nil
}

func (f *fakeSongStore) ByFilename(_ context.Context, filename string) (*models.Song, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.songs {
		if f.songs[i].Filename == filename {
			song := f.songs[i]
			return &song, nil
		}
	}
	return nil, apperr.New(apperr.KindNotFound, "song not found")
}

func (f *fakeSongStore) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

// testEnv bundles the server and its collaborators for assertions.
type testEnv struct {
	handler  http.Handler
	server   *Server
	identity *fakeIdentity
	store    *fakeSongStore
	files    *filestore.Store
}

func newTestEnv(t *testing.T, catalog *jamendo.Client) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.DefaultConfig()
	cfg.Logging.RequestLogging = false

	files, err := filestore.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}

	ident := &fakeIdentity{}
	store := &fakeSongStore{}
	sessions := session.NewManager([]byte("test-secret"), time.Hour, false)
	extractor := metadata.NewExtractor(cfg.Storage.AllowedFormats, logger)

	srv, err := New(cfg, logger, sessions, ident, store, files, catalog, extractor)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}

	return &testEnv{
		handler:  srv.routes(),
		server:   srv,
		identity: ident,
		store:    store,
		files:    files,
	}
}

// sessionCookie performs one request to obtain a signed session cookie.
func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	for _, c := range rec.Result().Cookies() {
		if c.Name == "fermata_session" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

// postForm submits an urlencoded form with the given session cookie.
func (e *testEnv) postForm(t *testing.T, cookie *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// get performs a GET with the given session cookie and returns the body.
func (e *testEnv) get(t *testing.T, cookie *http.Cookie, path string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec, rec.Body.String()
}

// login authenticates the session as email through the login handler.
func (e *testEnv) login(t *testing.T, cookie *http.Cookie, email string) {
	t.Helper()

	rec := e.postForm(t, cookie, "/login", url.Values{
		"email":    {email},
		"password": {"secret"},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusFound)
	}
}

// multipartUpload builds and submits a multipart upload request.
func (e *testEnv) multipartUpload(t *testing.T, cookie *http.Cookie, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("song", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
