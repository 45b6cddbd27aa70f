package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fermata/internal/apperr"
)

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	rec := env.postForm(t, cookie, "/register", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
	if len(env.identity.created) != 1 || env.identity.created[0] != "alice@example.com" {
		t.Errorf("created accounts = %v, want [alice@example.com]", env.identity.created)
	}

	// The success flash shows on the next rendered page.
	_, body := env.get(t, cookie, "/login")
	if !strings.Contains(body, "Registration successful") {
		t.Error("expected registration success flash on follow-up page")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	rec := env.postForm(t, cookie, "/register", url.Values{"email": {"alice@example.com"}})
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/register" {
		t.Errorf("redirect = %q, want /register", loc)
	}
	if len(env.identity.created) != 0 {
		t.Errorf("created accounts = %v, want none", env.identity.created)
	}
}

func TestRegisterProviderRejection(t *testing.T) {
	env := newTestEnv(t, nil)
	env.identity.createErr = apperr.New(apperr.KindValidation, "email already registered")
	cookie := env.sessionCookie(t)

	rec := env.postForm(t, cookie, "/register", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	if loc := rec.Header().Get("Location"); loc != "/register" {
		t.Errorf("redirect = %q, want /register", loc)
	}

	_, body := env.get(t, cookie, "/register")
	if !strings.Contains(body, "email already registered") {
		t.Error("expected kind-derived rejection message in flash")
	}
}

func TestRegisterProviderUnavailable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.identity.createErr = apperr.New(apperr.KindUnavailable, "identity provider unreachable")
	cookie := env.sessionCookie(t)

	env.postForm(t, cookie, "/register", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})

	_, body := env.get(t, cookie, "/register")
	if !strings.Contains(body, "temporarily unavailable") {
		t.Error("expected unavailability message in flash")
	}
	if strings.Contains(body, "unreachable") {
		t.Error("raw provider error text leaked to the page")
	}
}

func TestLoginSetsUser(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	rec := env.postForm(t, cookie, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/songs" {
		t.Errorf("redirect = %q, want /songs", loc)
	}

	_, body := env.get(t, cookie, "/")
	if !strings.Contains(body, "alice@example.com") {
		t.Error("expected logged-in email in rendered page")
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	env.identity.lookupErr = apperr.New(apperr.KindNotFound, "no account with that email")
	cookie := env.sessionCookie(t)

	rec := env.postForm(t, cookie, "/login", url.Values{"email": {"ghost@example.com"}})
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}

	_, body := env.get(t, cookie, "/login")
	if !strings.Contains(body, "Login failed") {
		t.Error("expected login failure flash")
	}
	if strings.Contains(body, "ghost@example.com") && strings.Contains(body, "no account") {
		t.Error("raw provider error text leaked to the page")
	}
}

func TestLoginEmptyEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	rec := env.postForm(t, cookie, "/login", url.Values{})
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect = %q, want /login", loc)
	}
}

func TestLogoutClearsUser(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)
	env.login(t, cookie, "alice@example.com")

	rec, _ := env.get(t, cookie, "/logout")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("redirect = %q, want /", loc)
	}

	_, body := env.get(t, cookie, "/")
	if strings.Contains(body, "alice@example.com") {
		t.Error("email still shown after logout")
	}
	if !strings.Contains(body, "Logged out.") {
		t.Error("expected logout flash on the next page")
	}
}

func TestLoginWhileOtherTabLoadsPages(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.sessionCookie(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	sess, ok := env.server.sessions.FromRequest(req)
	if !ok {
		t.Fatal("expected session behind cookie")
	}

	// One tab flips the login state while another keeps rendering pages
	// off the same browser session.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			env.server.sessions.SetEmail(sess.ID, "alice@example.com")
			env.server.sessions.ClearEmail(sess.ID)
		}
	}()

	for i := 0; i < 100; i++ {
		rec, _ := env.get(t, cookie, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	}
	<-done
}

func TestIndexUnknownPathIs404(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, _ := env.get(t, nil, "/nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
