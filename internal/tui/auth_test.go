package tui

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/naveenspark/bankdash/internal/session"
	"github.com/naveenspark/bankdash/pkg/domain"
)

// authServer answers /auth/login and /auth/register with the given status and body
// and records the last decoded payload.
func authServer(status int, body any, got *domain.Credentials, path *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if path != nil {
			*path = r.URL.Path
		}
		if got != nil {
			json.NewDecoder(r.Body).Decode(got) //nolint:errcheck
		}
		writeJSON(w, status, body)
	}
}

func newTestAuth(t *testing.T, h http.HandlerFunc, mode domain.Mode) (authModel, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	c := newTestClient(t, h, store)
	return newAuthModel(c, store, nopLog, mode), store
}

// fill types the credentials into the form the way a user would.
func fill(m authModel, creds domain.Credentials) authModel {
	if m.mode == domain.ModeRegister {
		m.focus = fieldName
		m, _ = m.Update(runes(creds.Name))
		m, _ = m.Update(key("tab"))
	} else {
		m.focus = fieldEmail
	}
	m, _ = m.Update(runes(creds.Email))
	m, _ = m.Update(key("tab"))
	m, _ = m.Update(runes(creds.Password))
	return m
}

// submitAndApply presses enter on the password field, runs the request and
// feeds the result back into the model.
func submitAndApply(t *testing.T, m authModel) (authModel, any) {
	t.Helper()
	m, cmd := m.Update(key("enter"))
	if m.state != authSubmitting {
		t.Fatalf("state after submit = %d, want authSubmitting", m.state)
	}
	res := mustMsg(t, cmd)
	m, cmd = m.Update(res)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestAuthLoginPersistsAccessToken(t *testing.T) {
	var path string
	var sent domain.Credentials
	m, store := newTestAuth(t, authServer(http.StatusOK, map[string]string{"access_token": "T1", "token_type": "bearer"}, &sent, &path), domain.ModeLogin)

	m = fill(m, domain.Credentials{Email: "a@b.com", Password: "x"})
	m, out := submitAndApply(t, m)

	if _, ok := out.(sessionStartedMsg); !ok {
		t.Fatalf("expected sessionStartedMsg, got %T", out)
	}
	if path != "/auth/login" {
		t.Errorf("path = %q, want /auth/login", path)
	}
	if sent.Email != "a@b.com" || sent.Password != "x" || sent.Name != "" {
		t.Errorf("sent = %+v", sent)
	}
	tok, ok, _ := store.Get(session.TokenKey)
	if !ok || tok != "T1" {
		t.Errorf("stored token = (%q, %v), want (%q, true)", tok, ok, "T1")
	}
	if m.state != authIdle || m.errMsg != "" {
		t.Errorf("state = %d err = %q, want idle with no error", m.state, m.errMsg)
	}
}

func TestAuthRegisterPersistsTokenField(t *testing.T) {
	var path string
	var sent domain.Credentials
	m, store := newTestAuth(t, authServer(http.StatusOK, map[string]string{"token": "T2"}, &sent, &path), domain.ModeLogin)

	m, _ = m.Update(key("ctrl+r"))
	if m.mode != domain.ModeRegister {
		t.Fatalf("mode = %v, want register", m.mode)
	}
	m = fill(m, domain.Credentials{Name: "A", Email: "a@b.com", Password: "x"})
	_, out := submitAndApply(t, m)

	if _, ok := out.(sessionStartedMsg); !ok {
		t.Fatalf("expected sessionStartedMsg, got %T", out)
	}
	if path != "/auth/register" {
		t.Errorf("path = %q, want /auth/register", path)
	}
	if sent.Name != "A" {
		t.Errorf("sent name = %q, want %q", sent.Name, "A")
	}
	if tok, _, _ := store.Get(session.TokenKey); tok != "T2" {
		t.Errorf("stored token = %q, want %q", tok, "T2")
	}
}

func TestAuthPrefersAccessTokenOverToken(t *testing.T) {
	m, store := newTestAuth(t, authServer(http.StatusOK, map[string]string{"access_token": "A", "token": "B"}, nil, nil), domain.ModeLogin)

	m = fill(m, domain.Credentials{Email: "a@b.com", Password: "x"})
	submitAndApply(t, m)

	if tok, _, _ := store.Get(session.TokenKey); tok != "A" {
		t.Errorf("stored token = %q, want %q", tok, "A")
	}
}

func TestAuthSuccessWithoutTokenFails(t *testing.T) {
	m, store := newTestAuth(t, authServer(http.StatusOK, map[string]any{"msg": "user created", "user": map[string]string{"id": "1"}}, nil, nil), domain.ModeRegister)

	m = fill(m, domain.Credentials{Name: "A", Email: "a@b.com", Password: "x"})
	m, out := submitAndApply(t, m)

	if out != nil {
		t.Fatalf("expected no follow-up message, got %T", out)
	}
	if m.state != authError || m.errMsg != loginFailedText {
		t.Errorf("state = %d err = %q, want authError %q", m.state, m.errMsg, loginFailedText)
	}
	if session.Active(store) {
		t.Error("no token may be persisted when the response has none")
	}
	if !strings.Contains(m.View(), loginFailedText) {
		t.Error("error text should render under the form")
	}
}

func TestAuthRejectionShowsServerDetail(t *testing.T) {
	m, store := newTestAuth(t, authServer(http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"}, nil, nil), domain.ModeLogin)

	m = fill(m, domain.Credentials{Email: "a@b.com", Password: "wrong"})
	m, out := submitAndApply(t, m)

	if out != nil {
		t.Fatalf("expected no follow-up message, got %T", out)
	}
	if m.errMsg != "Invalid credentials" {
		t.Errorf("errMsg = %q, want %q", m.errMsg, "Invalid credentials")
	}
	if session.Active(store) {
		t.Error("rejected login must not persist a token")
	}
	// Values survive the failure so the user can resubmit.
	if m.form.Email != "a@b.com" || m.form.Password != "wrong" {
		t.Errorf("form = %+v, want values retained", m.form)
	}
}

func TestAuthFailureWithoutDetailIsGeneric(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{"server error without detail", http.StatusInternalServerError, map[string]string{"error": "boom"}},
		{"malformed success body", http.StatusOK, "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestAuth(t, authServer(tt.status, tt.body, nil, nil), domain.ModeLogin)
			m = fill(m, domain.Credentials{Email: "a@b.com", Password: "x"})
			m, _ = submitAndApply(t, m)
			if m.state != authError || m.errMsg != genericErrText {
				t.Errorf("state = %d err = %q, want authError %q", m.state, m.errMsg, genericErrText)
			}
		})
	}
}

func TestAuthNetworkFailureIsGeneric(t *testing.T) {
	store := session.NewMemoryStore()
	// Nothing listens on port 1.
	m := newAuthModel(newUnreachableClient(), store, nopLog, domain.ModeLogin)

	m = fill(m, domain.Credentials{Email: "a@b.com", Password: "x"})
	m, _ = submitAndApply(t, m)
	if m.errMsg != genericErrText {
		t.Errorf("errMsg = %q, want %q", m.errMsg, genericErrText)
	}
}

func TestAuthResubmitAfterFailure(t *testing.T) {
	var calls atomic.Int32
	h := func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "T1"})
	}
	m, store := newTestAuth(t, h, domain.ModeLogin)

	m = fill(m, domain.Credentials{Email: "a@b.com", Password: "x"})
	m, _ = submitAndApply(t, m)
	if m.state != authError {
		t.Fatalf("first attempt state = %d, want authError", m.state)
	}

	m, out := submitAndApply(t, m)
	if _, ok := out.(sessionStartedMsg); !ok {
		t.Fatalf("second attempt: expected sessionStartedMsg, got %T", out)
	}
	if m.state != authIdle || m.errMsg != "" {
		t.Errorf("second attempt should leave Error, got state %d err %q", m.state, m.errMsg)
	}
	if !session.Active(store) {
		t.Error("token should be stored after the second attempt")
	}
}

func TestAuthSubmitRequiresFields(t *testing.T) {
	var calls atomic.Int32
	h := func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "T1"})
	}

	t.Run("login without password", func(t *testing.T) {
		m, _ := newTestAuth(t, h, domain.ModeLogin)
		m, _ = m.Update(runes("a@b.com"))
		m, cmd := m.Update(key("ctrl+s"))
		if cmd != nil {
			t.Fatal("submit with a missing field must not issue a request")
		}
		if m.state != authIdle {
			t.Errorf("state = %d, want authIdle", m.state)
		}
		if m.focus != fieldPassword {
			t.Errorf("focus = %d, want the empty password field", m.focus)
		}
	})

	t.Run("register without name", func(t *testing.T) {
		m, _ := newTestAuth(t, h, domain.ModeRegister)
		m.form = domain.Credentials{Email: "a@b.com", Password: "x"}
		m.focus = fieldPassword
		m, cmd := m.Update(key("enter"))
		if cmd != nil {
			t.Fatal("register without a name must not issue a request")
		}
		if m.focus != fieldName {
			t.Errorf("focus = %d, want the name field", m.focus)
		}
	})

	t.Run("login ignores empty name", func(t *testing.T) {
		m, _ := newTestAuth(t, h, domain.ModeLogin)
		m.form = domain.Credentials{Email: "a@b.com", Password: "x"}
		_, cmd := m.Update(key("ctrl+s"))
		if cmd == nil {
			t.Fatal("login does not require a name")
		}
	})

	if got := calls.Load(); got != 0 {
		t.Errorf("server saw %d requests, want 0 (commands were not run)", got)
	}
}

func TestAuthToggleTwiceRestoresRequirement(t *testing.T) {
	m, _ := newTestAuth(t, authServer(http.StatusOK, map[string]string{}, nil, nil), domain.ModeLogin)
	m.form = domain.Credentials{Email: "a@b.com", Password: "x"}
	start := m.form.Complete(m.mode)

	m, _ = m.Update(key("ctrl+r"))
	if m.form.Complete(m.mode) {
		t.Error("register mode should require a name")
	}
	m, _ = m.Update(key("ctrl+r"))

	if m.mode != domain.ModeLogin {
		t.Errorf("mode = %v, want login", m.mode)
	}
	if got := m.form.Complete(m.mode); got != start {
		t.Errorf("Complete() = %v after two toggles, want %v", got, start)
	}
	if m.form.Email != "a@b.com" || m.form.Password != "x" {
		t.Errorf("form = %+v, want email and password unchanged", m.form)
	}
}

func TestAuthToggleMovesFocusOffHiddenName(t *testing.T) {
	m, _ := newTestAuth(t, authServer(http.StatusOK, map[string]string{}, nil, nil), domain.ModeRegister)
	if m.focus != fieldName {
		t.Fatalf("register starts on name, got %d", m.focus)
	}
	m, _ = m.Update(key("ctrl+r"))
	if m.focus != fieldEmail {
		t.Errorf("focus = %d, want email once name is hidden", m.focus)
	}
	if strings.Contains(m.View(), "name") {
		t.Error("login view should not show the name field")
	}
}

func TestAuthFocusCycleSkipsHiddenName(t *testing.T) {
	m, _ := newTestAuth(t, authServer(http.StatusOK, map[string]string{}, nil, nil), domain.ModeLogin)
	m.focus = fieldPassword
	m, _ = m.Update(key("tab"))
	if m.focus != fieldEmail {
		t.Errorf("tab from password = %d, want email", m.focus)
	}
	m, _ = m.Update(key("shift+tab"))
	if m.focus != fieldPassword {
		t.Errorf("shift+tab from email = %d, want password", m.focus)
	}
	m, _ = m.Update(key("enter"))
	if m.state != authIdle {
		t.Error("enter on an incomplete form must not submit")
	}
}

func TestAuthEditingKeepsError(t *testing.T) {
	m, _ := newTestAuth(t, authServer(http.StatusOK, map[string]string{}, nil, nil), domain.ModeLogin)
	m.state = authError
	m.errMsg = "Invalid credentials"

	m, _ = m.Update(runes("z"))
	m, _ = m.Update(key("backspace"))
	if m.state != authError || m.errMsg != "Invalid credentials" {
		t.Errorf("editing cleared the error: state %d err %q", m.state, m.errMsg)
	}
}

func TestAuthIgnoresSubmitWhileSubmitting(t *testing.T) {
	m, _ := newTestAuth(t, authServer(http.StatusOK, map[string]string{"access_token": "T1"}, nil, nil), domain.ModeLogin)
	m = fill(m, domain.Credentials{Email: "a@b.com", Password: "x"})

	m, first := m.Update(key("enter"))
	if first == nil {
		t.Fatal("first submit should issue a request")
	}
	_, second := m.Update(key("ctrl+s"))
	if second != nil {
		t.Error("a second submit while one is in flight must be ignored")
	}
}

func TestAuthIgnoresForeignResult(t *testing.T) {
	m, store := newTestAuth(t, authServer(http.StatusOK, map[string]string{}, nil, nil), domain.ModeLogin)
	m.state = authSubmitting

	m, cmd := m.Update(authResultMsg{mount: uuid.New(), resp: &domain.AuthResponse{AccessToken: "T9"}})
	if cmd != nil || session.Active(store) {
		t.Error("a result from another mount must be ignored")
	}
	if m.state != authSubmitting {
		t.Errorf("state = %d, want unchanged", m.state)
	}
}

func TestAuthViewMasksPassword(t *testing.T) {
	m, _ := newTestAuth(t, authServer(http.StatusOK, map[string]string{}, nil, nil), domain.ModeLogin)
	m.form = domain.Credentials{Email: "a@b.com", Password: "hunter2"}

	view := m.View()
	if strings.Contains(view, "hunter2") {
		t.Error("password must not be rendered in clear")
	}
	if !strings.Contains(view, "a@b.com") {
		t.Error("email should be rendered")
	}
	if !strings.Contains(view, "Login") {
		t.Error("login title should be rendered")
	}
}
