package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naveenspark/bankdash/internal/session"
	"github.com/naveenspark/bankdash/pkg/client"
	"github.com/naveenspark/bankdash/pkg/domain"
)

const (
	loginFailedText = "Login failed"
	genericErrText  = "Error"
)

type authState int

const (
	authIdle authState = iota
	authSubmitting
	authError
)

type authField int

const (
	fieldName authField = iota
	fieldEmail
	fieldPassword
	numAuthFields
)

// -- messages --

// authResultMsg carries the outcome of one credentials submission.
type authResultMsg struct {
	mount uuid.UUID
	resp  *domain.AuthResponse
	err   error
}

// sessionStartedMsg asks the gate to switch to the dashboard.
type sessionStartedMsg struct{}

// -- model --

type authModel struct {
	client *client.Client
	store  session.Store
	log    *zap.Logger

	mount  uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	mode   domain.Mode
	form   domain.Credentials
	focus  authField
	state  authState
	errMsg string
	width  int
}

func newAuthModel(c *client.Client, store session.Store, log *zap.Logger, mode domain.Mode) authModel {
	ctx, cancel := context.WithCancel(context.Background())
	return authModel{
		client: c,
		store:  store,
		log:    log,
		mount:  uuid.New(),
		ctx:    ctx,
		cancel: cancel,
		mode:   mode,
		focus:  firstField(mode),
	}
}

func firstField(mode domain.Mode) authField {
	if mode == domain.ModeRegister {
		return fieldName
	}
	return fieldEmail
}

func (m authModel) Init() tea.Cmd {
	return nil
}

// teardown abandons any submission still in flight.
func (m authModel) teardown() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case authResultMsg:
		if msg.mount != m.mount || m.state != authSubmitting {
			return m, nil
		}
		return m.applyResult(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m authModel) handleKey(msg tea.KeyMsg) (authModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "ctrl+r":
		m.toggleMode()
		return m, nil
	case "enter":
		if m.focus == fieldPassword {
			return m.submit()
		}
		m.focus = m.nextField(1)
		return m, nil
	case "tab", "down":
		m.focus = m.nextField(1)
		return m, nil
	case "shift+tab", "up":
		m.focus = m.nextField(-1)
		return m, nil
	}
	if f := m.field(m.focus); f != nil {
		*f = editKey(*f, msg)
	}
	return m, nil
}

// field returns the form value backing f.
func (m *authModel) field(f authField) *string {
	switch f {
	case fieldName:
		return &m.form.Name
	case fieldEmail:
		return &m.form.Email
	case fieldPassword:
		return &m.form.Password
	}
	return nil
}

// visible reports whether f is shown in the current mode.
func (m authModel) visible(f authField) bool {
	return f != fieldName || m.mode == domain.ModeRegister
}

// nextField steps focus by dir, skipping hidden fields and wrapping around.
func (m authModel) nextField(dir int) authField {
	f := m.focus
	for i := 0; i < int(numAuthFields); i++ {
		f = (f + authField(dir) + numAuthFields) % numAuthFields
		if m.visible(f) {
			return f
		}
	}
	return m.focus
}

// toggleMode flips between login and register. Entered values are kept.
func (m *authModel) toggleMode() {
	m.mode = m.mode.Toggle()
	if !m.visible(m.focus) {
		m.focus = fieldEmail
	}
}

func (m authModel) submit() (authModel, tea.Cmd) {
	if m.state == authSubmitting {
		return m, nil
	}
	switch m.form.MissingField(m.mode) {
	case "name":
		m.focus = fieldName
		return m, nil
	case "email":
		m.focus = fieldEmail
		return m, nil
	case "password":
		m.focus = fieldPassword
		return m, nil
	}

	m.state = authSubmitting
	m.errMsg = ""

	c, ctx, mount, mode, creds := m.client, m.ctx, m.mount, m.mode, m.form
	return m, func() tea.Msg {
		resp, err := c.Authenticate(ctx, mode, creds)
		return authResultMsg{mount: mount, resp: resp, err: err}
	}
}

func (m authModel) applyResult(msg authResultMsg) (authModel, tea.Cmd) {
	if msg.err != nil {
		m.state = authError
		m.errMsg = authErrorText(msg.err)
		m.log.Debug("authentication failed", zap.Stringer("mode", m.mode), zap.Error(msg.err))
		return m, nil
	}

	var tok string
	ok := false
	if msg.resp != nil {
		tok, ok = msg.resp.SessionToken()
	}
	if !ok {
		m.state = authError
		m.errMsg = loginFailedText
		m.log.Warn("authentication succeeded without a token", zap.Stringer("mode", m.mode))
		return m, nil
	}

	if err := m.store.Set(session.TokenKey, tok); err != nil {
		m.state = authError
		m.errMsg = genericErrText
		m.log.Warn("persist session token", zap.Error(err))
		return m, nil
	}

	m.state = authIdle
	m.errMsg = ""
	return m, func() tea.Msg { return sessionStartedMsg{} }
}

// authErrorText resolves a failed submission to the text shown under the form:
// the server's detail when it sent one, otherwise a generic message.
func authErrorText(err error) string {
	if detail, ok := client.Detail(err); ok {
		return detail
	}
	return genericErrText
}

func (m authModel) title() string {
	if m.mode == domain.ModeRegister {
		return "Register"
	}
	return "Login"
}

func (m authModel) View() string {
	var b strings.Builder

	b.WriteString(centerLine(titleStyle.Render(m.title()), 36) + "\n\n")

	labels := [numAuthFields]string{"name", "email", "password"}
	for f := authField(0); f < numAuthFields; f++ {
		if !m.visible(f) {
			continue
		}
		value := *m.field(f)
		if f == fieldPassword {
			value = mask(value)
		}

		cursor := "  "
		label := metaStyle.Render(fmt.Sprintf("%-9s", labels[f]))
		if f == m.focus {
			cursor = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(fmt.Sprintf("%-9s", labels[f]))
			value += accentStyle.Render("█")
		} else if value == "" {
			value = inputPlaceholderStyle.Render("required")
		} else {
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, label, value)
	}

	b.WriteString("\n")
	switch m.state {
	case authSubmitting:
		b.WriteString(dimStyle.Render("  submitting..."))
	case authError:
		b.WriteString("  " + errorStyle.Render(m.errMsg))
	default:
		b.WriteString("  " + helpEntry("enter", strings.ToLower(m.title())))
	}
	b.WriteString("\n\n")

	if m.mode == domain.ModeRegister {
		b.WriteString("  " + helpEntry("ctrl+r", "already have an account?"))
	} else {
		b.WriteString("  " + helpEntry("ctrl+r", "create account"))
	}

	card := cardStyle().Padding(1, 2).Width(44).Render(b.String())
	if m.width <= 0 {
		return "\n" + card
	}
	var out strings.Builder
	for _, line := range strings.Split(card, "\n") {
		out.WriteString(centerLine(line, m.width) + "\n")
	}
	return "\n" + strings.TrimRight(out.String(), "\n")
}
