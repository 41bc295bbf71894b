package tui

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naveenspark/bankdash/internal/session"
	"github.com/naveenspark/bankdash/pkg/client"
	"github.com/naveenspark/bankdash/pkg/domain"
)

const (
	loadingText    = "Loading dashboard..."
	loadFailedText = "Failed to load"

	// Below this width the three panels are stacked instead of placed side by side.
	sideBySideMinWidth = 90
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// fetchState tags the dashboard's single fetch.
type fetchState int

const (
	fetchLoading fetchState = iota
	fetchLoaded
	fetchFailed
)

// -- messages --

type dashboardLoadedMsg struct {
	mount uuid.UUID
	snap  *domain.DashboardSnapshot
	err   error
}

type snapshotCopiedMsg struct {
	mount uuid.UUID
	err   error
}

// sessionEndedMsg asks the gate to return to the authenticator.
type sessionEndedMsg struct{}

// -- model --

type dashboardModel struct {
	client *client.Client
	store  session.Store
	log    *zap.Logger

	mount  uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	state   fetchState
	snap    *domain.DashboardSnapshot
	failMsg string
	status  string
	width   int
	height  int
}

func newDashboardModel(c *client.Client, store session.Store, log *zap.Logger) dashboardModel {
	ctx, cancel := context.WithCancel(context.Background())
	return dashboardModel{
		client: c,
		store:  store,
		log:    log,
		mount:  uuid.New(),
		ctx:    ctx,
		cancel: cancel,
		state:  fetchLoading,
	}
}

// Init issues the one fetch of this mount.
func (m dashboardModel) Init() tea.Cmd {
	c, ctx, mount := m.client, m.ctx, m.mount
	return func() tea.Msg {
		snap, err := c.DashboardSummary(ctx)
		return dashboardLoadedMsg{mount: mount, snap: snap, err: err}
	}
}

// teardown cancels the fetch if it is still in flight.
func (m dashboardModel) teardown() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case dashboardLoadedMsg:
		if msg.mount != m.mount || m.state != fetchLoading {
			return m, nil
		}
		if msg.err != nil || msg.snap == nil {
			m.state = fetchFailed
			m.failMsg = loadFailedText
			m.log.Warn("load dashboard", zap.Error(msg.err))
			return m, nil
		}
		m.state = fetchLoaded
		m.snap = msg.snap

	case snapshotCopiedMsg:
		if msg.mount != m.mount {
			return m, nil
		}
		if msg.err != nil {
			m.status = "copy failed"
			m.log.Debug("copy snapshot", zap.Error(msg.err))
		} else {
			m.status = "copied"
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "o":
			return m.signOut()
		case "c":
			return m.copySnapshot()
		}
	}
	return m, nil
}

// signOut clears the stored session and hands control back to the gate.
// It works in every state, including while the fetch is still pending.
func (m dashboardModel) signOut() (dashboardModel, tea.Cmd) {
	m.teardown()
	if err := m.store.Remove(session.TokenKey); err != nil {
		m.log.Warn("remove session token", zap.Error(err))
	}
	return m, func() tea.Msg { return sessionEndedMsg{} }
}

func (m dashboardModel) copySnapshot() (dashboardModel, tea.Cmd) {
	if m.state != fetchLoaded {
		return m, nil
	}
	text := snapshotText(m.snap)
	mount := m.mount
	m.status = ""
	return m, func() tea.Msg {
		return snapshotCopiedMsg{mount: mount, err: writeClipboard(text)}
	}
}

// snapshotText renders the whole snapshot as indented JSON.
func snapshotText(snap *domain.DashboardSnapshot) string {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func (m dashboardModel) helpKeys() string {
	keys := []string{}
	if m.state == fetchLoaded {
		keys = append(keys, helpEntry("c", "copy"))
	}
	keys = append(keys, helpEntry("o", "sign out"), helpEntry("q", "quit"))
	return strings.Join(keys, "  ")
}

func (m dashboardModel) View() string {
	if m.state == fetchLoading {
		return "\n " + dimStyle.Render(loadingText)
	}

	var b strings.Builder
	heading := titleStyle.Render("Banking Dashboard")
	if m.status != "" {
		heading += "  " + okStyle.Render(m.status)
	}
	b.WriteString("\n " + heading + "\n\n")

	if m.state == fetchFailed {
		notice := cardStyle().BorderForeground(errorStyle.GetForeground()).
			Render(errorStyle.Render(m.failMsg))
		b.WriteString(indent(notice, " "))
		return b.String()
	}

	panels := []struct {
		title string
		doc   json.RawMessage
	}{
		{"Account Summary", m.snap.AccountSummary},
		{"Transactions (7 days)", m.snap.TransactionTrends},
		{"Loan Status", m.snap.LoanRepaymentStatus},
	}

	sideBySide := m.width >= sideBySideMinWidth
	style := cardStyle()
	if sideBySide {
		// Border takes two columns per panel, plus one column of margin on the left.
		style = style.Width((m.width-1)/len(panels) - 2)
	} else if m.width > 4 {
		style = style.Width(m.width - 3)
	}

	rendered := make([]string, 0, len(panels))
	for _, p := range panels {
		body := panelTitleStyle.Render(p.title) + "\n" + jsonStyle.Render(prettyJSON(p.doc))
		rendered = append(rendered, style.Render(body))
	}

	if sideBySide {
		b.WriteString(indent(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " "))
	} else {
		b.WriteString(indent(lipgloss.JoinVertical(lipgloss.Left, rendered...), " "))
	}
	return b.String()
}

// indent prefixes every line of s.
func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
