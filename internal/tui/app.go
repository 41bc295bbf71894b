package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/bankdash/internal/session"
	"github.com/naveenspark/bankdash/pkg/client"
	"github.com/naveenspark/bankdash/pkg/domain"
)

// App is the root Bubbletea model. It is the session gate: exactly one of
// the authenticator or the dashboard is mounted, chosen by sessionActive.
type App struct {
	client *client.Client
	store  session.Store
	log    *zap.Logger

	sessionActive bool
	lastMode      domain.Mode
	auth          authModel
	dash          dashboardModel

	width  int
	height int
	frame  int // logo shimmer animation frame
}

// NewApp creates the TUI. Whether a session is active is decided once, here,
// by the presence of a stored token; its contents are never inspected.
func NewApp(c *client.Client, store session.Store, log *zap.Logger) App {
	if log == nil {
		log = zap.NewNop()
	}
	a := App{
		client:        c,
		store:         store,
		log:           log,
		sessionActive: session.Active(store),
		lastMode:      domain.ModeLogin,
	}
	if a.sessionActive {
		a.dash = newDashboardModel(c, store, log)
	} else {
		a.auth = newAuthModel(c, store, log, a.lastMode)
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.sessionActive {
		return tea.Batch(shimmerTickCmd(), a.dash.Init())
	}
	return tea.Batch(shimmerTickCmd(), a.auth.Init())
}

// activate mounts a fresh dashboard after a successful authentication.
func (a App) activate() (App, tea.Cmd) {
	if a.sessionActive {
		return a, nil
	}
	a.lastMode = a.auth.mode
	a.auth.teardown()
	a.auth = authModel{}
	a.sessionActive = true
	a.dash = newDashboardModel(a.client, a.store, a.log)
	a.dash, _ = a.dash.Update(a.bodySize())
	a.log.Info("session started")
	return a, a.dash.Init()
}

// deactivate unmounts the dashboard after sign-out.
func (a App) deactivate() (App, tea.Cmd) {
	if !a.sessionActive {
		return a, nil
	}
	a.dash.teardown()
	a.dash = dashboardModel{}
	a.sessionActive = false
	a.auth = newAuthModel(a.client, a.store, a.log, a.lastMode)
	a.auth, _ = a.auth.Update(a.bodySize())
	a.log.Info("session ended")
	return a, a.auth.Init()
}

// bodySize is the area left for the mounted view below the header and above the help bar.
func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + help(1) = 3 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 3}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.sessionActive {
			a.dash, _ = a.dash.Update(a.bodySize())
		} else {
			a.auth, _ = a.auth.Update(a.bodySize())
		}
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case sessionStartedMsg:
		return a.activate()

	case sessionEndedMsg:
		return a.deactivate()

	case authResultMsg:
		if a.sessionActive || msg.mount != a.auth.mount {
			a.log.Debug("dropping stale authentication result")
			return a, nil
		}

	case dashboardLoadedMsg:
		if !a.sessionActive || msg.mount != a.dash.mount {
			a.log.Debug("dropping stale dashboard result")
			return a, nil
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.isEditing() && msg.String() == "q" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	if a.sessionActive {
		a.dash, cmd = a.dash.Update(msg)
	} else {
		a.auth, cmd = a.auth.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether plain keys belong to a text field.
func (a App) isEditing() bool {
	return !a.sessionActive
}

func (a App) View() string {
	header := centerLine(renderShimmerLogo(a.frame), a.width) + "\n"

	var body, help string
	if a.sessionActive {
		body = a.dash.View()
		help = " " + a.dash.helpKeys()
	} else {
		body = a.auth.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("enter", "submit") + "  " +
			helpEntry("ctrl+r", "mode") + "  " + helpEntry("ctrl+c", "quit")
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-3), "\n")
	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}
