package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/naveenspark/bankdash/internal/browser"
	"github.com/naveenspark/bankdash/internal/config"
	"github.com/naveenspark/bankdash/internal/logging"
	"github.com/naveenspark/bankdash/internal/session"
	"github.com/naveenspark/bankdash/internal/tui"
	"github.com/naveenspark/bankdash/pkg/client"
	"github.com/naveenspark/bankdash/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// openBrowser is swapped out in tests.
var openBrowser = browser.Open

// Texts shown when a headless login fails.
const (
	loginFailedText = "Login failed"
	genericErrText  = "Error"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles everything a subcommand needs.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *session.FileStore
	api   *client.Client
	in    io.Reader
	out   io.Writer
}

// splitCommand separates a leading subcommand from the flags that follow it.
// An empty command means the interactive dashboard.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", args
	}
	return args[0], args[1:]
}

// takeFlag removes every occurrence of a boolean flag written as -name or --name.
func takeFlag(args []string, name string) (bool, []string) {
	found := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == "-"+name || a == "--"+name {
			found = true
			continue
		}
		rest = append(rest, a)
	}
	return found, rest
}

func run(args []string, in io.Reader, out io.Writer, getenv func(string) string) error {
	cmd, rest := splitCommand(args)

	switch cmd {
	case "version", "--version", "-v":
		fmt.Fprintln(out, "bankdash "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	}

	register := false
	if cmd == "login" {
		register, rest = takeFlag(rest, "register")
	}

	cfg, positional, err := config.Load(rest, getenv)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected argument %q", positional[0])
	}

	log, err := logging.NewFile(cfg.LogFile, true)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	store := session.NewFileStore(cfg.StateDir)
	e := &env{
		cfg:   cfg,
		log:   log,
		store: store,
		api: client.New(cfg.APIURL, session.TokenFunc(store),
			client.WithLogger(log), client.WithTimeout(cfg.RequestTimeout)),
		in:  in,
		out: out,
	}

	switch cmd {
	case "":
		return runTUI(e)
	case "login":
		mode := domain.ModeLogin
		if register {
			mode = domain.ModeRegister
		}
		return runLogin(e, mode)
	case "logout":
		return runLogout(e)
	case "status":
		return runStatus(e)
	case "docs":
		return runDocs(e)
	default:
		return fmt.Errorf("unknown command %q (see bankdash help)", cmd)
	}
}

func runTUI(e *env) error {
	e.log.Info("starting", zap.String("api", e.api.BaseURL()), zap.String("version", version))
	p := tea.NewProgram(tui.NewApp(e.api, e.store, e.log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// prompter reads answers line by line, and the password without echo when
// stdin is a terminal.
type prompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, r: bufio.NewReader(in), out: out}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) password() (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, "password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return p.line("password")
}

func runLogin(e *env, mode domain.Mode) error {
	p := newPrompter(e.in, e.out)

	var creds domain.Credentials
	var err error
	if mode == domain.ModeRegister {
		if creds.Name, err = p.line("name"); err != nil {
			return err
		}
	}
	if creds.Email, err = p.line("email"); err != nil {
		return err
	}
	if creds.Password, err = p.password(); err != nil {
		return err
	}
	if field := creds.MissingField(mode); field != "" {
		return fmt.Errorf("%s is required", field)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout+5*time.Second)
	defer cancel()

	tok, failure := authenticate(ctx, e.api, mode, creds)
	if failure != "" {
		e.log.Debug("headless authentication failed", zap.Stringer("mode", mode), zap.String("reason", failure))
		return errors.New(failure)
	}
	if err := e.store.Set(session.TokenKey, tok); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintln(e.out, "Signed in. Run bankdash to open the dashboard.")
	return nil
}

// authenticate returns the session token, or the text to show when the
// attempt did not produce one.
func authenticate(ctx context.Context, c *client.Client, mode domain.Mode, creds domain.Credentials) (string, string) {
	resp, err := c.Authenticate(ctx, mode, creds)
	if err != nil {
		if detail, ok := client.Detail(err); ok {
			return "", detail
		}
		return "", genericErrText
	}
	tok, ok := resp.SessionToken()
	if !ok {
		return "", loginFailedText
	}
	return tok, ""
}

func runLogout(e *env) error {
	if !session.Active(e.store) {
		fmt.Fprintln(e.out, "Already signed out.")
		return nil
	}
	if err := e.store.Remove(session.TokenKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	fmt.Fprintln(e.out, "Signed out.")
	return nil
}

func runStatus(e *env) error {
	fmt.Fprintf(e.out, "api:     %s\n", e.api.BaseURL())
	tok, ok, err := e.store.Get(session.TokenKey)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if !ok {
		fmt.Fprintln(e.out, "session: none")
		return nil
	}
	fmt.Fprintln(e.out, "session: active")

	info, ok := session.Describe(tok)
	if !ok {
		return nil
	}
	if info.Subject != "" {
		fmt.Fprintf(e.out, "subject: %s\n", info.Subject)
	}
	if info.Email != "" {
		fmt.Fprintf(e.out, "email:   %s\n", info.Email)
	}
	if info.Role != "" {
		fmt.Fprintf(e.out, "role:    %s\n", info.Role)
	}
	if !info.ExpiresAt.IsZero() {
		note := ""
		if info.ExpiresAt.Before(time.Now()) {
			note = " (expired)"
		}
		fmt.Fprintf(e.out, "expires: %s%s\n", info.ExpiresAt.Local().Format(time.RFC1123), note)
	}
	return nil
}

func runDocs(e *env) error {
	url := e.api.BaseURL() + "/docs"
	if err := openBrowser(url); err != nil {
		e.log.Debug("open browser", zap.Error(err))
		fmt.Fprintln(e.out, url)
	}
	return nil
}
