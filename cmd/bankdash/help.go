package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("B A N K D A S H")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Sign in, look at your accounts, sign out.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"bankdash", "Open the dashboard (interactive TUI)"},
		{"bankdash login", "Sign in from the command line"},
		{"bankdash login --register", "Create an account and sign in"},
		{"bankdash logout", "Clear the stored session"},
		{"bankdash status", "Show the stored session"},
		{"bankdash docs", "Open the API docs in a browser"},
		{"bankdash version", "Show version"},
		{"bankdash help", "You are here"},
	}
	flags := []struct{ flag, desc string }{
		{"-api URL", "API base URL (BANKDASH_API_URL)"},
		{"-state-dir DIR", "where the session lives (BANKDASH_STATE_DIR)"},
		{"-log-file PATH", "write debug logs here (BANKDASH_LOG_FILE)"},
		{"-config PATH", "YAML config file (BANKDASH_CONFIG)"},
		{"-timeout DUR", "per-request timeout, e.g. 10s"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprint(w, "\n  Flags:\n")
	for _, f := range flags {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", f.flag)), descStyle.Render(f.desc))
	}
	fmt.Fprintln(w)
}
