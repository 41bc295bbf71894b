package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderShimmerLogoHasWordmark(t *testing.T) {
	for _, frame := range []int{0, 1, 57, 1000} {
		out := renderShimmerLogo(frame)
		for _, r := range wordmark {
			if !strings.ContainsRune(out, r) {
				t.Errorf("frame %d: logo missing %q", frame, r)
			}
		}
		// Letters are spaced two columns apart.
		if got, want := lipgloss.Width(out), len(wordmark)*3-2; got != want {
			t.Errorf("frame %d: width = %d, want %d", frame, got, want)
		}
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-3, 0},
		{0, 0},
		{127.9, 127},
		{255, 255},
		{300, 255},
	}
	for _, tt := range tests {
		if got := clampByte(tt.in); got != tt.want {
			t.Errorf("clampByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHelpEntry(t *testing.T) {
	out := helpEntry("ctrl+r", "mode")
	if !strings.Contains(out, "ctrl+r") || !strings.Contains(out, "mode") {
		t.Errorf("helpEntry() = %q", out)
	}
}

func TestCenterLine(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"ab", 6, "  ab"},
		{"abc", 6, " abc"},
		{"abcdef", 4, "abcdef"},
		{"x", 0, "x"},
	}
	for _, tt := range tests {
		if got := centerLine(tt.s, tt.width); got != tt.want {
			t.Errorf("centerLine(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}
