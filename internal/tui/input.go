package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes accepted in a form field.
const maxInputLen = 256

// editKey applies a keystroke to a single-line form field.
// Backspace removes the last rune (rune-aware). Printable runes, including a
// pasted run, are appended up to maxInputLen. Alt-chords and every other key
// leave the text unchanged.
func editKey(text string, msg tea.KeyMsg) string {
	if msg.Alt {
		return text
	}
	switch msg.Type {
	case tea.KeyBackspace:
		if text == "" {
			return text
		}
		runes := []rune(text)
		return string(runes[:len(runes)-1])
	case tea.KeySpace:
		return appendRunes(text, []rune{' '})
	case tea.KeyRunes:
		return appendRunes(text, msg.Runes)
	}
	return text
}

// appendRunes appends the printable runes of rs, dropping control characters
// such as newlines that arrive with a paste.
func appendRunes(text string, rs []rune) string {
	n := utf8.RuneCountInString(text)
	var b strings.Builder
	b.WriteString(text)
	for _, r := range rs {
		if n >= maxInputLen {
			break
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}
