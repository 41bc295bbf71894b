package tui

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// prettyJSON re-indents a raw JSON document with two spaces for display.
// The content is never interpreted. An absent document renders as null and
// text that is not valid JSON is shown as-is.
func prettyJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// mask hides a secret behind one bullet per rune.
func mask(s string) string {
	return strings.Repeat("•", utf8.RuneCountInString(s))
}
