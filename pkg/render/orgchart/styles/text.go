package styles

import (
	"bytes"
	"encoding/xml"
)

const (
	charWidth = 0.58 // average glyph width relative to font size
	minChars  = 3
)

// Truncate shortens s so that it fits into width at the given font size.
func Truncate(s string, width, fontSize float64) string {
	maxChars := max(minChars, int(width/(fontSize*charWidth)))
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

// Escape returns s with XML special characters escaped.
func Escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
