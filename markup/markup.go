// Package markup inserts inline styling markers around a text selection and
// renders note content to HTML.
package markup

import (
	"fmt"
	"strings"
)

type Style string

const (
	Bold       Style = "bold"
	Italic     Style = "italic"
	Highlight  Style = "highlight"
	Uppercase  Style = "uppercase"
	Lowercase  Style = "lowercase"
	Heading1   Style = "h1"
	Heading2   Style = "h2"
	Heading3   Style = "h3"
	ColorRed   Style = "color-red"
	ColorBlue  Style = "color-blue"
	ColorGreen Style = "color-green"
)

var styles = []Style{
	Bold, Italic, Highlight,
	Uppercase, Lowercase,
	Heading1, Heading2, Heading3,
	ColorRed, ColorBlue, ColorGreen,
}

// Styles lists every supported style in toolbar order.
func Styles() []Style {
	return append([]Style(nil), styles...)
}

func ParseStyle(s string) (Style, error) {
	for _, st := range styles {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}

// ApplyStyle returns buffer with the runes in [start, end) transformed by
// style. Offsets count runes, not bytes and not the UTF-16 code units a
// browser textarea reports in selectionStart/selectionEnd: a client must
// convert them first when the text holds characters outside the BMP, such as
// emoji. Offsets are clamped to the buffer and a reversed
// range is swapped. An empty selection or an unknown style returns buffer
// unchanged. Applying a style twice nests the markers.
func ApplyStyle(buffer string, start, end int, style Style) string {
	runes := []rune(buffer)
	start, end = clamp(start, len(runes)), clamp(end, len(runes))
	if start > end {
		start, end = end, start
	}
	if start == end {
		return buffer
	}
	operand := string(runes[start:end])
	styled, ok := transform(operand, style)
	if !ok {
		return buffer
	}
	var b strings.Builder
	b.Grow(len(buffer) + len(styled) - len(operand))
	b.WriteString(string(runes[:start]))
	b.WriteString(styled)
	b.WriteString(string(runes[end:]))
	return b.String()
}

func transform(s string, style Style) (string, bool) {
	switch style {
	case Bold:
		return "**" + s + "**", true
	case Italic:
		return "*" + s + "*", true
	case Highlight:
		return "==" + s + "==", true
	case Uppercase:
		return strings.ToUpper(s), true
	case Lowercase:
		return strings.ToLower(s), true
	// Headings only make sense at the start of a line; that is left to the caller.
	case Heading1:
		return "# " + s, true
	case Heading2:
		return "## " + s, true
	case Heading3:
		return "### " + s, true
	case ColorRed:
		return colorSpan("red", s), true
	case ColorBlue:
		return colorSpan("blue", s), true
	case ColorGreen:
		return colorSpan("green", s), true
	}
	return "", false
}

func colorSpan(color, s string) string {
	return `<span style="color: ` + color + `">` + s + `</span>`
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
