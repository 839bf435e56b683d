package quesimg

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

const tabSize = 8

// Line is one wrapped display line with its measured size in pixels.
type Line struct {
	Text   string
	Width  int
	Height int
}

// LineBlock is the ordered list of lines produced from one text body.
type LineBlock []Line

// Height is the stacked height of all lines.
func (b LineBlock) Height() int {
	total := 0
	for _, ln := range b {
		total += ln.Height
	}
	return total
}

// Texts returns the line strings in order.
func (b LineBlock) Texts() []string {
	out := make([]string, len(b))
	for i, ln := range b {
		out[i] = ln.Text
	}
	return out
}

type WrapOptions struct {
	// BreakLongWords splits words longer than the wrap width instead of
	// letting them overflow.
	BreakLongWords bool
}

// WrapText wraps text to at most wrapWidth characters per line. Hard line
// breaks in text are kept and wrapping happens independently inside each
// segment. Blank segments produce no lines. A word longer than wrapWidth is
// emitted on its own line unbroken. A wrapWidth <= 0 disables wrapping.
func WrapText(text string, wrapWidth int) []string {
	return WrapTextWith(text, wrapWidth, WrapOptions{})
}

// WrapTextWith is WrapText with options.
func WrapTextWith(text string, wrapWidth int, opts WrapOptions) []string {
	var lines []string
	for _, seg := range splitHardLines(text) {
		lines = append(lines, wrapSegment(normalizeWhitespace(seg), wrapWidth, opts.BreakLongWords)...)
	}
	return lines
}

func isHardBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// splitHardLines splits on every line boundary; "\r\n" counts as one.
func splitHardLines(s string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isHardBreak(r) {
			i += size
			continue
		}
		segs = append(segs, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		segs = append(segs, s[start:])
	}
	return segs
}

// isBreakSpace reports the ASCII whitespace lines may break at. Other
// Unicode spaces such as U+00A0 stay part of the word.
func isBreakSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// normalizeWhitespace expands tabs and turns the remaining ASCII whitespace
// into a plain space.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch {
		case r == '\t':
			n := tabSize - col%tabSize
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case isBreakSpace(r):
			b.WriteByte(' ')
			col++
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

func splitTextPreserveSpaces(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	lastType := 0 // 0 unknown, 1 space, 2 non-space
	for _, r := range s {
		typ := 2
		if isBreakSpace(r) {
			typ = 1
		}
		if lastType == 0 {
			current.WriteRune(r)
			lastType = typ
			continue
		}
		if typ == lastType {
			current.WriteRune(r)
			continue
		}
		parts = append(parts, current.String())
		current.Reset()
		current.WriteRune(r)
		lastType = typ
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isSpaceToken(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return isBreakSpace(r)
}

// wrapSegment greedily fills lines from word and space tokens. Space tokens
// at a break are dropped, as is leading space on continuation lines.
func wrapSegment(seg string, width int, breakLong bool) []string {
	var lines []string
	var current []string
	currentLen := 0

	flush := func() {
		for len(current) > 0 && isSpaceToken(current[len(current)-1]) {
			current = current[:len(current)-1]
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, ""))
		}
		current = current[:0]
		currentLen = 0
	}

	for _, tok := range splitTextPreserveSpaces(seg) {
		n := utf8.RuneCountInString(tok)
		if isSpaceToken(tok) {
			if len(current) == 0 && len(lines) > 0 {
				continue
			}
			if width > 0 && currentLen+n > width {
				flush()
				continue
			}
			current = append(current, tok)
			currentLen += n
			continue
		}
		if width > 0 && currentLen+n > width && currentLen > 0 {
			flush()
		}
		if width > 0 && n > width && breakLong {
			pieces := breakLongToken(tok, width)
			lines = append(lines, pieces[:len(pieces)-1]...)
			tok = pieces[len(pieces)-1]
			n = utf8.RuneCountInString(tok)
		}
		current = append(current, tok)
		currentLen += n
	}
	flush()
	return lines
}

// breakLongToken cuts token into pieces of at most width runes.
func breakLongToken(token string, width int) []string {
	var parts []string
	var current strings.Builder
	count := 0
	for _, r := range token {
		if count == width {
			parts = append(parts, current.String())
			current.Reset()
			count = 0
		}
		current.WriteRune(r)
		count++
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	if len(parts) == 0 {
		parts = append(parts, token)
	}
	return parts
}

// LineHeight is the vertical advance of one line set in face. It never
// undercuts the ascent plus descent so consecutive lines cannot overlap.
func LineHeight(face font.Face) int {
	m := face.Metrics()
	h := m.Height.Ceil()
	if ad := (m.Ascent + m.Descent).Ceil(); ad > h {
		h = ad
	}
	return h
}

// MeasureLine measures s in face.
func MeasureLine(face font.Face, s string) Line {
	return Line{
		Text:   s,
		Width:  font.MeasureString(face, s).Ceil(),
		Height: LineHeight(face),
	}
}

// MeasureTotalHeight sums the per-line heights of lines in face.
func MeasureTotalHeight(lines []string, face font.Face) int {
	total := 0
	for _, ln := range lines {
		total += MeasureLine(face, ln).Height
	}
	return total
}

// Layout wraps text and measures every resulting line.
func Layout(text string, wrapWidth int, face font.Face, opts WrapOptions) LineBlock {
	wrapped := WrapTextWith(text, wrapWidth, opts)
	block := make(LineBlock, 0, len(wrapped))
	for _, ln := range wrapped {
		block = append(block, MeasureLine(face, ln))
	}
	return block
}
