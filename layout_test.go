package quesimg

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, nil},
		{"whitespace only", "   \t ", 10, nil},
		{"fits", "Hello world", 50, []string{"Hello world"}},
		{"greedy", "the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"hard breaks", "a\nb\nc", 10, []string{"a", "b", "c"}},
		{"blank lines dropped", "line one\n\n\nline two", 20, []string{"line one", "line two"}},
		{"mixed line endings", "one\r\ntwo\rthree\n", 10, []string{"one", "two", "three"}},
		{"long word overflows", "supercalifragilistic word", 5, []string{"supercalifragilistic", "word"}},
		{"leading space kept", "  indented", 20, []string{"  indented"}},
		{"trailing space dropped", "trailing   ", 20, []string{"trailing"}},
		{"inner spaces kept", "a  b", 10, []string{"a  b"}},
		{"tab expanded", "tab\tx", 20, []string{"tab     x"}},
		{"no wrap", "a b c d", 0, []string{"a b c d"}},
		{"continuation drops leading space", "aaaa    bbbb", 5, []string{"aaaa", "bbbb"}},
		{"no-break space joins words", "a\u00a0b c", 3, []string{"a\u00a0b", "c"}},
		{"no-break space kept", "x\u00a0\u00a0y", 10, []string{"x\u00a0\u00a0y"}},
		{"no-break space only", "\u00a0", 10, []string{"\u00a0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("WrapText(%q, %d) mismatch (-want +got):\n%s", tt.text, tt.width, diff)
			}
		})
	}
}

func TestWrapTextBreakLongWords(t *testing.T) {
	opts := WrapOptions{BreakLongWords: true}
	tests := []struct {
		text string
		want []string
	}{
		{"abcdefghij", []string{"abcd", "efgh", "ij"}},
		{"ab abcdefghij", []string{"ab", "abcd", "efgh", "ij"}},
		{"abcd", []string{"abcd"}},
	}
	for _, tt := range tests {
		got := WrapTextWith(tt.text, 4, opts)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("WrapTextWith(%q) mismatch (-want +got):\n%s", tt.text, diff)
		}
	}
}

func TestWrapTextKeepsHardBreaks(t *testing.T) {
	segments := []string{
		"What is the capital city of France and why is it famous?",
		"Paris",
		"A city with a very long history stretching back thousands of years",
	}
	for _, width := range []int{5, 12, 30, 200} {
		var want []string
		for _, seg := range segments {
			want = append(want, WrapText(seg, width)...)
		}
		got := WrapText(strings.Join(segments, "\n"), width)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("width %d: segments merged across a hard break (-want +got):\n%s", width, diff)
		}
		for _, ln := range got {
			if strings.ContainsAny(ln, "\r\n") {
				t.Errorf("width %d: line %q contains a line break", width, ln)
			}
		}
		// no characters lost or reordered
		var words []string
		for _, ln := range got {
			words = append(words, strings.Fields(ln)...)
		}
		if diff := cmp.Diff(strings.Fields(strings.Join(segments, " ")), words); diff != "" {
			t.Errorf("width %d: words changed (-want +got):\n%s", width, diff)
		}
	}
}

func TestWrapTextSingleLineFits(t *testing.T) {
	for _, s := range []string{"x", "Hello world", "  two  spaces", "exactly ten"} {
		got := WrapText(s, len(s))
		if diff := cmp.Diff([]string{s}, got); diff != "" {
			t.Errorf("WrapText(%q) mismatch (-want +got):\n%s", s, diff)
		}
	}
}

func TestMeasureTotalHeight(t *testing.T) {
	ff, err := DefaultFont(20)
	if err != nil {
		t.Fatalf("default font: %v", err)
	}
	if got := MeasureTotalHeight(nil, ff.Face); got != 0 {
		t.Fatalf("empty lines: got height %d, want 0", got)
	}
	lh := LineHeight(ff.Face)
	m := ff.Face.Metrics()
	if lh < (m.Ascent + m.Descent).Ceil() {
		t.Fatalf("line height %d is smaller than ascent+descent", lh)
	}
	if got := MeasureTotalHeight([]string{"a", "bbb", "gy"}, ff.Face); got != 3*lh {
		t.Fatalf("got height %d, want %d", got, 3*lh)
	}
}

func TestLayout(t *testing.T) {
	ff, err := DefaultFont(14)
	if err != nil {
		t.Fatalf("default font: %v", err)
	}
	block := Layout("short\na somewhat longer line", 10, ff.Face, WrapOptions{})
	if diff := cmp.Diff([]string{"short", "a somewhat", "longer", "line"}, block.Texts()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if block[0].Width <= 0 || block[1].Width <= block[0].Width {
		t.Fatalf("unexpected widths: %d, %d", block[0].Width, block[1].Width)
	}
	if block.Height() != 4*LineHeight(ff.Face) {
		t.Fatalf("block height %d, want %d", block.Height(), 4*LineHeight(ff.Face))
	}
}
