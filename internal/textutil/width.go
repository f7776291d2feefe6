package textutil

import (
	"strings"

	"golang.org/x/text/width"
)

// DisplayWidth returns the number of terminal cells s occupies. Wide and
// full-width runes (most CJK) count as two.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

// Truncate shortens s to at most cells terminal cells, ending with "…" when
// anything was cut.
func Truncate(s string, cells int) string {
	if cells <= 0 {
		return ""
	}
	if DisplayWidth(s) <= cells {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runeWidth(r)
		if used+w > cells-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	b.WriteString("…")
	return b.String()
}

// PadRight truncates s to cells and pads it with spaces to exactly that width.
func PadRight(s string, cells int) string {
	s = Truncate(s, cells)
	if pad := cells - DisplayWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
