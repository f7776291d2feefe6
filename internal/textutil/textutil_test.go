package textutil_test

import (
	"testing"

	"ncmplay/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"  周杰伦/Guest - 晴天 ": "周杰伦-Guest - 晴天",
		`a:b*c?"<>|`:          "a-b-c",
		"   ":                 "",
	}
	for in, want := range cases {
		if got := textutil.SanitizeFileName(in); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayWidth(t *testing.T) {
	cases := map[string]int{
		"abc":    3,
		"晴天":     4,
		"晴天 abc": 8,
		"ＡＢ":     4,
		"":       0,
	}
	for in, want := range cases {
		if got := textutil.DisplayWidth(in); got != want {
			t.Errorf("DisplayWidth(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := textutil.Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := textutil.Truncate("abcdefgh", 5); got != "abcd…" {
		t.Fatalf("Truncate latin = %q", got)
	}
	if got := textutil.Truncate("晴天晴天晴天", 6); got != "晴天…" {
		t.Fatalf("Truncate wide = %q", got)
	}
	if got := textutil.Truncate("abc", 0); got != "" {
		t.Fatalf("expected empty for zero width, got %q", got)
	}
}

func TestPadRight(t *testing.T) {
	got := textutil.PadRight("晴天", 6)
	if got != "晴天  " || textutil.DisplayWidth(got) != 6 {
		t.Fatalf("PadRight = %q", got)
	}
	if got := textutil.PadRight("abcdefgh", 4); textutil.DisplayWidth(got) != 4 {
		t.Fatalf("expected padded truncation to fit, got %q", got)
	}
}
