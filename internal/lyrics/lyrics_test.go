package lyrics_test

import (
	"math/rand/v2"
	"testing"

	"ncmplay/internal/lyrics"
)

const sample = "[00:10.50]b\n[00:05.00]a\n[00:20.00]\n"

func TestParseOrdersAndDropsEmptyLines(t *testing.T) {
	lines := lyrics.Parse(sample)
	want := []lyrics.Line{{TimeMS: 5000, Text: "a"}, {TimeMS: 10500, Text: "b"}}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %+v", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %+v, want %+v", i, lines[i], want[i])
		}
	}
}

func TestParseMultipleTagsAndFractions(t *testing.T) {
	raw := "[ti:Title]\r\n[01:02.345][00:01.05] chorus \r\nno tag here\n[00:00.5]short fraction ignored"
	lines := lyrics.Parse(raw)
	if len(lines) != 2 {
		t.Fatalf("expected two timed lines, got %+v", lines)
	}
	if lines[0].TimeMS != 1050 || lines[0].Text != "chorus" {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].TimeMS != 62345 || lines[1].Text != "chorus" {
		t.Fatalf("unexpected second line %+v", lines[1])
	}
}

func TestParseKeepsSourceOrderForEqualTimes(t *testing.T) {
	lines := lyrics.Parse("[00:01.00]first\n[00:01.00]second")
	if len(lines) != 2 || lines[0].Text != "first" || lines[1].Text != "second" {
		t.Fatalf("expected stable order, got %+v", lines)
	}
}

func TestParseEmpty(t *testing.T) {
	if lines := lyrics.Parse(""); len(lines) != 0 {
		t.Fatalf("expected no lines, got %+v", lines)
	}
}

func TestActiveIndex(t *testing.T) {
	lines := lyrics.Parse("[00:00.00]x\n[00:01.00]y")
	cases := []struct {
		pos  int64
		want int
	}{
		{0, 0},
		{20, 0},
		{999, 0},
		{1000, 1},
		{1500, 1},
	}
	for _, tc := range cases {
		if got := lyrics.ActiveIndex(lines, tc.pos); got != tc.want {
			t.Errorf("ActiveIndex(%d) = %d, want %d", tc.pos, got, tc.want)
		}
	}

	late := lyrics.Parse("[00:05.00]a")
	if got := lyrics.ActiveIndex(late, 4999); got != -1 {
		t.Fatalf("expected -1 before first line, got %d", got)
	}
	if got := lyrics.ActiveIndex(nil, 100); got != -1 {
		t.Fatalf("expected -1 for no lines, got %d", got)
	}
}

func TestActiveIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	lines := make([]lyrics.Line, 0, 200)
	var at int64
	for range 200 {
		at += int64(rng.IntN(3)) * 250
		lines = append(lines, lyrics.Line{TimeMS: at, Text: "x"})
	}
	linear := func(pos int64) int {
		idx := -1
		for i, line := range lines {
			if pos >= line.TimeMS {
				idx = i
			} else {
				break
			}
		}
		return idx
	}
	for pos := int64(-100); pos <= at+500; pos += 37 {
		if got, want := lyrics.ActiveIndex(lines, pos), linear(pos); got != want {
			t.Fatalf("ActiveIndex(%d) = %d, linear scan %d", pos, got, want)
		}
	}
}

func TestLinesAt(t *testing.T) {
	lines := lyrics.Parse(sample)
	if _, ok := lines.At(100); ok {
		t.Fatal("expected no active line before first timestamp")
	}
	line, ok := lines.At(12000)
	if !ok || line.Text != "b" {
		t.Fatalf("At(12000) = %+v, %v", line, ok)
	}
}

func TestFormat(t *testing.T) {
	cases := map[int64]string{
		0:         "00:00",
		999:       "00:00",
		61_000:    "01:01",
		3_725_000: "62:05",
		-5:        "00:00",
	}
	for ms, want := range cases {
		if got := lyrics.Format(ms); got != want {
			t.Errorf("Format(%d) = %q, want %q", ms, got, want)
		}
	}
}
