// Package lyrics parses LRC text into timed lines and answers which line is
// active at a playback position.
package lyrics

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var timeTag = regexp.MustCompile(`\[(\d{2}):(\d{2})\.(\d{2,3})\]`)

// Line is one timed lyric line.
type Line struct {
	TimeMS int64
	Text   string
}

// Lines is a parsed lyric sheet ordered by TimeMS.
type Lines []Line

// Parse converts raw LRC text into lines sorted by time. A line carrying
// several time tags yields one Line per tag. Lines whose text is empty once
// the tags are removed are dropped, as are lines without any time tag.
// Lines sharing a timestamp keep their source order.
func Parse(raw string) Lines {
	if raw == "" {
		return nil
	}
	var out Lines
	for _, line := range strings.Split(raw, "\n") {
		text := strings.TrimSpace(timeTag.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		for _, match := range timeTag.FindAllStringSubmatch(line, -1) {
			out = append(out, Line{TimeMS: tagMillis(match[1], match[2], match[3]), Text: text})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeMS < out[j].TimeMS })
	return out
}

func tagMillis(minutes, seconds, fraction string) int64 {
	m, _ := strconv.ParseInt(minutes, 10, 64)
	s, _ := strconv.ParseInt(seconds, 10, 64)
	for len(fraction) < 3 {
		fraction += "0"
	}
	f, _ := strconv.ParseInt(fraction, 10, 64)
	return (m*60+s)*1000 + f
}

// ActiveIndex returns the index of the last line whose time is at or before
// posMS, or -1 when posMS precedes every line. It depends only on its
// arguments, so seeking needs no extra bookkeeping.
func ActiveIndex(lines []Line, posMS int64) int {
	return sort.Search(len(lines), func(i int) bool { return lines[i].TimeMS > posMS }) - 1
}

// At returns the active line at posMS.
func (l Lines) At(posMS int64) (Line, bool) {
	idx := ActiveIndex(l, posMS)
	if idx < 0 {
		return Line{}, false
	}
	return l[idx], true
}

// Format renders a millisecond position as mm:ss. Minutes are not wrapped
// into hours.
func Format(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	seconds := ms / 1000
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
