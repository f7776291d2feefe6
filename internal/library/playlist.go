package library

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/text/cases"
)

// restartThresholdMS is how far into a track Prev restarts it instead of
// stepping back.
const restartThresholdMS = 3000

// Mode selects what happens when a track finishes.
type Mode int

const (
	Sequential Mode = iota
	RepeatOne
	Shuffle
)

func (m Mode) String() string {
	switch m {
	case RepeatOne:
		return "repeat_one"
	case Shuffle:
		return "shuffle"
	default:
		return "sequential"
	}
}

// ParseMode accepts the names produced by Mode.String.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "sequential":
		return Sequential, nil
	case "repeat_one", "repeat-one":
		return RepeatOne, nil
	case "shuffle":
		return Shuffle, nil
	default:
		return Sequential, fmt.Errorf("unknown playback mode %q", value)
	}
}

// Playlist is the ordered track collection. It is not safe for concurrent
// use; a single goroutine owns it and receives new tracks over a channel.
type Playlist struct {
	tracks  []Track
	current int
	mode    Mode
	rng     *rand.Rand
}

// PlaylistOption configures a Playlist.
type PlaylistOption func(*Playlist)

// WithRand sets the random source used by Shuffle.
func WithRand(rng *rand.Rand) PlaylistOption {
	return func(p *Playlist) {
		if rng != nil {
			p.rng = rng
		}
	}
}

// NewPlaylist returns an empty playlist with nothing selected.
func NewPlaylist(opts ...PlaylistOption) *Playlist {
	p := &Playlist{current: -1}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p
}

// Add appends t unless a track with the same path is already present.
func (p *Playlist) Add(t Track) bool {
	for _, existing := range p.tracks {
		if existing.Path == t.Path {
			return false
		}
	}
	p.tracks = append(p.tracks, t)
	return true
}

// Remove drops the track at index i and keeps the selection on the same
// track where possible.
func (p *Playlist) Remove(i int) (Track, bool) {
	if i < 0 || i >= len(p.tracks) {
		return Track{}, false
	}
	removed := p.tracks[i]
	p.tracks = append(p.tracks[:i], p.tracks[i+1:]...)
	switch {
	case len(p.tracks) == 0:
		p.current = -1
	case i < p.current:
		p.current--
	case i == p.current && p.current >= len(p.tracks):
		p.current = 0
	}
	return removed, true
}

// Tracks returns a copy of the track list.
func (p *Playlist) Tracks() []Track {
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

func (p *Playlist) Len() int { return len(p.tracks) }

// Current returns the selected track and its index.
func (p *Playlist) Current() (Track, int, bool) {
	if p.current < 0 || p.current >= len(p.tracks) {
		return Track{}, -1, false
	}
	return p.tracks[p.current], p.current, true
}

// Select makes index i current.
func (p *Playlist) Select(i int) (Track, bool) {
	if i < 0 || i >= len(p.tracks) {
		return Track{}, false
	}
	p.current = i
	return p.tracks[i], true
}

// ContainsOutputName reports whether any track path contains name. The
// substring match is deliberately coarse: "a.mp3" also matches "aa.mp3".
func (p *Playlist) ContainsOutputName(name string) bool {
	if name == "" {
		return false
	}
	for _, t := range p.tracks {
		if strings.Contains(t.Path, name) {
			return true
		}
	}
	return false
}

func (p *Playlist) Mode() Mode { return p.mode }

func (p *Playlist) SetMode(m Mode) { p.mode = m }

// CycleMode advances Sequential → RepeatOne → Shuffle → Sequential.
func (p *Playlist) CycleMode() Mode {
	p.mode = (p.mode + 1) % 3
	return p.mode
}

// Next moves to the following track, wrapping at the end.
func (p *Playlist) Next() (Track, bool) {
	if len(p.tracks) == 0 {
		return Track{}, false
	}
	return p.Select((p.current + 1) % len(p.tracks))
}

// Prev restarts the current track when more than three seconds have played
// (restart is true), otherwise moves to the previous track with wrap-around.
func (p *Playlist) Prev(positionMS int64) (t Track, restart bool, ok bool) {
	if len(p.tracks) == 0 {
		return Track{}, false, false
	}
	if cur, _, has := p.Current(); has && positionMS > restartThresholdMS {
		return cur, true, true
	}
	idx := p.current - 1
	if idx < 0 {
		idx = len(p.tracks) - 1
	}
	t, ok = p.Select(idx)
	return t, false, ok
}

// Finished picks the track to play after the current one ends, according to
// the playback mode. Shuffle never repeats the current track when another is
// available.
func (p *Playlist) Finished() (Track, bool) {
	if len(p.tracks) == 0 {
		return Track{}, false
	}
	switch p.mode {
	case RepeatOne:
		if cur, _, ok := p.Current(); ok {
			return cur, true
		}
		return p.Next()
	case Shuffle:
		if len(p.tracks) == 1 {
			return p.Next()
		}
		next := p.current
		for next == p.current {
			next = p.rng.IntN(len(p.tracks))
		}
		return p.Select(next)
	default:
		return p.Next()
	}
}

// Filter returns the indices of tracks whose "title - artist" contains query
// case-insensitively, or whose full pinyin or pinyin initials contain it.
// An empty query matches everything.
func (p *Playlist) Filter(query string) []int {
	fold := cases.Fold()
	needle := strings.TrimSpace(fold.String(query))
	out := make([]int, 0, len(p.tracks))
	for i, t := range p.tracks {
		if needle == "" || matches(fold, t.DisplayName(), needle) {
			out = append(out, i)
		}
	}
	return out
}

func matches(fold cases.Caser, text, needle string) bool {
	if strings.Contains(fold.String(text), needle) {
		return true
	}
	compact := strings.ReplaceAll(needle, " ", "")
	if compact == "" {
		return false
	}
	full := pinyin.LazyConvert(text, nil)
	if len(full) == 0 {
		return false
	}
	if strings.Contains(strings.Join(full, ""), compact) {
		return true
	}
	initialsArgs := pinyin.NewArgs()
	initialsArgs.Style = pinyin.FirstLetter
	return strings.Contains(strings.Join(pinyin.LazyConvert(text, &initialsArgs), ""), compact)
}
