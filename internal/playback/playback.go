// Package playback defines the position source lyric highlighting polls and a
// wall-clock implementation of it for terminal use.
package playback

import (
	"sync"
	"time"
)

// PositionFeed reports the current playback position. Implementations must
// be safe for concurrent use.
type PositionFeed interface {
	// Position returns the elapsed playback position in milliseconds.
	Position() int64
	Playing() bool
}

// Clock is a PositionFeed driven by elapsed wall time. It stands in for an
// audio engine when following lyrics on the command line.
type Clock struct {
	mu         sync.Mutex
	now        func() time.Time
	durationMS int64
	baseMS     int64
	startedAt  time.Time
	playing    bool
}

var _ PositionFeed = (*Clock)(nil)

// NewClock returns a paused clock at position zero. A durationMS of zero
// means unbounded. now defaults to time.Now.
func NewClock(durationMS int64, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	if durationMS < 0 {
		durationMS = 0
	}
	return &Clock{now: now, durationMS: durationMS}
}

// Play resumes advancing from the current position.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	if c.durationMS > 0 && c.baseMS >= c.durationMS {
		c.baseMS = 0
	}
	c.startedAt = c.now()
	c.playing = true
}

// Pause freezes the position.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseMS = c.positionLocked()
	c.playing = false
}

// Seek jumps to posMS, clamped to the clip bounds.
func (c *Clock) Seek(posMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseMS = c.clamp(posMS)
	c.startedAt = c.now()
}

func (c *Clock) Position() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

// Playing reports false once the clock reaches the end of the clip.
func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return false
	}
	return c.durationMS == 0 || c.positionLocked() < c.durationMS
}

func (c *Clock) positionLocked() int64 {
	if !c.playing {
		return c.baseMS
	}
	return c.clamp(c.baseMS + c.now().Sub(c.startedAt).Milliseconds())
}

func (c *Clock) clamp(posMS int64) int64 {
	if posMS < 0 {
		return 0
	}
	if c.durationMS > 0 && posMS > c.durationMS {
		return c.durationMS
	}
	return posMS
}
