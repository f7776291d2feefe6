package playback

import (
	"context"
	"log/slog"
	"time"

	"ncmplay/internal/logging"
	"ncmplay/internal/lyrics"
)

// DefaultInterval is the lyric highlight polling period.
const DefaultInterval = 100 * time.Millisecond

// Highlighter turns a position feed into a stream of active lyric indices.
type Highlighter struct {
	logger *slog.Logger
}

// NewHighlighter creates a highlighter that logs line changes at debug level.
func NewHighlighter(logger *slog.Logger) *Highlighter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Highlighter{logger: logging.NewComponentLogger(logger, "highlighter")}
}

// Run polls feed every interval, recomputes the active line from scratch and
// sends the index whenever it differs from the last one sent. The initial
// state is -1 (no line), so the first send is the first real change. The
// channel is closed when ctx ends, or immediately when lines is empty.
func (h *Highlighter) Run(ctx context.Context, lines lyrics.Lines, feed PositionFeed, interval time.Duration) <-chan int {
	out := make(chan int, 1)
	if len(lines) == 0 || feed == nil {
		close(out)
		return out
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := -1
		for {
			if idx := lyrics.ActiveIndex(lines, feed.Position()); idx != last {
				last = idx
				if idx >= 0 {
					h.logger.Debug("lyric line active",
						logging.Int("line", idx),
						logging.String("at", lyrics.Format(lines[idx].TimeMS)),
					)
				}
				select {
				case out <- idx:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
