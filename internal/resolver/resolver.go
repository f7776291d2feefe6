package resolver

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ncmplay/internal/config"
	"ncmplay/internal/logging"
	"ncmplay/internal/netease"
	"ncmplay/internal/services"
	"ncmplay/internal/tagstore"
)

const (
	componentName  = "resolver"
	defaultTimeout = 10 * time.Second
)

// Query describes what is already known about a track.
type Query struct {
	// FilenameHint is the output (or source) file name used when title or
	// artist is missing.
	FilenameHint string
	Title        string
	Artist       string
	// TrackID is the service id carried in the container metadata, or 0.
	TrackID int64
}

// Resolver fills in missing tags from the search service.
type Resolver struct {
	searcher netease.Searcher
	timeout  time.Duration
	limit    int
	disabled bool
	tagged   bool
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout bounds every individual lookup.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithResultLimit sets how many candidates the search asks for. Only the
// first is used.
func WithResultLimit(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithLogger attaches a logger for degraded lookups.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Disabled turns Resolve into a no-op.
func Disabled() Option {
	return func(r *Resolver) { r.disabled = true }
}

// WithTaggedLyrics makes Resolve fetch lyrics by track id when title and
// artist are already known. Without it such queries issue no lookup.
func WithTaggedLyrics() Option {
	return func(r *Resolver) { r.tagged = true }
}

// New builds a resolver around searcher.
func New(searcher netease.Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		searcher: searcher,
		timeout:  defaultTimeout,
		limit:    1,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, componentName)
	if r.searcher == nil {
		r.disabled = true
	}
	return r
}

// NewFromConfig applies the [resolver] and [search] settings.
func NewFromConfig(cfg *config.Config, searcher netease.Searcher, logger *slog.Logger) *Resolver {
	opts := []Option{WithLogger(logger)}
	if cfg != nil {
		opts = append(opts,
			WithTimeout(time.Duration(cfg.Resolver.TimeoutSeconds)*time.Second),
			WithResultLimit(cfg.Search.ResultLimit),
		)
		if cfg.Resolver.TaggedLyrics {
			opts = append(opts, WithTaggedLyrics())
		}
		if !cfg.Resolver.Enabled {
			opts = append(opts, Disabled())
		}
	}
	return New(searcher, opts...)
}

// Resolve looks up missing metadata. It never fails: every lookup error is
// logged and the affected fields stay empty.
func (r *Resolver) Resolve(ctx context.Context, q Query) tagstore.Tags {
	if r.disabled {
		return tagstore.Tags{}
	}
	ctx = services.WithStage(ctx, componentName)
	logger := logging.WithContext(ctx, r.logger)

	title := strings.TrimSpace(q.Title)
	artist := strings.TrimSpace(q.Artist)
	if title != "" && artist != "" {
		if !r.tagged || q.TrackID <= 0 {
			return tagstore.Tags{}
		}
		return tagstore.Tags{Lyrics: r.lyric(ctx, logger, q.TrackID)}
	}

	hintTitle, hintArtist := ParseFilename(q.FilenameHint)
	if title == "" {
		title = hintTitle
	}
	if artist == "" {
		artist = hintArtist
	}
	keyword := searchKeyword(title, artist)
	if keyword == "" {
		return tagstore.Tags{}
	}

	song, ok := r.search(ctx, logger, keyword)
	if !ok {
		return tagstore.Tags{}
	}

	out := tagstore.Tags{
		Title:  song.Name,
		Artist: song.ArtistNames(),
		Album:  song.Album,
	}
	if out.Artist == "" {
		out.Artist = artist
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		out.Lyrics = r.lyric(ctx, logger, song.ID)
	})
	wg.Go(func() {
		out.Cover = r.cover(ctx, logger, song)
	})
	wg.Wait()

	if len(out.Cover) > 0 {
		out.CoverMIME = tagstore.ImageMIME(out.Cover)
	}
	logger.Debug("metadata resolved",
		logging.String("keyword", keyword),
		logging.Int64("song_id", song.ID),
		logging.Bool("lyrics", out.Lyrics != ""),
		logging.Bool("cover", len(out.Cover) > 0),
	)
	return out
}

func (r *Resolver) search(ctx context.Context, logger *slog.Logger, keyword string) (netease.Song, bool) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	songs, err := r.searcher.Search(lookupCtx, keyword, r.limit)
	if err != nil {
		r.degraded(logger, "search", err, logging.String("keyword", keyword))
		return netease.Song{}, false
	}
	if len(songs) == 0 {
		logger.Info("no search match", logging.String("keyword", keyword))
		return netease.Song{}, false
	}
	return songs[0], true
}

func (r *Resolver) lyric(ctx context.Context, logger *slog.Logger, id int64) string {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.searcher.Lyric(lookupCtx, id)
	if err != nil {
		r.degraded(logger, "lyric", err, logging.Int64("song_id", id))
		return ""
	}
	return text
}

func (r *Resolver) cover(ctx context.Context, logger *slog.Logger, song netease.Song) []byte {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	coverURL, err := r.searcher.CoverURL(lookupCtx, song.ID)
	if err != nil {
		r.degraded(logger, "cover detail", err, logging.Int64("song_id", song.ID))
	}
	if coverURL == "" {
		coverURL = song.CoverURL
	}
	if coverURL == "" {
		return nil
	}

	data, err := r.searcher.FetchCover(lookupCtx, coverURL)
	if err != nil {
		r.degraded(logger, "cover fetch", err, logging.String("cover_url", coverURL))
		return nil
	}
	return data
}

func (r *Resolver) degraded(logger *slog.Logger, operation string, err error, attrs ...logging.Attr) {
	wrapped := services.Wrap(services.ErrResolution, componentName, operation, "lookup failed", err)
	attrs = append(attrs,
		logging.Error(wrapped),
		logging.String(logging.FieldErrorHint, "check network access and search.base_url"),
		logging.String(logging.FieldImpact, "affected tags stay empty"),
	)
	logging.WarnWithContext(logger, "metadata lookup failed", "resolution_degraded", attrs...)
}
