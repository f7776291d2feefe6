package lookupcache

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"

	"ncmplay/internal/logging"
	"ncmplay/internal/netease"
)

// Searcher serves search and lyric lookups from the cache and falls through
// to the wrapped searcher on a miss. Cover lookups always pass through.
// Empty answers are never cached, so lyrics published later are picked up.
type Searcher struct {
	next   netease.Searcher
	store  *Store
	logger *slog.Logger
}

var _ netease.Searcher = (*Searcher)(nil)

// Wrap decorates next with store.
func Wrap(next netease.Searcher, store *Store, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Searcher{
		next:   next,
		store:  store,
		logger: logging.NewComponentLogger(logger, "lookupcache"),
	}
}

// NormalizeKeyword case-folds and collapses whitespace so equivalent queries
// share one cache row.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(cases.Fold().String(keyword)), " ")
}

func (c *Searcher) Search(ctx context.Context, query string, limit int) ([]netease.Song, error) {
	key := NormalizeKeyword(query)
	if songs, ok, err := c.store.LookupSearch(ctx, key, limit); err != nil {
		c.cacheFailure(ctx, "read", err)
	} else if ok {
		logging.WithContext(ctx, c.logger).Debug("search cache hit", logging.String("keyword", key))
		return songs, nil
	}

	songs, err := c.next.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(songs) > 0 {
		if err := c.store.PutSearch(ctx, key, limit, songs); err != nil {
			c.cacheFailure(ctx, "write", err)
		}
	}
	return songs, nil
}

func (c *Searcher) Lyric(ctx context.Context, songID int64) (string, error) {
	if lyric, ok, err := c.store.LookupLyric(ctx, songID); err != nil {
		c.cacheFailure(ctx, "read", err)
	} else if ok && lyric != "" {
		return lyric, nil
	}

	lyric, err := c.next.Lyric(ctx, songID)
	if err != nil {
		return "", err
	}
	if lyric == "" {
		return "", nil
	}
	if err := c.store.PutLyric(ctx, songID, lyric); err != nil {
		c.cacheFailure(ctx, "write", err)
	}
	return lyric, nil
}

func (c *Searcher) CoverURL(ctx context.Context, songID int64) (string, error) {
	return c.next.CoverURL(ctx, songID)
}

func (c *Searcher) FetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	return c.next.FetchCover(ctx, coverURL)
}

func (c *Searcher) cacheFailure(ctx context.Context, op string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "lookup cache "+op+" failed", "lookup_cache_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "delete the lookup cache file if the error persists"),
		logging.String(logging.FieldImpact, "lookup served from the network"),
	)
}
