package lookupcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ncmplay/internal/netease"
)

// Store persists search candidates and lyric text in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

type cachedSong struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Artists  []string `json:"artists,omitempty"`
	Album    string   `json:"album,omitempty"`
	CoverURL string   `json:"cover_url,omitempty"`
}

// Stats summarises cache contents.
type Stats struct {
	Searches int
	Lyrics   int
}

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("lookup cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LookupSearch returns cached candidates for a normalised keyword.
func (s *Store) LookupSearch(ctx context.Context, keyword string, limit int) ([]netease.Song, bool, error) {
	var payload string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT songs_json FROM search_results WHERE keyword = ? AND result_limit = ?`,
			keyword, limit,
		).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup search: %w", err)
	}

	var cached []cachedSong
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		return nil, false, fmt.Errorf("decode cached songs: %w", err)
	}
	songs := make([]netease.Song, 0, len(cached))
	for _, c := range cached {
		songs = append(songs, netease.Song{
			ID:       c.ID,
			Name:     c.Name,
			Artists:  c.Artists,
			Album:    c.Album,
			CoverURL: c.CoverURL,
		})
	}
	return songs, true, nil
}

// PutSearch stores candidates for keyword, replacing any previous entry.
func (s *Store) PutSearch(ctx context.Context, keyword string, limit int, songs []netease.Song) error {
	cached := make([]cachedSong, 0, len(songs))
	for _, song := range songs {
		cached = append(cached, cachedSong{
			ID:       song.ID,
			Name:     song.Name,
			Artists:  song.Artists,
			Album:    song.Album,
			CoverURL: song.CoverURL,
		})
	}
	payload, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode songs: %w", err)
	}
	return s.exec(ctx,
		`INSERT OR REPLACE INTO search_results (keyword, result_limit, songs_json, cached_at) VALUES (?, ?, ?, ?)`,
		keyword, limit, string(payload), now(),
	)
}

// LookupLyric returns cached lyric text for songID.
func (s *Store) LookupLyric(ctx context.Context, songID int64) (string, bool, error) {
	var lyric string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx, `SELECT lyric FROM lyrics WHERE song_id = ?`, songID).Scan(&lyric)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup lyric: %w", err)
	}
	return lyric, true, nil
}

// PutLyric stores lyric text for songID.
func (s *Store) PutLyric(ctx context.Context, songID int64, lyric string) error {
	return s.exec(ctx,
		`INSERT OR REPLACE INTO lyrics (song_id, lyric, cached_at) VALUES (?, ?, ?)`,
		songID, lyric, now(),
	)
}

// Stats counts cached rows.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM search_results`).Scan(&stats.Searches); err != nil {
		return Stats{}, fmt.Errorf("count searches: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM lyrics`).Scan(&stats.Lyrics); err != nil {
		return Stats{}, fmt.Errorf("count lyrics: %w", err)
	}
	return stats, nil
}

// Clear removes every cached row.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.exec(ctx, `DELETE FROM search_results`); err != nil {
		return err
	}
	return s.exec(ctx, `DELETE FROM lyrics`)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
