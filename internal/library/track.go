package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ncmplay/internal/tagstore"
)

// Track is one playable file in the library. The tagged file is the durable
// state; a Track is rebuilt from it whenever the library loads.
type Track struct {
	Path      string
	Title     string
	Artist    string
	Album     string
	Duration  float64
	Lyrics    string
	Cover     []byte
	CoverMIME string
}

// TrackFromTags builds a Track for path from its tags.
func TrackFromTags(path string, tags tagstore.Tags) Track {
	return Track{
		Path:      path,
		Title:     tags.Title,
		Artist:    tags.Artist,
		Album:     tags.Album,
		Duration:  tags.Duration,
		Lyrics:    tags.Lyrics,
		Cover:     tags.Cover,
		CoverMIME: tags.CoverMIME,
	}
}

// DisplayName renders "title - artist", the form shown in listings and
// matched by Filter.
func (t Track) DisplayName() string {
	return t.Title + " - " + t.Artist
}

// FileName returns the base name of the track file.
func (t Track) FileName() string {
	return filepath.Base(t.Path)
}

// TagReader loads tags for a library file.
type TagReader func(path string) (tagstore.Tags, error)

// LoadDirectory reads every .mp3 and .flac file directly inside dir, sorted
// by name. Files are not decoded or resolved again. A missing directory is an
// empty library. Files whose tags cannot be read are left out and reported
// in the joined error next to the tracks that did load.
func LoadDirectory(dir string, read TagReader) ([]Track, error) {
	if read == nil {
		return nil, errors.New("tag reader required")
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if tagstore.SupportedExt(filepath.Ext(entry.Name())) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	tracks := make([]Track, 0, len(names))
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		tags, err := read(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		tracks = append(tracks, TrackFromTags(path, tags))
	}
	return tracks, errors.Join(errs...)
}
