// Package tagstore reads and rewrites the title, artist, album, lyrics and
// cover tags of converted MP3 and FLAC files.
package tagstore

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/hcl/audioduration"

	"ncmplay/internal/services"
)

// Tags is the subset of file metadata ncmplay manages. Duration is only
// populated by Read.
type Tags struct {
	Title     string
	Artist    string
	Album     string
	Lyrics    string
	Cover     []byte
	CoverMIME string
	Duration  float64
}

// Complete reports whether both title and artist are present, which is when
// no online lookup is needed.
func (t Tags) Complete() bool {
	return strings.TrimSpace(t.Title) != "" && strings.TrimSpace(t.Artist) != ""
}

// Empty reports whether no writable field is set.
func (t Tags) Empty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Lyrics == "" && len(t.Cover) == 0
}

// Merge overlays every non-empty field of other onto t.
func (t Tags) Merge(other Tags) Tags {
	if other.Title != "" {
		t.Title = other.Title
	}
	if other.Artist != "" {
		t.Artist = other.Artist
	}
	if other.Album != "" {
		t.Album = other.Album
	}
	if other.Lyrics != "" {
		t.Lyrics = other.Lyrics
	}
	if len(other.Cover) > 0 {
		t.Cover = other.Cover
		t.CoverMIME = other.CoverMIME
	}
	return t
}

// Read loads tags from path. A file without any tag container yields empty
// Tags and no error.
func Read(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, tagErr("read", "open", err)
	}
	defer f.Close()

	var out Tags
	meta, err := tag.ReadFrom(f)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
	case err != nil:
		return Tags{}, tagErr("read", "parse tags", err)
	default:
		out.Title = strings.TrimSpace(meta.Title())
		out.Artist = strings.TrimSpace(meta.Artist())
		out.Album = strings.TrimSpace(meta.Album())
		out.Lyrics = meta.Lyrics()
		if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
			out.Cover = pic.Data
			out.CoverMIME = pic.MIMEType
		}
	}

	if kind, ok := durationType(path); ok {
		if _, err := f.Seek(0, 0); err == nil {
			if seconds, err := audioduration.Duration(f, kind); err == nil && seconds > 0 {
				out.Duration = seconds
			}
		}
	}
	return out, nil
}

// ReadWithDefaults reads tags and fills a missing title with the filename
// stem and a missing artist with unknownArtist. The error from Read is
// returned alongside the defaulted tags so the caller can still list the file.
func ReadWithDefaults(path, unknownArtist string) (Tags, error) {
	tags, err := Read(path)
	if tags.Title == "" {
		base := filepath.Base(path)
		tags.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if tags.Artist == "" {
		tags.Artist = unknownArtist
	}
	return tags, err
}

// Write replaces every tag in the file at path with t. Existing frames,
// comments and pictures are removed first so nothing from a previous write
// survives.
func Write(path string, t Tags) error {
	if len(t.Cover) > 0 && t.CoverMIME == "" {
		t.CoverMIME = ImageMIME(t.Cover)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return writeID3(path, t)
	case ".flac":
		return writeFLAC(path, t)
	default:
		return tagErr("write", "unsupported file type "+filepath.Ext(path), nil)
	}
}

// ImageMIME reports image/png for PNG data and image/jpeg otherwise.
func ImageMIME(data []byte) string {
	if http.DetectContentType(data) == "image/png" {
		return "image/png"
	}
	return "image/jpeg"
}

// SupportedExt reports whether tags can be managed for files with ext.
func SupportedExt(ext string) bool {
	_, ok := durationType("x" + ext)
	return ok
}

func durationType(path string) (int, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return audioduration.TypeMp3, true
	case ".flac":
		return audioduration.TypeFlac, true
	default:
		return 0, false
	}
}

func tagErr(operation, message string, err error) error {
	return services.Wrap(services.ErrTag, "tagstore", operation, message, err)
}
