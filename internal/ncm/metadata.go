package ncm

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	metaMask   = 0x63
	metaPrefix = "163 key(Don't modify):"
)

// Artist is one credited performer from the embedded metadata.
type Artist struct {
	Name string
	ID   int64
}

// Metadata is the track description embedded in an NCM container.
type Metadata struct {
	MusicID     int64
	Name        string
	Artists     []Artist
	Album       string
	AlbumPicURL string
	Format      string
	Bitrate     int64
	DurationMS  int64
	VolumeDelta float64
	Aliases     []string
}

// ArtistNames joins artist names with "/", the separator used for the
// artist tag.
func (m *Metadata) ArtistNames() string {
	if m == nil {
		return ""
	}
	names := make([]string, 0, len(m.Artists))
	for _, a := range m.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, "/")
}

// decodeMetadata unwraps the raw metadata block as read from the container.
// The block is modified in place.
func decodeMetadata(block []byte) (*Metadata, error) {
	xorBytes(block, metaMask)
	if !bytes.HasPrefix(block, []byte(metaPrefix)) {
		return nil, errors.New("metadata prefix missing")
	}
	encoded := block[len(metaPrefix):]
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(raw, encoded)
	if err != nil {
		return nil, fmt.Errorf("metadata base64: %w", err)
	}
	plain, err := decryptECB(metaKey, raw[:n])
	if err != nil {
		return nil, fmt.Errorf("metadata decrypt: %w", err)
	}
	return parseMetadataJSON(plain)
}

func parseMetadataJSON(plain []byte) (*Metadata, error) {
	var body []byte
	path := ""
	switch {
	case bytes.HasPrefix(plain, []byte("music:")):
		body = plain[len("music:"):]
	case bytes.HasPrefix(plain, []byte("dj:")):
		body = plain[len("dj:"):]
		path = "mainMusic."
	default:
		return nil, errors.New("metadata type prefix missing")
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("metadata is not valid JSON")
	}

	get := func(key string) gjson.Result { return gjson.GetBytes(body, path+key) }
	meta := &Metadata{
		MusicID:     get("musicId").Int(),
		Name:        get("musicName").String(),
		Album:       get("album").String(),
		AlbumPicURL: get("albumPic").String(),
		Format:      strings.ToLower(get("format").String()),
		Bitrate:     get("bitrate").Int(),
		DurationMS:  get("duration").Int(),
		VolumeDelta: get("volumeDelta").Float(),
	}
	for _, entry := range get("artist").Array() {
		pair := entry.Array()
		if len(pair) == 0 {
			continue
		}
		artist := Artist{Name: pair[0].String()}
		if len(pair) > 1 {
			artist.ID = pair[1].Int()
		}
		meta.Artists = append(meta.Artists, artist)
	}
	for _, alias := range get("alias").Array() {
		if s := alias.String(); s != "" {
			meta.Aliases = append(meta.Aliases, s)
		}
	}
	return meta, nil
}
