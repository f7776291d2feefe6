package tagstore

import (
	"github.com/bogem/id3v2/v2"
)

// MP3 tags are written as ID3v2.3 with UTF-16 text; many car stereos and
// older Windows players still cannot read v2.4 UTF-8 frames.
const (
	id3Version       = 3
	lyricsLanguage   = "XXX"
	lyricsDescriptor = "Lyrics"
	coverDescriptor  = "Cover"
)

func writeID3(path string, t Tags) error {
	file, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return tagErr("write", "open id3", err)
	}
	defer file.Close()

	file.DeleteAllFrames()
	file.SetVersion(id3Version)
	file.SetDefaultEncoding(id3v2.EncodingUTF16)

	if t.Title != "" {
		file.SetTitle(t.Title)
	}
	if t.Artist != "" {
		file.SetArtist(t.Artist)
	}
	if t.Album != "" {
		file.SetAlbum(t.Album)
	}
	if t.Lyrics != "" {
		file.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF16,
			Language:          lyricsLanguage,
			ContentDescriptor: lyricsDescriptor,
			Lyrics:            t.Lyrics,
		})
	}
	if len(t.Cover) > 0 {
		file.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF16,
			MimeType:    t.CoverMIME,
			PictureType: id3v2.PTFrontCover,
			Description: coverDescriptor,
			Picture:     t.Cover,
		})
	}

	if err := file.Save(); err != nil {
		return tagErr("write", "save id3", err)
	}
	return nil
}
