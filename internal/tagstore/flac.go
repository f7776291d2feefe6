package tagstore

import (
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

const fieldLyrics = "LYRICS"

func writeFLAC(path string, t Tags) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return tagErr("write", "parse flac", err)
	}

	kept := make([]*flac.MetaDataBlock, 0, len(f.Meta)+2)
	for _, block := range f.Meta {
		if block.Type != flac.VorbisComment && block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept

	comment := flacvorbis.New()
	for _, field := range []struct{ key, value string }{
		{flacvorbis.FIELD_TITLE, t.Title},
		{flacvorbis.FIELD_ARTIST, t.Artist},
		{flacvorbis.FIELD_ALBUM, t.Album},
		{fieldLyrics, t.Lyrics},
	} {
		if field.value == "" {
			continue
		}
		if err := comment.Add(field.key, field.value); err != nil {
			return tagErr("write", "add "+field.key, err)
		}
	}
	commentBlock := comment.Marshal()
	f.Meta = append(f.Meta, &commentBlock)

	if len(t.Cover) > 0 {
		picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, coverDescriptor, t.Cover, t.CoverMIME)
		if err != nil {
			// Undecodable images are still embedded, just without dimensions.
			picture = &flacpicture.MetadataBlockPicture{
				PictureType: flacpicture.PictureTypeFrontCover,
				MIME:        t.CoverMIME,
				Description: coverDescriptor,
				ImageData:   t.Cover,
			}
		}
		pictureBlock := picture.Marshal()
		f.Meta = append(f.Meta, &pictureBlock)
	}

	if err := f.Save(path); err != nil {
		return tagErr("write", "save flac", err)
	}
	return nil
}
