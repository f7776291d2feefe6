package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ncmplay/internal/library"
	"ncmplay/internal/logging"
	"ncmplay/internal/ncm"
	"ncmplay/internal/resolver"
	"ncmplay/internal/services"
	"ncmplay/internal/tagstore"
)

// process runs one file end to end: decode, embed container tags, resolve
// what is still missing, write the merged tags and read back the final
// track. Steps run strictly in order.
func (c *Coordinator) process(ctx context.Context, source string) Result {
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	ctx = services.WithTrack(ctx, source)
	result := Result{Source: source, RequestID: requestID}
	start := time.Now()

	decodeCtx := services.WithStage(ctx, "decode")
	logger := logging.WithContext(decodeCtx, c.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	var progress func(done, total int64)
	if c.opts.Progress != nil {
		progress = func(done, total int64) { c.opts.Progress(source, done, total) }
	}
	decoded, err := ncm.Decode(decodeCtx, source, ncm.Options{
		OutputDir: c.opts.OutputDir,
		Logger:    logger,
		Progress:  progress,
	})
	if err != nil {
		logging.ErrorWithContext(logger, "decode failed", "stage_failure",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the file is an intact NCM container"),
		)
		result.Err = err
		return result
	}
	output := decoded.OutputPath

	tagCtx := services.WithStage(ctx, "tags")
	logger = logging.WithContext(tagCtx, c.logger)

	var tagErrs []error
	embedded := embeddedTags(decoded)
	if !embedded.Empty() {
		if err := tagstore.Write(output, embedded); err != nil {
			tagErrs = append(tagErrs, err)
		}
	}

	current, err := tagstore.Read(output)
	if err != nil {
		logging.WarnWithContext(logger, "tag read failed", "tag_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to container metadata"),
		)
		current = embedded
	}

	if c.opts.Resolver != nil && (!current.Complete() || current.Lyrics == "") {
		var trackID int64
		if decoded.Metadata != nil {
			trackID = decoded.Metadata.MusicID
		}
		resolved := c.opts.Resolver.Resolve(ctx, resolver.Query{
			FilenameHint: filepath.Base(output),
			Title:        current.Title,
			Artist:       current.Artist,
			TrackID:      trackID,
		})
		if !resolved.Empty() {
			if err := tagstore.Write(output, current.Merge(resolved)); err != nil {
				tagErrs = append(tagErrs, err)
			}
		}
	}

	final, err := tagstore.ReadWithDefaults(output, c.opts.UnknownArtist)
	if err != nil {
		tagErrs = append(tagErrs, err)
	}
	track := library.TrackFromTags(output, final)
	result.Track = &track

	if len(tagErrs) > 0 {
		result.Err = errors.Join(tagErrs...)
		logging.WarnWithContext(logger, "tag write failed", "tag_write_failed",
			logging.Error(result.Err),
			logging.String("output_path", output),
			logging.String(logging.FieldImpact, "file is playable but tags may be incomplete"),
		)
		return result
	}

	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("output_path", output),
		logging.String("title", track.Title),
		logging.String("artist", track.Artist),
		logging.Int64("bytes", decoded.Bytes),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result
}

func embeddedTags(decoded *ncm.Result) tagstore.Tags {
	var tags tagstore.Tags
	if decoded.Metadata != nil {
		tags.Title = decoded.Metadata.Name
		tags.Artist = decoded.Metadata.ArtistNames()
		tags.Album = decoded.Metadata.Album
	}
	if len(decoded.Cover) > 0 {
		tags.Cover = decoded.Cover
		tags.CoverMIME = decoded.CoverMIME
	}
	return tags
}
