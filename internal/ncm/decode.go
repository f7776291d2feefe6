package ncm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ncmplay/internal/fileutil"
	"ncmplay/internal/logging"
	"ncmplay/internal/services"
)

// Audio formats an NCM payload can carry.
const (
	FormatMP3  = "mp3"
	FormatFLAC = "flac"
)

// Options configures Decode.
type Options struct {
	OutputDir string
	Logger    *slog.Logger
	// Progress, when set, is called after each chunk with the bytes written
	// so far and the payload size.
	Progress func(done, total int64)
}

// Result describes a successful decode.
type Result struct {
	OutputPath string
	Format     string
	Metadata   *Metadata
	Cover      []byte
	CoverMIME  string
	Bytes      int64
}

// OutputStem returns the name a container decodes to, without extension.
func OutputStem(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Decode converts the container at inputPath into <OutputDir>/<stem>.<format>.
// The payload is staged in a hidden partial file and moved into place only
// after it was written completely; the input file is never modified.
func Decode(ctx context.Context, inputPath string, opts Options) (*Result, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "ncm"))

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, decodeErr("open input", err)
	}
	defer in.Close()

	container, err := Open(in)
	if err != nil {
		return nil, err
	}
	if container.MetadataErr != nil {
		logging.WarnWithContext(logger, "embedded metadata unreadable", "metadata_degraded",
			logging.Error(container.MetadataErr),
			logging.String(logging.FieldErrorHint, "tags will be resolved from the filename"),
			logging.String(logging.FieldImpact, "title, artist and album fall back to online lookup"),
		)
	}

	var total int64
	if info, err := in.Stat(); err == nil {
		total = info.Size() - container.payloadOffset
	}

	payload, err := container.Payload()
	if err != nil {
		return nil, decodeErr("seek payload", err)
	}

	head := make([]byte, ChunkSize)
	n, err := io.ReadFull(payload, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, decodeErr("read payload", err)
	}
	head = head[:n]

	format := resolveFormat(container.Metadata, head)
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, decodeErr("create output directory", err)
	}
	stem := OutputStem(inputPath)
	target := filepath.Join(outputDir, stem+"."+format)
	partial := fileutil.PartialPath(outputDir, stem)

	written, err := writePartial(ctx, partial, head, payload, total, opts.Progress)
	if err != nil {
		fileutil.RemoveQuietly(partial)
		return nil, decodeErr("write payload", err)
	}
	if err := fileutil.MoveReplace(partial, target); err != nil {
		fileutil.RemoveQuietly(partial)
		return nil, decodeErr("finalize output", err)
	}

	logger.Debug("payload decoded",
		logging.String("output", target),
		logging.String("format", format),
		logging.Int64("payload_bytes", written),
		logging.Int("cover_bytes", len(container.Cover)),
	)

	return &Result{
		OutputPath: target,
		Format:     format,
		Metadata:   container.Metadata,
		Cover:      container.Cover,
		CoverMIME:  container.CoverMIME(),
		Bytes:      written,
	}, nil
}

func writePartial(ctx context.Context, path string, head []byte, rest io.Reader, total int64, progress func(int64, int64)) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	written := int64(0)
	report := func(n int) {
		written += int64(n)
		if progress != nil {
			progress(written, total)
		}
	}

	if _, err := out.Write(head); err != nil {
		return written, err
	}
	report(len(head))

	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := rest.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				return written, err
			}
			report(n)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}
	if err := out.Sync(); err != nil {
		return written, fmt.Errorf("sync: %w", err)
	}
	return written, out.Close()
}

// resolveFormat prefers the embedded metadata and falls back to sniffing the
// decrypted stream. Unrecognised streams are treated as MP3.
func resolveFormat(meta *Metadata, head []byte) string {
	if meta != nil {
		switch meta.Format {
		case FormatMP3, FormatFLAC:
			return meta.Format
		}
	}
	return SniffFormat(head)
}

// SniffFormat inspects the first bytes of a decrypted payload. Anything that
// is not a FLAC stream (ID3 tag, bare MPEG frame sync, or unknown) is MP3.
func SniffFormat(head []byte) string {
	if bytes.HasPrefix(head, []byte("fLaC")) {
		return FormatFLAC
	}
	return FormatMP3
}

func decodeErr(message string, err error) error {
	return services.Wrap(services.ErrDecode, "ncm", "decode", message, err)
}
