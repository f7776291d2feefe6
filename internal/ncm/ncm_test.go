package ncm_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"ncmplay/internal/ncm"
	"ncmplay/internal/services"
	"ncmplay/internal/testsupport"
)

func writeContainer(t *testing.T, dir, name string, spec testsupport.NCMSpec) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(dir, name), testsupport.BuildNCM(t, spec))
}

func sampleTrack() *testsupport.NCMTrack {
	return &testsupport.NCMTrack{
		MusicID:   1234,
		MusicName: "晴天",
		Artist:    [][]any{{"周杰伦", 6452}, {"Guest", 7}},
		Album:     "叶惠美",
		AlbumPic:  "https://p1.music.126.net/cover.jpg",
		Format:    "mp3",
		Bitrate:   320000,
		Duration:  269000,
		Alias:     []string{"Sunny Day"},
	}
}

func TestDecodeRecoversPayloadAndMetadata(t *testing.T) {
	dir := t.TempDir()
	audio := testsupport.MP3Audio(200)
	cover := testsupport.PNG(t, color.RGBA{R: 200, A: 255})
	input := writeContainer(t, dir, "晴天.ncm", testsupport.NCMSpec{
		Track:      sampleTrack(),
		Cover:      cover,
		CoverFrame: len(cover) + 100,
		Audio:      audio,
	})
	outDir := filepath.Join(dir, "out")

	var lastDone, lastTotal int64
	res, err := ncm.Decode(context.Background(), input, ncm.Options{
		OutputDir: outDir,
		Progress:  func(done, total int64) { lastDone, lastTotal = done, total },
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.OutputPath != filepath.Join(outDir, "晴天.mp3") {
		t.Fatalf("unexpected output path %q", res.OutputPath)
	}
	if got := testsupport.ReadFile(t, res.OutputPath); !bytes.Equal(got, audio) {
		t.Fatal("decoded payload differs from original audio")
	}
	if lastDone != int64(len(audio)) || lastTotal != int64(len(audio)) {
		t.Fatalf("progress ended at %d/%d, want %d", lastDone, lastTotal, len(audio))
	}
	if res.Metadata == nil {
		t.Fatal("expected metadata")
	}
	if res.Metadata.Name != "晴天" || res.Metadata.Album != "叶惠美" || res.Metadata.MusicID != 1234 {
		t.Fatalf("unexpected metadata: %+v", res.Metadata)
	}
	if res.Metadata.ArtistNames() != "周杰伦/Guest" {
		t.Fatalf("unexpected artists %q", res.Metadata.ArtistNames())
	}
	if res.Metadata.DurationMS != 269000 || len(res.Metadata.Aliases) != 1 {
		t.Fatalf("unexpected duration/aliases: %+v", res.Metadata)
	}
	if !bytes.Equal(res.Cover, cover) || res.CoverMIME != "image/png" {
		t.Fatalf("cover not extracted (mime %q, %d bytes)", res.CoverMIME, len(res.Cover))
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final output in %s, got %d entries", outDir, len(entries))
	}
}

func TestDecodeTwiceIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	input := writeContainer(t, dir, "song.ncm", testsupport.NCMSpec{
		Track: sampleTrack(),
		Audio: testsupport.MP3Audio(150),
	})
	outDir := filepath.Join(dir, "out")
	before := testsupport.ReadFile(t, input)

	first, err := ncm.Decode(context.Background(), input, ncm.Options{OutputDir: outDir})
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	firstBytes := testsupport.ReadFile(t, first.OutputPath)

	second, err := ncm.Decode(context.Background(), input, ncm.Options{OutputDir: outDir})
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if first.OutputPath != second.OutputPath {
		t.Fatalf("output path changed: %q vs %q", first.OutputPath, second.OutputPath)
	}
	if !bytes.Equal(firstBytes, testsupport.ReadFile(t, second.OutputPath)) {
		t.Fatal("re-decoding produced different bytes")
	}
	if !bytes.Equal(before, testsupport.ReadFile(t, input)) {
		t.Fatal("input container was modified")
	}
}

func TestDecodeRejectsBadMagicWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	data := testsupport.BuildNCM(t, testsupport.NCMSpec{Track: sampleTrack(), Audio: testsupport.MP3Audio(10)})
	data[0] = 'X'
	input := testsupport.WriteFile(t, filepath.Join(dir, "broken.ncm"), data)
	outDir := filepath.Join(dir, "out")

	_, err := ncm.Decode(context.Background(), input, ncm.Options{OutputDir: outDir})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output directory to be created, stat err=%v", statErr)
	}
}

func TestDecodeFailureMidStreamLeavesNoArtifacts(t *testing.T) {
	dir := t.TempDir()
	audio := testsupport.MP3Audio(5*ncm.ChunkSize/417 + 1)
	input := writeContainer(t, dir, "long.ncm", testsupport.NCMSpec{Track: sampleTrack(), Audio: audio})
	outDir := filepath.Join(dir, "out")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := ncm.Decode(ctx, input, ncm.Options{
		OutputDir: outDir,
		Progress: func(done, _ int64) {
			if done >= ncm.ChunkSize {
				cancel()
			}
		},
	})
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation cause, got %v", err)
	}
	entries, readErr := os.ReadDir(outDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected no partial or final output, found %v", names)
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	data := testsupport.BuildNCM(t, testsupport.NCMSpec{Audio: testsupport.MP3Audio(1)})
	input := testsupport.WriteFile(t, filepath.Join(dir, "short.ncm"), data[:20])

	_, err := ncm.Decode(context.Background(), input, ncm.Options{OutputDir: filepath.Join(dir, "out")})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected ErrFormat for truncated key block, got %v", err)
	}
}

func TestDecodeWithoutMetadataSniffsFormat(t *testing.T) {
	dir := t.TempDir()
	audio := testsupport.FLACAudio(1)
	input := writeContainer(t, dir, "nometa.ncm", testsupport.NCMSpec{Audio: audio})

	res, err := ncm.Decode(context.Background(), input, ncm.Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Metadata != nil {
		t.Fatalf("expected nil metadata, got %+v", res.Metadata)
	}
	if res.Format != ncm.FormatFLAC || filepath.Ext(res.OutputPath) != ".flac" {
		t.Fatalf("expected flac output, got %q (%s)", res.Format, res.OutputPath)
	}
	if len(res.Cover) != 0 {
		t.Fatalf("expected no cover, got %d bytes", len(res.Cover))
	}
}

func TestDecodeToleratesCorruptMetadata(t *testing.T) {
	dir := t.TempDir()
	input := writeContainer(t, dir, "odd.ncm", testsupport.NCMSpec{
		RawMeta: "music:{not json",
		Audio:   testsupport.MP3Audio(3),
	})

	res, err := ncm.Decode(context.Background(), input, ncm.Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Metadata != nil {
		t.Fatal("expected corrupt metadata to degrade to nil")
	}
	if res.Format != ncm.FormatMP3 {
		t.Fatalf("expected sniffed mp3, got %q", res.Format)
	}
}

func TestOpenParsesDJMetadata(t *testing.T) {
	data := testsupport.BuildNCM(t, testsupport.NCMSpec{
		RawMeta: `dj:{"programName":"Radio","mainMusic":{"musicId":9,"musicName":"Episode","artist":[["Host",1]],"album":"Show","format":"flac"}}`,
		Audio:   testsupport.FLACAudio(1),
	})

	c, err := ncm.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Metadata == nil || c.Metadata.Name != "Episode" || c.Metadata.Format != "flac" || c.Metadata.ArtistNames() != "Host" {
		t.Fatalf("unexpected dj metadata: %+v (err %v)", c.Metadata, c.MetadataErr)
	}
}

func TestPayloadCanBeReadTwice(t *testing.T) {
	audio := testsupport.MP3Audio(90)
	data := testsupport.BuildNCM(t, testsupport.NCMSpec{Track: sampleTrack(), Audio: audio})

	c, err := ncm.Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 2; i++ {
		r, err := c.Payload()
		if err != nil {
			t.Fatalf("Payload: %v", err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			t.Fatalf("read payload: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), audio) {
			t.Fatalf("pass %d: payload mismatch", i)
		}
	}
}

func TestImageMIME(t *testing.T) {
	if ncm.ImageMIME(testsupport.PNG(t, color.White)) != "image/png" {
		t.Fatal("expected png")
	}
	if ncm.ImageMIME([]byte{0xFF, 0xD8, 0xFF}) != "image/jpeg" {
		t.Fatal("expected jpeg fallback")
	}
}
