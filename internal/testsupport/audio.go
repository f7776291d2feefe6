package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// mp3FrameHeader is MPEG-1 Layer III, 128 kbit/s, 44.1 kHz, no CRC.
var mp3FrameHeader = []byte{0xFF, 0xFB, 0x90, 0x64}

const mp3FrameSize = 417

// MP3Audio returns n silent MP3 frames without any tag container.
func MP3Audio(n int) []byte {
	if n <= 0 {
		n = 1
	}
	out := make([]byte, 0, n*mp3FrameSize)
	frame := make([]byte, mp3FrameSize)
	copy(frame, mp3FrameHeader)
	for range n {
		out = append(out, frame...)
	}
	return out
}

// FLACAudio returns a FLAC stream with only a STREAMINFO block describing
// seconds of 44.1 kHz stereo audio, followed by filler frame bytes.
func FLACAudio(seconds int) []byte {
	const sampleRate = 44100
	var info [34]byte
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	packed := uint64(sampleRate)<<44 | uint64(1)<<41 | uint64(15)<<36 | uint64(sampleRate*seconds)
	binary.BigEndian.PutUint64(info[10:18], packed)

	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, byte(len(info))})
	buf.Write(info[:])
	buf.Write([]byte{0xFF, 0xF8, 0x69, 0x18, 0x00, 0x00, 0xBF, 0x03})
	buf.Write(make([]byte, 256))
	return buf.Bytes()
}

// PNG returns a small encoded PNG filled with c.
func PNG(t testing.TB, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
