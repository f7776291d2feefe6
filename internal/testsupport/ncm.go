package testsupport

import (
	"bytes"
	"crypto/aes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"ncmplay/internal/keystream"
)

var (
	ncmCoreKey = []byte("hzHRAmso5kInbaxW")
	ncmMetaKey = []byte(`#14ljk_!\]&0U<'(`)
)

// NCMTrack describes the embedded metadata of a synthetic container.
type NCMTrack struct {
	MusicID   int64    `json:"musicId"`
	MusicName string   `json:"musicName"`
	Artist    [][]any  `json:"artist"`
	Album     string   `json:"album"`
	AlbumPic  string   `json:"albumPic"`
	Format    string   `json:"format"`
	Bitrate   int64    `json:"bitrate"`
	Duration  int64    `json:"duration"`
	Alias     []string `json:"alias"`
}

// NCMSpec describes a synthetic NCM container.
type NCMSpec struct {
	// Key is the derived key; a fixed default is used when empty.
	Key []byte
	// Track is embedded as "music:" metadata when non-nil.
	Track *NCMTrack
	// RawMeta, when set, replaces the metadata plaintext (e.g. "dj:{...}").
	RawMeta string
	Cover   []byte
	// CoverFrame is the reserved cover capacity; defaults to len(Cover).
	CoverFrame int
	Audio      []byte
}

// DefaultNCMKey is the derived key used when NCMSpec.Key is empty.
var DefaultNCMKey = []byte("123456789012345678901234567890abcdefghij")

// BuildNCM assembles a container byte-for-byte the way the desktop client
// writes them.
func BuildNCM(t testing.TB, spec NCMSpec) []byte {
	t.Helper()

	key := spec.Key
	if len(key) == 0 {
		key = DefaultNCMKey
	}

	var buf bytes.Buffer
	buf.WriteString("CTENFDAM")
	buf.Write([]byte{0x01, 0x70})

	keyBlock := encryptECB(t, ncmCoreKey, append([]byte("neteasecloudmusic"), key...))
	xorAll(keyBlock, 0x64)
	writeBlock(&buf, keyBlock)

	plainMeta := spec.RawMeta
	if plainMeta == "" && spec.Track != nil {
		body, err := json.Marshal(spec.Track)
		if err != nil {
			t.Fatalf("marshal ncm metadata: %v", err)
		}
		plainMeta = "music:" + string(body)
	}
	if plainMeta == "" {
		writeBlock(&buf, nil)
	} else {
		encrypted := encryptECB(t, ncmMetaKey, []byte(plainMeta))
		metaBlock := []byte("163 key(Don't modify):" + base64.StdEncoding.EncodeToString(encrypted))
		xorAll(metaBlock, 0x63)
		writeBlock(&buf, metaBlock)
	}

	buf.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00})
	frame := spec.CoverFrame
	if frame < len(spec.Cover) {
		frame = len(spec.Cover)
	}
	writeUint32(&buf, uint32(frame))
	writeUint32(&buf, uint32(len(spec.Cover)))
	buf.Write(spec.Cover)
	buf.Write(make([]byte, frame-len(spec.Cover)))

	audio := append([]byte(nil), spec.Audio...)
	keystream.Combine(audio, keystream.BuildTable(key), 0)
	buf.Write(audio)
	return buf.Bytes()
}

func encryptECB(t testing.TB, key, plain []byte) []byte {
	t.Helper()

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes cipher: %v", err)
	}
	size := block.BlockSize()
	pad := size - len(plain)%size
	padded := append(append([]byte(nil), plain...), bytes.Repeat([]byte{byte(pad)}, pad)...)
	out := make([]byte, len(padded))
	for off := 0; off < len(padded); off += size {
		block.Encrypt(out[off:off+size], padded[off:off+size])
	}
	return out
}

func writeBlock(buf *bytes.Buffer, data []byte) {
	writeUint32(buf, uint32(len(data)))
	buf.Write(data)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func xorAll(data []byte, mask byte) {
	for i := range data {
		data[i] ^= mask
	}
}
