package ncm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"ncmplay/internal/keystream"
	"ncmplay/internal/services"
)

// Magic opens every NCM container.
const Magic = "CTENFDAM"

const (
	keyMask     = 0x64
	keyPrefix   = "neteasecloudmusic"
	reservedLen = 5

	// ChunkSize is the payload read size used when streaming.
	ChunkSize = 0x8000
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Container is a parsed NCM header positioned at the start of the payload.
type Container struct {
	// Metadata is nil when the block was empty or unreadable.
	Metadata *Metadata
	// MetadataErr records why Metadata is nil; nil when the block was empty.
	MetadataErr error
	Cover       []byte

	table         keystream.Table
	src           io.ReadSeeker
	payloadOffset int64
}

// Open validates and parses the container header from r. The returned
// Container reads the payload from r, so r must stay open while it is used.
func Open(r io.ReadSeeker) (*Container, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, formatErr("read magic", err)
	}
	if string(magic) != Magic {
		return nil, formatErr(fmt.Sprintf("bad magic %x", magic), nil)
	}
	if _, err := r.Seek(2, io.SeekCurrent); err != nil {
		return nil, formatErr("skip version", err)
	}

	keyBlock, err := readBlock(r)
	if err != nil {
		return nil, formatErr("read key block", err)
	}
	derived, err := deriveKey(keyBlock)
	if err != nil {
		return nil, formatErr("derive key", err)
	}

	c := &Container{table: keystream.BuildTable(derived), src: r}

	metaBlock, err := readBlock(r)
	if err != nil {
		return nil, formatErr("read metadata block", err)
	}
	if len(metaBlock) > 0 {
		c.Metadata, c.MetadataErr = decodeMetadata(metaBlock)
	}

	if _, err := r.Seek(reservedLen, io.SeekCurrent); err != nil {
		return nil, formatErr("skip reserved region", err)
	}
	var frame [8]byte
	if _, err := io.ReadFull(r, frame[:]); err != nil {
		return nil, formatErr("read cover frame", err)
	}
	capacity := int64(binary.LittleEndian.Uint32(frame[0:4]))
	imageLen := int64(binary.LittleEndian.Uint32(frame[4:8]))
	if imageLen > capacity && capacity > 0 {
		return nil, formatErr(fmt.Sprintf("cover length %d exceeds frame %d", imageLen, capacity), nil)
	}
	if imageLen > 0 {
		c.Cover = make([]byte, imageLen)
		if _, err := io.ReadFull(r, c.Cover); err != nil {
			return nil, formatErr("read cover", err)
		}
	}
	if pad := capacity - imageLen; pad > 0 {
		if _, err := r.Seek(pad, io.SeekCurrent); err != nil {
			return nil, formatErr("skip cover padding", err)
		}
	}

	c.payloadOffset, err = r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, formatErr("locate payload", err)
	}
	return c, nil
}

// CoverMIME sniffs the cover image type: PNG when the magic matches,
// otherwise JPEG.
func (c *Container) CoverMIME() string {
	return ImageMIME(c.Cover)
}

// ImageMIME reports image/png for PNG data and image/jpeg for everything else.
func ImageMIME(data []byte) string {
	if bytes.HasPrefix(data, pngMagic) {
		return "image/png"
	}
	return "image/jpeg"
}

// Payload rewinds to the start of the audio payload and returns a reader of
// decrypted bytes.
func (c *Container) Payload() (io.Reader, error) {
	if _, err := c.src.Seek(c.payloadOffset, io.SeekStart); err != nil {
		return nil, err
	}
	return &payloadReader{src: c.src, table: c.table}, nil
}

type payloadReader struct {
	src    io.Reader
	table  keystream.Table
	offset int64
}

func (p *payloadReader) Read(buf []byte) (int, error) {
	n, err := p.src.Read(buf)
	if n > 0 {
		keystream.Combine(buf[:n], p.table, p.offset)
		p.offset += int64(n)
	}
	return n, err
}

func readBlock(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, nil
	}
	if n > 1<<24 {
		return nil, fmt.Errorf("block length %d out of range", n)
	}
	block := make([]byte, n)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, err
	}
	return block, nil
}

func deriveKey(block []byte) ([]byte, error) {
	if len(block) == 0 {
		return nil, errors.New("empty key block")
	}
	xorBytes(block, keyMask)
	plain, err := decryptECB(coreKey, block)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(plain, []byte(keyPrefix)) {
		return nil, errors.New("key prefix missing")
	}
	return plain[len(keyPrefix):], nil
}

func formatErr(message string, err error) error {
	return services.Wrap(services.ErrFormat, "ncm", "open", message, err)
}
