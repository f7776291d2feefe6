package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMoveReplaceOntoMissingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.part")
	dst := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveReplace(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "audio" {
		t.Fatalf("content mismatch: got %q", got)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source to be gone, stat err=%v", err)
	}
}

func TestMoveReplaceOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.part")
	dst := filepath.Join(dir, "song.flac")
	if err := os.WriteFile(dst, []byte("old contents that are longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveReplace(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected destination replaced, got %q", got)
	}
}

func TestMoveReplaceMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := MoveReplace(filepath.Join(dir, "nope"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected source mode preserved, got %o", info.Mode().Perm())
	}
}

func TestPartialPathIsHiddenAndUnique(t *testing.T) {
	a := PartialPath("/out", "song")
	b := PartialPath("/out", "song")
	if a == b {
		t.Fatal("expected unique partial paths")
	}
	base := filepath.Base(a)
	if !strings.HasPrefix(base, ".song.") || !strings.HasSuffix(base, ".part") {
		t.Fatalf("unexpected partial name %q", base)
	}
}
