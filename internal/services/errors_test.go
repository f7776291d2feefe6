package services_test

import (
	"errors"
	"strings"
	"testing"

	"ncmplay/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrDecode, "ncm", "stream", "write failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"ncm", "stream", "write failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestClassification(t *testing.T) {
	formatErr := services.Wrap(services.ErrFormat, "ncm", "header", "bad magic", nil)
	if !services.Terminal(formatErr) || !services.Surfaced(formatErr) {
		t.Fatalf("format errors must be terminal and surfaced: %v", formatErr)
	}

	tagErr := services.Wrap(services.ErrTag, "tagstore", "write", "", errors.New("io"))
	if services.Terminal(tagErr) {
		t.Fatal("tag errors must not be terminal")
	}
	if !services.Surfaced(tagErr) {
		t.Fatal("tag write errors are surfaced")
	}

	resolutionErr := services.Wrap(services.ErrResolution, "resolver", "search", "timeout", nil)
	if services.Surfaced(resolutionErr) {
		t.Fatal("resolution failures must never be surfaced")
	}

	if services.Surfaced(nil) || services.Terminal(nil) {
		t.Fatal("nil error is neither surfaced nor terminal")
	}
}
