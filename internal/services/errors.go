package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks an input container that failed header or structure
	// validation. No output is produced.
	ErrFormat = errors.New("format error")
	// ErrDecode marks an I/O failure while streaming decrypted audio. Partial
	// output has already been removed when this marker is returned.
	ErrDecode = errors.New("decode error")
	// ErrTag marks an unreadable or unwritable tag container.
	ErrTag = errors.New("tag error")
	// ErrResolution marks an external lookup failure. It never escapes the
	// resolver; it exists so logs and tests can classify the cause.
	ErrResolution = errors.New("resolution failure")

	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrDecode
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Surfaced reports whether err must be reported to the orchestrating caller.
// Resolution failures are always recovered locally.
func Surfaced(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrResolution)
}

// Terminal reports whether err ends the unit of work for a file, meaning no
// track is produced for it.
func Terminal(err error) bool {
	return errors.Is(err, ErrFormat) || errors.Is(err, ErrDecode)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
