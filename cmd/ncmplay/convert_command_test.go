package main

import (
	"errors"
	"fmt"
	"testing"

	"ncmplay/internal/library"
	"ncmplay/internal/pipeline"
	"ncmplay/internal/services"
)

func TestConvertStatus(t *testing.T) {
	track := &library.Track{Path: "/out/a.mp3"}
	tagFailure := services.Wrap(services.ErrTag, "tagstore", "write", "save id3", errors.New("disk full"))

	cases := []struct {
		name   string
		result pipeline.Result
		want   string
	}{
		{"skipped", pipeline.Result{Skipped: true}, "skipped"},
		{"decode failure", pipeline.Result{Err: services.Wrap(services.ErrDecode, "ncm", "decode", "write payload", nil)}, "failed"},
		{"format failure with track", pipeline.Result{Track: track, Err: services.Wrap(services.ErrFormat, "ncm", "open", "", nil)}, "failed"},
		{"tag write failure", pipeline.Result{Track: track, Err: fmt.Errorf("joined: %w", tagFailure)}, "untagged"},
		{"clean", pipeline.Result{Track: track}, "converted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := convertStatus(tc.result); got != tc.want {
				t.Fatalf("convertStatus = %q, want %q", got, tc.want)
			}
		})
	}

	if n := countFailed([]pipeline.Result{cases[1].result, cases[2].result, cases[3].result, cases[4].result}); n != 2 {
		t.Fatalf("expected only terminal failures to count as failed, got %d", n)
	}
}
