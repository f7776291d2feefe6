package services_test

import (
	"context"
	"testing"

	"ncmplay/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTrack(ctx, "/music/a.ncm")
	ctx = services.WithStage(ctx, "decode")
	ctx = services.WithRequestID(ctx, "req-123")

	if track, ok := services.TrackFromContext(ctx); !ok || track != "/music/a.ncm" {
		t.Fatalf("unexpected track: %v %v", track, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "decode" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
