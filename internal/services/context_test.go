package services_test

import (
	"context"
	"testing"

	"channelsurfer/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithIdentifier(ctx, "night_of_the_living_dead")
	ctx = services.WithStage(ctx, "stream")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.IdentifierFromContext(ctx); !ok || id != "night_of_the_living_dead" {
		t.Fatalf("unexpected identifier: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "stream" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithIdentifier(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.IdentifierFromContext(ctx); ok {
		t.Fatal("expected no identifier value")
	}
}
