package services_test

import (
	"context"
	"testing"

	"mediakeeper/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-123")
	ctx = services.WithPipeline(ctx, "clean")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if p, ok := services.PipelineFromContext(ctx); !ok || p != "clean" {
		t.Fatalf("unexpected pipeline: %v %v", p, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := services.WithPipeline(services.WithRunID(context.Background(), ""), "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := services.PipelineFromContext(ctx); ok {
		t.Fatal("expected no pipeline")
	}
}
