package logging

import (
	"context"
	"log/slog"

	"mediakeeper/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies a single enrich or clean run.
	FieldRunID = "run_id"
	// FieldPipeline names the pipeline (enrich or clean) that produced the line.
	FieldPipeline = "pipeline"
	// FieldPath is the standardized key for NFO file paths.
	FieldPath = "path"
	// FieldTitle is the standardized key for media titles.
	FieldTitle = "title"
	// FieldSubjectID is the standardized key for Douban subject identifiers.
	FieldSubjectID = "subject_id"
	// FieldTorrentID is the standardized key for Transmission torrent identifiers.
	FieldTorrentID = "torrent_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if pipeline, ok := services.PipelineFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPipeline, pipeline))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
