// Package services defines shared utilities consumed by the conversion
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, pipeline stages, and track
//     paths for logging.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (format, decode, tag, resolution) with errors.Is.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across components.
package services
