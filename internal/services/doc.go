// Package services defines shared utilities consumed by the enrich and clean
// pipelines and their remote integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and pipeline names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (not found, transient, session conflict) with errors.Is.
//
// Remote clients live in subpackages: douban for metadata lookups and
// transmission for the download manager RPC.
package services
