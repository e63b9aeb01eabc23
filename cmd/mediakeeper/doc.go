// Package main hosts the mediakeeper CLI entrypoint and command graph.
//
// Two pipelines are exposed: enrich walks the media library and rewrites NFO
// cast and crew names from Douban, and clean removes stopped Transmission
// tasks together with their data. Both run once by default or repeatedly with
// --schedule. Supporting commands scaffold and validate configuration, list
// the processed ledger, render the run history, and run preflight checks.
//
// The command layer only resolves configuration, logging, and run identity;
// the pipelines themselves live in internal packages.
package main
