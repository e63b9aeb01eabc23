// Package walker discovers NFO sidecars under the media root and drives the
// enrichment of each one.
//
// Discovery prunes any directory whose full path contains an excluded keyword
// (a plain substring test, so "Season" also prunes "ShowSeasonal") or whose
// base name is listed in exclude_dirs, skips excluded file names, and skips
// paths already present in the processed ledger.
//
// The Runner processes files strictly one at a time with a courtesy pause
// after every file that yielded a title. A file joins the ledger only when at
// least one director or actor entry was rewritten, so unmatched files are
// retried on the next run.
package walker
