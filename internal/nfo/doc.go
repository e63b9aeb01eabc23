// Package nfo reads and rewrites Kodi-style NFO sidecar documents.
//
// Read extracts the fields needed to look a title up remotely: the media type
// implied by the root element, the first title, the first year, and the first
// IMDb unique id. Merge rewrites existing director and actor entries in place
// with canonical credits; it never adds or removes entries, and unrelated
// elements survive the round-trip untouched.
package nfo
