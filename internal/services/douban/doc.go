// Package douban wraps the two Douban movie endpoints mediakeeper consumes:
// the desktop subject suggestion search and the mini-program celebrities API.
//
// The suggestion endpoint is unauthenticated but expects browser headers and
// a session cookie; the celebrities endpoint takes the API key as a query
// parameter and expects mobile headers. Failures are tagged with the
// services error markers so callers can distinguish "no data" from transport
// problems.
package douban
