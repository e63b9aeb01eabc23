// Package transmission is a minimal client for the Transmission RPC protocol.
//
// The daemon guards its RPC endpoint with a CSRF token carried in the
// X-Transmission-Session-Id header. A request with a missing or stale token
// gets HTTP 409 together with a fresh token; the Client stores that token and
// replays the call, giving up with services.ErrSessionConflict after the
// configured number of retries. The token lives on the Client value, so
// independent clients never share session state.
package transmission
