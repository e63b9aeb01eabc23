// Package notifications pushes run summaries and fatal errors to ntfy.
//
// The topic URL comes from config.toml; when it is empty NewService returns a
// no-op implementation so commands can notify unconditionally. Summaries for
// passes that changed nothing are suppressed to keep scheduled runs quiet.
package notifications
