// Package logging builds the process slog.Logger and carries a request-scoped
// logger through context.
//
// LOG_LEVEL picks the level and LOG_FORMAT=text switches from JSON to
// human-readable output. Handlers log through FromContext so each line
// carries the request ID set by the HTTP middleware.
//
// Submitted form values (names, addresses, message bodies) are never logged.
package logging
