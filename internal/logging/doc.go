// Package logging provides structured logging for the carrybak CLI.
//
// It wraps log/slog with a TTY-optimized text handler (colorized when the
// terminal supports it), a JSON handler for log files, and a MultiHandler
// that fans one record out to both. A run's logger is built once at startup
// and passed explicitly to every component; nothing in carrybak redirects
// process-wide stdout or stderr.
package logging
