// Package logging builds the slog loggers used across reel.
//
// Two output formats are supported: a console handler that renders
// "TIME LEVEL component: message key=value" lines for interactive use, and a
// JSON handler for machine consumption. Attribute keys that appear in more
// than one package are named by the Field constants here so log queries stay
// stable.
package logging
