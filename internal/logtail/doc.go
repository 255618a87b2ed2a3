// Package logtail reads and formats the labelctl client log.
//
// # Overview
//
// While the TUI owns the terminal, labelctl writes zerolog JSON to a log file
// (see config.Config.LogFile). The log view tails that file with Read and
// turns each line into an Entry with Parse.
//
// # Reading Log Files
//
// Read uses a ring buffer of size maxLines so only the tail of a large file
// is kept in memory:
//
//	lines, err := logtail.Read(cfg.LogFile, 400)
//
// A missing file yields nil, nil. Other I/O errors are wrapped.
//
// # Parsing
//
// Parse understands zerolog's field names (time, level, message, error) plus
// the "component" field every labelctl logger carries. Anything else lands
// in Entry.Fields. Lines that are not JSON objects, such as panics written to
// the same file, are kept verbatim in Entry.Raw.
//
// Entry.String renders a compact single line:
//
//	14:32:15 WARN [releases] read degraded op=get_releases error="HTTP 500: Internal Server Error"
//
// Filter drops structured entries below a minimum level. Styling is left to
// the ui package.
package logtail
