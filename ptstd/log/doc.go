// Package log is a small leveled logger built on zerolog.
//
// Events are rendered as one plain-text line each:
//
//	2024-05-01 10:00:00.000000000 +02:00  INFO ptstd -- some info
//
// The timestamp is padded to 36 columns, the level is right aligned to five,
// then comes the target (the emitting component) and the message. Structured
// fields follow as key=value pairs.
//
// Init installs a process-wide logger once; L and WithTarget hand out children
// of it. New builds an independent Sink for callers that want their own.
//
// Importing the package leaves zerolog's global level alone. A sink configured
// for trace lowers it to trace so trace events reach the sink; callers must not
// raise the global level above the sink's own level afterwards.
package log
