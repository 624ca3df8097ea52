// Package protocol defines the line protocol a philosophers subject prints on
// standard output, and the parsing the harness performs on it.
//
// # Line Format
//
// Every lifecycle event is a single line:
//
//	<elapsed_ms> <philosopher_id> <action>
//
// where elapsed_ms and philosopher_id are base-10 integers and action is one
// of:
//
//	has taken a fork
//	is eating
//	is sleeping
//	is thinking
//	died
//
// Example:
//
//	0 1 has taken a fork
//	0 1 is eating
//	200 1 is sleeping
//	800 3 died
//
// # Verdict Contract
//
// The verdict engine relies on exactly two properties of this format:
//
//  1. A line is a death line iff it contains the case-sensitive substring
//     DeathMarker anywhere. No structured parse is involved.
//  2. The death time is the first whitespace-delimited token of that line,
//     parsed as a decimal integer of milliseconds.
//
// Everything else (ParseEvent, Scan) is diagnostic and never changes a
// verdict. Line order is assumed to match the subject's real event order.
package protocol
