// Package harness runs test cases against a subject binary and collects
// their verdicts into a report.
//
// # Execution
//
// Cases run one at a time, in declaration order. Each case goes through
// three steps:
//
//  1. The case is validated. Invalid cases are recorded as failed and are
//     never executed.
//  2. The executor spawns the subject with the case arguments and timeout.
//  3. The analyzer classifies the captured result.
//
// A failing case never stops the run. The only early stop is cancellation
// of the context passed to Run, in which case the entries recorded so far
// are returned together with the context error.
//
// # Observing progress
//
// An Observer receives a StartCase and FinishCase notification around
// every case. The CLI uses it to print live progress:
//
//	[1/8] ✓ PASS: One philosopher (should die)
//	      Args: 1 800 200 200
//	      death at 801ms, within 790-810ms
//
// # Reports
//
// A Report keeps the entries in execution order together with the suite
// name, binary path and timestamps. Report IDs are UUIDv7 strings so that
// recorded runs sort by creation time.
package harness
