// Package watch keeps on-screen representations of in-flight runs
// synchronized with the execution service.
//
// Each open viewer owns one polling session: a timer-driven loop that
// re-fetches run state, recomputes the snapshot (or diffs the log text), and
// pushes the result to the viewer only when it actually changed. Sessions
// move through a small state machine (Idle, Polling, Terminal) and stop
// permanently once the run completes or a fetch fails, leaving the last good
// snapshot on screen.
//
// The coordinator deduplicates sessions through a registry keyed by run
// identity (status viewers) or run+log identity (log viewers): opening an
// already-open target reuses the live session instead of starting a second
// poller, and disposal deterministically cancels the timer and removes the
// entry. Responses that land after disposal are discarded; every session
// checks its active flag before touching shared state.
package watch
