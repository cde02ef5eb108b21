// Package lifecycle supervises network interface configuration.
//
// Each interface is driven by its own Engine goroutine: a state machine
// that compiles the declarative configuration into a RawConfig plan,
// materializes its files, and runs its up commands in order. A failed
// apply is rolled back with the plan's down commands and retried with
// exponential backoff up to the configured budget. A newer configure
// request supersedes whatever the engine is doing, after the previous
// generation's down commands have run to completion.
//
// All observable status (state, retry count, last error) is published
// into the property registry under interface.<ifname>; callers of
// Configure never receive apply errors directly.
package lifecycle
