// Package session holds per-browser-session UI state.
//
// Each Session owns a State: a key/value map that survives full page
// renders. Keys are initialised with SetDefault, which only writes when the
// key is absent, so re-running the page script never clobbers a value the
// user or a fragment has already set.
//
// A Store tracks live sessions and expires idle ones from a janitor
// goroutine started with Run.
package session
