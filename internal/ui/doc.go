// Package ui provides the declarative page model rendered by the browser.
//
// A page is a tree of Nodes built fresh on every full render. Parts of the
// page that change on their own, outside a full render, are Regions: named
// handles whose text can be replaced at any time. Each replacement is pushed
// to a PatchSink so only that region is repainted.
//
// A Scheduler re-runs Fragments (closures that write to Regions) on a fixed
// interval. Each fragment has its own goroutine and timeout, so a slow or
// failing fragment never blocks input handling or other fragments.
package ui
