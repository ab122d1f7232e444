// Package agent keeps one page context in sync with the coordinator and
// decides when the page should be (re)highlighted.
//
// # Lifecycle
//
// An Agent moves Uninitialized → Syncing → Active. Start fetches the
// keyword list and the enabled flag concurrently and does nothing visible
// until both are known. It then runs one full pass over the page body,
// installs the mutation observer and begins accepting change events through
// OnChange. A failed sync returns the agent to Uninitialized.
//
// # Scope of work
//
// The agent never touches page content itself. It calls the Highlighter
// with either the whole body (full pass) or a single inserted element
// (incremental pass) and leaves the matching to it.
//
// Keyword changes are debounced: a burst collapses into one re-fetch and
// one full rescan after the quiet period. Enabled-flag changes are applied
// immediately.
package agent
