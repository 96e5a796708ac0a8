// Package browser holds browser sessions and the commands run against them.
//
// A Registry owns every open session and a pointer to the current one; all
// commands act on the current session. Commands resolves elements through a
// Resolver, which polls the driver until an element is visible (and, for
// clicks, enabled) or the timeout expires, and manages tabs by their
// position in the engine's window list. That order is whatever the engine
// reports; with Playwright it is the order pages were opened.
//
// Operations return a human readable string or a *Fault. Use KindOf to test
// the kind of a failure.
package browser
