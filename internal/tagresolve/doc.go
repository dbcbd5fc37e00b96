// Package tagresolve classifies scanned tag values through the backend tag
// lookup.
//
// Resolutions are a closed set (Item, Bundle, Unknown, Other) and are never
// cached. The Tracker provides the stale-response guard: each scan gets a
// ticket, and a result is only applied while its ticket is still current.
package tagresolve
