// Package warehouse is the HTTP client for the backend endpoints used by the
// scanning and scheduling flows: tag lookup, scan submission and project date
// updates.
//
// Transport failures and gateway errors are tagged services.ErrNetwork so
// callers can fall back to the offline queue; structured 4xx bodies decode
// into *APIError, which carries the conflict arrays the conflict package
// interprets. Every request reports reachability to an optional observer so
// the network monitor learns about connectivity changes as a side effect of
// normal traffic.
package warehouse
