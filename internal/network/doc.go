// Package network owns the process-wide online/offline flag.
//
// A Monitor seeds its state from a Checker at Start, then keeps it current
// from three sources: a periodic check loop, Linux netlink uevents for the
// net subsystem (which trigger an immediate check), and reachability reports
// from the HTTP client via Observe. Every offline to online transition
// signals each subscriber once; the offline queue uses that signal to start a
// flush.
package network
