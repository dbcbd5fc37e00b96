// Package scan drives one scanning form: a tag is scanned and resolved, the
// operator picks direction, project, quantity and (for bundles) a bundle
// mode, and the movement is submitted.
//
// The Controller is a state machine guarded by a mutex that is released
// across network calls, so a new scan can supersede a resolution that is
// still in flight. Submission outcomes follow one policy: network failures
// become offline queue entries, the bundle_mode_required conflict returns to
// mode selection without losing the scan, generic conflicts are rendered by
// the conflict package, and not-found or other errors are terminal for the
// current scan and never queued.
//
// Decoder and RunFeed model the external tag decoder as a scoped resource
// that is always released, whatever way the feed loop exits.
package scan
