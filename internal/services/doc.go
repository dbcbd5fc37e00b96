// Package services defines shared utilities consumed by the scan controller,
// the offline queue and the HTTP integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers, tag values and
//     correlation identifiers for logging and request headers.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the shared taxonomy (network, not_found, conflict,
//     bundle_mode_required, validation, other).
//
// Use these helpers when wiring new flows so operational behaviour (error
// handling, observability, offline fallback) stays uniform.
package services
