// Package conflict turns structured 409 collision payloads into operator
// guidance.
//
// The scan and scheduling flows both call Interpret with their own fallback
// text. Errors that are not generic conflicts pass through unchanged, so the
// function is safe to call from any error path.
package conflict
