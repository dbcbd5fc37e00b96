// Package schedule reschedules projects through PUT /api/v1/projects/{id}/dates.
//
// Crew and transport collisions come back as the same conflict payload the
// warehouse scan uses and are rendered by the conflict package. Date updates
// are never queued offline; a network failure is reported to the operator.
package schedule
