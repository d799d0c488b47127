// Package student contains the student-facing records fetched for the
// dashboard: the academic profile, assessed skills, and daily behavioral
// telemetry.
//
// These types are read-only snapshots of backend state. The dashboard owns
// them for the duration of one fetch cycle and never mutates them; derived
// values are computed by package wellbeing.
package student
