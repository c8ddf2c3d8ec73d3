// Package models defines the data model shared by the orchestration layer:
// music services, download jobs, queue snapshots, sessions, and license status.
//
// Jobs and snapshots originate in the download engine and cross the wire as
// JSON; the structs here carry the tags for that encoding. The orchestration
// layer never mutates a job in place; all job state transitions arrive from
// the engine as whole-job or whole-snapshot replacements.
package models
