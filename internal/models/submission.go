package models

import "time"

// SubmissionRecord marks a student's completion of an activity within a run.
// Which table it comes from depends on the activity type; the engine only ever
// consults the one table matching the activity being resolved.
type SubmissionRecord struct {
	ActivityID  string     `db:"activity_id" json:"activity_id"`
	RunID       string     `db:"run_id" json:"run_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
