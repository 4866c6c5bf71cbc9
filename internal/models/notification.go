package models

import "time"

// NotificationKind enumerates every notification the engine can dispatch.
type NotificationKind string

const (
	KindDeadlineReminder       NotificationKind = "deadline_reminder"
	KindManagerDeadlineWarning NotificationKind = "manager_deadline_warning"
	KindMissedDeadline         NotificationKind = "missed_deadline"
	KindPostDeadlineSummary    NotificationKind = "post_deadline_summary"
	KindActivityPosted         NotificationKind = "activity_posted"
	KindScorePublished         NotificationKind = "score_published"
	KindDocumentUploaded       NotificationKind = "document_uploaded"
	KindRunFinalized           NotificationKind = "run_finalized"
	KindRedoEnabled            NotificationKind = "redo_enabled"
	KindAddedToGroup           NotificationKind = "added_to_group"
)

// FireOffset returns how long before the deadline a deadline-family kind
// fires. Zero means exactly at the deadline.
func (k NotificationKind) FireOffset() time.Duration {
	switch k {
	case KindDeadlineReminder:
		return 30 * time.Minute
	case KindManagerDeadlineWarning:
		return 2 * time.Hour
	}
	return 0
}

// DeadlineKinds lists the kinds registered with the scheduler when a deadline
// is announced, in firing order.
var DeadlineKinds = []NotificationKind{
	KindManagerDeadlineWarning,
	KindDeadlineReminder,
	KindMissedDeadline,
	KindPostDeadlineSummary,
}

// ResolvedContext carries the denormalized facts a notification needs.
// Fields are populated per kind; a field a kind never reads stays zero.
type ResolvedContext struct {
	Kind NotificationKind `json:"kind"`

	CourseActivityID string       `json:"course_activity_id,omitempty"`
	ActivityID       string       `json:"activity_id,omitempty"`
	ActivityTitle    string       `json:"activity_title,omitempty"`
	ActivityType     ActivityType `json:"activity_type,omitempty"`

	RunID   string `json:"run_id,omitempty"`
	RunName string `json:"run_name,omitempty"`
	GroupID string `json:"group_id,omitempty"`

	GroupName  string `json:"group_name,omitempty"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`

	Deadline     *time.Time `json:"deadline,omitempty"`
	DocumentName string     `json:"document_name,omitempty"`

	// TargetUser is set for single-recipient kinds.
	TargetUser *Recipient `json:"target_user,omitempty"`

	// Submission counts feed manager-facing summary content only.
	SubmittedCount    int `json:"submitted_count,omitempty"`
	NotSubmittedCount int `json:"not_submitted_count,omitempty"`
}

// PushMessage is the payload handed to the push gateway.
type PushMessage struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// EmailMessage is the payload handed to the email gateway.
type EmailMessage struct {
	Subject    string `json:"subject"`
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
	Body       string `json:"body"`
}

// ChannelOutcome records the settled result of one delivery attempt.
type ChannelOutcome string

const (
	OutcomeSent    ChannelOutcome = "sent"
	OutcomeFailed  ChannelOutcome = "failed"
	OutcomeSkipped ChannelOutcome = "skipped"
)

// RecipientOutcome pairs a recipient with both channel outcomes.
type RecipientOutcome struct {
	UserID       string         `json:"user_id"`
	PushOutcome  ChannelOutcome `json:"push_outcome"`
	EmailOutcome ChannelOutcome `json:"email_outcome"`
}

// DispatchReport summarises one fan-out.
type DispatchReport struct {
	Kind       NotificationKind   `json:"kind"`
	Recipients []RecipientOutcome `json:"recipients"`
	Skipped    bool               `json:"skipped,omitempty"`
}

// Delivered counts attempts that settled as sent, across both channels.
func (r DispatchReport) Delivered() int {
	n := 0
	for _, rec := range r.Recipients {
		if rec.PushOutcome == OutcomeSent {
			n++
		}
		if rec.EmailOutcome == OutcomeSent {
			n++
		}
	}
	return n
}

// ScheduledTask is the payload stored with the scheduler for deadline kinds.
type ScheduledTask struct {
	Kind             NotificationKind `json:"kind"`
	CourseActivityID string           `json:"course_activity_id"`
	RunID            string           `json:"run_id"`
}
