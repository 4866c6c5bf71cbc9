package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/pkg/timefmt"
)

// ContentBuilder maps (kind, context, recipient) to the push and email
// payloads. Pure: every field it interpolates was resolved upstream, so a
// missing field is a resolver bug, never a content concern.
type ContentBuilder struct {
	times *timefmt.Formatter
}

// NewContentBuilder constructs the builder.
func NewContentBuilder(times *timefmt.Formatter) *ContentBuilder {
	if times == nil {
		times = timefmt.NewFormatter("")
	}
	return &ContentBuilder{times: times}
}

// Build returns both channel payloads for one recipient.
func (b *ContentBuilder) Build(rctx *models.ResolvedContext, recipient models.Recipient) (models.PushMessage, models.EmailMessage) {
	switch rctx.Kind {
	case models.KindDeadlineReminder:
		return b.deadlineReminder(rctx)
	case models.KindManagerDeadlineWarning:
		return b.managerDeadlineWarning(rctx)
	case models.KindMissedDeadline:
		return b.missedDeadline(rctx)
	case models.KindPostDeadlineSummary:
		return b.postDeadlineSummary(rctx)
	case models.KindActivityPosted:
		return b.activityPosted(rctx)
	case models.KindScorePublished:
		return b.scorePublished(rctx)
	case models.KindDocumentUploaded:
		return b.documentUploaded(rctx)
	case models.KindRunFinalized:
		return b.runFinalized(rctx)
	case models.KindRedoEnabled:
		return b.redoEnabled(rctx)
	case models.KindAddedToGroup:
		return b.addedToGroup(rctx, recipient)
	}
	return models.PushMessage{}, models.EmailMessage{}
}

func (b *ContentBuilder) deadline(rctx *models.ResolvedContext) string {
	if rctx.Deadline == nil {
		return ""
	}
	return b.times.Display(*rctx.Deadline)
}

func (b *ContentBuilder) deadlineReminder(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	due := b.deadline(rctx)
	push := models.PushMessage{
		Title: fmt.Sprintf("Deadline approaching: %s", rctx.ActivityTitle),
		Body:  fmt.Sprintf("%s in %s is due at %s.", rctx.ActivityTitle, rctx.RunName, due),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("Reminder: %s is due soon", rctx.ActivityTitle),
		Heading:    fmt.Sprintf("%s is due soon", rctx.ActivityTitle),
		Subheading: rctx.RunName,
		Body:       fmt.Sprintf("The %s \"%s\" in %s is due at %s. Submit before the deadline to have your work counted.", rctx.ActivityType, rctx.ActivityTitle, rctx.RunName, due),
	}
	return push, email
}

func (b *ContentBuilder) managerDeadlineWarning(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	due := b.deadline(rctx)
	push := models.PushMessage{
		Title: fmt.Sprintf("Deadline in 2 hours: %s", rctx.ActivityTitle),
		Body:  fmt.Sprintf("%s in %s (%s) closes at %s.", rctx.ActivityTitle, rctx.RunName, rctx.CourseName, due),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("Upcoming deadline for %s", rctx.ActivityTitle),
		Heading:    fmt.Sprintf("%s closes soon", rctx.ActivityTitle),
		Subheading: fmt.Sprintf("%s — %s", rctx.CourseName, rctx.RunName),
		Body:       fmt.Sprintf("The %s \"%s\" closes at %s.", rctx.ActivityType, rctx.ActivityTitle, due),
	}
	return push, email
}

func (b *ContentBuilder) missedDeadline(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: fmt.Sprintf("Deadline passed: %s", rctx.ActivityTitle),
		Body:  fmt.Sprintf("You did not submit %s in %s before the deadline.", rctx.ActivityTitle, rctx.RunName),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("You missed the deadline for %s", rctx.ActivityTitle),
		Heading:    fmt.Sprintf("The deadline for %s has passed", rctx.ActivityTitle),
		Subheading: rctx.RunName,
		Body:       fmt.Sprintf("No submission was recorded for \"%s\" in %s. Contact your course manager if you believe this is an error.", rctx.ActivityTitle, rctx.RunName),
	}
	return push, email
}

func (b *ContentBuilder) postDeadlineSummary(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	total := rctx.SubmittedCount + rctx.NotSubmittedCount
	push := models.PushMessage{
		Title: fmt.Sprintf("Deadline summary: %s", rctx.ActivityTitle),
		Body:  fmt.Sprintf("%d of %d students submitted %s in %s.", rctx.SubmittedCount, total, rctx.ActivityTitle, rctx.RunName),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("Submission summary for %s", rctx.ActivityTitle),
		Heading:    fmt.Sprintf("%s has closed", rctx.ActivityTitle),
		Subheading: fmt.Sprintf("%s — %s", rctx.CourseName, rctx.RunName),
		Body:       fmt.Sprintf("%d students submitted, %d did not.", rctx.SubmittedCount, rctx.NotSubmittedCount),
	}
	return push, email
}

func (b *ContentBuilder) activityPosted(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: fmt.Sprintf("New %s: %s", rctx.ActivityType, rctx.ActivityTitle),
		Body:  fmt.Sprintf("%s was posted in %s.", rctx.ActivityTitle, rctx.RunName),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("New %s in %s", rctx.ActivityType, rctx.RunName),
		Heading:    rctx.ActivityTitle,
		Subheading: rctx.RunName,
		Body:       fmt.Sprintf("A new %s \"%s\" is available in %s.", rctx.ActivityType, rctx.ActivityTitle, rctx.RunName),
	}
	return push, email
}

func (b *ContentBuilder) scorePublished(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: fmt.Sprintf("Scores published: %s", rctx.ActivityTitle),
		Body:  fmt.Sprintf("Your score for %s in %s is available.", rctx.ActivityTitle, rctx.RunName),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("Your score for %s is ready", rctx.ActivityTitle),
		Heading:    fmt.Sprintf("Scores for %s are published", rctx.ActivityTitle),
		Subheading: rctx.RunName,
		Body:       fmt.Sprintf("Log in to view your score for \"%s\" in %s.", rctx.ActivityTitle, rctx.RunName),
	}
	return push, email
}

func (b *ContentBuilder) documentUploaded(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: "New course document",
		Body:  fmt.Sprintf("\"%s\" was uploaded to %s (%s).", rctx.DocumentName, rctx.RunName, rctx.CourseName),
		Data: map[string]string{
			"kind":     string(rctx.Kind),
			"run_id":   rctx.RunID,
			"document": rctx.DocumentName,
		},
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("New document in %s", rctx.RunName),
		Heading:    rctx.DocumentName,
		Subheading: fmt.Sprintf("%s — %s", rctx.CourseName, rctx.RunName),
		Body:       fmt.Sprintf("The document \"%s\" is now available in %s.", rctx.DocumentName, rctx.RunName),
	}
	return push, email
}

func (b *ContentBuilder) runFinalized(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: fmt.Sprintf("Run finalized: %s", rctx.RunName),
		Body:  fmt.Sprintf("%s of %s has been finalized.", rctx.RunName, rctx.CourseName),
		Data: map[string]string{
			"kind":   string(rctx.Kind),
			"run_id": rctx.RunID,
		},
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("%s has been finalized", rctx.RunName),
		Heading:    fmt.Sprintf("%s is finalized", rctx.RunName),
		Subheading: rctx.CourseName,
		Body:       fmt.Sprintf("The run %s of %s has been finalized. Results are now locked.", rctx.RunName, rctx.CourseName),
	}
	return push, email
}

func (b *ContentBuilder) redoEnabled(rctx *models.ResolvedContext) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: fmt.Sprintf("Redo enabled: %s", rctx.ActivityTitle),
		Body:  fmt.Sprintf("You may attempt %s in %s again.", rctx.ActivityTitle, rctx.RunName),
		Data:  b.activityData(rctx),
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("You can redo %s", rctx.ActivityTitle),
		Heading:    fmt.Sprintf("A redo of %s is open for you", rctx.ActivityTitle),
		Subheading: rctx.RunName,
		Body:       fmt.Sprintf("Your course manager enabled another attempt at \"%s\" in %s.", rctx.ActivityTitle, rctx.RunName),
	}
	return push, email
}

func (b *ContentBuilder) addedToGroup(rctx *models.ResolvedContext, recipient models.Recipient) (models.PushMessage, models.EmailMessage) {
	push := models.PushMessage{
		Title: "Added to a group",
		Body:  fmt.Sprintf("You were added to %s.", rctx.GroupName),
		Data: map[string]string{
			"kind":     string(rctx.Kind),
			"group_id": rctx.GroupID,
		},
	}
	email := models.EmailMessage{
		Subject:    fmt.Sprintf("You were added to %s", rctx.GroupName),
		Heading:    fmt.Sprintf("Welcome to %s", rctx.GroupName),
		Subheading: "",
		Body:       fmt.Sprintf("Hi %s, you are now a member of %s. Course activities for this group will appear in your dashboard.", recipient.FullName, rctx.GroupName),
	}
	return push, email
}

func (b *ContentBuilder) activityData(rctx *models.ResolvedContext) map[string]string {
	data := map[string]string{
		"kind":               string(rctx.Kind),
		"course_activity_id": rctx.CourseActivityID,
		"run_id":             rctx.RunID,
	}
	if rctx.Deadline != nil {
		data["deadline"] = rctx.Deadline.UTC().Format(time.RFC3339)
	}
	return data
}
