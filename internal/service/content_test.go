package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-notify/internal/models"
	"github.com/noah-isme/lms-notify/pkg/timefmt"
)

func contentContext(kind models.NotificationKind) *models.ResolvedContext {
	deadline := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	return &models.ResolvedContext{
		Kind:             kind,
		CourseActivityID: "ca-1",
		ActivityID:       "act-1",
		ActivityTitle:    "Weekly Quiz",
		ActivityType:     models.ActivityTypeQuiz,
		RunID:            "run-1",
		RunName:          "Spring 2026",
		GroupID:          "group-1",
		GroupName:        "Cohort A",
		CourseID:         "course-1",
		CourseName:       "Algebra",
		Deadline:         &deadline,
	}
}

func TestContentDeadlineReminder(t *testing.T) {
	b := NewContentBuilder(timefmt.NewFormatter("UTC"))

	push, email := b.Build(contentContext(models.KindDeadlineReminder), models.Recipient{ID: "user-1"})
	assert.Contains(t, push.Title, "Weekly Quiz")
	assert.Contains(t, push.Body, "Sat, 14 Mar 2026 18:00")
	assert.Equal(t, "run-1", push.Data["run_id"])
	assert.Equal(t, "2026-03-14T18:00:00Z", push.Data["deadline"])
	assert.Contains(t, email.Subject, "due soon")
	assert.Contains(t, email.Body, "quiz")
}

func TestContentPostDeadlineSummaryCounts(t *testing.T) {
	b := NewContentBuilder(nil)
	rctx := contentContext(models.KindPostDeadlineSummary)
	rctx.SubmittedCount = 7
	rctx.NotSubmittedCount = 3

	push, email := b.Build(rctx, models.Recipient{ID: "mgr-1"})
	assert.Contains(t, push.Body, "7 of 10 students")
	assert.Contains(t, email.Body, "7 students submitted, 3 did not")
}

func TestContentDocumentUploaded(t *testing.T) {
	b := NewContentBuilder(nil)
	rctx := contentContext(models.KindDocumentUploaded)
	rctx.DocumentName = "Syllabus.pdf"

	push, email := b.Build(rctx, models.Recipient{ID: "user-1"})
	assert.Contains(t, push.Body, "Syllabus.pdf")
	assert.Equal(t, "Syllabus.pdf", push.Data["document"])
	assert.Equal(t, "Syllabus.pdf", email.Heading)
	assert.Contains(t, email.Subheading, "Algebra")
}

func TestContentAddedToGroupPersonalised(t *testing.T) {
	b := NewContentBuilder(nil)
	rctx := contentContext(models.KindAddedToGroup)

	_, email := b.Build(rctx, models.Recipient{ID: "user-1", FullName: "Student One"})
	assert.Contains(t, email.Body, "Hi Student One")
	assert.Contains(t, email.Subject, "Cohort A")
}

func TestContentEveryKindProducesBothChannels(t *testing.T) {
	b := NewContentBuilder(nil)
	kinds := []models.NotificationKind{
		models.KindDeadlineReminder,
		models.KindManagerDeadlineWarning,
		models.KindMissedDeadline,
		models.KindPostDeadlineSummary,
		models.KindActivityPosted,
		models.KindScorePublished,
		models.KindDocumentUploaded,
		models.KindRunFinalized,
		models.KindRedoEnabled,
		models.KindAddedToGroup,
	}
	for _, kind := range kinds {
		rctx := contentContext(kind)
		rctx.DocumentName = "Notes.pdf"
		push, email := b.Build(rctx, models.Recipient{ID: "user-1", FullName: "Student One"})
		assert.NotEmpty(t, push.Title, "push title for %s", kind)
		assert.NotEmpty(t, push.Body, "push body for %s", kind)
		assert.NotEmpty(t, email.Subject, "email subject for %s", kind)
		assert.NotEmpty(t, email.Body, "email body for %s", kind)
	}
}

func TestContentMissingDeadlineRendersEmpty(t *testing.T) {
	b := NewContentBuilder(nil)
	rctx := contentContext(models.KindManagerDeadlineWarning)
	rctx.Deadline = nil

	push, _ := b.Build(rctx, models.Recipient{ID: "mgr-1"})
	assert.NotContains(t, push.Data, "deadline")
}
