package models

import "encoding/json"

// ActivityType classifies activities. Only graded types take part in the
// deadline notification family.
type ActivityType string

const (
	ActivityTypeQuiz       ActivityType = "quiz"
	ActivityTypeAssignment ActivityType = "assignment"
	ActivityTypeExam       ActivityType = "exam"
	ActivityTypeOther      ActivityType = "other"
)

// Graded reports whether deadline notifications apply to this activity type.
func (t ActivityType) Graded() bool {
	switch t {
	case ActivityTypeQuiz, ActivityTypeAssignment, ActivityTypeExam:
		return true
	}
	return false
}

// ActivityPayload is the structured payload embedded in an activity row.
// It is decoded once at the repository boundary; downstream code only ever
// sees the typed form.
type ActivityPayload struct {
	Title string `json:"title"`
}

// ParseActivityPayload decodes the raw embedded payload.
func ParseActivityPayload(raw []byte) (*ActivityPayload, error) {
	var payload ActivityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Activity is a unit of course work.
type Activity struct {
	ID       string          `db:"id" json:"id"`
	Type     ActivityType    `db:"type" json:"type"`
	Payload  json.RawMessage `db:"payload" json:"payload"`
	Position int             `db:"position" json:"position"`
}

// CourseActivity binds an activity to a course. Most notification triggers
// address activities through this join id.
type CourseActivity struct {
	ID         string `db:"id" json:"id"`
	CourseID   string `db:"course_id" json:"course_id"`
	ActivityID string `db:"activity_id" json:"activity_id"`
}

// CourseActivityDetail is the resolved join of a course activity with its
// activity row and owning course.
type CourseActivityDetail struct {
	CourseActivityID string          `db:"course_activity_id" json:"course_activity_id"`
	ActivityID       string          `db:"activity_id" json:"activity_id"`
	ActivityType     ActivityType    `db:"activity_type" json:"activity_type"`
	Payload          json.RawMessage `db:"payload" json:"payload"`
	CourseID         string          `db:"course_id" json:"course_id"`
	CourseName       string          `db:"course_name" json:"course_name"`
}
