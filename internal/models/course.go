package models

import "time"

// Course groups activities and carries the manager linkage.
type Course struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CourseManager links a manager to a course. Many-to-many in both directions.
type CourseManager struct {
	CourseID string `db:"course_id" json:"course_id"`
	UserID   string `db:"user_id" json:"user_id"`
}

// CourseRun is one offering of a course, bound to exactly one group. The
// run-to-group function is the pivot every student isolation rule hangs on.
type CourseRun struct {
	ID       string     `db:"id" json:"id"`
	Name     string     `db:"name" json:"name"`
	CourseID string     `db:"course_id" json:"course_id"`
	GroupID  string     `db:"group_id" json:"group_id"`
	EndDate  *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// CourseRunDetail joins a run with its group and course names for resolution.
type CourseRunDetail struct {
	CourseRun
	GroupName  string `db:"group_name" json:"group_name"`
	CourseName string `db:"course_name" json:"course_name"`
}
