package models

// MembershipRole distinguishes students from other group members.
type MembershipRole string

const (
	MembershipRoleStudent MembershipRole = "student"
	MembershipRoleOther   MembershipRole = "other"
)

// Group is the membership container that scopes student notifications.
type Group struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// GroupMembership links a user to a group with a role. A user may belong to
// multiple groups concurrently; run-scoped notifications must only ever reach
// the user through the run's own group.
type GroupMembership struct {
	GroupID string         `db:"group_id" json:"group_id"`
	UserID  string         `db:"user_id" json:"user_id"`
	Role    MembershipRole `db:"role" json:"role"`
}
