package models

// User represents a platform account referenced by notifications.
// The engine reads users, it never mutates them.
type User struct {
	ID       string  `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Email    *string `db:"email" json:"email,omitempty"`
}

// Recipient is the per-fan-out projection of a user: just enough to address
// and personalise a notification.
type Recipient struct {
	ID       string  `db:"user_id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Email    *string `db:"email" json:"email,omitempty"`
}
