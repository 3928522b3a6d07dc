package domain

import "time"

// UserEventType names a directory mutation recorded in the audit trail.
type UserEventType string

const (
	EventUserRegistered UserEventType = "user_registered"
	EventRoleChanged    UserEventType = "role_changed"
	EventUserUpdated    UserEventType = "user_updated"
	EventUserDeleted    UserEventType = "user_deleted"
)

// UserEvent is an audit record of a change applied to one user.
type UserEvent struct {
	UserID     string
	Type       UserEventType
	Role       Role     // role after the change, empty when not applicable
	Fields     []string // profile fields touched by an update
	OccurredAt time.Time
}
