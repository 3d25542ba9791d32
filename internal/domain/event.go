package domain

import (
	"time"

	"github.com/totegamma/orderdemo"
)

const (
	UserCreated = "user_created"
	UserUpdated = "user_updated"
	UserDeleted = "user_deleted"

	UserStatusChanged = "user_status_changed"
)

// UserEvent announces a change to the user store. User is empty for
// deletions.
type UserEvent struct {
	Type      string          `json:"type"`
	UserID    int64           `json:"userId"`
	User      *orderdemo.User `json:"user,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
