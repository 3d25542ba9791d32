package domain

import (
	"strings"

	"github.com/totegamma/orderdemo"
)

// ParseUserStatus accepts a status name in any letter case.
func ParseUserStatus(s string) (string, error) {
	switch status := strings.ToUpper(strings.TrimSpace(s)); status {
	case orderdemo.UserStatusActive, orderdemo.UserStatusInactive, orderdemo.UserStatusSuspended:
		return status, nil
	case "":
		return "", ValidationError{Field: "status", Reason: "is required"}
	default:
		return "", ValidationError{Field: "status", Reason: "must be one of ACTIVE, INACTIVE, SUSPENDED"}
	}
}

// EmailTaken reports whether email is held by a user other than id.
// Empty emails never conflict.
func EmailTaken(users map[int64]orderdemo.User, id int64, email string) bool {
	if email == "" {
		return false
	}
	for _, u := range users {
		if u.ID != id && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
