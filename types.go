package orderdemo

const (
	UserServiceName = "user-service"
	UsersPath       = "/api/users"
)

// User is the wire shape of a user record, shared by the user store and
// every client of it.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status,omitempty"`
}

const (
	UserStatusActive    = "ACTIVE"
	UserStatusInactive  = "INACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
