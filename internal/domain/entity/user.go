package entity

// UserType distinguishes employees from administrators
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

// User is the session record persisted under the "user" storage key
type User struct {
	Type     UserType `json:"type"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// IsAdmin reports whether the user reviews bills
func (u *User) IsAdmin() bool {
	return u != nil && u.Type == UserTypeAdmin
}

// Account is a user record as returned by the backend
type Account struct {
	ID     string   `json:"id"`
	Key    string   `json:"key,omitempty"`
	Type   UserType `json:"type"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Status string   `json:"status,omitempty"`
}
