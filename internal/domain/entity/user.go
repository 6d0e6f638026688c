package entity

import "strings"

// User is the authenticated approver
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// NewUser builds an approver from the backend login payload fields
func NewUser(id, email, firstName, lastName string) *User {
	username := email
	if at := strings.Index(email, "@"); at >= 0 {
		username = email[:at]
	}
	return &User{
		ID:       id,
		Username: username,
		Email:    email,
		Name:     strings.TrimSpace(firstName + " " + lastName),
		Role:     RoleApprover,
	}
}
