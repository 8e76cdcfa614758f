package domain

import (
	"fmt"
	"time"
)

// UserType is the closed set of roles a user can hold.
type UserType string

const (
	UserTypeUser  UserType = "user"
	UserTypeAdmin UserType = "admin"
)

// ParseUserType converts a stored or submitted value into a UserType.
func ParseUserType(s string) (UserType, error) {
	switch UserType(s) {
	case UserTypeUser:
		return UserTypeUser, nil
	case UserTypeAdmin:
		return UserTypeAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUserType, s)
}

// UserTypeOrDefault decodes a persisted user_type. Records written before the
// field existed have no value and are plain users.
func UserTypeOrDefault(s string) UserType {
	t, err := ParseUserType(s)
	if err != nil {
		return UserTypeUser
	}
	return t
}

func (t UserType) IsAdmin() bool { return t == UserTypeAdmin }

func (t UserType) String() string { return string(t) }

// User models an account in the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	UserType     UserType  `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}
