package domain

import "errors"

var ErrAccountExists = errors.New("account already exists")

// Account holds the credentials the auth gateway verifies. It never leaves
// the gateway layer.
type Account struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Profile is the directory document describing a user, keyed by email.
// Role is assigned at profile creation and read-only afterwards.
type Profile struct {
	FullName string `json:"full_name" bson:"full_name"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address  string `json:"address,omitempty" bson:"address,omitempty"`
	Role     string `json:"role" bson:"role"`
}
