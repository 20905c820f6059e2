package models

import "time"

// User represents a registered customer. The password column holds the
// argon2id hash, never the plaintext.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Password    string     `json:"-"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	PhoneNumber string     `json:"phoneNumber"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
