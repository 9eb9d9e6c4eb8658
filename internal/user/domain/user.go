package domain

import "time"

type ID string

// User is the persisted identity. Email is optional and nil when absent.
type User struct {
	ID           ID
	Username     string
	Email        *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the public view of a user. It never carries the password hash.
type Summary struct {
	ID       ID      `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email}
}
