package models

import "time"

type User struct {
	ID        string
	Username  string
	Email     string
	Name      string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}

// RevokedToken is a signed-out access token, kept until it would have
// expired anyway.
type RevokedToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}
