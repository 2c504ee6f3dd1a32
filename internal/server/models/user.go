// Package models defines the server-side records persisted by repositories.
package models

import "time"

type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
}

// Session is one signed-in device. Deleting the row revokes every token
// issued for it.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
