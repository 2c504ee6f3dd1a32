// Package models defines the client-side shapes exchanged with RemoteStore
// and handed to the CLI.
package models

import "time"

// Identity is the resolved user behind a session.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Session is what a successful sign-in returns. Token authenticates later
// calls and is persisted locally so the next start can rehydrate it.
type Session struct {
	Token     string
	Identity  Identity
	ExpiresAt time.Time
}
