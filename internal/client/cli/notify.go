package cli

import (
	"errors"

	"github.com/dmitrijs2005/movieshelf/internal/client/client"
	"github.com/dmitrijs2005/movieshelf/internal/client/services"
)

// Describe turns a failed action into the one-line message shown to the
// user. Raw transport errors are never shown; they go to the log.
func Describe(action string, err error) string {
	if err == nil {
		return ""
	}
	return action + " failed: " + reason(action, err)
}

// credentialActions send an email and password, so a rejection there means
// the credentials were wrong rather than the session having lapsed.
var credentialActions = map[string]bool{
	"sign in": true,
	"sign up": true,
}

func reason(action string, err error) string {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return "you must be logged in"
	case errors.Is(err, services.ErrAlreadySaved):
		return "already saved"
	case errors.Is(err, client.ErrUnauthorized) && credentialActions[action]:
		return "invalid credentials"
	case errors.Is(err, client.ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, client.ErrValidation):
		return "account already exists or invalid input"
	case errors.Is(err, client.ErrNetwork):
		return "network unavailable"
	case errors.Is(err, client.ErrNotFound):
		return "not found"
	default:
		return "something went wrong"
	}
}
