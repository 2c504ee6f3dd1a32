// Package common contains shared constants and sentinel errors used across
// movieshelf components.
package common

// AuthorizationHeaderName is the gRPC metadata key carrying the session token
// as "Bearer <token>".
const AuthorizationHeaderName = "authorization"

// AuthScheme is the scheme prefix expected in AuthorizationHeaderName.
const AuthScheme = "bearer"

// Collection names used by the client and provisioned by the server.
const (
	CollectionMetrics     = "metrics"
	CollectionSavedMovies = "saved_movies"
)
