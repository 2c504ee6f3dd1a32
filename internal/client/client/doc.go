// Package client is the movieshelf RemoteStore client.
//
// Client is the transport-agnostic contract the synchronization services
// depend on: identity and session calls plus collection-scoped document
// CRUD. GRPCClient implements it over gRPC; it attaches the session token
// to every call, bounds each call with a deadline so a hung request fails
// as ErrNetwork, and turns gRPC status codes into the error kinds declared
// in errors.go.
//
// InitDatabase and RunMigrations bootstrap the local sqlite file where the
// CLI keeps its session token between runs.
package client
