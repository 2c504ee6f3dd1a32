// Package config loads runtime configuration for the movieshelf CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. MOVIESHELF_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   address:port of the RemoteStore gRPC endpoint
//	-t int      per-request timeout (seconds)
//	-f string   path of the local sqlite database
//	-p string   poster image base URL
//	-n int      default number of trending entries
//
// # JSON schema
//
// Durations use timex.Duration, so "10s" and integer nanoseconds both work:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "request_timeout": "10s",
//	  "database_path": "movieshelf.db",
//	  "poster_base_url": "https://image.tmdb.org/t/p/w500",
//	  "trending_limit": 5
//	}
package config
