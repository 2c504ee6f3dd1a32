package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/flagx"
)

// parseFlags applies the server's own flags:
//
//	-a string   gRPC bind address
//	-m string   metrics/health HTTP bind address
//	-d string   Postgres DSN ("" for in-memory)
//	-s string   JWT signing secret
//	-t int      session validity, minutes
//	-l float    requests per second per identity
//	-b int      rate limiter burst
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-s", "-t", "-l", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port for /metrics and /healthz")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionMinutes := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.Float64Var(&config.RateLimit, "l", config.RateLimit, "requests per second per identity")
	fs.IntVar(&config.RateBurst, "b", config.RateBurst, "rate limiter burst")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionValidityDuration = time.Duration(*sessionMinutes) * time.Minute
		}
	})
	return nil
}
