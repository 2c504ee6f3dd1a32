package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/movieshelf/internal/flagx"
)

func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-f", "-p", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "address and port of the server")
	timeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&config.DatabasePath, "f", config.DatabasePath, "local database file")
	fs.StringVar(&config.PosterBaseURL, "p", config.PosterBaseURL, "poster image base URL")
	fs.IntVar(&config.TrendingLimit, "n", config.TrendingLimit, "trending entries to show")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
