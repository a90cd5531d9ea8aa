package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/reviewdesk/reviewdesk/internal/records/client"
	"github.com/reviewdesk/reviewdesk/internal/session"
)

// clientConfig is the reviewctl environment. Flags override each field.
type clientConfig struct {
	APIURL   string        `envconfig:"REVIEWDESK_API_URL" default:"http://localhost:8080"`
	PageSize int           `envconfig:"REVIEWDESK_PAGE_SIZE" default:"6"`
	Timeout  time.Duration `envconfig:"REVIEWDESK_TIMEOUT" default:"10s"`
	Verbose  bool          `envconfig:"REVIEWDESK_VERBOSE"`
}

func loadClientConfig() (clientConfig, error) {
	var cfg clientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return clientConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c clientConfig) logger() *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newSession binds a session to the store at the configured URL.
func (c clientConfig) newSession(opts ...session.Option) *session.State {
	store := client.New(c.APIURL)
	base := []session.Option{
		session.WithLimit(c.PageSize),
		session.WithRequestTimeout(c.Timeout),
		session.WithLogger(c.logger()),
	}
	return session.New(store, append(base, opts...)...)
}
