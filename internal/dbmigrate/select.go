package dbmigrate

import (
	"errors"

	"github.com/fdg312/fitplan/internal/config"
)

// Target is the database goose should run against.
type Target struct {
	URL    string
	Source string
	// Warning is set when the chosen URL goes through a connection pooler.
	Warning string
}

var (
	ErrDirectURLRequired = errors.New("DATABASE_URL_DIRECT is required to run migrations on startup")
	ErrNoDatabaseURL     = errors.New("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
)

// SelectTarget picks the connection for schema changes. goose holds an
// advisory lock and runs each migration in a transaction, which transaction
// poolers such as PgBouncer break, so the direct URL is preferred and the
// pooled one is used only as a last resort. Startup migrations pass
// requireDirect and never fall back.
func SelectTarget(cfg *config.Config, requireDirect bool) (Target, error) {
	switch {
	case cfg.DatabaseURLDirect != "":
		return Target{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	case requireDirect:
		return Target{}, ErrDirectURLRequired
	case cfg.DatabaseURLRaw != "":
		return Target{URL: cfg.DatabaseURLRaw, Source: "DATABASE_URL"}, nil
	case cfg.DatabaseURLPooled != "":
		return Target{
			URL:     cfg.DatabaseURLPooled,
			Source:  "DATABASE_URL_POOLED",
			Warning: "migrating through the pooled URL; set DATABASE_URL_DIRECT",
		}, nil
	}
	return Target{}, ErrNoDatabaseURL
}
