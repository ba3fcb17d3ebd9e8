package postgres

import (
	"context"
	_ "embed"

	"github.com/andresuchdata/supplychain-engine/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the registry tables and seeds every counter at zero
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply registry schema")
	}

	for _, counter := range repository.Counters {
		_, err := db.ExecContext(ctx,
			`INSERT INTO registry_counters (name, value) VALUES ($1, 0) ON CONFLICT (name) DO NOTHING`,
			string(counter))
		if err != nil {
			return errors.Wrapf(err, "seed counter %s", counter)
		}
	}

	log.Info().Int("counters", len(repository.Counters)).Msg("registry schema migrated")
	return nil
}
