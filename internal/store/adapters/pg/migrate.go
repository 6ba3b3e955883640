package pg

import (
	"context"
	"fmt"
	"sort"

	"github.com/blubbai/backend/internal/observability/logger"
	migrations "github.com/blubbai/backend/migrations/postgres"
)

// Migrate aplica las migraciones embebidas en orden lexicográfico.
// Los statements son idempotentes (IF NOT EXISTS), así que correrlo
// en cada arranque es seguro.
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		logger.L().Debug("migration applied", logger.String("file", name))
	}
	return nil
}
