// Package seed loads the sample catalog entries.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skryldev/entry-catalog/db"
	"github.com/Skryldev/entry-catalog/models"
	"github.com/Skryldev/entry-catalog/query"
	"github.com/Skryldev/entry-catalog/repo"
)

// Entries returns the sample entries.
func Entries() []models.CreateEntryParams {
	return []models.CreateEntryParams{
		{
			Title:    "The Shawshank Redemption",
			Type:     models.EntryTypeMovie,
			Director: "Frank Darabont",
			Budget:   25000000,
			Location: "Ohio, USA",
			Duration: "142 min",
			Year:     1994,
		},
		{
			Title:    "Inception",
			Type:     models.EntryTypeMovie,
			Director: "Christopher Nolan",
			Budget:   160000000,
			Location: "Los Angeles, USA",
			Duration: "148 min",
			Year:     2010,
		},
		{
			Title:    "Breaking Bad",
			Type:     models.EntryTypeTVShow,
			Director: "Vince Gilligan",
			Budget:   3000000,
			Location: "Albuquerque, USA",
			Duration: "47 min per episode",
			Year:     2008,
		},
		{
			Title:    "Stranger Things",
			Type:     models.EntryTypeTVShow,
			Director: "The Duffer Brothers",
			Budget:   8000000,
			Location: "Atlanta, USA",
			Duration: "50 min per episode",
			Year:     2016,
		},
	}
}

// Run inserts the sample entries in one transaction when the catalog is
// empty. It returns the number of inserted entries.
func Run(ctx context.Context, database *db.DB, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var inserted int
	err := database.ExecTx(ctx, func(tx *db.Tx) error {
		entries := repo.NewEntryRepo(tx)

		n, err := entries.Count(ctx, query.Filter{})
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("seed: catalog not empty, skipping", "entries", n)
			return nil
		}

		created, err := entries.BatchInsert(ctx, Entries())
		if err != nil {
			return err
		}
		inserted = len(created)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	if inserted > 0 {
		logger.Info("seed: entries inserted", "count", inserted)
	}
	return inserted, nil
}
