package main

import (
	"os"

	"github.com/docsmait/docsmait/internal/app/config"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/infrastructure/database"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/docsmait/docsmait/pkg/logger"
)

// reviewableTables carry a status column that may still hold legacy
// vocabulary from before the current state machine.
var reviewableTables = []string{"documents", "templates", "code_reviews"}

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	log.Info("running migrations")
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if err := backfillLegacyStatuses(db, log); err != nil {
		log.Error("status backfill failed", "error", err)
		os.Exit(1)
	}

	log.Info("migrations complete")
}

// backfillLegacyStatuses rewrites deprecated status values in place so
// reads no longer depend on runtime normalization.
func backfillLegacyStatuses(db *database.DB, log *logger.Logger) error {
	for _, table := range reviewableTables {
		for raw, canonical := range review.DefaultLegacyStatuses {
			if raw == string(canonical) {
				continue
			}
			result := db.DB.Table(table).
				Where("status = ?", raw).
				Update("status", string(canonical))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				log.Info("backfilled legacy statuses",
					"table", table,
					"from", raw,
					"to", string(canonical),
					"rows", result.RowsAffected,
				)
			}
		}
	}
	return nil
}
