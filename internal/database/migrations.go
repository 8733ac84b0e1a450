package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/skillio/platform/internal/catalog"
)

const migrationBackfillOfferingAgeBounds = "2026-08-12_backfill_offering_age_bounds"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillOfferingAgeBounds, apply: backfillOfferingAgeBounds},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillOfferingAgeBounds normalizes offerings created before the broad
// default range was enforced at approval time.
func backfillOfferingAgeBounds(db *gorm.DB) error {
	return db.Model(&catalog.Offering{}).
		Where("age_min = 0 AND age_max = 0").
		Updates(map[string]interface{}{
			"age_min": catalog.DefaultAgeMin,
			"age_max": catalog.DefaultAgeMax,
		}).Error
}
