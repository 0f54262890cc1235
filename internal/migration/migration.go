// Package migration applies versioned data migrations on top of the gorm
// auto-migrated schema. Each migration runs once; applied versions are
// recorded in schema_migrations.
package migration

import (
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"
)

// Record is one applied migration in the schema_migrations ledger.
type Record struct {
	Version   int    `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	AppliedAt time.Time
}

func (Record) TableName() string { return "schema_migrations" }

// Migration is a single versioned data migration.
type Migration struct {
	Version int
	Name    string
	Run     func(tx *gorm.DB) error
}

var registry []Migration

// Register adds a migration to the registry. Panics on duplicate versions so a
// copy-paste mistake fails at startup, not mid-apply.
func Register(m Migration) {
	for _, existing := range registry {
		if existing.Version == m.Version {
			panic(fmt.Sprintf("duplicate migration version %d (%s and %s)", m.Version, existing.Name, m.Name))
		}
	}
	registry = append(registry, m)
}

// Pending returns the registered migrations not yet in the ledger, in version
// order.
func Pending(db *gorm.DB) ([]Migration, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to prepare migration ledger: %w", err)
	}

	var applied []Record
	if err := db.Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to read migration ledger: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, r := range applied {
		done[r.Version] = true
	}

	pending := make([]Migration, 0, len(registry))
	for _, m := range registry {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })
	return pending, nil
}

// Apply runs every pending migration, each inside its own transaction together
// with its ledger row.
func Apply(db *gorm.DB) error {
	pending, err := Pending(db)
	if err != nil {
		return err
	}

	for _, m := range pending {
		log.Printf("applying migration %d: %s", m.Version, m.Name)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Run(tx); err != nil {
				return err
			}
			return tx.Create(&Record{Version: m.Version, Name: m.Name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
	}
	return nil
}
