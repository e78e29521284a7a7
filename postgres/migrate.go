package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Migration is used to hold the database key and function for creating the migration.
type Migration struct {
	Executor func(*gorm.DB) error
	Key      string
}

// Migrations are those the verification server's database needs.
var Migrations = []Migration{
	{
		Key: "create-users",
		Executor: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS users (
					telegram_id bigint PRIMARY KEY,
					username text NOT NULL DEFAULT '',
					is_premium boolean NOT NULL DEFAULT false
				)
			`).Error
		},
	},
}

func (m Migration) execute(db *gorm.DB) error {
	return db.Transaction(m.Executor)
}

// MigrateUp runs every Migration whose key is not yet recorded in the migrations table.
func MigrateUp(db *gorm.DB, migrations []Migration) error {
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	toRun, err := determineMigrationsToRun(db, migrations)
	if err != nil {
		return err
	}

	for _, m := range toRun {
		if err := m.execute(db); err != nil {
			return fmt.Errorf("%w: migration %q: %s", ErrMigration, m.Key, err)
		}

		// There was no error, so create a record for the migration
		err := db.Exec(`INSERT INTO migrations (key, ran_at) VALUES (?, ?)`, m.Key, time.Now().Unix()).Error
		if err != nil {
			return fmt.Errorf("%w: recording %q: %s", ErrMigration, m.Key, err)
		}
	}

	return nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			ran_at bigint,
			key text,
			CONSTRAINT migrations_key UNIQUE (key)
		)
	`).Error
	if err != nil {
		return fmt.Errorf("%w: creating migrations table: %s", ErrMigration, err)
	}

	return nil
}

func determineMigrationsToRun(db *gorm.DB, all []Migration) ([]Migration, error) {
	var ran []string
	if err := db.Raw("SELECT key FROM migrations").Scan(&ran).Error; err != nil {
		return nil, fmt.Errorf("%w: fetching ran migrations: %s", ErrMigration, err)
	}

	done := make(map[string]bool, len(ran))
	for _, key := range ran {
		done[key] = true
	}

	toRun := make([]Migration, 0, len(all))
	for _, m := range all {
		if !done[m.Key] {
			toRun = append(toRun, m)
		}
	}

	return toRun, nil
}
