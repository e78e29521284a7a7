package postgres

import "errors"

var ErrMigration = errors.New("migration failed")
