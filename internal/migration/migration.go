package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
)

// RunMigrations applies the embedded SQL migrations. The schema is created
// automatically on startup so a fresh install is usable out of the box.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate builds the schema through gorm for the non-postgres dialects
// (sqlite in local development and tests, mysql).
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&tabledomain.Table{},
		&categorydomain.Category{},
		&settingsdomain.Settings{},
		&sessiondomain.Session{},
	)
}
