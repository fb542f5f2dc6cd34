package store

import (
	"context"
	"database/sql"
	"fmt"

	"auth/internal/domain"
	"auth/internal/store/migrations"

	"github.com/pressly/goose/v3"
)

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations. It targets Postgres;
// tests against sqlite use AutoMigrate instead.
func (s *Store) RunMigrations(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if err := gooseUpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// AutoMigrate creates the schema from the gorm models.
func (s *Store) AutoMigrate() error {
	return s.DB.AutoMigrate(&domain.User{}, &domain.OtpRecord{}, &domain.LoginAttempt{}, &domain.UserApp{})
}
