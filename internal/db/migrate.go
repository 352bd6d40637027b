package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geocoder89/roster/internal/db/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

func run(ctx context.Context, db *sql.DB, dir Direction) error {
	switch dir {
	case Up:
		return goose.UpContext(ctx, db, ".")
	case Down:
		return goose.DownContext(ctx, db, ".")
	case Status:
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
}

// Migrate runs the embedded goose migrations over a database/sql handle that
// shares the pool's connection settings.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir Direction) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := run(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}

	return nil
}
