package lake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const postgresCatalogPrefix = "postgres:"

func isPostgresCatalog(catalog string) bool {
	return strings.HasPrefix(catalog, postgresCatalogPrefix)
}

func pingPostgresCatalog(ctx context.Context, catalog string, timeout time.Duration) error {
	dsn := strings.TrimPrefix(catalog, postgresCatalogPrefix)
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("postgres catalog dsn is required")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open catalog db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping catalog db: %w", err)
	}
	return nil
}
