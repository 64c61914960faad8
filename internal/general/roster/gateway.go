package roster

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sivec/internal/general/config"
	"sivec/internal/general/logger"
	"sivec/internal/ports"

	_ "github.com/go-sql-driver/mysql"
)

// Gateway is the read-only lookup against the company's external driver
// roster, which lives in a MySQL instance owned by HR. SIVEC never writes
// to it; names are matched exactly as stored.
type Gateway struct {
	db *sql.DB
}

// Connect opens the roster database and verifies connectivity.
func Connect(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Gateway, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=5s",
		cfg.RosterDB.User, cfg.RosterDB.Password, cfg.RosterDB.Host, cfg.RosterDB.Port, cfg.RosterDB.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("roster open: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("roster ping: %w", err)
	}

	logger.Info(ctx, "roster_connected", "Connected to external roster database", map[string]any{
		"host":     cfg.RosterDB.Host,
		"database": cfg.RosterDB.Name,
	})

	return &Gateway{db: db}, nil
}

// Close releases the underlying connection pool.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Exists reports whether an active driver with this exact name is on the roster.
func (g *Gateway) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := g.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pilotos WHERE nombre = ? AND activo = 1
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("roster exists(%s): %w", name, err)
	}
	return exists, nil
}

// ListNames returns the names of all active roster drivers.
func (g *Gateway) ListNames(ctx context.Context) ([]string, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT nombre FROM pilotos WHERE activo = 1 ORDER BY nombre
	`)
	if err != nil {
		return nil, fmt.Errorf("roster list: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("roster scan: %w", err)
		}
		names = append(names, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roster rows: %w", err)
	}

	return names, nil
}

var _ ports.RosterGateway = (*Gateway)(nil)
