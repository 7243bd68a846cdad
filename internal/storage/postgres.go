package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/balancer/solver-scripts/internal/solution"
	gojson "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStorage implements the solver Storage interface using
// PostgreSQL. One row per solve; the solution list is stored as JSONB so
// the analysis tooling can query it directly.
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStorage creates a new PostgreSQL storage.
func NewPostgresStorage(cfg *PostgresConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-storage-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStorage{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// RecordSolve inserts one solve result.
func (p *PostgresStorage) RecordSolve(ctx context.Context, auctionID string, resp *solution.Response) error {
	payload, err := gojson.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal solutions: %w", err)
	}

	query := `
		INSERT INTO solver_solutions (
			auction_id, solved_at, solution_count, solutions
		) VALUES (
			$1, $2, $3, $4
		)
	`

	_, err = p.db.ExecContext(ctx, query,
		auctionID,
		time.Now().UTC(),
		len(resp.Solutions),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert solve result: %w", err)
	}

	p.logger.Debug("solve-stored",
		zap.String("auction-id", auctionID),
		zap.Int("solution-count", len(resp.Solutions)))

	return nil
}

// Close closes the database connection.
func (p *PostgresStorage) Close() error {
	p.logger.Info("closing-postgres-storage")
	return p.db.Close()
}
