package db

import (
	"context"
	"fmt"

	"go-photomap/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads photo locations from a table with nullable latitude and
// longitude columns.
type PostgresStore struct {
	pool  *pgxpool.Pool
	query string
}

func NewPostgresStore(ctx context.Context, databaseURL, table string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool, query: listQuery(table)}, nil
}

func listQuery(table string) string {
	return fmt.Sprintf(
		"SELECT latitude, longitude, url, title, description, competition, team FROM %s ORDER BY id",
		pgx.Identifier{table}.Sanitize(),
	)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ListLocations(ctx context.Context) ([]types.LocationRecord, error) {
	rows, err := s.pool.Query(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	locations, err := pgx.CollectRows(rows, pgx.RowToStructByName[types.LocationRecord])
	if err != nil {
		return nil, fmt.Errorf("scan locations: %w", err)
	}
	return locations, nil
}
