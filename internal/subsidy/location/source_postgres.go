package location

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"subsidy/internal/subsidy/zone"
)

// PostgresSource reads the reference dataset from the subdivision_zones table
// (see migrations/). Rows are read in insertion order so the first row for a
// duplicated subdivision wins, as with the CSV source.
type PostgresSource struct {
	db     *sql.DB
	states []string
}

// PostgresSourceOption configures a PostgresSource.
type PostgresSourceOption func(*PostgresSource)

// WithStates restricts the load to rows for the given states.
func WithStates(states ...string) PostgresSourceOption {
	return func(s *PostgresSource) {
		s.states = append(s.states, states...)
	}
}

// NewPostgresSource constructs a Postgres-backed location source.
func NewPostgresSource(db *sql.DB, opts ...PostgresSourceOption) *PostgresSource {
	s := &PostgresSource{db: db}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load reads all rows.
func (s *PostgresSource) Load(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT subdivision, COALESCE(district, ''), COALESCE(state, ''), zone
		FROM subdivision_zones
	`
	var args []any
	if len(s.states) > 0 {
		query += ` WHERE state = ANY($1)`
		args = append(args, pq.Array(s.states))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subdivision zones: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			rawZone string
		)
		if err := rows.Scan(&e.Subdivision, &e.District, &e.State, &rawZone); err != nil {
			return nil, fmt.Errorf("scan subdivision zone: %w", err)
		}
		code, err := zone.ParseCode(rawZone)
		if err != nil {
			return nil, fmt.Errorf("subdivision %q: %w", e.Subdivision, err)
		}
		e.Zone = code
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subdivision zones: %w", err)
	}
	return entries, nil
}
