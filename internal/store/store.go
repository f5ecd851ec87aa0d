package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/utakatalp/league-odds/internal/league"
)

const (
	host     = "localhost"
	port     = 5432
	user     = "postgres"
	password = "1234"
	dbname   = "LeagueOdds"
)

// DefaultDSN is the local development database.
func DefaultDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)
}

// Store wraps a Postgres connection holding the source match records.
type Store struct {
	DB *sql.DB
}

// NewStore opens a Postgres connection using the given connection string.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate creates the necessary tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS matches (
		    id         SERIAL PRIMARY KEY,
		    round      INT     NOT NULL,
		    complete   BOOLEAN NOT NULL DEFAULT FALSE,
		    home_team  TEXT    NOT NULL,
		    away_team  TEXT    NOT NULL,
		    home_goals INT,
		    away_goals INT,
		    CHECK (
		        (complete AND home_goals IS NOT NULL AND away_goals IS NOT NULL)
		        OR (NOT complete AND home_goals IS NULL AND away_goals IS NULL)
		    )
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_round ON matches (round);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// SaveMatches replaces the stored season with matches in one transaction.
func (s *Store) SaveMatches(ctx context.Context, matches []*league.Match) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveMatches tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches;`); err != nil {
		return fmt.Errorf("clearing matches: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("matches",
		"round", "complete", "home_team", "away_team", "home_goals", "away_goals"))
	if err != nil {
		return fmt.Errorf("preparing copy: %w", err)
	}
	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx,
			m.Round, m.Complete, m.HomeName, m.AwayName, m.HomeGoals, m.AwayGoals,
		); err != nil {
			stmt.Close()
			return fmt.Errorf("copying match %s: %w", m, err)
		}
	}
	// flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("closing copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveMatches tx: %w", err)
	}
	return nil
}

// LoadMatches fetches every stored match in round order.
func (s *Store) LoadMatches(ctx context.Context) ([]*league.Match, error) {
	const q = `
SELECT id, round, complete, home_team, away_team, home_goals, away_goals
FROM matches
ORDER BY round, id;
`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var matches []*league.Match
	for rows.Next() {
		m := &league.Match{}
		var homeGoals, awayGoals sql.NullInt64
		if err := rows.Scan(
			&m.ID,
			&m.Round,
			&m.Complete,
			&m.HomeName,
			&m.AwayName,
			&homeGoals,
			&awayGoals,
		); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		if homeGoals.Valid {
			g := int(homeGoals.Int64)
			m.HomeGoals = &g
		}
		if awayGoals.Valid {
			g := int(awayGoals.Int64)
			m.AwayGoals = &g
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches rows: %w", err)
	}
	return matches, nil
}

func (s *Store) DeleteAllMatches(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM matches;`)
	if err != nil {
		return fmt.Errorf("deleting all matches: %w", err)
	}
	return nil
}
