package team

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("team not found")
	ErrExists      = errors.New("team already exists")
	ErrInvalidName = errors.New("team name is required")
)

type Team struct {
	Name        string    `json:"name"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// NormalizeName trims a team name and rejects blanks.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func (s *Store) List(ctx context.Context) ([]Team, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.name, t.created_at, COUNT(m.id)
    FROM teams t
    LEFT JOIN mentors m ON t.name = ANY(m.teams)
    GROUP BY t.name, t.created_at
    ORDER BY t.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Team{}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.Name, &t.CreatedAt, &t.MemberCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM teams WHERE name = $1", name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Create(ctx context.Context, name string) (Team, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return Team{}, err
	}
	t := Team{Name: name}
	err = s.DB.QueryRow(ctx, "INSERT INTO teams (name) VALUES ($1) RETURNING created_at", name).Scan(&t.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Team{}, ErrExists
	}
	return t, err
}

// Delete drops the team and strips it from every mentor in one transaction.
// It returns how many mentors were detached.
func (s *Store) Delete(ctx context.Context, name string) (int64, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, "DELETE FROM teams WHERE name = $1", name)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	detached, err := tx.Exec(ctx, `
    UPDATE mentors
    SET teams = array_remove(teams, $1), updated_at = now()
    WHERE $1 = ANY(teams)
  `, name)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return detached.RowsAffected(), nil
}
