package mentor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mentorColumns = "id, name, email, base_rate, teams, photo_url, created_at, updated_at"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanMentor(row pgx.Row) (Mentor, error) {
	var m Mentor
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.BaseRate, &m.Teams, &m.PhotoURL, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Mentor{}, ErrNotFound
	}
	if m.Teams == nil {
		m.Teams = []string{}
	}
	return m, err
}

func collect(rows pgx.Rows) ([]Mentor, error) {
	defer rows.Close()
	out := []Mentor{}
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context) ([]Mentor, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+mentorColumns+" FROM mentors ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) ByTeam(ctx context.Context, team string) ([]Mentor, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+mentorColumns+" FROM mentors WHERE $1 = ANY(teams) ORDER BY name, id", team)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *Store) Get(ctx context.Context, id string) (Mentor, error) {
	return scanMentor(s.DB.QueryRow(ctx, "SELECT "+mentorColumns+" FROM mentors WHERE id::text = $1", id))
}

func (s *Store) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, "SELECT id::text FROM mentors ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BaseRate satisfies payment.MentorSource.
func (s *Store) BaseRate(ctx context.Context, mentorID string) (float64, error) {
	var rate float64
	err := s.DB.QueryRow(ctx, "SELECT base_rate FROM mentors WHERE id::text = $1", mentorID).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return rate, err
}

func (s *Store) Create(ctx context.Context, in Input) (Mentor, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Mentor{}, err
	}
	defer tx.Rollback(ctx)

	if err := checkTeams(ctx, tx, in.Teams); err != nil {
		return Mentor{}, err
	}
	m, err := scanMentor(tx.QueryRow(ctx, `
    INSERT INTO mentors (name, email, base_rate, teams, photo_url)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING `+mentorColumns, in.Name, in.Email, in.BaseRate, in.Teams, in.PhotoURL))
	if err != nil {
		return Mentor{}, mapWriteError(err)
	}
	return m, tx.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, id string, in Input) (Mentor, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Mentor{}, err
	}
	defer tx.Rollback(ctx)

	if err := checkTeams(ctx, tx, in.Teams); err != nil {
		return Mentor{}, err
	}
	m, err := scanMentor(tx.QueryRow(ctx, `
    UPDATE mentors
    SET name = $2, email = $3, base_rate = $4, teams = $5, photo_url = $6, updated_at = now()
    WHERE id::text = $1
    RETURNING `+mentorColumns, id, in.Name, in.Email, in.BaseRate, in.Teams, in.PhotoURL))
	if err != nil {
		return Mentor{}, mapWriteError(err)
	}
	return m, tx.Commit(ctx)
}

// Delete removes the mentor; tasks and statements go with it.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM mentors WHERE id::text = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func checkTeams(ctx context.Context, tx pgx.Tx, teams []string) error {
	if len(teams) == 0 {
		return nil
	}
	var found int
	if err := tx.QueryRow(ctx, "SELECT COUNT(1) FROM teams WHERE name = ANY($1)", teams).Scan(&found); err != nil {
		return err
	}
	if found != len(teams) {
		return fmt.Errorf("%w: one of %v", ErrUnknownTeam, teams)
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}
