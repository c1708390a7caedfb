package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mentordash/internal/domain/payment"
)

const taskColumns = "id::text, mentor_id::text, task_type, chapter_name, minutes, rating, chapters_completed, date"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.MentorID, &t.TaskType, &t.ChapterName, &t.Minutes, &t.Rating, &t.ChaptersCompleted, &t.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// Create stores a normalized submission stamped with the database clock.
func (s *Store) Create(ctx context.Context, in Input) (Task, error) {
	t, err := scanTask(s.DB.QueryRow(ctx, `
    INSERT INTO tasks (mentor_id, task_type, chapter_name, minutes, rating, chapters_completed)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+taskColumns, in.MentorID, in.TaskType, in.ChapterName, in.Minutes, in.Rating, in.ChaptersCompleted))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23503" || pgErr.Code == "22P02") {
		return Task{}, ErrMentorNotFound
	}
	return t, err
}

func (s *Store) Get(ctx context.Context, id string) (Task, error) {
	return scanTask(s.DB.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id::text = $1", id))
}

// ListRecords satisfies payment.RecordSource: oldest first, ties broken by id.
func (s *Store) ListRecords(ctx context.Context, mentorID string, window payment.Window) ([]Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE mentor_id::text = $1"
	args := []any{mentorID}
	if !window.Start.IsZero() {
		args = append(args, window.Start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !window.End.IsZero() {
		args = append(args, window.End)
		query += fmt.Sprintf(" AND date < $%d", len(args))
	}
	query += " ORDER BY date, id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) (Task, error) {
	return scanTask(s.DB.QueryRow(ctx, "DELETE FROM tasks WHERE id::text = $1 RETURNING "+taskColumns, id))
}
