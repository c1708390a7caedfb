package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArchivedStatement is a weekly statement frozen by the statements job.
type ArchivedStatement struct {
	MentorID    string    `json:"mentorId"`
	WeekStart   time.Time `json:"weekStart"`
	RecordCount int       `json:"recordCount"`
	FinalPay    float64   `json:"finalPay"`
	Breakdown   Breakdown `json:"breakdown"`
	ComputedAt  time.Time `json:"computedAt"`
}

type Archive struct {
	DB *pgxpool.Pool
}

func NewArchive(db *pgxpool.Pool) *Archive {
	return &Archive{DB: db}
}

// Save upserts the statement for its mentor and week start.
func (a *Archive) Save(ctx context.Context, st Statement) error {
	payload, err := json.Marshal(st.Breakdown)
	if err != nil {
		return err
	}
	_, err = a.DB.Exec(ctx, `
    INSERT INTO payment_statements (mentor_id, week_start, record_count, final_pay, breakdown_json, computed_at)
    VALUES ($1,$2,$3,$4,$5,now())
    ON CONFLICT (mentor_id, week_start) DO UPDATE
    SET record_count = EXCLUDED.record_count,
        final_pay = EXCLUDED.final_pay,
        breakdown_json = EXCLUDED.breakdown_json,
        computed_at = now()
  `, st.MentorID, st.Window.Start, st.RecordCount, st.Breakdown.FinalPay, payload)
	if err != nil {
		return fmt.Errorf("saving statement for mentor %s: %w", st.MentorID, err)
	}
	return nil
}

func (a *Archive) List(ctx context.Context, mentorID string, limit int) ([]ArchivedStatement, error) {
	if limit <= 0 {
		limit = DefaultWeeks
	}
	rows, err := a.DB.Query(ctx, `
    SELECT mentor_id::text, week_start, record_count, final_pay, breakdown_json, computed_at
    FROM payment_statements
    WHERE mentor_id::text = $1
    ORDER BY week_start DESC
    LIMIT $2
  `, mentorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ArchivedStatement{}
	for rows.Next() {
		var (
			st  ArchivedStatement
			raw []byte
		)
		if err := rows.Scan(&st.MentorID, &st.WeekStart, &st.RecordCount, &st.FinalPay, &raw, &st.ComputedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &st.Breakdown); err != nil {
			return nil, fmt.Errorf("decoding statement breakdown: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
