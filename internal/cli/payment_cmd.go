package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mentordash/internal/domain/mentor"
	"mentordash/internal/domain/payment"
	"mentordash/internal/domain/task"
)

func newPaymentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Compute and print mentor payments",
	}

	cmd.AddCommand(
		newPaymentComputeCmd(),
		newPaymentStatementCmd(app),
	)

	return cmd
}

type computeInput struct {
	Records       []payment.WorkRecord `json:"records"`
	RatePerMinute float64              `json:"ratePerMinute"`
}

// readRecords accepts either a bare JSON array of records or an object with
// records and ratePerMinute.
func readRecords(r io.Reader) (computeInput, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return computeInput{}, err
	}
	var in computeInput
	if err := json.Unmarshal(raw, &in.Records); err == nil {
		return in, nil
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return computeInput{}, fmt.Errorf("parsing records: %w", err)
	}
	return in, nil
}

func newPaymentComputeCmd() *cobra.Command {
	var file string
	var rate float64

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a breakdown from a JSON file of work records",
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}

			in, err := readRecords(src)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rate") {
				in.RatePerMinute = rate
			}
			if in.RatePerMinute < 0 {
				return errors.New("rate must not be negative")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payment.Compute(in.Records, in.RatePerMinute))
		},
	}

	cmd.Flags().StringVar(&file, "file", "-", "JSON file with records (- for stdin)")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Rate per minute (default 10 when 0)")

	return cmd
}

func newPaymentStatementCmd(app *App) *cobra.Command {
	var mentorID, out string
	var days, weeks int

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Write a mentor's payment statement as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			mentors := mentor.NewStore(pool)
			payments := payment.NewService(task.NewStore(pool), mentors)

			m, err := mentors.Get(ctx, mentorID)
			if err != nil {
				return err
			}
			now := time.Now()
			statement, err := payments.Summary(ctx, mentorID, payment.LastDays(now, days))
			if err != nil {
				return err
			}
			weekly, err := payments.Weekly(ctx, mentorID, weeks)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("statement-%s.pdf", mentorID)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			doc := payment.StatementDoc{MentorName: m.Name, MentorEmail: m.Email, Statement: statement, Weekly: weekly, GeneratedAt: now}
			if err := payment.RenderStatementPDF(f, doc); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (final pay %.0f)\n", out, statement.Breakdown.FinalPay)
			return nil
		},
	}

	cmd.Flags().StringVar(&mentorID, "mentor", "", "Mentor ID")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default statement-<mentor>.pdf)")
	cmd.Flags().IntVar(&days, "days", payment.RecentWindowDays, "Trailing window in days (0 for all time)")
	cmd.Flags().IntVar(&weeks, "weeks", app.Config.StatementWeeks, "Weekly rows to include")
	_ = cmd.MarkFlagRequired("mentor")

	return cmd
}
