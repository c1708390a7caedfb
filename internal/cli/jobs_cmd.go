package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mentordash/internal/domain/auth"
	"mentordash/internal/domain/mentor"
	"mentordash/internal/domain/payment"
	"mentordash/internal/domain/reports"
	"mentordash/internal/domain/task"
	"mentordash/internal/platform/jobs"
)

func newJobsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run background jobs and inspect their history",
	}

	cmd.AddCommand(
		newJobsRunCmd(app),
		newJobsListCmd(app),
	)

	return cmd
}

func newJobsRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "run <job>",
		Short:     "Run a job now (weekly_statements, session_purge)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{jobs.JobWeeklyStatements, jobs.JobSessionPurge},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			mentors := mentor.NewStore(pool)
			svc := jobs.New(pool, app.Config)
			svc.Payments = payment.NewService(task.NewStore(pool), mentors)
			svc.Archive = payment.NewArchive(pool)
			svc.Mentors = mentors
			svc.Sessions = auth.NewStore(pool)

			details, err := svc.Trigger(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(details)
		},
	}
}

func newJobsListCmd(app *App) *cobra.Command {
	var jobType, status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent job runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := reports.NewStore(pool).ListJobRuns(ctx, reports.JobRunFilter{JobType: jobType, Status: status}, limit, 0)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tJOB\tSTATUS\tSTARTED")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", run.ID, run.JobType, run.Status, run.StartedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&jobType, "job", "", "Filter by job type")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to show")

	return cmd
}
