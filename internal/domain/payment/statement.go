package payment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type StatementDoc struct {
	MentorName  string
	MentorEmail string
	Statement   Statement
	Weekly      []WeeklyBreakdown
	GeneratedAt time.Time
}

// RenderStatementPDF writes a printable payment statement.
func RenderStatementPDF(w io.Writer, doc StatementDoc) error {
	b := doc.Statement.Breakdown

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payment Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Mentor: %s", doc.MentorName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", doc.MentorEmail))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", describeWindow(doc.Statement.Window)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", doc.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Lectures")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Lectures delivered: %d", b.LecturesCount),
		fmt.Sprintf("Billable minutes: %.0f (cap %d per chapter)", b.BillableMinutes, ChapterMinuteCap),
		fmt.Sprintf("Rate per minute: %.2f", b.RatePerMinute),
		fmt.Sprintf("Base pay: %.0f", b.BasePayLectures),
		fmt.Sprintf("Average rating: %s (x%.2f)", b.AverageRating, b.RateModifier),
		fmt.Sprintf("Frequency modifier: x%.2f", b.FrequencyModifier),
		fmt.Sprintf("Lecture pay: %.0f", b.LecturePay),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Other work")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Chapters completed: %d at %.0f", b.TotalChaptersCompleted, b.ChapterRate))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Other pay: %.0f", b.OtherPay))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.0f", b.FinalPay))
	pdf.Ln(10)

	if len(doc.Weekly) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Weekly")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, week := range doc.Weekly {
			pdf.Cell(0, 7, fmt.Sprintf("Week of %s: %d records, %.0f", week.Window.Start.Format("2006-01-02"), week.RecordCount, week.Breakdown.FinalPay))
			pdf.Ln(6)
		}
	}

	return pdf.Output(w)
}

// WriteRegisterCSV writes one row per mentor with the pay components.
func WriteRegisterCSV(w io.Writer, rows []RegisterRow) error {
	writer := csv.NewWriter(w)
	header := []string{"mentor_id", "name", "email", "lectures", "billable_minutes", "average_rating", "lecture_pay", "chapters_completed", "other_pay", "final_pay"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		b := row.Breakdown
		record := []string{
			row.MentorID,
			row.Name,
			row.Email,
			strconv.Itoa(b.LecturesCount),
			strconv.FormatFloat(b.BillableMinutes, 'f', -1, 64),
			b.AverageRating,
			fmt.Sprintf("%.0f", b.LecturePay),
			strconv.Itoa(b.TotalChaptersCompleted),
			fmt.Sprintf("%.0f", b.OtherPay),
			fmt.Sprintf("%.0f", b.FinalPay),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func describeWindow(w Window) string {
	switch {
	case w.IsOpen():
		return "all time"
	case w.End.IsZero():
		return fmt.Sprintf("since %s", w.Start.Format("2006-01-02"))
	case w.Start.IsZero():
		return fmt.Sprintf("until %s", w.End.AddDate(0, 0, -1).Format("2006-01-02"))
	default:
		return fmt.Sprintf("%s to %s", w.Start.Format("2006-01-02"), w.End.AddDate(0, 0, -1).Format("2006-01-02"))
	}
}
