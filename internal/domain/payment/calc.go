package payment

import (
	"fmt"
	"math"
)

type chapterTotals struct {
	minutes float64
	count   int
	ratings []float64
}

// Compute derives a mentor's pay from their work records. It never fails:
// records that do not qualify are skipped and missing fields contribute zero.
// The input slice is only read.
func Compute(records []WorkRecord, ratePerMinute float64) Breakdown {
	if ratePerMinute == 0 || math.IsNaN(ratePerMinute) {
		ratePerMinute = DefaultRatePerMinute
	}

	// Chapters are kept in first-seen order so float sums are reproducible.
	chapters := map[string]*chapterTotals{}
	var order []string
	var otherPay float64
	var chaptersCompleted int

	for _, record := range records {
		if record.TaskType != TaskTypeLecture {
			chaptersCompleted += record.ChaptersCompleted
			otherPay += float64(record.ChaptersCompleted) * ChapterRate
			continue
		}
		if record.Minutes <= 0 || record.ChapterName == "" {
			continue
		}
		totals, ok := chapters[record.ChapterName]
		if !ok {
			totals = &chapterTotals{}
			chapters[record.ChapterName] = totals
			order = append(order, record.ChapterName)
		}
		totals.minutes += record.Minutes
		totals.count++
		if record.Rating != nil {
			totals.ratings = append(totals.ratings, *record.Rating)
		}
	}

	var billable, ratingSum float64
	var lectures, ratingCount int
	for _, name := range order {
		totals := chapters[name]
		billable += math.Min(totals.minutes, ChapterMinuteCap)
		lectures += totals.count
		for _, rating := range totals.ratings {
			ratingSum += rating
			ratingCount++
		}
	}

	averageRating := DefaultAverageRating
	if ratingCount > 0 {
		averageRating = ratingSum / float64(ratingCount)
	}

	rateModifier := RatingModifier(averageRating)
	frequencyModifier := FrequencyModifier(lectures, billable)

	basePay := billable * ratePerMinute
	lecturePay := basePay * rateModifier * frequencyModifier

	return Breakdown{
		FinalPay:               roundHalfUp(lecturePay + otherPay),
		LecturePay:             roundHalfUp(lecturePay),
		OtherPay:               roundHalfUp(otherPay),
		BillableMinutes:        billable,
		TotalChaptersCompleted: chaptersCompleted,
		RatePerMinute:          ratePerMinute,
		RateModifier:           rateModifier,
		FrequencyModifier:      frequencyModifier,
		AverageRating:          fmt.Sprintf("%.2f", averageRating),
		LecturesCount:          lectures,
		BasePayLectures:        roundHalfUp(basePay),
		ChapterRate:            ChapterRate,
	}
}

// RatingModifier maps an average rating onto the quality multiplier. Both
// 2.5 and 3.5 fall in the standard band.
func RatingModifier(averageRating float64) float64 {
	if averageRating < 2.5 {
		return RateModifierLow
	}
	if averageRating <= 3.5 {
		return RateModifierStandard
	}
	return RateModifierFull
}

// FrequencyModifier is evaluated bonus first, then standard; anything else is
// penalised. Do not reorder the checks.
func FrequencyModifier(lectures int, billableMinutes float64) float64 {
	if lectures >= 3 && billableMinutes >= 180 {
		return FrequencyBonus
	}
	if lectures >= 2 && billableMinutes >= 120 {
		return FrequencyStandard
	}
	return FrequencyPenalty
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(value float64) float64 {
	return math.Floor(value + 0.5)
}
