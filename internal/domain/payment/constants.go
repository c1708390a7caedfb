package payment

const (
	TaskTypeLecture      = "Lecture"
	TaskTypeContent      = "Content"
	TaskTypeTestSeries   = "TestSeries"
	TaskTypeDoubtSession = "DoubtSession"
	TaskTypeMentorship   = "Mentorship"
	TaskTypeOther        = "Other"

	// ChapterMinuteCap is the most lecture minutes billed for a single chapter.
	ChapterMinuteCap = 240
	// ChapterRate is paid per completed unit of non-lecture work.
	ChapterRate = 500

	DefaultRatePerMinute = 10
	DefaultAverageRating = 5.0

	RecentWindowDays = 90
	DefaultWeeks     = 8
)

const (
	RateModifierLow      = 0.6
	RateModifierStandard = 0.75
	RateModifierFull     = 1.0

	FrequencyBonus    = 1.2
	FrequencyStandard = 1.0
	FrequencyPenalty  = 0.8
)

var TaskTypes = []string{
	TaskTypeLecture,
	TaskTypeContent,
	TaskTypeTestSeries,
	TaskTypeDoubtSession,
	TaskTypeMentorship,
	TaskTypeOther,
}
