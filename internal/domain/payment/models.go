package payment

import "time"

// WorkRecord is a submitted task as seen by the calculator. Rating is nil when
// the mentor was not rated for the record.
type WorkRecord struct {
	ID                string    `json:"id,omitempty"`
	MentorID          string    `json:"mentorId,omitempty"`
	TaskType          string    `json:"taskType"`
	ChapterName       string    `json:"chapterName,omitempty"`
	Minutes           float64   `json:"minutes,omitempty"`
	Rating            *float64  `json:"rating,omitempty"`
	ChaptersCompleted int       `json:"chaptersCompleted,omitempty"`
	Date              time.Time `json:"date"`
}

type Breakdown struct {
	FinalPay               float64 `json:"finalPay"`
	LecturePay             float64 `json:"lecturePay"`
	OtherPay               float64 `json:"otherPay"`
	BillableMinutes        float64 `json:"billableMinutes"`
	TotalChaptersCompleted int     `json:"totalChaptersCompleted"`
	RatePerMinute          float64 `json:"ratePerMinute"`
	RateModifier           float64 `json:"rateModifier"`
	FrequencyModifier      float64 `json:"frequencyModifier"`
	AverageRating          string  `json:"averageRating"`
	LecturesCount          int     `json:"lecturesCount"`
	BasePayLectures        float64 `json:"basePayLectures"`
	ChapterRate            float64 `json:"chapterRate"`
}

type Statement struct {
	MentorID    string    `json:"mentorId"`
	Window      Window    `json:"window"`
	RecordCount int       `json:"recordCount"`
	Breakdown   Breakdown `json:"breakdown"`
}

type WeeklyBreakdown struct {
	Window      Window    `json:"window"`
	RecordCount int       `json:"recordCount"`
	Breakdown   Breakdown `json:"breakdown"`
}

// RegisterRow is one line of the all-mentor payment register.
type RegisterRow struct {
	MentorID  string
	Name      string
	Email     string
	Breakdown Breakdown
}
