package task

import "mentordash/internal/domain/payment"

// Task is a stored work record.
type Task = payment.WorkRecord

// Input is what a mentor submits. The date is always assigned by the server.
type Input struct {
	MentorID          string   `json:"mentorId"`
	TaskType          string   `json:"taskType"`
	ChapterName       string   `json:"chapterName"`
	Minutes           float64  `json:"minutes"`
	Rating            *float64 `json:"rating"`
	ChaptersCompleted int      `json:"chaptersCompleted"`
}

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change is a notification that a mentor's task set moved.
type Change struct {
	MentorID string `json:"mentorId"`
	TaskID   string `json:"taskId"`
	Op       string `json:"op"`
}
