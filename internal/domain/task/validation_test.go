package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentordash/internal/domain/payment"
)

func ptr(v float64) *float64 { return &v }

func TestNormalizeLecture(t *testing.T) {
	out, err := Normalize(Input{
		MentorID:          " m1 ",
		TaskType:          payment.TaskTypeLecture,
		ChapterName:       " Optics ",
		Minutes:           90,
		Rating:            ptr(4),
		ChaptersCompleted: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", out.MentorID)
	assert.Equal(t, "Optics", out.ChapterName)
	assert.Equal(t, 90.0, out.Minutes)
	require.NotNil(t, out.Rating)
	assert.Equal(t, 4.0, *out.Rating)
	assert.Zero(t, out.ChaptersCompleted)
}

func TestNormalizeLectureWithoutRating(t *testing.T) {
	out, err := Normalize(Input{MentorID: "m1", TaskType: payment.TaskTypeLecture, ChapterName: "Optics", Minutes: 30})
	require.NoError(t, err)
	assert.Nil(t, out.Rating)
}

func TestNormalizeOtherWork(t *testing.T) {
	out, err := Normalize(Input{MentorID: "m1", TaskType: payment.TaskTypeContent, ChaptersCompleted: 2, Minutes: 40, ChapterName: "x", Rating: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 2, out.ChaptersCompleted)
	assert.Zero(t, out.Minutes)
	assert.Empty(t, out.ChapterName)
	assert.Nil(t, out.Rating)
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing mentor", Input{TaskType: payment.TaskTypeContent, ChaptersCompleted: 1}, "mentorId"},
		{"missing type", Input{MentorID: "m1"}, "taskType"},
		{"unknown type", Input{MentorID: "m1", TaskType: "Gardening"}, "taskType"},
		{"lecture without chapter", Input{MentorID: "m1", TaskType: payment.TaskTypeLecture, Minutes: 10}, "chapterName"},
		{"lecture zero minutes", Input{MentorID: "m1", TaskType: payment.TaskTypeLecture, ChapterName: "a"}, "minutes"},
		{"lecture negative minutes", Input{MentorID: "m1", TaskType: payment.TaskTypeLecture, ChapterName: "a", Minutes: -5}, "minutes"},
		{"rating too high", Input{MentorID: "m1", TaskType: payment.TaskTypeLecture, ChapterName: "a", Minutes: 5, Rating: ptr(6)}, "rating"},
		{"rating too low", Input{MentorID: "m1", TaskType: payment.TaskTypeLecture, ChapterName: "a", Minutes: 5, Rating: ptr(0)}, "rating"},
		{"no chapters", Input{MentorID: "m1", TaskType: payment.TaskTypeMentorship}, "chaptersCompleted"},
		{"negative chapters", Input{MentorID: "m1", TaskType: payment.TaskTypeOther, ChaptersCompleted: -1}, "chaptersCompleted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}
