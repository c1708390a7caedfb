package task

import (
	"math"
	"slices"
	"strings"

	"mentordash/internal/domain/payment"
)

// Normalize checks a submission. Lectures need a chapter, positive minutes
// and an optional rating in [1,5]; other work needs completed chapters.
// Fields that do not apply to the task type are cleared.
func Normalize(in Input) (Input, error) {
	out := Input{
		MentorID: strings.TrimSpace(in.MentorID),
		TaskType: strings.TrimSpace(in.TaskType),
	}
	fields := map[string]string{}
	if out.MentorID == "" {
		fields["mentorId"] = "required"
	}

	switch {
	case out.TaskType == "":
		fields["taskType"] = "required"
	case !slices.Contains(payment.TaskTypes, out.TaskType):
		fields["taskType"] = "must be one of " + strings.Join(payment.TaskTypes, ", ")
	case out.TaskType == payment.TaskTypeLecture:
		out.ChapterName = strings.TrimSpace(in.ChapterName)
		out.Minutes = in.Minutes
		if out.ChapterName == "" {
			fields["chapterName"] = "required"
		}
		if math.IsNaN(in.Minutes) || math.IsInf(in.Minutes, 0) || in.Minutes <= 0 {
			fields["minutes"] = "must be greater than 0"
		}
		if in.Rating != nil {
			r := *in.Rating
			if math.IsNaN(r) || r < 1 || r > 5 {
				fields["rating"] = "must be between 1 and 5"
			} else {
				out.Rating = &r
			}
		}
	default:
		out.ChaptersCompleted = in.ChaptersCompleted
		if in.ChaptersCompleted <= 0 {
			fields["chaptersCompleted"] = "must be greater than 0"
		}
	}

	if len(fields) > 0 {
		return Input{}, &ValidationError{Fields: fields}
	}
	return out, nil
}
