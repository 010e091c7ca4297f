package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewRun - запись истории одного цикла review.
type ReviewRun struct {
	ID               uuid.UUID
	SkillName        string
	SkillPath        string
	Iteration        int
	AverageScore     int
	DescriptionScore int
	ContentScore     int
	ValidationErrors []string
	Suggestions      []string
	Passed           bool
	Duration         time.Duration
	CreatedAt        time.Time
}

func NewReviewRun(skill Skill, iteration int, sc Scorecard, v Verdict, duration time.Duration) *ReviewRun {
	return &ReviewRun{
		ID:               uuid.New(),
		SkillName:        skill.Name,
		SkillPath:        skill.Directory,
		Iteration:        iteration,
		AverageScore:     sc.AverageScore,
		DescriptionScore: sc.DescriptionScore,
		ContentScore:     sc.ContentScore,
		ValidationErrors: sc.ValidationErrors,
		Suggestions:      sc.Suggestions,
		Passed:           v.OverallPass,
		Duration:         duration,
		CreatedAt:        time.Now(),
	}
}
