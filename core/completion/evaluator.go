package completion

import (
	"math"

	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/progress"
)

type (
	ModuleProgress struct {
		ModuleID       string `json:"module_id"`
		Title          string `json:"title"`
		Total          int    `json:"total"`
		CompletedCount int    `json:"completed_count"`
		Percentage     int    `json:"percentage"`
	}

	// CourseProgress is derived on demand and never persisted.
	CourseProgress struct {
		CourseID       string           `json:"course_id"`
		OwnerID        string           `json:"owner_id"`
		Total          int              `json:"total"`
		CompletedCount int              `json:"completed_count"`
		Percentage     int              `json:"percentage"`
		Modules        []ModuleProgress `json:"modules"`
	}

	// Input is scoped to a single course & student.
	Input struct {
		Index       *course.Index
		StudentID   string
		Completed   progress.Set
		Assignments []assessment.Assignment
		Submissions []assessment.Submission
		Quizzes     []assessment.Quiz
		Attempts    []assessment.QuizAttempt
	}

	Result struct {
		Progress             CourseProgress `json:"progress"`
		ContentSatisfied     bool           `json:"content_satisfied"`
		AssignmentsSatisfied bool           `json:"assignments_satisfied"`
		QuizzesSatisfied     bool           `json:"quizzes_satisfied"`
		Completed            bool           `json:"completed"`
	}
)

// Percentage returns round(100 * done / total), half away from zero; 0 when there is nothing to do.
func Percentage(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func courseProgress(idx *course.Index, ownerID string, set progress.Set) CourseProgress {
	cp := CourseProgress{
		CourseID: idx.CourseID(),
		OwnerID:  ownerID,
		Modules:  make([]ModuleProgress, 0),
	}
	for _, item := range idx.Flatten() {
		cp.Total++
		if set.Has(item.ID) {
			cp.CompletedCount++
		}
	}
	cp.Percentage = Percentage(cp.CompletedCount, cp.Total)

	for _, m := range idx.Modules() {
		mp := ModuleProgress{ModuleID: m.ID, Title: m.Title}
		for _, item := range idx.ModuleContents(m.ID) {
			mp.Total++
			if set.Has(item.ID) {
				mp.CompletedCount++
			}
		}
		mp.Percentage = Percentage(mp.CompletedCount, mp.Total)
		cp.Modules = append(cp.Modules, mp)
	}
	return cp
}

// Evaluate computes the progress of a student and whether the course is completed.
// It is a pure function of its input.
func Evaluate(in Input) Result {
	cp := courseProgress(in.Index, in.StudentID, in.Completed)
	res := Result{
		Progress:             cp,
		ContentSatisfied:     cp.CompletedCount == cp.Total,
		AssignmentsSatisfied: true,
		QuizzesSatisfied:     true,
	}

	courseID := in.Index.CourseID()
	for _, a := range in.Assignments {
		if a.CourseID != courseID {
			continue
		}
		if !assessment.IsAssignmentSatisfied(in.StudentID, a, in.Submissions) {
			res.AssignmentsSatisfied = false
			break
		}
	}
	for _, q := range in.Quizzes {
		if q.CourseID != courseID {
			continue
		}
		if !assessment.IsQuizSatisfied(in.StudentID, q, in.Attempts) {
			res.QuizzesSatisfied = false
			break
		}
	}

	res.Completed = res.ContentSatisfied && res.AssignmentsSatisfied && res.QuizzesSatisfied
	return res
}

// Delivery computes an officer's session delivery progress. There is no completion outcome.
func Delivery(idx *course.Index, officerID string, delivered progress.Set) CourseProgress {
	return courseProgress(idx, officerID, delivered)
}
