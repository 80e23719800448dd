package completion

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/progress"
)

// buildIndex returns a course with 2 modules of 1 session each, holding `perModule` items.
func buildIndex(perModule ...int) *course.Index {
	var (
		modules  []course.Module
		sessions []course.Session
		items    []course.ContentItem
	)
	for m, n := range perModule {
		modID := fmt.Sprintf("m%d", m+1)
		sessID := fmt.Sprintf("s%d", m+1)
		modules = append(modules, course.Module{ID: modID, CourseID: "c1", Title: modID, Order: m})
		sessions = append(sessions, course.Session{ID: sessID, ModuleID: modID, Order: 1})
		for i := 0; i < n; i++ {
			items = append(items, course.ContentItem{
				ID:        fmt.Sprintf("%s-i%d", modID, i+1),
				SessionID: sessID,
				Order:     i,
				Type:      course.ContentVideo,
			})
		}
	}
	return course.NewIndex("c1", modules, sessions, items)
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{3, 4, 75},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds half away from zero
		{5, 8, 63},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.done, tt.total), func(t *testing.T) {
			if got := Percentage(tt.done, tt.total); got != tt.want {
				t.Errorf("failed! Percentage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPercentageBounds(t *testing.T) {
	for total := 0; total <= 50; total++ {
		for done := 0; done <= total; done++ {
			if p := Percentage(done, total); p < 0 || p > 100 {
				t.Fatalf("failed! Percentage(%d, %d) = %d out of bounds", done, total, p)
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	idx := buildIndex(2, 2)
	assignments := []assessment.Assignment{{ID: "a1", CourseID: "c1"}}
	submitted := []assessment.Submission{{StudentID: "stud", AssignmentID: "a1", Status: assessment.StatusSubmitted, CreatedAt: at}}
	quiz := []assessment.Quiz{{ID: "q1", CourseID: "c1", PassPercentage: 70}}

	tests := []struct {
		name    string
		in      Input
		wantPct int
		want    Result
	}{
		{
			name: "3 of 4 done, assignment submitted",
			in: Input{
				Index: idx, StudentID: "stud",
				Completed:   progress.NewSet("m1-i1", "m1-i2", "m2-i1"),
				Assignments: assignments, Submissions: submitted,
			},
			wantPct: 75,
			want:    Result{ContentSatisfied: false, AssignmentsSatisfied: true, QuizzesSatisfied: true, Completed: false},
		},
		{
			name: "all done, assignment submitted",
			in: Input{
				Index: idx, StudentID: "stud",
				Completed:   progress.NewSet("m1-i1", "m1-i2", "m2-i1", "m2-i2"),
				Assignments: assignments, Submissions: submitted,
			},
			wantPct: 100,
			want:    Result{ContentSatisfied: true, AssignmentsSatisfied: true, QuizzesSatisfied: true, Completed: true},
		},
		{
			name: "all done, assignment missing",
			in: Input{
				Index: idx, StudentID: "stud",
				Completed:   progress.NewSet("m1-i1", "m1-i2", "m2-i1", "m2-i2"),
				Assignments: assignments,
			},
			wantPct: 100,
			want:    Result{ContentSatisfied: true, AssignmentsSatisfied: false, QuizzesSatisfied: true, Completed: false},
		},
		{
			name: "all done, quiz failed",
			in: Input{
				Index: idx, StudentID: "stud",
				Completed: progress.NewSet("m1-i1", "m1-i2", "m2-i1", "m2-i2"),
				Quizzes:   quiz,
				Attempts:  []assessment.QuizAttempt{{StudentID: "stud", QuizID: "q1", Percentage: 50}},
			},
			wantPct: 100,
			want:    Result{ContentSatisfied: true, AssignmentsSatisfied: true, QuizzesSatisfied: false, Completed: false},
		},
		{
			name: "all done, quiz passed on second attempt",
			in: Input{
				Index: idx, StudentID: "stud",
				Completed: progress.NewSet("m1-i1", "m1-i2", "m2-i1", "m2-i2"),
				Quizzes:   quiz,
				Attempts: []assessment.QuizAttempt{
					{StudentID: "stud", QuizID: "q1", Percentage: 50},
					{StudentID: "stud", QuizID: "q1", Percentage: 80},
				},
			},
			wantPct: 100,
			want:    Result{ContentSatisfied: true, AssignmentsSatisfied: true, QuizzesSatisfied: true, Completed: true},
		},
		{
			name:    "empty course",
			in:      Input{Index: buildIndex(), StudentID: "stud", Completed: progress.NewSet()},
			wantPct: 0,
			want:    Result{ContentSatisfied: true, AssignmentsSatisfied: true, QuizzesSatisfied: true, Completed: true},
		},
		{
			name: "stale ids in the completed set are ignored",
			in: Input{
				Index: idx, StudentID: "stud",
				Completed: progress.NewSet("m1-i1", "gone-1", "gone-2", "gone-3"),
			},
			wantPct: 25,
			want:    Result{AssignmentsSatisfied: true, QuizzesSatisfied: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.in)
			if got.Progress.Percentage != tt.wantPct {
				t.Errorf("failed! Percentage = %d, want %d", got.Progress.Percentage, tt.wantPct)
			}
			assert.Equal(t, tt.want.ContentSatisfied, got.ContentSatisfied, "ContentSatisfied")
			assert.Equal(t, tt.want.AssignmentsSatisfied, got.AssignmentsSatisfied, "AssignmentsSatisfied")
			assert.Equal(t, tt.want.QuizzesSatisfied, got.QuizzesSatisfied, "QuizzesSatisfied")
			assert.Equal(t, tt.want.Completed, got.Completed, "Completed")
			if got.Progress.CompletedCount < got.Progress.Total {
				assert.False(t, got.Completed, "a course with missing content cannot be completed")
			}
		})
	}
}

func TestEvaluate_ModuleBreakdown(t *testing.T) {
	idx := buildIndex(3, 1)
	got := Evaluate(Input{Index: idx, StudentID: "stud", Completed: progress.NewSet("m1-i1", "m2-i1")})

	assert.Equal(t, CourseProgress{
		CourseID:       "c1",
		OwnerID:        "stud",
		Total:          4,
		CompletedCount: 2,
		Percentage:     50,
		Modules: []ModuleProgress{
			{ModuleID: "m1", Title: "m1", Total: 3, CompletedCount: 1, Percentage: 33},
			{ModuleID: "m2", Title: "m2", Total: 1, CompletedCount: 1, Percentage: 100},
		},
	}, got.Progress)
}

func TestEvaluate_IgnoresOtherCourses(t *testing.T) {
	in := Input{
		Index: buildIndex(1), StudentID: "stud",
		Completed:   progress.NewSet("m1-i1"),
		Assignments: []assessment.Assignment{{ID: "a9", CourseID: "c9"}},
		Quizzes:     []assessment.Quiz{{ID: "q9", CourseID: "c9", PassPercentage: 50}},
	}
	got := Evaluate(in)
	if !got.AssignmentsSatisfied || !got.QuizzesSatisfied || !got.Completed {
		t.Errorf("failed! Evaluate() = %+v, want other courses' assessments ignored", got)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	in := Input{Index: buildIndex(2, 2), StudentID: "stud", Completed: progress.NewSet("m1-i1")}
	assert.Equal(t, Evaluate(in), Evaluate(in))
}

func TestDelivery(t *testing.T) {
	idx := buildIndex(1, 1)
	got := Delivery(idx, "officer-1", progress.NewSet("m2-i1"))

	assert.Equal(t, "officer-1", got.OwnerID)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.CompletedCount)
	assert.Equal(t, 50, got.Percentage)
}
