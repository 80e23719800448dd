package assessment

// CurrentSubmission returns the authoritative submission of a student for an assignment:
// the most recent one by CreatedAt, ties going to the later one in input order.
func CurrentSubmission(studentID, assignmentID string, submissions []Submission) (Submission, bool) {
	var (
		current Submission
		found   bool
	)
	for _, sub := range submissions {
		if sub.StudentID != studentID || sub.AssignmentID != assignmentID {
			continue
		}
		if !found || !sub.CreatedAt.Before(current.CreatedAt) {
			current = sub
			found = true
		}
	}
	return current, found
}

// IsAssignmentSatisfied reports whether the current submission is submitted or graded.
func IsAssignmentSatisfied(studentID string, assignment Assignment, submissions []Submission) bool {
	sub, ok := CurrentSubmission(studentID, assignment.ID, submissions)
	return ok && sub.Status.IsValid()
}

// IsQuizSatisfied reports whether any attempt reached the pass percentage.
func IsQuizSatisfied(studentID string, quiz Quiz, attempts []QuizAttempt) bool {
	for _, att := range attempts {
		if att.StudentID == studentID && att.QuizID == quiz.ID && att.Percentage >= quiz.PassPercentage {
			return true
		}
	}
	return false
}

// CountAttempts returns how many attempts a student made on a quiz.
func CountAttempts(studentID, quizID string, attempts []QuizAttempt) int {
	var n int
	for _, att := range attempts {
		if att.StudentID == studentID && att.QuizID == quizID {
			n++
		}
	}
	return n
}

// BestAttempt returns the highest scoring attempt of a student on a quiz.
func BestAttempt(studentID, quizID string, attempts []QuizAttempt) (QuizAttempt, bool) {
	var (
		best  QuizAttempt
		found bool
	)
	for _, att := range attempts {
		if att.StudentID != studentID || att.QuizID != quizID {
			continue
		}
		if !found || att.Percentage > best.Percentage {
			best = att
			found = true
		}
	}
	return best, found
}
