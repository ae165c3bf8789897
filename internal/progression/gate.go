package progression

import "github.com/abhisek/skillpath/internal/course"

// ProjectSatisfied reports whether the course has no final project or its
// evaluation reached the approval score.
func ProjectSatisfied(inst *course.Instance, p course.Progress) bool {
	if inst.FinalProject == nil {
		return true
	}
	return p.ProjectEvaluation != nil && p.ProjectEvaluation.Approved()
}

// ExamEligible reports whether a final exam attempt may begin: every
// module completed and the project, if any, approved.
func ExamEligible(inst *course.Instance, p course.Progress) bool {
	return p.AllModulesCompleted() && ProjectSatisfied(inst, p)
}

// CourseComplete is the completion gate: exam eligibility plus a passed
// final exam.
func CourseComplete(inst *course.Instance, p course.Progress) bool {
	return ExamEligible(inst, p) && p.FinalExam.Status == course.ExamPassed
}

// CourseStatus derives the coarse enrollment status from p. A submitted
// project awaiting evaluation holds the course in pending_review. Completed
// is never left once reached.
func CourseStatus(inst *course.Instance, p course.Progress) course.Status {
	switch {
	case p.Status == course.StatusCompleted, CourseComplete(inst, p):
		return course.StatusCompleted
	case p.ProjectSubmission != nil && p.ProjectEvaluation == nil:
		return course.StatusPendingReview
	default:
		return course.StatusInProgress
	}
}
