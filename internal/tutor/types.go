package tutor

import "github.com/abhisek/skillpath/internal/course"

// FeedbackInput is the context for competency feedback on a failed quiz.
type FeedbackInput struct {
	CourseTitle string
	ModuleTitle string
	Objectives  []string
	Score       int
	Total       int
}

// PlanInput is the context for a remediation plan after the last failed
// exam attempt.
type PlanInput struct {
	CourseTitle  string
	ModuleTitles []string
	History      []course.ExamTurn
	LastFeedback string
}

// LessonInput is the context for a remedial lesson on one module.
type LessonInput struct {
	CourseTitle string
	Module      int
	ModuleTitle string
	Objectives  []string
	Feedback    string
}

// ExamInput is the context for examiner questions and exam grading.
type ExamInput struct {
	CourseTitle  string
	ModuleTitles []string
	History      []course.ExamTurn
}

// ProjectInput is the context for grading a final project submission.
type ProjectInput struct {
	CourseTitle string
	Project     course.FinalProject
	Submission  course.ProjectSubmission
}

// ChatInput is the context for one tutor chat reply.
type ChatInput struct {
	CourseTitle  string
	ModuleTitles []string
	History      []course.TutorMessage
	Question     string
}

// ChatInputFor builds a ChatInput from the instance's tutor history.
func ChatInputFor(inst *course.Instance, question string) ChatInput {
	return ChatInput{
		CourseTitle:  inst.Title,
		ModuleTitles: moduleTitles(inst.Modules),
		History:      inst.Progress.TutorHistory,
		Question:     question,
	}
}

// ExamInputFor builds an ExamInput from an instance's current attempt.
func ExamInputFor(inst *course.Instance) ExamInput {
	return ExamInput{
		CourseTitle:  inst.Title,
		ModuleTitles: moduleTitles(inst.Modules),
		History:      inst.Progress.FinalExam.History,
	}
}

// LessonInputFor builds a LessonInput for module idx, using the stored
// competency feedback when there is one.
func LessonInputFor(inst *course.Instance, idx int) (LessonInput, error) {
	m, err := inst.Module(idx)
	if err != nil {
		return LessonInput{}, err
	}
	in := LessonInput{
		CourseTitle: inst.Title,
		Module:      idx,
		ModuleTitle: m.Title,
		Objectives:  m.Objectives,
	}
	if q, ok := inst.Progress.QuizScores[idx]; ok {
		in.Feedback = q.CompetencyFeedback
	}
	return in, nil
}

func moduleTitles(mods []course.Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.Title
	}
	return out
}
