package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillpath/internal/course"
)

const feedbackSystemPrompt = `You are a supportive technical mentor. A learner just failed a module quiz. Point out what to revisit without repeating the quiz questions.`

func buildFeedbackUserMessage(in FeedbackInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	fmt.Fprintf(&b, "Module: %s\n", in.ModuleTitle)
	fmt.Fprintf(&b, "Quiz score: %d/%d\n", in.Score, in.Total)
	writeList(&b, "Learning objectives", in.Objectives)

	b.WriteString(`
Instructions:
Write 2-4 sentences of feedback. Name the objectives that most likely need work given the score, and suggest what to re-read before retaking the quiz. Do not invent quiz questions.`)

	return b.String()
}

const planSystemPrompt = `You are a learning coach. A learner has used every attempt of a final exam. Write the study plan they must complete before trying again.`

func buildPlanUserMessage(in PlanInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	writeList(&b, "Modules", in.ModuleTitles)
	if in.LastFeedback != "" {
		fmt.Fprintf(&b, "\nExaminer feedback on the last attempt:\n%s\n", in.LastFeedback)
	}
	writeTranscript(&b, in.History)

	b.WriteString(`
Instructions:
Write a markdown study plan with 3-6 numbered steps. Each step names a module to revisit and a concrete exercise. Focus on the weaknesses visible in the transcript.`)

	return b.String()
}

const lessonSystemPrompt = `You are a patient technical tutor. Write a short catch-up lesson for a learner who is struggling with one module.`

func buildLessonUserMessage(in LessonInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	fmt.Fprintf(&b, "Module: %s\n", in.ModuleTitle)
	writeList(&b, "Learning objectives", in.Objectives)
	if in.Feedback != "" {
		fmt.Fprintf(&b, "\nFeedback from the last quiz:\n%s\n", in.Feedback)
	}

	b.WriteString(`
Instructions:
1. Explain the weakest concept in 3-6 sentences.
2. Give one worked example.
3. Give one practice task that takes under 15 minutes.`)

	return b.String()
}

const examSystemPrompt = `You are the examiner of a conversational final exam. You test whether the learner can apply what the course taught.`

func buildQuestionUserMessage(in ExamInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	writeList(&b, "Modules", in.ModuleTitles)
	writeTranscript(&b, in.History)

	b.WriteString(`
Instructions:
Ask the next question. Cover a module the transcript has not touched yet. Ask exactly one question.`)

	return b.String()
}

func buildVerdictUserMessage(in ExamInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	writeList(&b, "Modules", in.ModuleTitles)
	writeTranscript(&b, in.History)

	b.WriteString(`
Instructions:
Decide whether the learner passed. Pass only if the answers show working understanding of most modules. Justify the decision in 2-4 sentences.`)

	return b.String()
}

const projectSystemPrompt = `You are a senior reviewer grading a capstone project. Score strictly against the evaluation criteria.`

func buildProjectUserMessage(in ProjectInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	fmt.Fprintf(&b, "Project: %s\n", in.Project.Title)
	if in.Project.Description != "" {
		fmt.Fprintf(&b, "Brief: %s\n", in.Project.Description)
	}
	writeList(&b, "Deliverables", in.Project.Deliverables)
	writeList(&b, "Evaluation criteria", in.Project.Criteria)
	fmt.Fprintf(&b, "\nSubmission:\n%s\n", in.Submission.Content)
	writeList(&b, "Links", in.Submission.Links)

	b.WriteString(`
Instructions:
Score each evaluation criterion from 0 to 100 and give an overall score from 0 to 100. A score of 70 or more approves the project.`)

	return b.String()
}

const chatSystemPrompt = `You are the course tutor. Answer the learner's question about the course material. Keep answers short and concrete and do not solve graded quizzes or the final exam for them.`

// chatWindow is the number of earlier chat messages replayed to the model.
const chatWindow = 10

func buildChatUserMessage(in ChatInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %s\n", in.CourseTitle)
	writeList(&b, "Modules", in.ModuleTitles)
	fmt.Fprintf(&b, "\nQuestion:\n%s\n", in.Question)

	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func writeTranscript(b *strings.Builder, history []course.ExamTurn) {
	b.WriteString("\nTranscript:\n")
	if len(history) == 0 {
		b.WriteString("None yet\n")
		return
	}
	for _, t := range history {
		fmt.Fprintf(b, "[%s] %s\n", t.Role, t.Content)
	}
}
