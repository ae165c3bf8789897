package tutor

import "github.com/abhisek/skillpath/internal/llm"

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func object(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

// CompetencyFeedbackSchema constrains feedback on a failed quiz.
var CompetencyFeedbackSchema = &llm.Schema{
	Name:        "competency-feedback",
	Description: "Short remedial feedback for a learner who did not pass a module quiz",
	Definition: object(map[string]any{
		"feedback": str("2-4 sentences naming the gaps and what to revisit"),
	}, "feedback"),
}

// RemediationPlanSchema constrains the study plan after the last failed
// exam attempt.
var RemediationPlanSchema = &llm.Schema{
	Name:        "remediation-plan",
	Description: "A study plan the learner must follow before the exam cycle resets",
	Definition: object(map[string]any{
		"plan": str("Markdown study plan with 3-6 concrete steps"),
	}, "plan"),
}

// RemedialLessonSchema constrains a catch-up lesson for one module.
var RemedialLessonSchema = &llm.Schema{
	Name:        "remedial-lesson",
	Description: "A short catch-up lesson with explanation, example and practice task",
	Definition: object(map[string]any{
		"title":       str("Short title for the lesson (3-8 words)"),
		"explanation": str("Clear explanation of the concept (3-6 sentences)"),
		"example":     str("A worked example, code or scenario"),
		"practice":    str("One practice task the learner can do in under 15 minutes"),
	}, "title", "explanation", "example", "practice"),
}

// ExamQuestionSchema constrains the examiner's next question.
var ExamQuestionSchema = &llm.Schema{
	Name:        "exam-question",
	Description: "The next question of a conversational final exam",
	Definition: object(map[string]any{
		"question": str("One open question that tests understanding, not recall"),
	}, "question"),
}

// ExamVerdictSchema constrains the grade of an exam attempt.
var ExamVerdictSchema = &llm.Schema{
	Name:        "exam-verdict",
	Description: "Pass or fail decision for a conversational final exam",
	Definition: object(map[string]any{
		"passed":   map[string]any{"type": "boolean"},
		"feedback": str("2-4 sentences justifying the decision"),
	}, "passed", "feedback"),
}

// ProjectEvaluationSchema constrains the assessment of a final project.
var ProjectEvaluationSchema = &llm.Schema{
	Name:        "project-evaluation",
	Description: "Scored assessment of a final project submission",
	Definition: object(map[string]any{
		"overall_score":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"overall_feedback": str("3-5 sentences of overall feedback"),
		"competencies": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"name":     str("Competency or evaluation criterion"),
				"score":    map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
				"feedback": str("One sentence on this competency"),
			}, "name", "score", "feedback"),
		},
	}, "overall_score", "overall_feedback", "competencies"),
}

// TutorReplySchema constrains a tutor chat answer.
var TutorReplySchema = &llm.Schema{
	Name:        "tutor-chat",
	Description: "The tutor's answer to a learner question",
	Definition: object(map[string]any{
		"answer": str("A short, concrete answer in plain text or markdown"),
	}, "answer"),
}
