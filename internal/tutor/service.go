// Package tutor wraps the LLM provider in the collaborator calls the
// progression engine relies on: competency feedback, remediation plans,
// remedial lessons, exam questions and grading, plus the course tutor chat.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/llm"
)

// Service issues schema-constrained tutor requests.
type Service struct {
	provider llm.Provider
	cfg      Config
	now      func() time.Time
}

// NewService creates a tutor service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func generate[T any](ctx context.Context, s *Service, purpose llm.Purpose, system, user string, schema *llm.Schema) (T, error) {
	return converse[T](ctx, s, purpose, system, []llm.Message{{Role: llm.RoleUser, Content: user}}, schema)
}

func converse[T any](ctx context.Context, s *Service, purpose llm.Purpose, system string, msgs []llm.Message, schema *llm.Schema) (T, error) {
	var out T
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    msgs,
		Schema:      schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return out, fmt.Errorf("%s generation: %w", purpose, err)
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return out, fmt.Errorf("parse %s response: %w", purpose, err)
	}
	return out, nil
}

func nonEmpty(purpose llm.Purpose, field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", &llm.ErrInvalidResponse{Schema: string(purpose), Err: fmt.Errorf("empty %s", field)}
	}
	return v, nil
}

// CompetencyFeedback explains what to revisit after a failed quiz.
func (s *Service) CompetencyFeedback(ctx context.Context, in FeedbackInput) (string, error) {
	out, err := generate[struct {
		Feedback string `json:"feedback"`
	}](ctx, s, llm.PurposeCompetencyFeedback, feedbackSystemPrompt, buildFeedbackUserMessage(in), CompetencyFeedbackSchema)
	if err != nil {
		return "", err
	}
	return nonEmpty(llm.PurposeCompetencyFeedback, "feedback", out.Feedback)
}

// RemediationPlan writes the study plan that gates the exam reset.
func (s *Service) RemediationPlan(ctx context.Context, in PlanInput) (string, error) {
	out, err := generate[struct {
		Plan string `json:"plan"`
	}](ctx, s, llm.PurposeRemediationPlan, planSystemPrompt, buildPlanUserMessage(in), RemediationPlanSchema)
	if err != nil {
		return "", err
	}
	return nonEmpty(llm.PurposeRemediationPlan, "plan", out.Plan)
}

// RemedialLesson writes a catch-up lesson for one module.
func (s *Service) RemedialLesson(ctx context.Context, in LessonInput) (course.RemedialLesson, error) {
	out, err := generate[struct {
		Title       string `json:"title"`
		Explanation string `json:"explanation"`
		Example     string `json:"example"`
		Practice    string `json:"practice"`
	}](ctx, s, llm.PurposeRemedialLesson, lessonSystemPrompt, buildLessonUserMessage(in), RemedialLessonSchema)
	if err != nil {
		return course.RemedialLesson{}, err
	}
	if _, err := nonEmpty(llm.PurposeRemedialLesson, "explanation", out.Explanation); err != nil {
		return course.RemedialLesson{}, err
	}
	return course.RemedialLesson{
		Module:      in.Module,
		Title:       out.Title,
		Explanation: out.Explanation,
		Example:     out.Example,
		Practice:    out.Practice,
		CreatedAt:   s.now(),
	}, nil
}

// ExamQuestion asks the next examiner question of the current attempt.
func (s *Service) ExamQuestion(ctx context.Context, in ExamInput) (string, error) {
	out, err := generate[struct {
		Question string `json:"question"`
	}](ctx, s, llm.PurposeExamQuestion, examSystemPrompt, buildQuestionUserMessage(in), ExamQuestionSchema)
	if err != nil {
		return "", err
	}
	return nonEmpty(llm.PurposeExamQuestion, "question", out.Question)
}

// GradeExam decides the verdict of the current attempt. An attempt with no
// learner answers is never sent to the model.
func (s *Service) GradeExam(ctx context.Context, in ExamInput) (course.Verdict, error) {
	answered := false
	for _, t := range in.History {
		if t.Role == course.ExamRoleLearner {
			answered = true
			break
		}
	}
	if !answered {
		return course.Verdict{}, &course.ValidationError{Field: "exam history", Reason: "no learner answers to grade"}
	}

	out, err := generate[course.Verdict](ctx, s, llm.PurposeExamVerdict, examSystemPrompt, buildVerdictUserMessage(in), ExamVerdictSchema)
	if err != nil {
		return course.Verdict{}, err
	}
	return out, nil
}

// GradeProject scores a final project submission.
func (s *Service) GradeProject(ctx context.Context, in ProjectInput) (course.ProjectEvaluation, error) {
	out, err := generate[course.ProjectEvaluation](ctx, s, llm.PurposeProjectEvaluation, projectSystemPrompt, buildProjectUserMessage(in), ProjectEvaluationSchema)
	if err != nil {
		return course.ProjectEvaluation{}, err
	}
	if err := out.Validate(); err != nil {
		return course.ProjectEvaluation{}, &llm.ErrInvalidResponse{Schema: ProjectEvaluationSchema.Name, Err: err}
	}
	out.EvaluatedAt = s.now()
	return out, nil
}

// Reply answers a learner question in the course tutor chat. Earlier chat
// messages are replayed as conversation turns.
func (s *Service) Reply(ctx context.Context, in ChatInput) (string, error) {
	if strings.TrimSpace(in.Question) == "" {
		return "", &course.ValidationError{Field: "question", Reason: "must not be empty"}
	}

	history := in.History
	if len(history) > chatWindow {
		history = history[len(history)-chatWindow:]
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == course.TutorRoleTutor {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: buildChatUserMessage(in)})

	out, err := converse[struct {
		Answer string `json:"answer"`
	}](ctx, s, llm.PurposeTutorChat, chatSystemPrompt, msgs, TutorReplySchema)
	if err != nil {
		return "", err
	}
	return nonEmpty(llm.PurposeTutorChat, "answer", out.Answer)
}
