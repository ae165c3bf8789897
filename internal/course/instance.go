package course

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ModuleStatus is the lock state of one module in an instance.
type ModuleStatus string

const (
	ModuleLocked        ModuleStatus = "locked"
	ModuleInProgress    ModuleStatus = "in_progress"
	ModulePendingReview ModuleStatus = "pending_review"
	ModuleCompleted     ModuleStatus = "completed"
)

// Status is the coarse enrollment status of an instance.
type Status string

const (
	StatusNotStarted    Status = "not_started"
	StatusInProgress    Status = "in_progress"
	StatusPendingReview Status = "pending_review"
	StatusCompleted     Status = "completed"
)

// Pass marks. A quiz passes at 70% and a project is approved at 70/100.
const (
	QuizPassPercent      = 70
	ProjectApprovalScore = 70
)

// ProjectSubmittedKey is the completed-item sentinel for the first project
// submission.
const ProjectSubmittedKey = "project_submitted"

// ProjectApprovedKey is the completed-item sentinel for the first approving
// project evaluation.
const ProjectApprovedKey = "project_approved"

// LessonKey returns the completed-item key for a lesson.
func LessonKey(module, lesson int) string {
	return fmt.Sprintf("m%d_l%d", module, lesson)
}

// QuizPassed reports whether score/total reaches the pass mark.
// Integer arithmetic keeps 7/10 exactly on the line.
func QuizPassed(score, total int) bool {
	return total > 0 && score*100 >= total*QuizPassPercent
}

// QuizScore is the latest quiz result for a module. Retakes overwrite it.
type QuizScore struct {
	Score              int    `json:"score"`
	Total              int    `json:"total"`
	CompetencyFeedback string `json:"competency_feedback,omitempty"`
}

// Passed reports whether the stored result reaches the pass mark.
func (q QuizScore) Passed() bool { return QuizPassed(q.Score, q.Total) }

// ProjectSubmission is the learner's final project hand-in.
type ProjectSubmission struct {
	Content     string    `json:"content" validate:"required"`
	Links       []string  `json:"links,omitempty" validate:"omitempty,dive,url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Validate checks the submission before it is stored.
func (s ProjectSubmission) Validate() error {
	if strings.TrimSpace(s.Content) == "" {
		return invalid("submission", "content must not be empty")
	}
	if err := validate.Struct(s); err != nil {
		return structError("submission", err)
	}
	return nil
}

// ProjectEvaluation is the admin-written assessment of a submission.
type ProjectEvaluation struct {
	OverallScore    int               `json:"overall_score" validate:"gte=0,lte=100"`
	OverallFeedback string            `json:"overall_feedback,omitempty"`
	Competencies    []CompetencyScore `json:"competencies,omitempty" validate:"omitempty,dive"`
	EvaluatedAt     time.Time         `json:"evaluated_at"`
}

// CompetencyScore grades a single competency within an evaluation.
type CompetencyScore struct {
	Name     string `json:"name" validate:"required"`
	Score    int    `json:"score" validate:"gte=0,lte=100"`
	Feedback string `json:"feedback,omitempty"`
}

// Validate checks score ranges before the evaluation is stored.
func (e ProjectEvaluation) Validate() error {
	if err := validate.Struct(e); err != nil {
		return structError("evaluation", err)
	}
	return nil
}

// Approved reports whether the evaluation reaches the approval score.
func (e ProjectEvaluation) Approved() bool {
	return e.OverallScore >= ProjectApprovalScore
}

// RemedialLesson is an AI-generated catch-up lesson attached to a module.
type RemedialLesson struct {
	Module      int       `json:"module"`
	Title       string    `json:"title"`
	Explanation string    `json:"explanation"`
	Example     string    `json:"example,omitempty"`
	Practice    string    `json:"practice,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tutor chat roles.
const (
	TutorRoleUser  = "user"
	TutorRoleTutor = "tutor"
)

// TutorMessage is one entry of the course tutor chat.
type TutorMessage struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Progress is the mutable state of an instance. Engines never modify a
// Progress in place; they Clone, change the copy and return it.
type Progress struct {
	ModuleStatus      []ModuleStatus     `json:"module_status"`
	CompletedItems    Set                `json:"completed_items"`
	QuizScores        map[int]QuizScore  `json:"quiz_scores"`
	ProjectSubmission *ProjectSubmission `json:"project_submission,omitempty"`
	ProjectEvaluation *ProjectEvaluation `json:"final_project_evaluation,omitempty"`
	FinalExam         ExamState          `json:"final_exam"`
	TutorHistory      []TutorMessage     `json:"tutor_history"`
	RemedialLessons   []RemedialLesson   `json:"remedial_lessons,omitempty"`
	Status            Status             `json:"status"`
}

// Clone returns a deep copy of p.
func (p Progress) Clone() Progress {
	out := p
	out.ModuleStatus = append([]ModuleStatus(nil), p.ModuleStatus...)
	out.CompletedItems = p.CompletedItems.Clone()
	out.QuizScores = make(map[int]QuizScore, len(p.QuizScores))
	for k, v := range p.QuizScores {
		out.QuizScores[k] = v
	}
	if p.ProjectSubmission != nil {
		s := *p.ProjectSubmission
		s.Links = append([]string(nil), p.ProjectSubmission.Links...)
		out.ProjectSubmission = &s
	}
	if p.ProjectEvaluation != nil {
		e := *p.ProjectEvaluation
		e.Competencies = append([]CompetencyScore(nil), p.ProjectEvaluation.Competencies...)
		out.ProjectEvaluation = &e
	}
	out.FinalExam = p.FinalExam.Clone()
	out.TutorHistory = append([]TutorMessage{}, p.TutorHistory...)
	out.RemedialLessons = append([]RemedialLesson(nil), p.RemedialLessons...)
	return out
}

// AllModulesCompleted reports whether every module is completed.
func (p Progress) AllModulesCompleted() bool {
	for _, s := range p.ModuleStatus {
		if s != ModuleCompleted {
			return false
		}
	}
	return len(p.ModuleStatus) > 0
}

// Instance is one learner's private copy of a template plus its progress.
type Instance struct {
	ID           string        `json:"id"`
	LearnerID    string        `json:"learner_id"`
	TemplateID   string        `json:"template_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Modules      []Module      `json:"modules"`
	FinalProject *FinalProject `json:"final_project,omitempty"`
	SelfAssigned bool          `json:"self_assigned"`
	EnrolledAt   time.Time     `json:"enrolled_at"`
	Progress     Progress      `json:"progress"`
}

// CreateInstance copies tmpl for learner and initializes its progress:
// module 0 in progress, the rest locked, exam not started.
// It fails with DuplicateEnrollmentError when the learner already holds an
// instance of tmpl. The learner is not modified.
func CreateInstance(tmpl *Template, learner *Learner) (*Instance, error) {
	if existing, ok := learner.InstanceFor(tmpl.ID); ok {
		return nil, &DuplicateEnrollmentError{
			LearnerID:  learner.ID,
			TemplateID: tmpl.ID,
			InstanceID: existing,
		}
	}
	if len(tmpl.Modules) == 0 {
		return nil, invalid("template", "%s has no modules", tmpl.ID)
	}

	statuses := make([]ModuleStatus, len(tmpl.Modules))
	for i := range statuses {
		statuses[i] = ModuleLocked
	}
	statuses[0] = ModuleInProgress

	return &Instance{
		ID:           uuid.NewString(),
		LearnerID:    learner.ID,
		TemplateID:   tmpl.ID,
		Title:        tmpl.Title,
		Description:  tmpl.Description,
		Modules:      cloneModules(tmpl.Modules),
		FinalProject: cloneProject(tmpl.FinalProject),
		EnrolledAt:   time.Now().UTC(),
		Progress: Progress{
			ModuleStatus:   statuses,
			CompletedItems: NewSet(),
			QuizScores:     map[int]QuizScore{},
			FinalExam:      NewExamState(),
			TutorHistory:   []TutorMessage{},
			Status:         StatusInProgress,
		},
	}, nil
}

// Module returns the module at idx or a ValidationError.
func (i *Instance) Module(idx int) (*Module, error) {
	if idx < 0 || idx >= len(i.Modules) {
		return nil, invalid("module", "index %d out of range (course has %d modules)", idx, len(i.Modules))
	}
	return &i.Modules[idx], nil
}

// WithProgress returns a shallow copy of the instance carrying p.
// Template structure is shared; it is never mutated after creation.
func (i *Instance) WithProgress(p Progress) *Instance {
	out := *i
	out.Progress = p
	return &out
}
