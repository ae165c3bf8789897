package course

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every struct-tag check in this package.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Template is an immutable course blueprint produced by content generation.
// Instances deep-copy its structure; nothing in this module mutates it.
type Template struct {
	ID           string        `json:"id" yaml:"id" validate:"required"`
	Title        string        `json:"title" yaml:"title" validate:"required"`
	Description  string        `json:"description,omitempty" yaml:"description"`
	Role         string        `json:"role,omitempty" yaml:"role"`
	Modules      []Module      `json:"modules" yaml:"modules" validate:"required,min=1,dive"`
	FinalProject *FinalProject `json:"final_project,omitempty" yaml:"final_project"`
}

// Module is a named unit of lessons plus one quiz.
type Module struct {
	Title       string         `json:"title" yaml:"title" validate:"required"`
	Description string         `json:"description,omitempty" yaml:"description"`
	Objectives  []string       `json:"learning_objectives,omitempty" yaml:"learning_objectives"`
	Lessons     []Lesson       `json:"lessons" yaml:"lessons" validate:"required,min=1,dive"`
	Quiz        []QuizQuestion `json:"quiz,omitempty" yaml:"quiz" validate:"omitempty,dive"`
}

// Lesson is one readable unit inside a module.
type Lesson struct {
	Title   string `json:"title" yaml:"title" validate:"required"`
	Content string `json:"content,omitempty" yaml:"content"`
}

// QuizQuestion is a single multiple-choice question. Answer indexes Options.
type QuizQuestion struct {
	Question string   `json:"question" yaml:"question" validate:"required"`
	Options  []string `json:"options" yaml:"options" validate:"min=2,dive,required"`
	Answer   int      `json:"answer" yaml:"answer" validate:"gte=0"`
}

// FinalProject describes the optional capstone of a course.
type FinalProject struct {
	Title        string   `json:"title" yaml:"title" validate:"required"`
	Description  string   `json:"description,omitempty" yaml:"description"`
	Deliverables []string `json:"deliverables,omitempty" yaml:"deliverables"`
	Criteria     []string `json:"evaluation_criteria,omitempty" yaml:"evaluation_criteria"`
}

// Validate checks the structural rules a template must satisfy before an
// instance can be created from it.
func (t *Template) Validate() error {
	if err := validate.Struct(t); err != nil {
		return structError("template", err)
	}
	for i, m := range t.Modules {
		for j, q := range m.Quiz {
			if q.Answer >= len(q.Options) {
				return invalid(fmt.Sprintf("modules[%d].quiz[%d].answer", i, j),
					"index %d out of range for %d options", q.Answer, len(q.Options))
			}
		}
	}
	return nil
}

// structError flattens validator output into a single ValidationError.
func structError(field string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalid(field, "%v", err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return invalid(field, "%s", strings.Join(parts, "; "))
}

func cloneModules(in []Module) []Module {
	if in == nil {
		return nil
	}
	out := make([]Module, len(in))
	for i, m := range in {
		out[i] = Module{
			Title:       m.Title,
			Description: m.Description,
			Objectives:  append([]string(nil), m.Objectives...),
			Lessons:     append([]Lesson(nil), m.Lessons...),
		}
		if m.Quiz != nil {
			out[i].Quiz = make([]QuizQuestion, len(m.Quiz))
			for j, q := range m.Quiz {
				out[i].Quiz[j] = QuizQuestion{
					Question: q.Question,
					Options:  append([]string(nil), q.Options...),
					Answer:   q.Answer,
				}
			}
		}
	}
	return out
}

func cloneProject(p *FinalProject) *FinalProject {
	if p == nil {
		return nil
	}
	return &FinalProject{
		Title:        p.Title,
		Description:  p.Description,
		Deliverables: append([]string(nil), p.Deliverables...),
		Criteria:     append([]string(nil), p.Criteria...),
	}
}

// Grade scores answers against the module quiz. answers[i] is the chosen
// option of question i; missing answers count as wrong.
func (m Module) Grade(answers []int) (score, total int, err error) {
	if len(m.Quiz) == 0 {
		return 0, 0, invalid("quiz", "module %q has no quiz questions", m.Title)
	}
	if len(answers) > len(m.Quiz) {
		return 0, 0, invalid("answers", "%d answers for %d questions", len(answers), len(m.Quiz))
	}
	for i, a := range answers {
		if a == m.Quiz[i].Answer {
			score++
		}
	}
	return score, len(m.Quiz), nil
}
