package progression

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
)

// AddRemedialLesson attaches a generated remedial lesson to a module. The
// first remedial lesson of a module emits a reward event.
func AddRemedialLesson(inst *course.Instance, lesson course.RemedialLesson) (course.Progress, Outcome, error) {
	if _, err := inst.Module(lesson.Module); err != nil {
		return inst.Progress, Outcome{}, err
	}
	if strings.TrimSpace(lesson.Title) == "" || strings.TrimSpace(lesson.Explanation) == "" {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "remedial lesson", Reason: "title and explanation are required"}
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}

	p := inst.Progress.Clone()
	p.RemedialLessons = append(p.RemedialLessons, lesson)

	out := Outcome{Changed: true}
	key := fmt.Sprintf("m%d_remedial", lesson.Module)
	if p.CompletedItems.Add(key) {
		out.emit(rewards.RemedialLessonRequested(key))
	}
	return p, out, nil
}

// AppendTutorMessage adds one message to the course tutor chat.
func AppendTutorMessage(inst *course.Instance, msg course.TutorMessage) (course.Progress, Outcome, error) {
	if msg.Role != course.TutorRoleUser && msg.Role != course.TutorRoleTutor {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "tutor message role", Reason: fmt.Sprintf("%q is not user or tutor", msg.Role)}
	}
	if strings.TrimSpace(msg.Content) == "" {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "tutor message", Reason: "content must not be empty"}
	}
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}

	p := inst.Progress.Clone()
	p.TutorHistory = append(p.TutorHistory, msg)
	return p, Outcome{Changed: true}, nil
}
