package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

// ModuleStatusLabel renders a module status with its color.
func ModuleStatusLabel(s course.ModuleStatus) string {
	switch s {
	case course.ModuleCompleted:
		return theme.Done.Render("✓ completed")
	case course.ModuleInProgress:
		return theme.Active.Render("▶ in progress")
	case course.ModulePendingReview:
		return theme.Pending.Render("… pending review")
	default:
		return theme.Locked.Render("🔒 locked")
	}
}

// ExamStatusLabel renders the exam cycle state.
func ExamStatusLabel(e course.ExamState) string {
	switch e.Status {
	case course.ExamPassed:
		return theme.Done.Render("passed")
	case course.ExamInProgress:
		return theme.Active.Render(fmt.Sprintf("attempt %d in progress", e.AttemptNumber()))
	case course.ExamFailedRemediationNeeded:
		if e.RemediationPlan == nil {
			return theme.Failed.Render("attempts used, waiting for remediation plan")
		}
		return theme.Pending.Render("attempts used, remediation plan ready")
	default:
		return theme.Body.Render(fmt.Sprintf("not started (%d attempts left)", e.AttemptsLeft))
	}
}

// lessonsDone counts completed lessons of module idx.
func lessonsDone(inst *course.Instance, idx int) int {
	n := 0
	for j := range inst.Modules[idx].Lessons {
		if inst.Progress.CompletedItems.Has(course.LessonKey(idx, j)) {
			n++
		}
	}
	return n
}

// CourseCard renders one enrolled course with per-module progress.
func CourseCard(inst *course.Instance, width int) string {
	var b strings.Builder
	p := inst.Progress

	b.WriteString(theme.Title.Render(inst.Title))
	b.WriteString("  ")
	b.WriteString(theme.Subtitle.Render(string(p.Status)))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(inst.ID))
	b.WriteString("\n\n")

	for i, m := range inst.Modules {
		done := lessonsDone(inst, i)
		line := fmt.Sprintf("%d. %s  %s  lessons %d/%d", i, m.Title, ModuleStatusLabel(p.ModuleStatus[i]), done, len(m.Lessons))
		if q, ok := p.QuizScores[i]; ok {
			quiz := fmt.Sprintf("  quiz %d/%d", q.Score, q.Total)
			if q.Passed() {
				line += theme.Done.Render(quiz)
			} else {
				line += theme.Failed.Render(quiz)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if inst.FinalProject != nil {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("Project: " + inst.FinalProject.Title + "  "))
		switch {
		case p.ProjectEvaluation != nil && p.ProjectEvaluation.Approved():
			b.WriteString(theme.Done.Render(fmt.Sprintf("approved %d/100", p.ProjectEvaluation.OverallScore)))
		case p.ProjectEvaluation != nil:
			b.WriteString(theme.Failed.Render(fmt.Sprintf("needs work %d/100", p.ProjectEvaluation.OverallScore)))
		case p.ProjectSubmission != nil:
			b.WriteString(theme.Pending.Render("submitted"))
		default:
			b.WriteString(theme.Locked.Render("not submitted"))
		}
		b.WriteString("\n")
	}

	b.WriteString(theme.Body.Render("Final exam: "))
	b.WriteString(ExamStatusLabel(p.FinalExam))

	return theme.Card.Width(width).Render(b.String())
}

// LevelBar shows XP progress toward the next level.
func LevelBar(g course.Gamification, width int) string {
	floor := 0
	if g.Level > 1 {
		floor = rewards.XPThreshold(g.Level)
	}
	next := rewards.XPThreshold(g.Level + 1)
	pct := float64(g.XP-floor) / float64(next-floor)
	label := fmt.Sprintf("Level %d  %d/%d XP", g.Level, g.XP, next)
	return NewProgressBar(label, pct, true, width).View()
}

// AchievementList renders unlocked badges in catalog order, level badges
// last.
func AchievementList(g course.Gamification) string {
	if g.Achievements.Len() == 0 {
		return theme.Hint.Render("No achievements yet")
	}

	var lines []string
	seen := map[string]bool{}
	for _, a := range rewards.All() {
		if g.Achievements.Has(string(a.ID)) {
			lines = append(lines, badgeLine(a))
			seen[string(a.ID)] = true
		}
	}
	for _, id := range g.Achievements.Sorted() {
		if seen[id] {
			continue
		}
		a, err := rewards.Lookup(id)
		if err != nil {
			lines = append(lines, theme.Locked.Render("? "+id))
			continue
		}
		lines = append(lines, badgeLine(a))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func badgeLine(a rewards.Achievement) string {
	return theme.Badge.Render(a.Icon+" "+a.Title) + "  " + theme.Subtitle.Render(a.Description)
}
