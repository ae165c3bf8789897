package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/tutor"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

var lessonCmd = &cobra.Command{
	Use:   "lesson",
	Short: "Complete lessons and request remedial lessons",
}

var lessonCompleteCmd = &cobra.Command{
	Use:   "complete <course-id> <module> <lesson>",
	Short: "Mark a lesson as read",
	Args:  cobra.ExactArgs(3),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		module, err := parseIndex("module", args[1])
		if err != nil {
			return err
		}
		lesson, err := parseIndex("lesson", args[2])
		if err != nil {
			return err
		}
		res, err := a.engine.CompleteLesson(cmd.Context(), args[0], module, lesson)
		if err != nil {
			return err
		}
		a.report(res)
		return nil
	}),
}

var lessonRemedialCmd = &cobra.Command{
	Use:   "remedial <course-id> <module>",
	Short: "Generate a catch-up lesson for a module",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		svc, err := a.requireTutor()
		if err != nil {
			return err
		}
		module, err := parseIndex("module", args[1])
		if err != nil {
			return err
		}
		inst, err := a.engine.Instance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		in, err := tutor.LessonInputFor(inst, module)
		if err != nil {
			return err
		}
		lesson, err := svc.RemedialLesson(tutorContext(cmd.Context(), inst), in)
		if err != nil {
			return err
		}
		res, err := a.engine.AddRemedialLesson(cmd.Context(), inst.ID, lesson)
		if err != nil {
			return err
		}

		fmt.Fprintln(a.out, theme.Title.Render(lesson.Title))
		fmt.Fprintln(a.out, lesson.Explanation)
		if lesson.Example != "" {
			fmt.Fprintln(a.out, "\n"+theme.Subtitle.Render("Example"))
			fmt.Fprintln(a.out, lesson.Example)
		}
		if lesson.Practice != "" {
			fmt.Fprintln(a.out, "\n"+theme.Subtitle.Render("Practice"))
			fmt.Fprintln(a.out, lesson.Practice)
		}
		fmt.Fprintln(a.out)
		a.report(res)
		return nil
	}),
}

func init() {
	lessonCmd.AddCommand(lessonCompleteCmd)
	lessonCmd.AddCommand(lessonRemedialCmd)
}
