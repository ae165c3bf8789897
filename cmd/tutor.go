package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/tutor"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Chat with the course tutor",
}

var tutorAskCmd = &cobra.Command{
	Use:   "ask <course-id> <question>...",
	Short: "Ask the course tutor a question",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		svc, err := a.requireTutor()
		if err != nil {
			return err
		}
		inst, err := a.engine.Instance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		question := strings.Join(args[1:], " ")
		answer, err := svc.Reply(tutorContext(cmd.Context(), inst), tutor.ChatInputFor(inst, question))
		if err != nil {
			return err
		}

		// Both sides are stored only once the tutor has answered.
		for _, msg := range []course.TutorMessage{
			{Role: course.TutorRoleUser, Content: question},
			{Role: course.TutorRoleTutor, Content: answer},
		} {
			if _, err := a.engine.RecordTutorMessage(cmd.Context(), inst.ID, msg); err != nil {
				return err
			}
		}
		fmt.Fprintln(a.out, answer)
		return nil
	}),
}

var tutorHistoryCmd = &cobra.Command{
	Use:   "history <course-id>",
	Short: "Print the tutor chat of a course",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		inst, err := a.engine.Instance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(inst.Progress.TutorHistory) == 0 {
			fmt.Fprintln(a.out, theme.Hint.Render("No messages yet."))
			return nil
		}
		for _, m := range inst.Progress.TutorHistory {
			who := theme.Subtitle.Render("you")
			if m.Role == course.TutorRoleTutor {
				who = theme.Title.Render("tutor")
			}
			fmt.Fprintf(a.out, "%s %s\n%s\n\n", who, theme.Hint.Render(m.At.Format("2006-01-02 15:04")), m.Content)
		}
		return nil
	}),
}

func init() {
	tutorCmd.AddCommand(tutorAskCmd)
	tutorCmd.AddCommand(tutorHistoryCmd)
}
