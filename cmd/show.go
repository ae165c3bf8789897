package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/ui/components"
	"github.com/abhisek/skillpath/internal/ui/layout"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

var showCmd = &cobra.Command{
	Use:   "show <learner-id>",
	Short: "Show a learner's level, courses and achievements",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		width, _ := cmd.Flags().GetInt("width")

		l, err := a.engine.Learner(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		insts, err := a.engine.Enrollments(cmd.Context(), l.ID)
		if err != nil {
			return err
		}

		body := components.LevelBar(l.Gamification, width) + "\n\n"
		if len(insts) == 0 {
			body += theme.Hint.Render("Not enrolled in any course yet.") + "\n"
		}
		for _, inst := range insts {
			body += components.CourseCard(inst, width) + "\n"
		}
		body += "\n" + theme.Title.Render("Achievements") + "\n" + components.AchievementList(l.Gamification)

		footer := layout.RenderFooter([]layout.KeyHint{
			{Key: "skillpath catalog list", Description: "browse courses"},
			{Key: "skillpath rewards " + l.ID, Description: "XP history"},
		}, width)

		fmt.Fprintln(a.out, layout.RenderFrame(layout.RenderHeader(l, width), body, footer))
		return nil
	}),
}

func init() {
	showCmd.Flags().Int("width", layout.DefaultWidth, "Output width")
}
