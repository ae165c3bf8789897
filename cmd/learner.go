package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/streak"
	"github.com/abhisek/skillpath/internal/ui/layout"
)

var learnerCmd = &cobra.Command{
	Use:   "learner",
	Short: "Register learners and manage their streak",
}

var learnerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a new learner",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		l, err := a.engine.RegisterLearner(cmd.Context(), args[0], role)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, layout.RenderHeader(l, layout.DefaultWidth))
		fmt.Fprintf(a.out, "Learner ID: %s\n", l.ID)
		return nil
	}),
}

var learnerStreakCmd = &cobra.Command{
	Use:   "streak <learner-id> [days]",
	Short: "Record the learner's daily streak",
	Long: `Record the learner's daily streak. Without a days argument the streak
is derived from the days with reward activity.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		var (
			res *engine.Result
			err error
		)
		if len(args) == 2 {
			days, perr := strconv.Atoi(args[1])
			if perr != nil || days < 0 {
				return fmt.Errorf("invalid streak %q", args[1])
			}
			res, err = a.engine.UpdateStreak(cmd.Context(), args[0], days)
		} else {
			res, err = a.engine.RefreshStreak(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		a.report(res)
		cur := res.Learner.Gamification.Streak
		fmt.Fprintf(a.out, "Streak: %d days (next milestone %d)\n", cur, streak.NextMilestone(cur))
		return nil
	}),
}

func init() {
	learnerAddCmd.Flags().String("role", "", "Job role, e.g. \"SRE\"")

	learnerCmd.AddCommand(learnerAddCmd)
	learnerCmd.AddCommand(learnerStreakCmd)
}
