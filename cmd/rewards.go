package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/store"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards <learner-id>",
	Short: "List the learner's reward history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		course, _ := cmd.Flags().GetString("course")

		records, err := a.engine.RewardHistory(cmd.Context(), args[0], store.QueryOpts{Limit: limit})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(a.out, "No rewards recorded yet.")
			return nil
		}

		fmt.Fprintf(a.out, "%-6s  %-19s  %-18s  %-16s  %5s  %s\n",
			"Seq", "Timestamp", "Event", "Key", "XP", "Achievements")
		fmt.Fprintln(a.out, strings.Repeat("─", 96))

		total := 0
		for _, r := range records {
			if course != "" && r.InstanceID != course {
				continue
			}
			key := r.Key
			if len(key) > 16 {
				key = key[:16]
			}
			fmt.Fprintf(a.out, "%-6d  %-19s  %-18s  %-16s  %5d  %s\n",
				r.Sequence,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Kind,
				key,
				r.XPDelta,
				strings.Join(r.Achievements, ", "),
			)
			total += r.XPDelta
		}
		fmt.Fprintln(a.out, strings.Repeat("─", 96))
		fmt.Fprintf(a.out, "%d XP in listed events\n", total)
		return nil
	}),
}

func init() {
	rewardsCmd.Flags().Int("limit", 50, "Maximum number of events")
	rewardsCmd.Flags().String("course", "", "Only show events for this course ID")
}
