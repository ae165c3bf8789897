package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skillpath",
	Short: "Course progression and rewards for workplace learning",
	Long: "skillpath tracks learners through course modules, quizzes, final projects and exams, " +
		"and awards XP, levels and achievements along the way.",
	SilenceUsage: true,
}

// Execute runs the root command; an interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (overrides SKILLPATH_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SKILLPATH_DB)")
	rootCmd.PersistentFlags().String("store", "", "Store driver: sqlite, redis or postgres (overrides SKILLPATH_STORE)")

	rootCmd.AddCommand(learnerCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(lessonCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
