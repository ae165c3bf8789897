package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Module review workflow",
}

var moduleReviewCmd = &cobra.Command{
	Use:   "review <course-id> <module>",
	Short: "Submit an in-progress module for admin review",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		module, err := parseIndex("module", args[1])
		if err != nil {
			return err
		}
		res, err := a.engine.SubmitModuleForReview(cmd.Context(), args[0], module)
		if err != nil {
			return err
		}
		a.report(res)
		return nil
	}),
}

var moduleResolveCmd = &cobra.Command{
	Use:   "resolve <course-id> <module>",
	Short: "Approve or reject a module pending review",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		module, err := parseIndex("module", args[1])
		if err != nil {
			return err
		}
		approve, _ := cmd.Flags().GetBool("approve")
		reject, _ := cmd.Flags().GetBool("reject")
		if approve == reject {
			return errors.New("exactly one of --approve or --reject is required")
		}
		res, err := a.engine.ResolveModuleReview(cmd.Context(), args[0], module, approve)
		if err != nil {
			return err
		}
		a.report(res)
		return nil
	}),
}

func init() {
	moduleResolveCmd.Flags().Bool("approve", false, "Complete the module and unlock the next")
	moduleResolveCmd.Flags().Bool("reject", false, "Return the module to in progress")

	moduleCmd.AddCommand(moduleReviewCmd)
	moduleCmd.AddCommand(moduleResolveCmd)
}
