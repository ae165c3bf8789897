package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/engine"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <learner-id> <template-id>",
	Short: "Self-enroll a learner in a course",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		res, err := a.engine.SelfEnroll(cmd.Context(), args[0], args[1])
		return a.reportEnrollment(res, err)
	}),
}

var assignCmd = &cobra.Command{
	Use:   "assign <learner-id> <template-id>",
	Short: "Assign a course to a learner (no enrollment XP)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		res, err := a.engine.AssignCourse(cmd.Context(), args[0], args[1])
		return a.reportEnrollment(res, err)
	}),
}

func (a *app) reportEnrollment(res *engine.Result, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Enrolled in %s\nCourse ID: %s\n", res.Instance.Title, res.Instance.ID)
	a.report(res)
	return nil
}
