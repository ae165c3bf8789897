package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/tutor"
	"github.com/abhisek/skillpath/internal/ui/components"
	"github.com/abhisek/skillpath/internal/ui/theme"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Run the conversational final exam",
}

var examAskCmd = &cobra.Command{
	Use:   "ask <course-id>",
	Short: "Have the tutor ask the next exam question",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		svc, err := a.requireTutor()
		if err != nil {
			return err
		}
		ok, err := a.engine.ExamEligible(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return course.ErrExamNotEligible
		}
		inst, err := a.engine.Instance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		q, err := svc.ExamQuestion(tutorContext(cmd.Context(), inst), tutor.ExamInputFor(inst))
		if err != nil {
			return err
		}
		if _, err := a.engine.RecordExamTurn(cmd.Context(), inst.ID, course.ExamTurn{Role: course.ExamRoleExaminer, Content: q}); err != nil {
			return err
		}
		fmt.Fprintln(a.out, theme.Title.Render("Examiner"))
		fmt.Fprintln(a.out, q)
		return nil
	}),
}

var examAnswerCmd = &cobra.Command{
	Use:   "answer <course-id> <text>...",
	Short: "Record the learner's answer",
	Args:  cobra.MinimumNArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		res, err := a.engine.RecordExamTurn(cmd.Context(), args[0], course.ExamTurn{
			Role:    course.ExamRoleLearner,
			Content: strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, components.ExamStatusLabel(res.Progress().FinalExam))
		return nil
	}),
}

var examGradeCmd = &cobra.Command{
	Use:   "grade <course-id>",
	Short: "Have the tutor grade the current attempt",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		svc, err := a.requireTutor()
		if err != nil {
			return err
		}
		inst, err := a.engine.Instance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		v, err := svc.GradeExam(tutorContext(cmd.Context(), inst), tutor.ExamInputFor(inst))
		if err != nil {
			return err
		}
		return a.applyVerdict(cmd, inst.ID, v)
	}),
}

var examVerdictCmd = &cobra.Command{
	Use:   "verdict <course-id>",
	Short: "Record a verdict graded elsewhere",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		pass, _ := cmd.Flags().GetBool("pass")
		fail, _ := cmd.Flags().GetBool("fail")
		if pass == fail {
			return errors.New("exactly one of --pass or --fail is required")
		}
		feedback, _ := cmd.Flags().GetString("feedback")
		return a.applyVerdict(cmd, args[0], course.Verdict{Passed: pass, Feedback: feedback})
	}),
}

func (a *app) applyVerdict(cmd *cobra.Command, instanceID string, v course.Verdict) error {
	res, err := a.engine.SendExamVerdict(cmd.Context(), instanceID, v)
	if err != nil {
		return err
	}
	if v.Feedback != "" {
		fmt.Fprintln(a.out, v.Feedback)
	}
	fmt.Fprintln(a.out, components.ExamStatusLabel(res.Progress().FinalExam))
	a.report(res)
	return nil
}

var examPlanCmd = &cobra.Command{
	Use:   "plan <course-id>",
	Short: "Store or generate the remediation plan after the last failed attempt",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		text, _ := cmd.Flags().GetString("text")

		var res *engine.Result
		var err error
		if text != "" {
			res, err = a.engine.SetRemediationPlan(cmd.Context(), args[0], text)
		} else {
			res, err = a.generatePlan(cmd, args[0])
		}
		if err != nil {
			return err
		}
		if plan := res.Progress().FinalExam.RemediationPlan; plan != nil {
			fmt.Fprintln(a.out, theme.Title.Render("Remediation plan"))
			fmt.Fprintln(a.out, *plan)
		}
		return nil
	}),
}

func (a *app) generatePlan(cmd *cobra.Command, instanceID string) (*engine.Result, error) {
	if a.dispatcher == nil {
		return nil, errors.New("no LLM provider configured; pass --text to store a plan")
	}
	inst, err := a.engine.Instance(cmd.Context(), instanceID)
	if err != nil {
		return nil, err
	}
	state := inst.Progress.FinalExam
	if state.Status != course.ExamFailedRemediationNeeded {
		return nil, &course.ExamStateError{Op: "generate remediation plan", Status: state.Status}
	}
	req := engine.Request{
		Kind:        engine.RequestRemediationPlan,
		InstanceID:  inst.ID,
		LearnerID:   inst.LearnerID,
		CourseTitle: inst.Title,
		ExamHistory: state.History,
	}
	if state.LastFeedback != nil {
		req.ExamFeedback = *state.LastFeedback
	}
	return a.dispatcher.Run(cmd.Context(), req)
}

var examResetCmd = &cobra.Command{
	Use:   "reset <course-id>",
	Short: "Restore exam attempts once the remediation plan exists",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		res, err := a.engine.ResetExamCycle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, components.ExamStatusLabel(res.Progress().FinalExam))
		return nil
	}),
}

func init() {
	examVerdictCmd.Flags().Bool("pass", false, "The attempt passed")
	examVerdictCmd.Flags().Bool("fail", false, "The attempt failed")
	examVerdictCmd.Flags().String("feedback", "", "Examiner feedback")

	examPlanCmd.Flags().String("text", "", "Plan text to store instead of generating one")

	examCmd.AddCommand(examAskCmd)
	examCmd.AddCommand(examAnswerCmd)
	examCmd.AddCommand(examGradeCmd)
	examCmd.AddCommand(examVerdictCmd)
	examCmd.AddCommand(examPlanCmd)
	examCmd.AddCommand(examResetCmd)
}
