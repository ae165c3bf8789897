package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/tutor"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Submit and evaluate the final project",
}

var projectSubmitCmd = &cobra.Command{
	Use:   "submit <course-id>",
	Short: "Submit the final project",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		content, _ := cmd.Flags().GetString("content")
		file, _ := cmd.Flags().GetString("file")
		links, _ := cmd.Flags().GetStringSlice("link")

		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read submission: %w", err)
			}
			content = string(data)
		}

		res, err := a.engine.SubmitProject(cmd.Context(), args[0], course.ProjectSubmission{
			Content: content,
			Links:   links,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Project submitted.")
		a.report(res)
		return nil
	}),
}

// parseCompetency reads "name=score" or "name=score:feedback".
func parseCompetency(s string) (course.CompetencyScore, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok {
		return course.CompetencyScore{}, fmt.Errorf("invalid competency %q, want name=score[:feedback]", s)
	}
	scoreStr, feedback, _ := strings.Cut(rest, ":")
	score, err := strconv.Atoi(scoreStr)
	if err != nil {
		return course.CompetencyScore{}, fmt.Errorf("invalid competency score %q", scoreStr)
	}
	return course.CompetencyScore{Name: strings.TrimSpace(name), Score: score, Feedback: feedback}, nil
}

var projectEvaluateCmd = &cobra.Command{
	Use:   "evaluate <course-id>",
	Short: "Record an admin evaluation of the submitted project",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		if !cmd.Flags().Changed("score") {
			return errors.New("--score is required")
		}
		score, _ := cmd.Flags().GetInt("score")
		feedback, _ := cmd.Flags().GetString("feedback")
		comps, _ := cmd.Flags().GetStringArray("competency")

		eval := course.ProjectEvaluation{OverallScore: score, OverallFeedback: feedback}
		for _, c := range comps {
			cs, err := parseCompetency(c)
			if err != nil {
				return err
			}
			eval.Competencies = append(eval.Competencies, cs)
		}
		return a.applyEvaluation(cmd, args[0], eval)
	}),
}

var projectGradeCmd = &cobra.Command{
	Use:   "grade <course-id>",
	Short: "Have the tutor grade the submitted project",
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
		if inst.FinalProject == nil {
			return course.ErrNoFinalProject
		}
		if inst.Progress.ProjectSubmission == nil {
			return course.ErrProjectNotSubmitted
		}
		eval, err := svc.GradeProject(tutorContext(cmd.Context(), inst), tutor.ProjectInput{
			CourseTitle: inst.Title,
			Project:     *inst.FinalProject,
			Submission:  *inst.Progress.ProjectSubmission,
		})
		if err != nil {
			return err
		}
		for _, c := range eval.Competencies {
			fmt.Fprintf(a.out, "  %-28s %3d  %s\n", c.Name, c.Score, c.Feedback)
		}
		return a.applyEvaluation(cmd, inst.ID, eval)
	}),
}

func (a *app) applyEvaluation(cmd *cobra.Command, instanceID string, eval course.ProjectEvaluation) error {
	res, err := a.engine.EvaluateProject(cmd.Context(), instanceID, eval)
	if err != nil {
		return err
	}
	verdict := "needs work"
	if eval.Approved() {
		verdict = "approved"
	}
	fmt.Fprintf(a.out, "Project %s (%d/100)\n", verdict, eval.OverallScore)
	if eval.OverallFeedback != "" {
		fmt.Fprintln(a.out, eval.OverallFeedback)
	}
	a.report(res)
	return nil
}

func init() {
	projectSubmitCmd.Flags().String("content", "", "Submission text")
	projectSubmitCmd.Flags().String("file", "", "Read the submission text from a file")
	projectSubmitCmd.Flags().StringSlice("link", nil, "Link to a deliverable (repeatable)")

	projectEvaluateCmd.Flags().Int("score", 0, "Overall score 0-100")
	projectEvaluateCmd.Flags().String("feedback", "", "Overall feedback")
	projectEvaluateCmd.Flags().StringArray("competency", nil, "Competency score as name=score[:feedback] (repeatable)")

	projectCmd.AddCommand(projectSubmitCmd)
	projectCmd.AddCommand(projectEvaluateCmd)
	projectCmd.AddCommand(projectGradeCmd)
}
