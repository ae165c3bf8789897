package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillpath/internal/engine"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <course-id> <module>",
	Short: "Submit a module quiz, either graded answers or a score",
	Long: "Submit a module quiz. Pass --answers to grade option indexes against the module quiz, " +
		"or --score and --total to record a result graded elsewhere.",
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		module, err := parseIndex("module", args[1])
		if err != nil {
			return err
		}
		answers, _ := cmd.Flags().GetString("answers")
		score, _ := cmd.Flags().GetInt("score")
		total, _ := cmd.Flags().GetInt("total")

		var res *engine.Result
		switch {
		case answers != "" && total != 0:
			return errors.New("use --answers or --score/--total, not both")
		case answers != "":
			picks, err := parseAnswers(answers)
			if err != nil {
				return err
			}
			res, err = a.engine.SubmitQuizAnswers(cmd.Context(), args[0], module, picks)
			if err != nil {
				return err
			}
		case total != 0:
			res, err = a.engine.SubmitQuiz(cmd.Context(), args[0], module, score, total)
			if err != nil {
				return err
			}
		default:
			return errors.New("one of --answers or --total is required")
		}

		q := res.Progress().QuizScores[module]
		verdict := "not passed"
		if q.Passed() {
			verdict = "passed"
		}
		fmt.Fprintf(a.out, "Quiz %d/%d: %s\n", q.Score, q.Total, verdict)
		a.report(res)
		return nil
	}),
}

func init() {
	quizCmd.Flags().String("answers", "", "Comma-separated option indexes, e.g. 1,0,2")
	quizCmd.Flags().Int("score", 0, "Correct answers")
	quizCmd.Flags().Int("total", 0, "Number of questions")
}
