package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeladder/internal/ladder"
	"codeladder/internal/revision"
)

func (a *App) revisionCommand() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:   "revision",
		Short: "Keep a personal list of problems to revisit",
	})

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the revision list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker := revision.NewTracker(a.client, a.session.Username, a.logger)
			if err := tracker.Load(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ids := tracker.Questions()
			if len(ids) == 0 {
				fmt.Fprintln(out, "Revision list is empty. Star a problem with `ladder revision toggle <id>`.")
				return nil
			}

			questions := a.questionCache()
			fmt.Fprintf(out, "%s (%d)\n", a.styles.Title.Render(tracker.Ladder().Title), len(ids))
			for _, id := range ids {
				problem, err := questions.Question(cmd.Context(), id)
				if err != nil {
					problem = ladder.Problem{QuestionID: id}
				}
				fmt.Fprintln(out, a.styles.ProblemLine(problem, a.session.Username, true))
			}
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <question-id>",
		Short: "Star or unstar a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ladder.ParseQuestionID(args[0])
			if err != nil {
				return err
			}
			tracker := revision.NewTracker(a.client, a.session.Username, a.logger)
			starred, err := tracker.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			if starred {
				fmt.Fprintf(cmd.OutOrStdout(), "Question %s added to revision.\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Question %s removed from revision.\n", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}
