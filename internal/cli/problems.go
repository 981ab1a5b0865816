package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"codeladder/internal/ladder"
	"codeladder/internal/problemset"
)

func (a *App) newBrowser() *problemset.Browser {
	return problemset.NewBrowser(a.client, a.session.Username, a.cfg.UI.PageSize, a.logger)
}

func (a *App) problemsCommand() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:   "problems",
		Short: "Browse the problem set and mark problems solved",
	})

	var (
		query      string
		hideSolved bool
		page       int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List problems, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			browser := a.newBrowser()
			if err := browser.Load(cmd.Context()); err != nil {
				return err
			}
			browser.SetQuery(query)
			browser.SetHideSolved(hideSolved)
			if page > 1 && !browser.SetPage(page) {
				return fmt.Errorf("page %d out of range (1-%d)", page, browser.View().TotalPages)
			}
			a.printBrowserView(cmd.OutOrStdout(), browser.View())
			return nil
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "search title and tags")
	list.Flags().BoolVar(&hideSolved, "hide-solved", false, "hide problems you have solved")
	list.Flags().IntVarP(&page, "page", "p", 1, "page number")

	cmd.AddCommand(list,
		a.solvedCommand("mark", "Mark a problem solved", true),
		a.solvedCommand("unmark", "Clear a problem's solved mark", false),
	)
	return cmd
}

func (a *App) solvedCommand(use, short string, solved bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <question-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ladder.ParseQuestionID(args[0])
			if err != nil {
				return err
			}
			browser := a.newBrowser()
			if err := browser.Load(cmd.Context()); err != nil {
				return err
			}
			return a.setSolved(cmd.Context(), cmd.OutOrStdout(), browser, id, solved)
		},
	}
}

// setSolved toggles only when the current state differs from want.
func (a *App) setSolved(ctx context.Context, out io.Writer, browser *problemset.Browser, id ladder.QuestionID, want bool) error {
	idx, ok := ladder.IndexByID(browser.Problems())[id]
	if !ok {
		return fmt.Errorf("%w: %s", problemset.ErrUnknownQuestion, id)
	}
	if browser.Problems()[idx].IsSolvedBy(a.session.Username) == want {
		fmt.Fprintf(out, "Question %s is already %s.\n", id, solvedWord(want))
		return nil
	}
	solved, err := browser.ToggleSolved(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Question %s %s.\n", id, solvedWord(solved))
	return nil
}

func solvedWord(solved bool) string {
	if solved {
		return "marked solved"
	}
	return "unmarked"
}

func (a *App) printBrowserView(out io.Writer, view problemset.View) {
	fmt.Fprintln(out, a.styles.Title.Render("Problem set"))
	fmt.Fprintf(out, "solved %s\n", a.styles.ProgressBar(ladder.Progress{Solved: view.Solved, Total: view.Total}, 20))
	if view.Filtered == 0 {
		fmt.Fprintln(out, "No problems match.")
		return
	}
	for _, problem := range view.Items {
		fmt.Fprintln(out, a.styles.ProblemLine(problem, a.session.Username, false))
	}
	fmt.Fprintf(out, "%s\n", a.styles.Muted.Render(
		fmt.Sprintf("page %d/%d, %d matching", view.Page, view.TotalPages, view.Filtered)))
}
