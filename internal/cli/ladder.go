package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"codeladder/internal/ladder"
	"codeladder/internal/laddermgr"
	"codeladder/internal/revision"
)

const defaultCandidateLimit = 20

func parseTableID(raw string) (int, error) {
	tableID, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || tableID <= 0 {
		return 0, fmt.Errorf("invalid ladder id %q", raw)
	}
	return tableID, nil
}

func parseQuestionIDs(raw []string) ([]ladder.QuestionID, error) {
	ids := make([]ladder.QuestionID, 0, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := ladder.ParseQuestionID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, laddermgr.ErrNothingSelected
	}
	return ids, nil
}

// loadManager opens the ladder named by the first argument.
func (a *App) loadManager(ctx context.Context, rawID string) (*laddermgr.Manager, error) {
	tableID, err := parseTableID(rawID)
	if err != nil {
		return nil, err
	}
	manager := laddermgr.New(a.client, a.session.Username, a.logger)
	if err := manager.Load(ctx, tableID); err != nil {
		return nil, err
	}
	return manager, nil
}

func (a *App) ladderCommand() *cobra.Command {
	cmd := requireAuth(&cobra.Command{
		Use:   "ladder",
		Short: "Work with shared ladders",
	})
	cmd.AddCommand(
		a.ladderListCommand(),
		a.ladderCreateCommand(),
		a.ladderShowCommand(),
		a.ladderEditCommand("add", "Add problems to a ladder"),
		a.ladderEditCommand("remove", "Remove problems from a ladder"),
		a.ladderSolvedCommand("mark", "Mark a ladder problem solved", true),
		a.ladderSolvedCommand("unmark", "Clear a ladder problem's solved mark", false),
		a.ladderCandidatesCommand(),
		a.collabCommand(),
	)
	return cmd
}

func (a *App) ladderListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your ladders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ladders, err := a.client.Ladders(cmd.Context(), a.session.Username)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ladders) == 0 {
				fmt.Fprintln(out, "No ladders yet.")
				return nil
			}
			for _, l := range ladders {
				owner := ""
				if l.IsOwner(a.session.Username) {
					owner = a.styles.Muted.Render(" (owner)")
				}
				fmt.Fprintf(out, "%4d  %s  %d problems, %d members%s\n",
					l.TableID, l.Title, len(l.Questions), len(l.Users), owner)
			}
			return nil
		},
	}
}

func (a *App) ladderCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a ladder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.client.CreateLadder(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created ladder %d: %s\n", created.TableID, created.Title)
			return nil
		},
	}
}

func (a *App) ladderShowCommand() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "show <ladder-id>",
		Short: "Show a ladder grouped by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tracker := revision.NewTracker(a.client, a.session.Username, a.logger)
			if err := tracker.Load(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), a.styles.Warn.Render("revision list unavailable: "+Describe(err)))
			}

			a.printLadder(cmd.OutOrStdout(), manager, tracker, query)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only show problems matching title or tag")
	return cmd
}

func (a *App) printLadder(out io.Writer, manager *laddermgr.Manager, tracker *revision.Tracker, query string) {
	l := manager.Ladder()
	fmt.Fprintf(out, "%s  %s\n", a.styles.Title.Render(l.Title), a.styles.Muted.Render(
		fmt.Sprintf("#%d owner %s, %d members", l.TableID, l.OwnerID, len(l.Users))))
	fmt.Fprintf(out, "overall %s\n", a.styles.ProgressBar(manager.OverallProgress(), 20))

	groups := manager.Groups()
	for _, label := range groups.Labels() {
		problems := ladder.Filter(groups[label], query, false, a.session.Username)
		if len(problems) == 0 {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s %s\n", a.styles.Title.Render(label), a.styles.ProgressBar(manager.SectionProgress(label), 10))
		for _, problem := range problems {
			fmt.Fprintln(out, "  "+a.styles.ProblemLine(problem, a.session.Username, tracker.Contains(problem.QuestionID)))
		}
	}
}

func (a *App) ladderEditCommand(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <ladder-id> <question-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseQuestionIDs(args[1:])
			if err != nil {
				return err
			}
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if action == "add" {
				added, err := manager.AddProblems(cmd.Context(), ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Added %d problem(s) to %s.\n", len(added), manager.Ladder().Title)
				return nil
			}
			if err := manager.RemoveProblems(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed selected problems from %s.\n", manager.Ladder().Title)
			return nil
		},
	}
}

func (a *App) ladderSolvedCommand(use, short string, solved bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ladder-id> <question-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := ladder.ParseQuestionID(args[1])
			if err != nil {
				return err
			}
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if solved {
				err = manager.MarkSolved(cmd.Context(), id)
			} else {
				err = manager.Unmark(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Question %s %s.\n", id, solvedWord(solved))
			return nil
		},
	}
}

func (a *App) ladderCandidatesCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "candidates <ladder-id> [query]",
		Short: "Search the catalog for problems not yet in a ladder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			candidates, err := manager.Candidates(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No matching problems outside this ladder.")
				return nil
			}
			shown := candidates
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for _, problem := range shown {
				fmt.Fprintln(out, a.styles.ProblemLine(problem, a.session.Username, false))
			}
			if len(shown) < len(candidates) {
				fmt.Fprintln(out, a.styles.Muted.Render(fmt.Sprintf("... %d more", len(candidates)-len(shown))))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultCandidateLimit, "maximum results (0 for all)")
	return cmd
}

func (a *App) collabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collab",
		Short: "Manage ladder collaborators",
	}

	list := &cobra.Command{
		Use:   "list <ladder-id> [query]",
		Short: "List collaborators",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			users := manager.Collaborators(strings.Join(args[1:], " "))
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No collaborators match.")
				return nil
			}
			for _, user := range users {
				if user == manager.Ladder().OwnerID {
					fmt.Fprintf(out, "%s %s\n", user, a.styles.Muted.Render("(owner)"))
					continue
				}
				fmt.Fprintln(out, user)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <ladder-id> <username>",
		Short: "Invite a collaborator (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := manager.AddCollaborator(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s added successfully.\n", strings.TrimSpace(args[1]))
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <ladder-id> <username>",
		Short: "Remove a collaborator (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.loadManager(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := manager.RemoveCollaborator(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s successfully.\n", args[1])
			return nil
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
