package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"codeladder/internal/ladder"
	"codeladder/internal/problemset"
	"codeladder/internal/revision"
)

func (a *App) shellCommand() *cobra.Command {
	return requireAuth(&cobra.Command{
		Use:   "shell",
		Short: "Browse the problem set interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			browser := a.newBrowser()
			if err := browser.Load(cmd.Context()); err != nil {
				return err
			}
			tracker := revision.NewTracker(a.client, a.session.Username, a.logger)
			if err := tracker.Load(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), a.styles.Warn.Render("revision list unavailable: "+Describe(err)))
			}
			shell := &Shell{
				app:     a,
				browser: browser,
				tracker: tracker,
				reader:  bufio.NewReader(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
			}
			return shell.Run(cmd.Context())
		},
	})
}

// Shell is the interactive problem set browser. It keeps one loaded
// browser for the whole session so filters and pages persist between
// commands.
type Shell struct {
	app     *App
	browser *problemset.Browser
	tracker *revision.Tracker
	reader  *bufio.Reader
	out     io.Writer
}

func (s *Shell) Run(ctx context.Context) error {
	out := s.out
	fmt.Fprintf(out, "ladder shell\nusername=%s\nserver=%s\n\n", s.app.session.Username, s.app.client.BaseURL())
	printShellHelp(out)
	s.printPage()

	for {
		fmt.Fprint(out, "\n> ")
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printShellHelp(out)
		case "exit", "quit":
			return nil
		case "list":
			s.printPage()
		case "next":
			if !s.browser.NextPage() {
				fmt.Fprintln(out, "already on the last page.")
				continue
			}
			s.printPage()
		case "prev":
			if !s.browser.PrevPage() {
				fmt.Fprintln(out, "already on the first page.")
				continue
			}
			s.printPage()
		case "page":
			page, parseErr := parsePositiveArg(args, 1, 0)
			if parseErr != nil || page == 0 {
				fmt.Fprintln(out, "usage: page <n>")
				continue
			}
			if !s.browser.SetPage(page) {
				fmt.Fprintf(out, "page %d out of range (1-%d)\n", page, s.browser.View().TotalPages)
				continue
			}
			s.printPage()
		case "search":
			s.browser.SetQuery(strings.TrimSpace(strings.TrimPrefix(line, args[0])))
			s.printPage()
		case "clear":
			s.browser.SetQuery("")
			s.printPage()
		case "hide":
			s.browser.SetHideSolved(true)
			s.printPage()
		case "show":
			s.browser.SetHideSolved(false)
			s.printPage()
		case "toggle":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: toggle <question_id>")
				continue
			}
			if err := s.toggle(ctx, args[1]); err != nil {
				fmt.Fprintf(out, "error: %s\n", Describe(err))
			}
		case "star":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: star <question_id>")
				continue
			}
			if err := s.star(ctx, args[1]); err != nil {
				fmt.Fprintf(out, "error: %s\n", Describe(err))
			}
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
	}
}

func (s *Shell) printPage() {
	view := s.browser.View()
	username := s.app.session.Username
	if view.Filtered == 0 {
		fmt.Fprintln(s.out, "No problems match.")
		return
	}
	for _, problem := range view.Items {
		fmt.Fprintln(s.out, s.app.styles.ProblemLine(problem, username, s.tracker.Contains(problem.QuestionID)))
	}
	status := fmt.Sprintf("page %d/%d, %d matching, solved %d/%d", view.Page, view.TotalPages, view.Filtered, view.Solved, view.Total)
	if query := s.browser.Query(); query != "" {
		status += fmt.Sprintf(", search %q", query)
	}
	if s.browser.HideSolved() {
		status += ", hiding solved"
	}
	fmt.Fprintln(s.out, s.app.styles.Muted.Render(status))
}

// toggle asks before clearing a solved mark; marking needs no confirmation.
func (s *Shell) toggle(ctx context.Context, raw string) error {
	id, err := ladder.ParseQuestionID(raw)
	if err != nil {
		return err
	}
	idx, ok := ladder.IndexByID(s.browser.Problems())[id]
	if !ok {
		return fmt.Errorf("%w: %s", problemset.ErrUnknownQuestion, id)
	}
	if s.browser.Problems()[idx].IsSolvedBy(s.app.session.Username) {
		confirmed, err := promptYesNo(s.reader, s.out, fmt.Sprintf("unmark question %s? (yes/no): ", id))
		if err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
	}

	solved, err := s.browser.ToggleSolved(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Question %s %s.\n", id, solvedWord(solved))
	return nil
}

func (s *Shell) star(ctx context.Context, raw string) error {
	id, err := ladder.ParseQuestionID(raw)
	if err != nil {
		return err
	}
	starred, err := s.tracker.Toggle(ctx, id)
	if err != nil {
		return err
	}
	if starred {
		fmt.Fprintf(s.out, "Question %s added to revision.\n", id)
	} else {
		fmt.Fprintf(s.out, "Question %s removed from revision.\n", id)
	}
	return nil
}
