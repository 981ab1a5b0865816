package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"codeladder/internal/catalog"
)

const defaultContestLimit = 10

func (a *App) catalogCommand() *cobra.Command {
	var (
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the static Codeforces catalog grouped by contest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := catalog.NewLoader(a.cfg.CatalogURL(), a.httpClient, a.logger)
			loaded := loader.Load(cmd.Context())

			out := cmd.OutOrStdout()
			a.printSourceStatus(cmd.ErrOrStderr(), "problemset", loaded.Problems)
			a.printSourceStatus(cmd.ErrOrStderr(), "contests", loaded.ContestList)
			if !loaded.Problems.Loaded {
				return fmt.Errorf("catalog unavailable: %w", loaded.Problems.Err)
			}

			groups := catalog.GroupByContest(filterEntries(loaded.Entries, query))
			if len(groups) == 0 {
				fmt.Fprintln(out, "No catalog problems match.")
				return nil
			}
			shown := groups
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for _, group := range shown {
				fmt.Fprintf(out, "%s %s\n", a.styles.Title.Render(group.Name),
					a.styles.Muted.Render(fmt.Sprintf("#%d", group.ContestID)))
				for _, entry := range group.Problems {
					rating := ""
					if entry.Rating > 0 {
						rating = fmt.Sprintf(" [%d]", entry.Rating)
					}
					fmt.Fprintf(out, "  %-3s %s%s %s\n", entry.Index, entry.Name, rating, a.styles.Muted.Render(entry.Link))
				}
			}
			if len(shown) < len(groups) {
				fmt.Fprintln(out, a.styles.Muted.Render(fmt.Sprintf("... %d more contests", len(groups)-len(shown))))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultContestLimit, "maximum contests to show (0 for all)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by problem name or tag")
	return cmd
}

func (a *App) printSourceStatus(out io.Writer, name string, status catalog.SourceStatus) {
	if status.Loaded {
		a.logger.Sugar().Debugf("%s loaded: %d entries", name, status.Count)
		return
	}
	fmt.Fprintln(out, a.styles.Warn.Render(fmt.Sprintf("%s failed to load: %v", name, status.Err)))
}

func filterEntries(entries []catalog.Entry, query string) []catalog.Entry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return entries
	}
	matched := make([]catalog.Entry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Name), query) {
			matched = append(matched, entry)
			continue
		}
		for _, tag := range entry.Tags {
			if strings.Contains(strings.ToLower(tag), query) {
				matched = append(matched, entry)
				break
			}
		}
	}
	return matched
}
