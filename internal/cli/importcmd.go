package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codeladder/internal/csvimport"
	"codeladder/internal/ladder"
)

func (a *App) importCommand() *cobra.Command {
	var showUnmatched bool

	cmd := requireAuth(&cobra.Command{
		Use:   "import <ladder-id> <file|->",
		Short: "Add problems to a ladder from a CSV of problem links",
		Long: `Import reads a CSV file (or stdin when the file is "-"), collects every
problem URL in it and adds the matching catalog problems to the ladder in one
request. The first line is treated as a header.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tableID, err := parseTableID(args[0])
			if err != nil {
				return err
			}
			text, err := readImportSource(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			target, err := a.client.Ladder(cmd.Context(), tableID)
			if err != nil {
				return err
			}
			if !target.HasMember(a.session.Username) {
				return ladder.ErrAccessDenied
			}

			importer := csvimport.NewImporter(a.client, a.logger)
			updated, result, err := importer.Import(cmd.Context(), text, target)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s into %s (%d problems now)\n",
				a.styles.Success.Render("ok"), result.Summary(), updated.Title, len(updated.Questions))
			if showUnmatched {
				for _, link := range result.Unmatched {
					fmt.Fprintln(out, a.styles.Muted.Render("  not found: "+link))
				}
			}
			return nil
		},
	})
	cmd.Flags().BoolVar(&showUnmatched, "show-unmatched", false, "list links with no catalog match")
	return cmd
}

func readImportSource(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}
