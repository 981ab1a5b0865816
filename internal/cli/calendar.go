package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"codeladder/internal/contrib"
	"codeladder/internal/ladder"
)

const defaultTopCount = 5

func (a *App) calendarCommand() *cobra.Command {
	var (
		date string
		top  int
	)

	cmd := requireAuth(&cobra.Command{
		Use:     "calendar",
		Aliases: []string{"progress"},
		Short:   "Show this year's contribution calendar and solve statistics",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				if _, err := time.Parse("2006-01-02", date); err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
				}
			}

			service := contrib.NewService(a.client, a.questionCache(), a.session.Username, a.logger)
			report := service.Load(cmd.Context())

			out := cmd.OutOrStdout()
			if report.CalendarErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), a.styles.Warn.Render("submission data unavailable: "+Describe(report.CalendarErr)))
			}
			if report.StatsErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), a.styles.Warn.Render("statistics unavailable: "+Describe(report.StatsErr)))
			}

			if date != "" {
				a.printDay(out, report.Calendar, date)
				return nil
			}
			a.printCalendar(out, report.Calendar, top)
			fmt.Fprintln(out)
			a.printStats(out, report)
			return nil
		},
	})
	cmd.Flags().StringVar(&date, "date", "", "show the submissions of one day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&top, "top", defaultTopCount, "number of tags and months to list")
	return cmd
}

func (a *App) printCalendar(out io.Writer, calendar contrib.Calendar, top int) {
	fmt.Fprintf(out, "%s\n", a.styles.Title.Render(fmt.Sprintf("%d submissions in %d", calendar.Total, calendar.Year)))
	fmt.Fprint(out, a.styles.Heatmap(calendar.Days))
	fmt.Fprintln(out)

	active := 0
	for _, day := range calendar.Days {
		if day.Count > 0 {
			active++
		}
	}
	fmt.Fprintf(out, "active days:    %d/%d\n", active, len(calendar.Days))
	fmt.Fprintf(out, "current streak: %d\n", calendar.Streak.Current)
	fmt.Fprintf(out, "longest streak: %d\n", calendar.Streak.Longest)
	if calendar.Best.Count > 0 {
		fmt.Fprintf(out, "best day:       %s (%d)\n", calendar.Best.Date, calendar.Best.Count)
	}

	if tags := contrib.Top(calendar.Tags, top); len(tags) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, a.styles.Title.Render("Top tags"))
		for _, tag := range tags {
			fmt.Fprintf(out, "  %-20s %d\n", tag.Name, tag.Count)
		}
	}
	if months := contrib.Top(calendar.Months, top); len(months) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, a.styles.Title.Render("Busiest months"))
		for _, month := range months {
			fmt.Fprintf(out, "  %-20s %d\n", month.Name, month.Count)
		}
	}
}

func (a *App) printDay(out io.Writer, calendar contrib.Calendar, date string) {
	day, ok := calendar.Day(date)
	if !ok {
		fmt.Fprintf(out, "%s is outside %d.\n", date, calendar.Year)
		return
	}
	fmt.Fprintf(out, "%s: %d submission(s)\n", a.styles.Title.Render(day.Date), day.Count)
	for _, entry := range day.Submissions {
		line := fmt.Sprintf("  %-6s %s", entry.QuestionID, entry.Title)
		if entry.Link != "" {
			line += " " + a.styles.Muted.Render(entry.Link)
		}
		fmt.Fprintln(out, line)
	}
}

func (a *App) printStats(out io.Writer, report contrib.Report) {
	fmt.Fprintln(out, a.styles.Title.Render("By difficulty"))
	rows := []struct {
		label    string
		progress ladder.Progress
	}{
		{a.styles.Easy.Render("Easy  "), report.Difficulty.Easy},
		{a.styles.Medium.Render("Medium"), report.Difficulty.Medium},
		{a.styles.Hard.Render("Hard  "), report.Difficulty.Hard},
		{"All   ", report.Difficulty.All},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "  %s %s\n", row.label, a.styles.ProgressBar(row.progress, 20))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, a.styles.Title.Render("CodeChef rating bands"))
	for idx, band := range report.RatingBands {
		fmt.Fprintf(out, "  %s %s\n", a.styles.Band(idx, fmt.Sprintf("%-16s", band.Label)),
			a.styles.ProgressBar(band.Progress, 20))
	}
}
