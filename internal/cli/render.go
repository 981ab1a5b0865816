package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"codeladder/internal/contrib"
	"codeladder/internal/ladder"
)

// Calendar shades, lightest to darkest.
var heatColors = [5]lipgloss.Color{"#ebedf0", "#9be9a8", "#40c463", "#30a14e", "#216e39"}

var bandColors = []lipgloss.Color{"#9e9e9e", "#4caf50", "#2196f3", "#9c27b0", "#ffc107", "#ff9800", "#f44336"}

type Styles struct {
	renderer *lipgloss.Renderer

	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style

	Easy   lipgloss.Style
	Medium lipgloss.Style
	Hard   lipgloss.Style

	Heat  [5]lipgloss.Style
	Bands []lipgloss.Style
}

// NewStyles binds styles to out so colour detection follows the real
// destination. noColor forces plain ASCII output.
func NewStyles(out io.Writer, noColor bool) Styles {
	renderer := lipgloss.NewRenderer(out)
	if noColor {
		renderer.SetColorProfile(termenv.Ascii)
	}

	styles := Styles{
		renderer: renderer,
		Title:    renderer.NewStyle().Bold(true),
		Muted:    renderer.NewStyle().Foreground(lipgloss.Color("#8a8f98")),
		Success:  renderer.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		Warn:     renderer.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		Error:    renderer.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Easy:     renderer.NewStyle().Foreground(lipgloss.Color("#00b8a3")),
		Medium:   renderer.NewStyle().Foreground(lipgloss.Color("#ffc01e")),
		Hard:     renderer.NewStyle().Foreground(lipgloss.Color("#ff375f")),
	}
	for idx, color := range heatColors {
		styles.Heat[idx] = renderer.NewStyle().Foreground(color)
	}
	for _, color := range bandColors {
		styles.Bands = append(styles.Bands, renderer.NewStyle().Foreground(color))
	}
	return styles
}

func (s Styles) Difficulty(d ladder.Difficulty) string {
	switch d {
	case ladder.DifficultyEasy:
		return s.Easy.Render("Easy")
	case ladder.DifficultyMedium:
		return s.Medium.Render("Medium")
	case ladder.DifficultyHard:
		return s.Hard.Render("Hard")
	default:
		return ""
	}
}

func (s Styles) ProblemLine(problem ladder.Problem, username string, starred bool) string {
	check := "[ ]"
	if problem.IsSolvedBy(username) {
		check = s.Success.Render("[x]")
	}
	star := " "
	if starred {
		star = s.Warn.Render("*")
	}

	parts := []string{check, star, fmt.Sprintf("%-6s", problem.QuestionID), problem.DisplayTitle()}
	if difficulty := s.Difficulty(ladder.DifficultyOf(problem.Tags)); difficulty != "" {
		parts = append(parts, difficulty)
	}
	if len(problem.Tags) > 0 {
		parts = append(parts, s.Muted.Render(strings.Join(problem.Tags, ", ")))
	}
	return strings.Join(parts, " ")
}

// ProgressBar draws "[#####-----] 5/10 (50%)".
func (s Styles) ProgressBar(progress ladder.Progress, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if progress.Total > 0 {
		filled = progress.Solved * width / progress.Total
	}
	bar := s.Success.Render(strings.Repeat("#", filled)) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("[%s] %d/%d (%d%%)", bar, progress.Solved, progress.Total,
		contrib.Percent(progress.Solved, progress.Total))
}

var weekdayLabels = [7]string{"Sun", "", "Tue", "", "Thu", "", "Sat"}

// Heatmap renders the year as seven weekday rows of week columns.
func (s Styles) Heatmap(days []contrib.Day) string {
	weeks := contrib.Weeks(days)

	var b strings.Builder
	b.WriteString("    ")
	lastMonth := time.Month(0)
	for _, week := range weeks {
		label := "  "
		for _, day := range week {
			if day != nil && day.Month != lastMonth {
				lastMonth = day.Month
				label = day.Month.String()[:2]
			}
			if day != nil {
				break
			}
		}
		b.WriteString(label)
	}
	b.WriteString("\n")

	for weekday := 0; weekday < 7; weekday++ {
		fmt.Fprintf(&b, "%-4s", weekdayLabels[weekday])
		for _, week := range weeks {
			day := week[weekday]
			if day == nil {
				b.WriteString("  ")
				continue
			}
			b.WriteString(s.Heat[contrib.HeatLevel(day.Count)].Render("■") + " ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s Styles) Band(idx int, text string) string {
	if idx < 0 || idx >= len(s.Bands) {
		return text
	}
	return s.Bands[idx].Render(text)
}
