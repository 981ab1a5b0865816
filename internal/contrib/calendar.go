// Package contrib builds the yearly contribution calendar and solve
// statistics shown on a user's progress page.
package contrib

import (
	"math"
	"sort"
	"strings"
	"time"

	"codeladder/internal/ladder"
)

const dateLayout = "2006-01-02"

// Entry is a counted submission joined with its problem detail.
type Entry struct {
	ladder.Submission
	Title string
	Link  string
	Tags  []string
}

// DateKey is the calendar day of the submission as written, without any
// timezone conversion.
func (e Entry) DateKey() string {
	date, _, _ := strings.Cut(strings.TrimSpace(e.Date), "T")
	return date
}

type Day struct {
	Date        string
	Count       int
	Submissions []Entry
	DayOfWeek   time.Weekday
	Month       time.Month
}

func DaysInYear(year int) int {
	if (year%4 == 0 && year%100 != 0) || year%400 == 0 {
		return 366
	}
	return 365
}

// BuildGrid returns one Day per day of year, Jan 1 first, in loc.
func BuildGrid(year int, loc *time.Location, entries []Entry) []Day {
	if loc == nil {
		loc = time.Local
	}
	byDate := make(map[string][]Entry)
	for _, entry := range entries {
		key := entry.DateKey()
		byDate[key] = append(byDate[key], entry)
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	days := make([]Day, DaysInYear(year))
	for idx := range days {
		date := start.AddDate(0, 0, idx)
		key := date.Format(dateLayout)
		submissions := byDate[key]
		if submissions == nil {
			submissions = []Entry{}
		}
		days[idx] = Day{
			Date:        key,
			Count:       len(submissions),
			Submissions: submissions,
			DayOfWeek:   date.Weekday(),
			Month:       date.Month(),
		}
	}
	return days
}

type Streak struct {
	Longest int
	Current int
}

// Streaks scans the grid once for the longest run of active days. The
// current streak walks backward from today; days after today are ignored.
func Streaks(days []Day, today time.Time) Streak {
	var streak Streak
	run := 0
	for _, day := range days {
		if day.Count > 0 {
			run++
			streak.Longest = max(streak.Longest, run)
			continue
		}
		run = 0
	}

	todayKey := today.Format(dateLayout)
	for idx := len(days) - 1; idx >= 0; idx-- {
		if days[idx].Date > todayKey {
			continue
		}
		if days[idx].Count == 0 {
			break
		}
		streak.Current++
	}
	return streak
}

type BestDay struct {
	Date  string
	Count int
}

// Best returns the busiest day; the earliest wins ties.
func Best(days []Day) BestDay {
	var best BestDay
	for _, day := range days {
		if day.Count > best.Count {
			best = BestDay{Date: day.Date, Count: day.Count}
		}
	}
	return best
}

func TagHistogram(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		for _, tag := range entry.Tags {
			counts[tag]++
		}
	}
	return counts
}

// MonthHistogram counts entries by full month name.
func MonthHistogram(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, entry := range entries {
		date, err := time.Parse(dateLayout, entry.DateKey())
		if err != nil {
			continue
		}
		counts[date.Month().String()]++
	}
	return counts
}

type Count struct {
	Name  string
	Count int
}

// Top returns the n largest histogram entries, ties broken by name.
func Top(histogram map[string]int, n int) []Count {
	counts := make([]Count, 0, len(histogram))
	for name, count := range histogram {
		counts = append(counts, Count{Name: name, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// HeatLevel buckets a day's count into the five calendar shades.
func HeatLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return 4
	}
}

// Week is one calendar column, Sunday first. Slots outside the year are nil.
type Week [7]*Day

func Weeks(days []Day) []Week {
	var (
		weeks   []Week
		current Week
	)
	for idx := range days {
		day := &days[idx]
		current[day.DayOfWeek] = day
		if day.DayOfWeek == time.Saturday || idx == len(days)-1 {
			weeks = append(weeks, current)
			current = Week{}
		}
	}
	return weeks
}

func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

type Calendar struct {
	Year    int
	Days    []Day
	Total   int
	Streak  Streak
	Best    BestDay
	Tags    map[string]int
	Months  map[string]int
	Entries []Entry
}

// NewCalendar derives the whole calendar from entries as of today.
func NewCalendar(entries []Entry, today time.Time) Calendar {
	days := BuildGrid(today.Year(), today.Location(), entries)
	return Calendar{
		Year:    today.Year(),
		Days:    days,
		Total:   len(entries),
		Streak:  Streaks(days, today),
		Best:    Best(days),
		Tags:    TagHistogram(entries),
		Months:  MonthHistogram(entries),
		Entries: entries,
	}
}

func (c Calendar) Day(date string) (Day, bool) {
	for _, day := range c.Days {
		if day.Date == date {
			return day, true
		}
	}
	return Day{}, false
}
