package ladder

import "strings"

const Miscellaneous = "Miscellaneous"

type Category struct {
	Label    string
	Keywords []string
}

// Categories is scanned in order; the first category with a matching
// keyword wins.
var Categories = []Category{
	{Label: "Arrays", Keywords: []string{"array", "arrays"}},
	{Label: "Strings", Keywords: []string{"string", "strings"}},
	{Label: "Dynamic Programming", Keywords: []string{"dp", "dynamic programming", "dynamic-programming"}},
	{Label: "Graphs", Keywords: []string{"graph", "graphs", "dfs", "bfs"}},
	{Label: "Trees", Keywords: []string{"tree", "trees", "binary tree"}},
	{Label: "Math", Keywords: []string{"math", "mathematics", "number theory"}},
	{Label: "Greedy", Keywords: []string{"greedy"}},
	{Label: "Sorting", Keywords: []string{"sorting", "sort"}},
	{Label: "Binary Search", Keywords: []string{"binary search", "binary-search"}},
	{Label: "Two Pointers", Keywords: []string{"two pointers", "two-pointers"}},
	{Label: "Sliding Window", Keywords: []string{"sliding window", "sliding-window"}},
	{Label: "Backtracking", Keywords: []string{"backtracking"}},
	{Label: "Recursion", Keywords: []string{"recursion", "recursive"}},
	{Label: "Data Structures", Keywords: []string{"data structures", "stack", "queue", "heap"}},
}

func (c Category) matches(tag string) bool {
	lowered := strings.ToLower(tag)
	for _, keyword := range c.Keywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Classify returns the display category for a tag list.
func Classify(tags []string) string {
	for _, category := range Categories {
		for _, tag := range tags {
			if category.matches(tag) {
				return category.Label
			}
		}
	}
	return Miscellaneous
}

// Groups maps a category label to its problems in original order.
type Groups map[string][]Problem

func Categorize(problems []Problem) Groups {
	groups := make(Groups)
	for _, problem := range problems {
		label := Classify(problem.Tags)
		groups[label] = append(groups[label], problem)
	}
	return groups
}

// Labels lists the non-empty groups in table order, Miscellaneous last.
func (g Groups) Labels() []string {
	labels := make([]string, 0, len(g))
	for _, category := range Categories {
		if len(g[category.Label]) > 0 {
			labels = append(labels, category.Label)
		}
	}
	if len(g[Miscellaneous]) > 0 {
		labels = append(labels, Miscellaneous)
	}
	return labels
}

type Progress struct {
	Solved int
	Total  int
}

func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Solved) / float64(p.Total) * 100
}

func ProgressOf(problems []Problem, username string) Progress {
	progress := Progress{Total: len(problems)}
	for _, problem := range problems {
		if problem.IsSolvedBy(username) {
			progress.Solved++
		}
	}
	return progress
}
