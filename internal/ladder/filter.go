package ladder

import "strings"

const DefaultPageSize = 20

// Matches reports whether query appears in the title or any tag,
// case-insensitively. An empty query matches everything.
func Matches(problem Problem, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(problem.DisplayTitle()), query) {
		return true
	}
	for _, tag := range problem.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func Filter(problems []Problem, query string, hideSolved bool, username string) []Problem {
	filtered := make([]Problem, 0, len(problems))
	for _, problem := range problems {
		if hideSolved && problem.IsSolvedBy(username) {
			continue
		}
		if !Matches(problem, query) {
			continue
		}
		filtered = append(filtered, problem)
	}
	return filtered
}

// Exclude drops problems already present in the ladder.
func Exclude(problems []Problem, l Ladder) []Problem {
	kept := make([]Problem, 0, len(problems))
	for _, problem := range problems {
		if !l.Contains(problem.QuestionID) {
			kept = append(kept, problem)
		}
	}
	return kept
}

// Paginator tracks a 1-based page over Total items.
type Paginator struct {
	Total    int
	PageSize int
	Page     int
}

func NewPaginator(total, pageSize int) Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Paginator{Total: total, PageSize: pageSize, Page: 1}
}

func (p Paginator) TotalPages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// SetPage moves to page and reports whether it changed. Pages outside
// [1, TotalPages] leave the paginator untouched.
func (p *Paginator) SetPage(page int) bool {
	if page < 1 || page > p.TotalPages() {
		return false
	}
	p.Page = page
	return true
}

// Resize updates Total, e.g. after the filter changed, and returns to page 1.
func (p *Paginator) Resize(total int) {
	p.Total = total
	p.Page = 1
}

// Bounds returns the [start, end) slice bounds of the current page.
func (p Paginator) Bounds() (int, int) {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 0, 0
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * p.PageSize
	if start > p.Total {
		start = p.Total
	}
	end := start + p.PageSize
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

func Paginate[T any](items []T, p Paginator) []T {
	start, end := p.Bounds()
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		start = end
	}
	return items[start:end]
}
