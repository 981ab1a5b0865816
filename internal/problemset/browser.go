// Package problemset is the catalog browser: search, hide-solved filter,
// pagination and solved-state toggling over the backend problem catalog.
package problemset

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"codeladder/internal/ladder"
	"codeladder/internal/logging"
)

var (
	ErrNotLoaded       = errors.New("problem catalog not loaded")
	ErrUnknownQuestion = errors.New("question not in catalog")
	ErrLoginRequired   = errors.New("please login to mark problems as solved")
)

type Backend interface {
	Problemset(ctx context.Context) ([]ladder.Problem, error)
	MarkQuestion(ctx context.Context, id ladder.QuestionID) error
	UnmarkQuestion(ctx context.Context, id ladder.QuestionID) error
}

type Browser struct {
	backend  Backend
	username string
	logger   *zap.Logger

	problems   []ladder.Problem
	loaded     bool
	query      string
	hideSolved bool
	paginator  ladder.Paginator
}

type View struct {
	Items      []ladder.Problem
	Page       int
	TotalPages int
	Filtered   int
	Solved     int
	Total      int
}

func NewBrowser(backend Backend, username string, pageSize int, logger *zap.Logger) *Browser {
	return &Browser{
		backend:   backend,
		username:  username,
		logger:    logging.OrNop(logger),
		paginator: ladder.NewPaginator(0, pageSize),
	}
}

func (b *Browser) Load(ctx context.Context) error {
	problems, err := b.backend.Problemset(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch questions: %w", err)
	}
	b.problems = problems
	b.loaded = true
	b.refilter()
	b.logger.Debug("problemset loaded", zap.Int("problems", len(problems)))
	return nil
}

func (b *Browser) Loaded() bool {
	return b.loaded
}

func (b *Browser) Problems() []ladder.Problem {
	return b.problems
}

func (b *Browser) Query() string {
	return b.query
}

func (b *Browser) HideSolved() bool {
	return b.hideSolved
}

// SetQuery changes the search text and returns to page 1.
func (b *Browser) SetQuery(query string) {
	b.query = query
	b.refilter()
}

func (b *Browser) SetHideSolved(hide bool) {
	b.hideSolved = hide
	b.refilter()
}

// SetPage is a no-op outside [1, TotalPages].
func (b *Browser) SetPage(page int) bool {
	return b.paginator.SetPage(page)
}

func (b *Browser) NextPage() bool {
	return b.paginator.SetPage(b.paginator.Page + 1)
}

func (b *Browser) PrevPage() bool {
	return b.paginator.SetPage(b.paginator.Page - 1)
}

func (b *Browser) filtered() []ladder.Problem {
	return ladder.Filter(b.problems, b.query, b.hideSolved, b.username)
}

func (b *Browser) refilter() {
	b.paginator.Resize(len(b.filtered()))
}

func (b *Browser) View() View {
	filtered := b.filtered()
	return View{
		Items:      ladder.Paginate(filtered, b.paginator),
		Page:       b.paginator.Page,
		TotalPages: b.paginator.TotalPages(),
		Filtered:   len(filtered),
		Solved:     ladder.ProgressOf(b.problems, b.username).Solved,
		Total:      len(b.problems),
	}
}

// ToggleSolved marks the question solved, or unmarks it when already solved.
// Local state changes only after the backend confirms. It returns the new
// solved state.
func (b *Browser) ToggleSolved(ctx context.Context, id ladder.QuestionID) (bool, error) {
	if b.username == "" {
		return false, ErrLoginRequired
	}
	if !b.loaded {
		return false, ErrNotLoaded
	}
	idx, ok := ladder.IndexByID(b.problems)[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}

	problem := b.problems[idx]
	if problem.IsSolvedBy(b.username) {
		if err := b.backend.UnmarkQuestion(ctx, id); err != nil {
			return true, fmt.Errorf("failed to unmark: %w", err)
		}
		b.problems[idx] = problem.UnmarkSolvedBy(b.username)
		b.keepPage()
		return false, nil
	}

	if err := b.backend.MarkQuestion(ctx, id); err != nil {
		return false, fmt.Errorf("failed to mark as solved: %w", err)
	}
	b.problems[idx] = problem.MarkSolvedBy(b.username)
	b.keepPage()
	return true, nil
}

// keepPage updates the filtered total after a solved-state change without
// jumping back to page 1 unless the current page no longer exists.
func (b *Browser) keepPage() {
	page := b.paginator.Page
	b.paginator.Resize(len(b.filtered()))
	b.paginator.SetPage(page)
	if last := b.paginator.TotalPages(); last > 0 && page > last {
		b.paginator.SetPage(last)
	}
}
