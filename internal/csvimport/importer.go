// Package csvimport bulk-adds problems to a ladder from a CSV or TSV export
// whose rows carry a problem URL somewhere in the line.
package csvimport

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"codeladder/internal/api"
	"codeladder/internal/ladder"
	"codeladder/internal/logging"
)

var (
	ErrNeedsHeader = errors.New("file needs a header row and at least one data row")
	ErrNoURLs      = errors.New("no valid URLs found in file")
	ErrNoMatches   = errors.New("none of the URLs match a known problem")
	ErrAllPresent  = errors.New("all matched problems are already in this ladder")
)

var urlPattern = regexp.MustCompile(`https?://[^\s,"']+`)

type Backend interface {
	Problemset(ctx context.Context) ([]ladder.Problem, error)
	EditLadder(ctx context.Context, tableID int, ids []ladder.QuestionID, action string) error
}

// ExtractURLs returns the first URL of every non-blank line after the header.
func ExtractURLs(text string) ([]string, error) {
	lines := make([]string, 0)
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, ErrNeedsHeader
	}

	urls := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if found := urlPattern.FindString(line); found != "" {
			urls = append(urls, found)
		}
	}
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}

func NormalizeURL(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.TrimSuffix(normalized, "/")
	normalized = strings.TrimSuffix(normalized, "/description")
	return strings.TrimSuffix(normalized, "/")
}

// Plan partitions urls against the catalog and the ladder's current
// questions.
type Plan struct {
	ToAdd          []ladder.QuestionID
	AlreadyPresent []ladder.QuestionID
	Unmatched      []string
}

func BuildPlan(urls []string, catalog []ladder.Problem, target ladder.Ladder) Plan {
	byLink := make(map[string]ladder.QuestionID, len(catalog))
	for _, problem := range catalog {
		if problem.Link == "" {
			continue
		}
		key := NormalizeURL(problem.Link)
		if _, dup := byLink[key]; !dup {
			byLink[key] = problem.QuestionID
		}
	}

	var plan Plan
	seen := make(map[ladder.QuestionID]struct{})
	for _, raw := range urls {
		id, ok := byLink[NormalizeURL(raw)]
		if !ok {
			plan.Unmatched = append(plan.Unmatched, raw)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if target.Contains(id) {
			plan.AlreadyPresent = append(plan.AlreadyPresent, id)
			continue
		}
		plan.ToAdd = append(plan.ToAdd, id)
	}
	return plan
}

type Result struct {
	Added          []ladder.QuestionID
	AlreadyPresent []ladder.QuestionID
	Unmatched      []string
}

func (r Result) Summary() string {
	summary := fmt.Sprintf("added %d problem(s)", len(r.Added))
	if len(r.AlreadyPresent) > 0 {
		summary += fmt.Sprintf(", %d already present", len(r.AlreadyPresent))
	}
	if len(r.Unmatched) > 0 {
		summary += fmt.Sprintf(", %d not found", len(r.Unmatched))
	}
	return summary
}

// Importer holds the catalog for the session so repeated imports fetch it
// once.
type Importer struct {
	backend Backend
	logger  *zap.Logger

	catalog []ladder.Problem
	loaded  bool
}

func NewImporter(backend Backend, logger *zap.Logger) *Importer {
	return &Importer{backend: backend, logger: logging.OrNop(logger)}
}

// Import adds every new matched problem with a single edit call. Either the
// whole batch is added or target is returned unchanged with an error.
func (i *Importer) Import(ctx context.Context, text string, target ladder.Ladder) (ladder.Ladder, Result, error) {
	urls, err := ExtractURLs(text)
	if err != nil {
		return target, Result{}, err
	}

	catalog, err := i.ensureCatalog(ctx)
	if err != nil {
		return target, Result{}, err
	}

	plan := BuildPlan(urls, catalog, target)
	result := Result{AlreadyPresent: plan.AlreadyPresent, Unmatched: plan.Unmatched}
	if len(plan.ToAdd) == 0 {
		if len(plan.AlreadyPresent) > 0 {
			return target, result, ErrAllPresent
		}
		return target, result, ErrNoMatches
	}

	if err := i.backend.EditLadder(ctx, target.TableID, plan.ToAdd, api.ActionAdd); err != nil {
		return target, result, fmt.Errorf("failed to import questions: %w", err)
	}
	result.Added = plan.ToAdd
	i.logger.Info("csv import applied",
		zap.Int("table_id", target.TableID),
		zap.Int("added", len(plan.ToAdd)),
		zap.Int("present", len(plan.AlreadyPresent)),
		zap.Int("unmatched", len(plan.Unmatched)))
	return target.WithQuestions(plan.ToAdd), result, nil
}

func (i *Importer) ensureCatalog(ctx context.Context) ([]ladder.Problem, error) {
	if i.loaded {
		return i.catalog, nil
	}
	catalog, err := i.backend.Problemset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all questions: %w", err)
	}
	i.catalog = catalog
	i.loaded = true
	return catalog, nil
}
