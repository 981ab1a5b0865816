// Package laddermgr manages one ladder: resolving its problems, grouping
// them by category, editing membership, collaborators and solved state.
package laddermgr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeladder/internal/api"
	"codeladder/internal/ladder"
	"codeladder/internal/logging"
)

var (
	ErrNotLoaded          = errors.New("ladder not loaded")
	ErrNotOwner           = errors.New("only the ladder owner can do that")
	ErrCannotRemoveOwner  = errors.New("the ladder owner cannot be removed")
	ErrNothingSelected    = errors.New("no questions selected")
	ErrQuestionDetails    = errors.New("failed to load question details")
	ErrUnknownQuestion    = errors.New("question not in this ladder")
	ErrAlreadyCollaborate = errors.New("user is already a collaborator")
)

type Backend interface {
	Ladder(ctx context.Context, tableID int) (ladder.Ladder, error)
	Question(ctx context.Context, id ladder.QuestionID) (ladder.Problem, error)
	Problemset(ctx context.Context) ([]ladder.Problem, error)
	EditLadder(ctx context.Context, tableID int, ids []ladder.QuestionID, action string) error
	MarkQuestion(ctx context.Context, id ladder.QuestionID) error
	UnmarkQuestion(ctx context.Context, id ladder.QuestionID) error
	AddCollaborator(ctx context.Context, tableID int, username string) error
	RemoveCollaborator(ctx context.Context, tableID int, username string) ([]string, error)
}

type Manager struct {
	backend  Backend
	username string
	logger   *zap.Logger

	ladder   ladder.Ladder
	problems []ladder.Problem
	loaded   bool

	catalog       []ladder.Problem
	catalogLoaded bool
}

func New(backend Backend, username string, logger *zap.Logger) *Manager {
	return &Manager{
		backend:  backend,
		username: username,
		logger:   logging.OrNop(logger),
	}
}

// Load fetches the ladder and resolves every question concurrently. Users
// who are not members get ladder.ErrAccessDenied.
func (m *Manager) Load(ctx context.Context, tableID int) error {
	l, err := m.backend.Ladder(ctx, tableID)
	if err != nil {
		return fmt.Errorf("failed to load ladder: %w", err)
	}
	if !l.HasMember(m.username) {
		return ladder.ErrAccessDenied
	}

	problems, err := m.resolve(ctx, l.Questions)
	if err != nil {
		return err
	}

	m.ladder = l
	m.problems = problems
	m.loaded = true
	m.logger.Debug("ladder loaded",
		zap.Int("table_id", tableID),
		zap.Int("questions", len(problems)))
	return nil
}

func (m *Manager) resolve(ctx context.Context, ids []ladder.QuestionID) ([]ladder.Problem, error) {
	problems := make([]ladder.Problem, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	for idx, id := range ids {
		idx, id := idx, id
		group.Go(func() error {
			problem, err := m.backend.Question(groupCtx, id)
			if err != nil {
				return fmt.Errorf("question %s: %w", id, err)
			}
			problems[idx] = problem
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		m.logger.Warn("question resolution failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrQuestionDetails, err)
	}
	return problems, nil
}

func (m *Manager) Ladder() ladder.Ladder {
	return m.ladder
}

func (m *Manager) Problems() []ladder.Problem {
	return m.problems
}

func (m *Manager) IsOwner() bool {
	return m.ladder.IsOwner(m.username)
}

func (m *Manager) Groups() ladder.Groups {
	return ladder.Categorize(m.problems)
}

func (m *Manager) SectionProgress(label string) ladder.Progress {
	return ladder.ProgressOf(m.Groups()[label], m.username)
}

func (m *Manager) OverallProgress() ladder.Progress {
	return ladder.ProgressOf(m.problems, m.username)
}

// Search filters the ladder's own problems, e.g. when picking ones to remove.
func (m *Manager) Search(query string) []ladder.Problem {
	return ladder.Filter(m.problems, query, false, m.username)
}

// Candidates lists catalog problems not yet in the ladder that match query.
// The catalog is fetched on first use.
func (m *Manager) Candidates(ctx context.Context, query string) ([]ladder.Problem, error) {
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	catalog, err := m.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return ladder.Filter(ladder.Exclude(catalog, m.ladder), query, false, m.username), nil
}

// Catalog returns the full problem catalog, fetching it once.
func (m *Manager) Catalog(ctx context.Context) ([]ladder.Problem, error) {
	if m.catalogLoaded {
		return m.catalog, nil
	}
	catalog, err := m.backend.Problemset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch all questions: %w", err)
	}
	m.catalog = catalog
	m.catalogLoaded = true
	return catalog, nil
}

// AddProblems adds the ids not already present in one edit call and returns
// the ids actually added.
func (m *Manager) AddProblems(ctx context.Context, ids []ladder.QuestionID) ([]ladder.QuestionID, error) {
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	fresh := m.ladder.NewQuestions(ids)
	if len(fresh) == 0 {
		return nil, ErrNothingSelected
	}

	if err := m.backend.EditLadder(ctx, m.ladder.TableID, fresh, api.ActionAdd); err != nil {
		return nil, fmt.Errorf("failed to add questions: %w", err)
	}
	m.ladder = m.ladder.WithQuestions(fresh)

	// Details for the new rows are best effort; the ladder itself is updated.
	added, err := m.resolve(ctx, fresh)
	if err != nil {
		m.logger.Warn("added questions could not be resolved", zap.Error(err))
		return fresh, nil
	}
	m.problems = append(m.problems, added...)
	return fresh, nil
}

func (m *Manager) RemoveProblems(ctx context.Context, ids []ladder.QuestionID) error {
	if !m.loaded {
		return ErrNotLoaded
	}
	present := make([]ladder.QuestionID, 0, len(ids))
	for _, id := range ids {
		if m.ladder.Contains(id) {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return ErrNothingSelected
	}

	if err := m.backend.EditLadder(ctx, m.ladder.TableID, present, api.ActionRemove); err != nil {
		return fmt.Errorf("failed to remove selected questions: %w", err)
	}
	m.ladder = m.ladder.WithoutQuestions(present)

	drop := make(map[ladder.QuestionID]struct{}, len(present))
	for _, id := range present {
		drop[id] = struct{}{}
	}
	kept := make([]ladder.Problem, 0, len(m.problems))
	for _, problem := range m.problems {
		if _, ok := drop[problem.QuestionID]; !ok {
			kept = append(kept, problem)
		}
	}
	m.problems = kept
	return nil
}

// Collaborators lists ladder users whose name contains query.
func (m *Manager) Collaborators(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	users := make([]string, 0, len(m.ladder.Users))
	for _, user := range m.ladder.Users {
		if query == "" || strings.Contains(strings.ToLower(user), query) {
			users = append(users, user)
		}
	}
	return users
}

// AddCollaborator is owner-only. It adds username and refreshes the ladder so
// the user list reflects the backend.
func (m *Manager) AddCollaborator(ctx context.Context, username string) error {
	if !m.loaded {
		return ErrNotLoaded
	}
	if !m.IsOwner() {
		return ErrNotOwner
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("collaborator username is required")
	}
	if m.ladder.HasMember(username) {
		return ErrAlreadyCollaborate
	}

	if err := m.backend.AddCollaborator(ctx, m.ladder.TableID, username); err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}

	refreshed, err := m.backend.Ladder(ctx, m.ladder.TableID)
	if err != nil {
		m.logger.Warn("ladder refresh after collaborator add failed", zap.Error(err))
		m.ladder.Users = append(append([]string(nil), m.ladder.Users...), username)
		return nil
	}
	m.ladder = refreshed
	return nil
}

// RemoveCollaborator is offered to the owner only. The check is a UI
// affordance; the backend enforces the real permission.
func (m *Manager) RemoveCollaborator(ctx context.Context, username string) error {
	if !m.loaded {
		return ErrNotLoaded
	}
	if !m.IsOwner() {
		return ErrNotOwner
	}
	if username == m.ladder.OwnerID {
		return ErrCannotRemoveOwner
	}

	users, err := m.backend.RemoveCollaborator(ctx, m.ladder.TableID, username)
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}
	m.ladder.Users = users
	return nil
}

func (m *Manager) MarkSolved(ctx context.Context, id ladder.QuestionID) error {
	idx, err := m.indexOf(id)
	if err != nil {
		return err
	}
	if err := m.backend.MarkQuestion(ctx, id); err != nil {
		return fmt.Errorf("could not mark as solved: %w", err)
	}
	m.problems[idx] = m.problems[idx].MarkSolvedBy(m.username)
	return nil
}

func (m *Manager) Unmark(ctx context.Context, id ladder.QuestionID) error {
	idx, err := m.indexOf(id)
	if err != nil {
		return err
	}
	if err := m.backend.UnmarkQuestion(ctx, id); err != nil {
		return fmt.Errorf("could not unmark the question: %w", err)
	}
	m.problems[idx] = m.problems[idx].UnmarkSolvedBy(m.username)
	return nil
}

func (m *Manager) indexOf(id ladder.QuestionID) (int, error) {
	if !m.loaded {
		return 0, ErrNotLoaded
	}
	idx, ok := ladder.IndexByID(m.problems)[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	return idx, nil
}
