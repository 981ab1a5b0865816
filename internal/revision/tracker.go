// Package revision keeps the user's "Revision" ladder: a personal list of
// problems starred for review, created on first use.
package revision

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeladder/internal/api"
	"codeladder/internal/ladder"
	"codeladder/internal/logging"
)

type Backend interface {
	Ladders(ctx context.Context, username string) ([]ladder.Ladder, error)
	CreateLadder(ctx context.Context, title string) (ladder.Ladder, error)
	EditLadder(ctx context.Context, tableID int, ids []ladder.QuestionID, action string) error
}

type Tracker struct {
	backend  Backend
	username string
	logger   *zap.Logger

	ladder ladder.Ladder
	found  bool
	loaded bool
}

func NewTracker(backend Backend, username string, logger *zap.Logger) *Tracker {
	return &Tracker{
		backend:  backend,
		username: username,
		logger:   logging.OrNop(logger),
	}
}

// Load looks up the revision ladder. A missing ladder is not an error; it is
// created by the first Toggle.
func (t *Tracker) Load(ctx context.Context) error {
	ladders, err := t.backend.Ladders(ctx, t.username)
	if err != nil {
		return fmt.Errorf("failed to load revision list: %w", err)
	}
	t.ladder, t.found = ladder.FindRevision(ladders)
	t.loaded = true
	t.logger.Debug("revision ladder lookup",
		zap.Bool("found", t.found),
		zap.Int("questions", len(t.ladder.Questions)))
	return nil
}

// Exists reports whether the revision ladder has been found or created.
func (t *Tracker) Exists() bool {
	return t.found
}

func (t *Tracker) Ladder() ladder.Ladder {
	return t.ladder
}

func (t *Tracker) Contains(id ladder.QuestionID) bool {
	return t.found && t.ladder.Contains(id)
}

func (t *Tracker) Questions() []ladder.QuestionID {
	if !t.found {
		return nil
	}
	return t.ladder.Questions
}

// Toggle stars id when absent and unstars it when present, returning the new
// membership. The ladder is created on demand before the first star.
func (t *Tracker) Toggle(ctx context.Context, id ladder.QuestionID) (bool, error) {
	if !t.loaded {
		if err := t.Load(ctx); err != nil {
			return false, err
		}
	}

	if t.Contains(id) {
		ids := []ladder.QuestionID{id}
		if err := t.backend.EditLadder(ctx, t.ladder.TableID, ids, api.ActionRemove); err != nil {
			return true, fmt.Errorf("failed to remove from revision: %w", err)
		}
		t.ladder = t.ladder.WithoutQuestions(ids)
		return false, nil
	}

	if !t.found {
		created, err := t.backend.CreateLadder(ctx, ladder.RevisionTitle)
		if err != nil {
			return false, fmt.Errorf("failed to create revision ladder: %w", err)
		}
		t.ladder = created
		t.found = true
		t.logger.Info("revision ladder created", zap.Int("table_id", created.TableID))
	}

	ids := []ladder.QuestionID{id}
	if err := t.backend.EditLadder(ctx, t.ladder.TableID, ids, api.ActionAdd); err != nil {
		return false, fmt.Errorf("failed to add to revision: %w", err)
	}
	t.ladder = t.ladder.WithQuestions(ids)
	return true, nil
}
