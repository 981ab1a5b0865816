package laddermgr

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"codeladder/internal/api"
	"codeladder/internal/ladder"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type editCall struct {
	tableID int
	ids     []ladder.QuestionID
	action  string
}

type fakeBackend struct {
	mu sync.Mutex

	ladders   map[int]ladder.Ladder
	questions map[ladder.QuestionID]ladder.Problem
	catalog   []ladder.Problem

	questionErr  error
	editErr      error
	markErr      error
	collabErr    error
	removeResult []string

	edits          []editCall
	catalogFetches int
	questionCalls  int
	collabAdds     []string
}

func (f *fakeBackend) Ladder(_ context.Context, tableID int) (ladder.Ladder, error) {
	l, ok := f.ladders[tableID]
	if !ok {
		return ladder.Ladder{}, ladder.ErrLadderNotFound
	}
	return l, nil
}

func (f *fakeBackend) Question(_ context.Context, id ladder.QuestionID) (ladder.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questionCalls++
	if f.questionErr != nil {
		return ladder.Problem{}, f.questionErr
	}
	problem, ok := f.questions[id]
	if !ok {
		return ladder.Problem{}, errors.New("missing question")
	}
	return problem, nil
}

func (f *fakeBackend) Problemset(context.Context) ([]ladder.Problem, error) {
	f.catalogFetches++
	return f.catalog, nil
}

func (f *fakeBackend) EditLadder(_ context.Context, tableID int, ids []ladder.QuestionID, action string) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, editCall{tableID: tableID, ids: ids, action: action})
	return nil
}

func (f *fakeBackend) MarkQuestion(context.Context, ladder.QuestionID) error   { return f.markErr }
func (f *fakeBackend) UnmarkQuestion(context.Context, ladder.QuestionID) error { return f.markErr }

func (f *fakeBackend) AddCollaborator(_ context.Context, tableID int, username string) error {
	if f.collabErr != nil {
		return f.collabErr
	}
	f.collabAdds = append(f.collabAdds, username)
	l := f.ladders[tableID]
	l.Users = append(append([]string(nil), l.Users...), username)
	f.ladders[tableID] = l
	return nil
}

func (f *fakeBackend) RemoveCollaborator(context.Context, int, string) ([]string, error) {
	if f.collabErr != nil {
		return nil, f.collabErr
	}
	return f.removeResult, nil
}

func newFixture() *fakeBackend {
	return &fakeBackend{
		ladders: map[int]ladder.Ladder{
			7: {
				TableID:   7,
				Title:     "Graphs",
				Users:     []string{"alice", "bob"},
				OwnerID:   "alice",
				Questions: []ladder.QuestionID{"1", "2", "3"},
			},
		},
		questions: map[ladder.QuestionID]ladder.Problem{
			"1": {QuestionID: "1", Title: "BFS", Tags: []string{"Graphs"}, SolvedBy: []string{"alice"}},
			"2": {QuestionID: "2", Title: "Knapsack", Tags: []string{"DP"}},
			"3": {QuestionID: "3", Title: "Mystery"},
			"4": {QuestionID: "4", Title: "Segment tree", Tags: []string{"Segment Tree"}},
		},
		catalog: []ladder.Problem{
			{QuestionID: "1", Title: "BFS"},
			{QuestionID: "4", Title: "Segment tree"},
			{QuestionID: "5", Title: "Binary search"},
		},
	}
}

func TestLoadResolvesInOrder(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "bob", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	var ids []ladder.QuestionID
	for _, problem := range manager.Problems() {
		ids = append(ids, problem.QuestionID)
	}
	if diff := cmp.Diff([]ladder.QuestionID{"1", "2", "3"}, ids); diff != "" {
		t.Fatalf("problem order mismatch (-want +got):\n%s", diff)
	}

	assert.False(t, manager.IsOwner())
	assert.Equal(t, ladder.Progress{Solved: 0, Total: 3}, manager.OverallProgress())
	assert.Equal(t, 1, manager.SectionProgress("Graphs").Total)
	assert.Equal(t, []string{"Dynamic Programming", "Graphs", ladder.Miscellaneous}, manager.Groups().Labels())
}

func TestLoadDeniesNonMembers(t *testing.T) {
	manager := New(newFixture(), "mallory", nil)
	err := manager.Load(context.Background(), 7)
	assert.ErrorIs(t, err, ladder.ErrAccessDenied)
}

func TestLoadFailsWhenAnyQuestionFails(t *testing.T) {
	backend := newFixture()
	backend.questionErr = errors.New("boom")
	manager := New(backend, "alice", nil)

	err := manager.Load(context.Background(), 7)
	require.ErrorIs(t, err, ErrQuestionDetails)
	assert.Empty(t, manager.Problems())
}

func TestCandidatesFetchCatalogOnce(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "alice", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	candidates, err := manager.Candidates(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, ladder.QuestionID("4"), candidates[0].QuestionID)

	candidates, err = manager.Candidates(context.Background(), "binary")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 1, backend.catalogFetches)
}

func TestAddProblemsSingleEdit(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "alice", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	added, err := manager.AddProblems(context.Background(), []ladder.QuestionID{"1", "4"})
	require.NoError(t, err)
	assert.Equal(t, []ladder.QuestionID{"4"}, added)
	require.Len(t, backend.edits, 1)
	assert.Equal(t, api.ActionAdd, backend.edits[0].action)
	assert.Equal(t, []ladder.QuestionID{"4"}, backend.edits[0].ids)
	assert.True(t, manager.Ladder().Contains("4"))
	assert.Len(t, manager.Problems(), 4)

	_, err = manager.AddProblems(context.Background(), []ladder.QuestionID{"1"})
	assert.ErrorIs(t, err, ErrNothingSelected)
	assert.Len(t, backend.edits, 1)
}

func TestEditFailureLeavesLadderUntouched(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "alice", nil)
	require.NoError(t, manager.Load(context.Background(), 7))
	backend.editErr = errors.New("nope")

	_, err := manager.AddProblems(context.Background(), []ladder.QuestionID{"4"})
	require.Error(t, err)
	assert.False(t, manager.Ladder().Contains("4"))

	err = manager.RemoveProblems(context.Background(), []ladder.QuestionID{"1"})
	require.Error(t, err)
	assert.True(t, manager.Ladder().Contains("1"))
	assert.Len(t, manager.Problems(), 3)
}

func TestRemoveProblems(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "alice", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	require.NoError(t, manager.RemoveProblems(context.Background(), []ladder.QuestionID{"1", "3", "99"}))
	require.Len(t, backend.edits, 1)
	assert.Equal(t, api.ActionRemove, backend.edits[0].action)
	assert.Equal(t, []ladder.QuestionID{"1", "3"}, backend.edits[0].ids)
	assert.Equal(t, []ladder.QuestionID{"2"}, manager.Ladder().Questions)
	require.Len(t, manager.Problems(), 1)
	assert.Equal(t, "Knapsack", manager.Problems()[0].Title)
}

func TestCollaborators(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "alice", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	assert.Equal(t, []string{"bob"}, manager.Collaborators("BO"))

	require.NoError(t, manager.AddCollaborator(context.Background(), " carol "))
	assert.Equal(t, []string{"carol"}, backend.collabAdds)
	assert.Equal(t, []string{"alice", "bob", "carol"}, manager.Ladder().Users)
	assert.ErrorIs(t, manager.AddCollaborator(context.Background(), "bob"), ErrAlreadyCollaborate)

	backend.removeResult = []string{"alice", "carol"}
	require.NoError(t, manager.RemoveCollaborator(context.Background(), "bob"))
	assert.Equal(t, []string{"alice", "carol"}, manager.Ladder().Users)
	assert.ErrorIs(t, manager.RemoveCollaborator(context.Background(), "alice"), ErrCannotRemoveOwner)
}

func TestRemoveCollaboratorOwnerOnly(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "bob", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	err := manager.RemoveCollaborator(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotOwner)
	err = manager.AddCollaborator(context.Background(), "carol")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Empty(t, backend.collabAdds)
}

func TestMarkAndUnmark(t *testing.T) {
	backend := newFixture()
	manager := New(backend, "bob", nil)
	require.NoError(t, manager.Load(context.Background(), 7))

	require.NoError(t, manager.MarkSolved(context.Background(), "2"))
	assert.True(t, manager.Problems()[1].IsSolvedBy("bob"))
	require.NoError(t, manager.Unmark(context.Background(), "2"))
	assert.False(t, manager.Problems()[1].IsSolvedBy("bob"))

	backend.markErr = errors.New("down")
	require.Error(t, manager.MarkSolved(context.Background(), "2"))
	assert.False(t, manager.Problems()[1].IsSolvedBy("bob"))

	assert.ErrorIs(t, manager.MarkSolved(context.Background(), "42"), ErrUnknownQuestion)
}
