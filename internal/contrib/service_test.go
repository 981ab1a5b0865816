package contrib

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeladder/internal/ladder"
)

type fakeBackend struct {
	submissions    []ladder.Submission
	problems       []ladder.Problem
	submissionsErr error
	problemsErr    error
}

func (f *fakeBackend) UserSubmissions(context.Context, string) ([]ladder.Submission, error) {
	return f.submissions, f.submissionsErr
}

func (f *fakeBackend) Problemset(context.Context) ([]ladder.Problem, error) {
	return f.problems, f.problemsErr
}

type fakeQuestions map[ladder.QuestionID]ladder.Problem

func (f fakeQuestions) Question(_ context.Context, id ladder.QuestionID) (ladder.Problem, error) {
	problem, ok := f[id]
	if !ok {
		return ladder.Problem{}, errors.New("not found")
	}
	return problem, nil
}

func fixedService(backend Backend, questions fakeQuestions) *Service {
	service := NewService(backend, questions, "alice", nil)
	service.now = func() time.Time {
		return time.Date(2023, time.June, 10, 12, 0, 0, 0, time.UTC)
	}
	return service
}

func TestLoadEnrichesAndAggregates(t *testing.T) {
	backend := &fakeBackend{
		submissions: []ladder.Submission{
			{QuestionID: "1", Date: "2023-06-10T08:00:00Z", Marked: true},
			{QuestionID: "2", Date: "2023-06-09T08:00:00Z", Marked: true},
			{QuestionID: "3", Date: "2023-06-09T09:00:00Z", Marked: false},
			{QuestionID: "4", Marked: true},
		},
		problems: []ladder.Problem{
			{QuestionID: "1", Tags: []string{"Easy"}, SolvedBy: []string{"alice"}},
			{QuestionID: "2", Tags: []string{"hard"}},
			{QuestionID: "5", Tags: []string{"CodeChef", "1450"}, SolvedBy: []string{"alice"}},
			{QuestionID: "6", Tags: []string{"codechef"}},
		},
	}
	questions := fakeQuestions{
		"1": {QuestionID: "1", Title: "Two Sum", Link: "https://x/1", Tags: []string{"array"}},
	}

	report := fixedService(backend, questions).Load(context.Background())
	require.NoError(t, report.CalendarErr)
	require.NoError(t, report.StatsErr)

	calendar := report.Calendar
	assert.Equal(t, 2, calendar.Total)
	assert.Equal(t, 2, calendar.Streak.Current)
	assert.Len(t, calendar.Days, 365)

	day, ok := calendar.Day("2023-06-09")
	require.True(t, ok)
	require.Len(t, day.Submissions, 1)
	assert.Equal(t, "Question 2", day.Submissions[0].Title)
	assert.Empty(t, day.Submissions[0].Tags)

	day, _ = calendar.Day("2023-06-10")
	assert.Equal(t, "Two Sum", day.Submissions[0].Title)

	assert.Equal(t, ladder.Progress{Solved: 1, Total: 1}, report.Difficulty.Easy)
	assert.Equal(t, ladder.Progress{Solved: 0, Total: 1}, report.Difficulty.Hard)
	assert.Equal(t, ladder.Progress{Solved: 2, Total: 4}, report.Difficulty.All)

	require.Len(t, report.RatingBands, 7)
	assert.Equal(t, "2★ (1400-1599)", report.RatingBands[1].Label)
	assert.Equal(t, ladder.Progress{Solved: 1, Total: 1}, report.RatingBands[1].Progress)
}

func TestLoadFailuresResetBlocks(t *testing.T) {
	backend := &fakeBackend{
		submissionsErr: errors.New("down"),
		problemsErr:    errors.New("down"),
	}
	report := fixedService(backend, fakeQuestions{}).Load(context.Background())

	assert.Error(t, report.CalendarErr)
	assert.Error(t, report.StatsErr)
	assert.Len(t, report.Calendar.Days, 365)
	assert.Zero(t, report.Calendar.Total)
	assert.Equal(t, DifficultyStats{}, report.Difficulty)
	assert.Equal(t, EmptyRatingBands(), report.RatingBands)
}

func TestRatingBandBoundaries(t *testing.T) {
	problems := []ladder.Problem{
		{Tags: []string{"codechef", "1399"}},
		{Tags: []string{"codechef", "1400"}},
		{Tags: []string{"codechef", "2500"}},
		{Tags: []string{"1500"}},
	}
	bands := ComputeRatingBands(problems, "alice")
	assert.Equal(t, 1, bands[0].Total)
	assert.Equal(t, 1, bands[1].Total)
	assert.Equal(t, 1, bands[6].Total)
	assert.Equal(t, "7★ (≥2500)", bands[6].Label)
}
