package contrib

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeladder/internal/api"
	"codeladder/internal/ladder"
	"codeladder/internal/logging"
)

const enrichConcurrency = 8

type Backend interface {
	UserSubmissions(ctx context.Context, username string) ([]ladder.Submission, error)
	Problemset(ctx context.Context) ([]ladder.Problem, error)
}

// Report is everything the progress page shows. CalendarErr and StatsErr
// record which block fell back to its empty shape.
type Report struct {
	Calendar    Calendar
	Difficulty  DifficultyStats
	RatingBands []BandStat

	CalendarErr error
	StatsErr    error
}

type Service struct {
	backend   Backend
	questions api.QuestionGetter
	username  string
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(backend Backend, questions api.QuestionGetter, username string, logger *zap.Logger) *Service {
	return &Service{
		backend:   backend,
		questions: questions,
		username:  username,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Load fetches the submission calendar and the catalog statistics
// concurrently. Neither failure is returned; each block resets to its zero
// shape and the calendar always covers the whole year.
func (s *Service) Load(ctx context.Context) Report {
	today := s.now()
	report := Report{RatingBands: EmptyRatingBands()}

	var group errgroup.Group
	group.Go(func() error {
		entries, err := s.loadEntries(ctx)
		if err != nil {
			s.logger.Warn("failed to fetch submission data", zap.Error(err))
			report.CalendarErr = err
			entries = nil
		}
		report.Calendar = NewCalendar(entries, today)
		return nil
	})
	group.Go(func() error {
		problems, err := s.backend.Problemset(ctx)
		if err != nil {
			s.logger.Warn("failed to fetch difficulty stats", zap.Error(err))
			report.StatsErr = fmt.Errorf("failed to fetch questions: %w", err)
			return nil
		}
		report.Difficulty = ComputeDifficulty(problems, s.username)
		report.RatingBands = ComputeRatingBands(problems, s.username)
		return nil
	})
	_ = group.Wait()
	return report
}

func (s *Service) loadEntries(ctx context.Context) ([]Entry, error) {
	submissions, err := s.backend.UserSubmissions(ctx, s.username)
	if err != nil {
		return nil, err
	}

	counted := make([]ladder.Submission, 0, len(submissions))
	for _, submission := range submissions {
		if submission.Counts() {
			counted = append(counted, submission)
		}
	}
	return s.enrich(ctx, counted), nil
}

// enrich resolves each submission's problem. A failed lookup yields a
// placeholder title and no tags rather than failing the batch.
func (s *Service) enrich(ctx context.Context, submissions []ladder.Submission) []Entry {
	entries := make([]Entry, len(submissions))
	var group errgroup.Group
	group.SetLimit(enrichConcurrency)
	for idx, submission := range submissions {
		idx, submission := idx, submission
		group.Go(func() error {
			entry := Entry{
				Submission: submission,
				Title:      "Question " + submission.QuestionID.String(),
				Tags:       []string{},
			}
			problem, err := s.questions.Question(ctx, submission.QuestionID)
			if err != nil {
				s.logger.Debug("question lookup failed",
					zap.String("question_id", submission.QuestionID.String()),
					zap.Error(err))
				entries[idx] = entry
				return nil
			}
			entry.Title = problem.DisplayTitle()
			entry.Link = problem.Link
			if problem.Tags != nil {
				entry.Tags = problem.Tags
			}
			entries[idx] = entry
			return nil
		})
	}
	_ = group.Wait()
	return entries
}
