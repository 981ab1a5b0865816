// Package catalog loads the static Codeforces problem and contest catalogs
// served next to the web front end.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeladder/internal/logging"
)

const (
	problemsetPath = "/problemset.json"
	contestPath    = "/contest.json"

	StatusNotAttempted = "NOT_ATTEMPTED"
)

var ErrInvalidStructure = errors.New("invalid catalog structure")

type rawProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
}

type problemsetResponse struct {
	Status string `json:"status"`
	Result struct {
		Problems []rawProblem `json:"problems"`
	} `json:"result"`
}

type Contest struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phase string `json:"phase"`
}

type contestResponse struct {
	Status string    `json:"status"`
	Result []Contest `json:"result"`
}

// Entry is a normalized catalog problem.
type Entry struct {
	ContestID   int
	ContestName string
	Index       string
	Name        string
	Link        string
	Rating      int // 0 when unrated
	Tags        []string
	UserStatus  string
}

// SourceStatus reports how one of the two static files loaded.
type SourceStatus struct {
	Loaded bool
	Count  int
	Err    error
}

type Catalog struct {
	Entries  []Entry
	Contests map[int]Contest

	Problems    SourceStatus
	ContestList SourceStatus
}

func (c Catalog) OK() bool {
	return c.Problems.Loaded && c.ContestList.Loaded
}

type Loader struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLoader(baseURL string, httpClient *http.Client, logger *zap.Logger) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Loader{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
		logger:     logging.OrNop(logger),
	}
}

// Load fetches both files concurrently. A failure of one source is recorded
// in its status and does not prevent the other from loading.
func (l *Loader) Load(ctx context.Context) Catalog {
	var (
		problems []rawProblem
		contests []Contest
		catalog  Catalog
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		problems, err = l.fetchProblems(groupCtx)
		catalog.Problems = SourceStatus{Loaded: err == nil, Count: len(problems), Err: err}
		if err != nil {
			l.logger.Warn("failed to load problemset", zap.Error(err))
		}
		return nil
	})
	group.Go(func() error {
		var err error
		contests, err = l.fetchContests(groupCtx)
		catalog.ContestList = SourceStatus{Loaded: err == nil, Count: len(contests), Err: err}
		if err != nil {
			l.logger.Warn("failed to load contests", zap.Error(err))
		}
		return nil
	})
	_ = group.Wait()

	catalog.Contests = make(map[int]Contest, len(contests))
	for _, contest := range contests {
		catalog.Contests[contest.ID] = contest
	}
	catalog.Entries = Normalize(problems, catalog.Contests)
	return catalog
}

func (l *Loader) fetchProblems(ctx context.Context) ([]rawProblem, error) {
	var payload problemsetResponse
	if err := l.getJSON(ctx, problemsetPath, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("%w: problemset status %q", ErrInvalidStructure, payload.Status)
	}
	return payload.Result.Problems, nil
}

func (l *Loader) fetchContests(ctx context.Context) ([]Contest, error) {
	var payload contestResponse
	if err := l.getJSON(ctx, contestPath, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("%w: contest status %q", ErrInvalidStructure, payload.Status)
	}
	return payload.Result, nil
}

func (l *Loader) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func ProblemLink(contestID int, index string) string {
	return "https://codeforces.com/contest/" + strconv.Itoa(contestID) + "/problem/" + index
}

func Normalize(problems []rawProblem, contests map[int]Contest) []Entry {
	entries := make([]Entry, 0, len(problems))
	for _, problem := range problems {
		entries = append(entries, Entry{
			ContestID:   problem.ContestID,
			ContestName: contests[problem.ContestID].Name,
			Index:       problem.Index,
			Name:        problem.Name,
			Link:        ProblemLink(problem.ContestID, problem.Index),
			Rating:      problem.Rating,
			Tags:        problem.Tags,
			UserStatus:  StatusNotAttempted,
		})
	}
	return entries
}

// ContestGroup is one contest with its problems ordered by index.
type ContestGroup struct {
	ContestID int
	Name      string
	Problems  []Entry
}

// GroupByContest orders contests newest (highest id) first.
func GroupByContest(entries []Entry) []ContestGroup {
	byID := make(map[int]*ContestGroup)
	for _, entry := range entries {
		group, ok := byID[entry.ContestID]
		if !ok {
			group = &ContestGroup{ContestID: entry.ContestID, Name: entry.ContestName}
			byID[entry.ContestID] = group
		}
		group.Problems = append(group.Problems, entry)
	}

	groups := make([]ContestGroup, 0, len(byID))
	for _, group := range byID {
		sort.SliceStable(group.Problems, func(i, j int) bool {
			return group.Problems[i].Index < group.Problems[j].Index
		})
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ContestID > groups[j].ContestID
	})
	return groups
}
