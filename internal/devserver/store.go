package devserver

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"codeladder/internal/ladder"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)

// Store is the in-memory backend state. All methods are safe for concurrent
// use.
type Store struct {
	mu sync.Mutex

	problems    map[ladder.QuestionID]ladder.Problem
	order       []ladder.QuestionID
	contests    []SeedContest
	ladders     map[int]ladder.Ladder
	nextTableID int
	submissions map[string][]ladder.Submission

	now func() time.Time
}

func NewStore(seed Seed) (*Store, error) {
	store := &Store{
		problems:    make(map[ladder.QuestionID]ladder.Problem),
		contests:    seed.Contests,
		ladders:     make(map[int]ladder.Ladder),
		nextTableID: 1,
		submissions: make(map[string][]ladder.Submission),
		now:         time.Now,
	}

	for _, raw := range seed.Problems {
		id, err := ladder.ParseQuestionID(raw.ID)
		if err != nil {
			return nil, fmt.Errorf("seed problem %q: %w", raw.ID, err)
		}
		if _, dup := store.problems[id]; dup {
			return nil, fmt.Errorf("seed problem %q: duplicate id", raw.ID)
		}
		store.problems[id] = ladder.Problem{
			QuestionID: id,
			Title:      raw.Title,
			Link:       raw.Link,
			Tags:       raw.Tags,
			SolvedBy:   raw.SolvedBy,
			ContestID:  raw.ContestID,
			Index:      raw.Index,
			Rating:     raw.Rating,
		}
		store.order = append(store.order, id)
	}

	for _, raw := range seed.Ladders {
		if len(raw.Users) == 0 {
			return nil, fmt.Errorf("seed ladder %d: at least one user is required", raw.ID)
		}
		questions := make([]ladder.QuestionID, 0, len(raw.Questions))
		for _, q := range raw.Questions {
			id, err := ladder.ParseQuestionID(q)
			if err != nil {
				return nil, fmt.Errorf("seed ladder %d: %w", raw.ID, err)
			}
			questions = append(questions, id)
		}
		store.ladders[raw.ID] = ladder.Ladder{
			TableID:   raw.ID,
			Title:     raw.Title,
			Users:     raw.Users,
			OwnerID:   raw.Users[0],
			Questions: questions,
		}.WithQuestions(nil)
		store.nextTableID = max(store.nextTableID, raw.ID+1)
	}

	for _, raw := range seed.Submissions {
		id, err := ladder.ParseQuestionID(raw.Question)
		if err != nil {
			return nil, fmt.Errorf("seed submission: %w", err)
		}
		store.submissions[raw.User] = append(store.submissions[raw.User], ladder.Submission{
			QuestionID: id,
			Date:       raw.Date,
			Marked:     true,
		})
	}
	return store, nil
}

func (s *Store) Problems() []ladder.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()

	problems := make([]ladder.Problem, 0, len(s.order))
	for _, id := range s.order {
		problems = append(problems, s.problems[id])
	}
	return problems
}

func (s *Store) Contests() []SeedContest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SeedContest(nil), s.contests...)
}

func (s *Store) Problem(id ladder.QuestionID) (ladder.Problem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	problem, ok := s.problems[id]
	if !ok {
		return ladder.Problem{}, fmt.Errorf("%w: question %s", ErrNotFound, id)
	}
	return problem, nil
}

func (s *Store) Submissions(username string) []ladder.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ladder.Submission{}, s.submissions[username]...)
}

// Ladder returns the ladder when username is a member.
func (s *Store) Ladder(tableID int, username string) (ladder.Ladder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberLadder(tableID, username)
}

func (s *Store) memberLadder(tableID int, username string) (ladder.Ladder, error) {
	l, ok := s.ladders[tableID]
	if !ok {
		return ladder.Ladder{}, fmt.Errorf("%w: ladder %d", ErrNotFound, tableID)
	}
	if !l.HasMember(username) {
		return ladder.Ladder{}, fmt.Errorf("%w: not a member of ladder %d", ErrForbidden, tableID)
	}
	return l, nil
}

func (s *Store) ownedLadder(tableID int, username string) (ladder.Ladder, error) {
	l, err := s.memberLadder(tableID, username)
	if err != nil {
		return ladder.Ladder{}, err
	}
	if !l.IsOwner(username) {
		return ladder.Ladder{}, fmt.Errorf("%w: only the owner can manage collaborators", ErrForbidden)
	}
	return l, nil
}

// Ladders lists the ladders username belongs to, by table id.
func (s *Store) Ladders(username string) []ladder.Ladder {
	s.mu.Lock()
	defer s.mu.Unlock()

	ladders := make([]ladder.Ladder, 0)
	for _, l := range s.ladders {
		if l.HasMember(username) {
			ladders = append(ladders, l)
		}
	}
	sort.Slice(ladders, func(i, j int) bool { return ladders[i].TableID < ladders[j].TableID })
	return ladders
}

func (s *Store) CreateLadder(username, title string) (ladder.Ladder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ladder.Ladder{}, fmt.Errorf("%w: table_title is required", ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := ladder.Ladder{
		TableID:   s.nextTableID,
		Title:     title,
		Users:     []string{username},
		OwnerID:   username,
		Questions: []ladder.QuestionID{},
	}
	s.ladders[created.TableID] = created
	s.nextTableID++
	return created, nil
}

func (s *Store) EditLadder(username string, tableID int, ids []ladder.QuestionID, action string) (ladder.Ladder, error) {
	if len(ids) == 0 {
		return ladder.Ladder{}, fmt.Errorf("%w: questionIds is required", ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.memberLadder(tableID, username)
	if err != nil {
		return ladder.Ladder{}, err
	}
	for _, id := range ids {
		if _, ok := s.problems[id]; !ok {
			return ladder.Ladder{}, fmt.Errorf("%w: question %s", ErrNotFound, id)
		}
	}

	switch action {
	case "add":
		l = l.WithQuestions(ids)
	case "remove":
		l = l.WithoutQuestions(ids)
	default:
		return ladder.Ladder{}, fmt.Errorf("%w: unknown action %q", ErrBadRequest, action)
	}
	s.ladders[tableID] = l
	return l, nil
}

// SetSolved records or clears username's solve of id. Marking also logs a
// submission for the contribution calendar.
func (s *Store) SetSolved(username string, id ladder.QuestionID, solved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	problem, ok := s.problems[id]
	if !ok {
		return fmt.Errorf("%w: question %s", ErrNotFound, id)
	}

	if solved {
		if problem.IsSolvedBy(username) {
			return fmt.Errorf("%w: already marked", ErrConflict)
		}
		s.problems[id] = problem.MarkSolvedBy(username)
		s.submissions[username] = append(s.submissions[username], ladder.Submission{
			QuestionID: id,
			Date:       s.now().UTC().Format(time.RFC3339),
			Marked:     true,
		})
		return nil
	}

	s.problems[id] = problem.UnmarkSolvedBy(username)
	history := s.submissions[username]
	for idx := range history {
		if history[idx].QuestionID == id {
			history[idx].Marked = false
		}
	}
	return nil
}

func (s *Store) AddCollaborator(owner string, tableID int, username string) (ladder.Ladder, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return ladder.Ladder{}, fmt.Errorf("%w: new_user_id is required", ErrBadRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ownedLadder(tableID, owner)
	if err != nil {
		return ladder.Ladder{}, err
	}
	if l.HasMember(username) {
		return ladder.Ladder{}, fmt.Errorf("%w: user is already a collaborator", ErrConflict)
	}
	l.Users = append(append([]string(nil), l.Users...), username)
	s.ladders[tableID] = l
	return l, nil
}

func (s *Store) RemoveCollaborator(owner string, tableID int, username string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.ownedLadder(tableID, owner)
	if err != nil {
		return nil, err
	}
	if username == l.OwnerID {
		return nil, fmt.Errorf("%w: the owner cannot be removed", ErrBadRequest)
	}
	if !l.HasMember(username) {
		return nil, fmt.Errorf("%w: user is not a collaborator", ErrNotFound)
	}

	users := make([]string, 0, len(l.Users))
	for _, user := range l.Users {
		if user != username {
			users = append(users, user)
		}
	}
	l.Users = users
	s.ladders[tableID] = l
	return users, nil
}
