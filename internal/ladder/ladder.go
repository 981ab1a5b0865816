package ladder

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrLadderNotFound = errors.New("ladder not found")
	ErrAccessDenied   = errors.New("you do not have permission to access this ladder")
)

const RevisionTitle = "Revision"

type Ladder struct {
	TableID   int          `json:"table_id"`
	Title     string       `json:"table_title"`
	Users     []string     `json:"user"`
	OwnerID   string       `json:"owner,omitempty"`
	Questions []QuestionID `json:"questions"`
}

// UnmarshalJSON fills OwnerID from the first user when the backend does not
// send an explicit owner.
func (l *Ladder) UnmarshalJSON(data []byte) error {
	type rawLadder Ladder
	var raw rawLadder
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Ladder(raw)
	if strings.TrimSpace(l.OwnerID) == "" && len(l.Users) > 0 {
		l.OwnerID = l.Users[0]
	}
	return nil
}

func (l Ladder) IsOwner(username string) bool {
	return username != "" && l.OwnerID == username
}

func (l Ladder) HasMember(username string) bool {
	if username == "" {
		return false
	}
	for _, user := range l.Users {
		if user == username {
			return true
		}
	}
	return false
}

func (l Ladder) Contains(id QuestionID) bool {
	for _, existing := range l.Questions {
		if existing == id {
			return true
		}
	}
	return false
}

func (l Ladder) IsRevision() bool {
	return strings.EqualFold(strings.TrimSpace(l.Title), RevisionTitle)
}

// WithQuestions returns a copy of l with ids appended, skipping ids already
// present so the question list never holds duplicates.
func (l Ladder) WithQuestions(ids []QuestionID) Ladder {
	seen := make(map[QuestionID]struct{}, len(l.Questions)+len(ids))
	merged := make([]QuestionID, 0, len(l.Questions)+len(ids))
	for _, id := range l.Questions {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	l.Questions = merged
	return l
}

func (l Ladder) WithoutQuestions(ids []QuestionID) Ladder {
	drop := make(map[QuestionID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]QuestionID, 0, len(l.Questions))
	for _, id := range l.Questions {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	l.Questions = kept
	return l
}

// NewQuestions returns the ids not yet in the ladder, deduplicated, in
// input order.
func (l Ladder) NewQuestions(ids []QuestionID) []QuestionID {
	seen := make(map[QuestionID]struct{}, len(ids))
	fresh := make([]QuestionID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || l.Contains(id) {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}

// FindRevision returns the first ladder titled "Revision" (case-insensitive).
func FindRevision(ladders []Ladder) (Ladder, bool) {
	for _, candidate := range ladders {
		if candidate.IsRevision() {
			return candidate, true
		}
	}
	return Ladder{}, false
}
