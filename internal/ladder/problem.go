package ladder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidQuestionID = errors.New("invalid question id")

// QuestionID identifies a problem in the backend catalog. The backend emits
// numeric ids but older records carry string ids, so both are accepted.
type QuestionID string

func (id QuestionID) String() string {
	return string(id)
}

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidQuestionID, err)
		}
		*id = QuestionID(strings.TrimSpace(text))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestionID, err)
	}
	*id = QuestionID(number.String())
	return nil
}

func (id QuestionID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// ParseQuestionID turns user input into a QuestionID.
func ParseQuestionID(raw string) (QuestionID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidQuestionID
	}
	return QuestionID(trimmed), nil
}

type Problem struct {
	QuestionID QuestionID `json:"question_id"`
	Title      string     `json:"title"`
	Link       string     `json:"link"`
	Tags       []string   `json:"tags"`
	SolvedBy   []string   `json:"solved_by"`
	ContestID  int        `json:"contestId,omitempty"`
	Index      string     `json:"index,omitempty"`
	Name       string     `json:"name,omitempty"`
	Rating     int        `json:"rating,omitempty"`
}

func (p Problem) IsSolvedBy(username string) bool {
	if username == "" {
		return false
	}
	for _, user := range p.SolvedBy {
		if user == username {
			return true
		}
	}
	return false
}

// MarkSolvedBy returns a copy of p with username appended to SolvedBy.
func (p Problem) MarkSolvedBy(username string) Problem {
	if p.IsSolvedBy(username) {
		return p
	}
	solved := make([]string, 0, len(p.SolvedBy)+1)
	solved = append(solved, p.SolvedBy...)
	p.SolvedBy = append(solved, username)
	return p
}

// UnmarkSolvedBy returns a copy of p without username in SolvedBy.
func (p Problem) UnmarkSolvedBy(username string) Problem {
	solved := make([]string, 0, len(p.SolvedBy))
	for _, user := range p.SolvedBy {
		if user != username {
			solved = append(solved, user)
		}
	}
	p.SolvedBy = solved
	return p
}

// DisplayTitle falls back to the Codeforces-style name when the backend
// record has no title.
func (p Problem) DisplayTitle() string {
	if strings.TrimSpace(p.Title) != "" {
		return p.Title
	}
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return "Question " + p.QuestionID.String()
}

// Submission is one entry of a user's marked-question history.
type Submission struct {
	QuestionID QuestionID `json:"questionId"`
	Date       string     `json:"date"`
	Marked     bool       `json:"marked"`
}

// Counts reports whether the submission contributes to the calendar.
func (s Submission) Counts() bool {
	return s.Marked && strings.TrimSpace(s.Date) != ""
}

func IndexByID(problems []Problem) map[QuestionID]int {
	index := make(map[QuestionID]int, len(problems))
	for idx, problem := range problems {
		index[problem.QuestionID] = idx
	}
	return index
}
