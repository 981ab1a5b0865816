package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"codeladder/internal/ladder"
)

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

type editTableRequest struct {
	TableID     int                 `json:"table_id"`
	QuestionIDs []ladder.QuestionID `json:"questionIds"`
	Action      string              `json:"action"`
}

type markRequest struct {
	QuestionID ladder.QuestionID `json:"questionid"`
	User       string            `json:"user"`
}

type collabRequest struct {
	SourceTableID int    `json:"source_table_id"`
	NewUserID     string `json:"new_user_id"`
}

type removeCollabRequest struct {
	SourceTableID int    `json:"source_table_id"`
	UserToRemove  string `json:"user_to_remove"`
}

type removeCollabResponse struct {
	Users []string `json:"users"`
}

type laddersRequest struct {
	Username string `json:"username"`
}

type createTableRequest struct {
	Title    string `json:"table_title"`
	Username string `json:"username"`
}

type submissionsResponse struct {
	Submissions []ladder.Submission `json:"submissions"`
}

// Problemset fetches the full problem catalog.
func (c *Client) Problemset(ctx context.Context) ([]ladder.Problem, error) {
	var problems []ladder.Problem
	if err := c.doJSON(ctx, http.MethodGet, "/problemset", nil, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

func (c *Client) Question(ctx context.Context, id ladder.QuestionID) (ladder.Problem, error) {
	if strings.TrimSpace(id.String()) == "" {
		return ladder.Problem{}, ladder.ErrInvalidQuestionID
	}

	var problem ladder.Problem
	if err := c.doJSON(ctx, http.MethodGet, "/question/"+url.PathEscape(id.String()), nil, &problem); err != nil {
		return ladder.Problem{}, err
	}
	if problem.QuestionID == "" {
		problem.QuestionID = id
	}
	return problem, nil
}

// UserSubmissions returns every submission on record; callers filter with
// Submission.Counts.
func (c *Client) UserSubmissions(ctx context.Context, username string) ([]ladder.Submission, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}

	var payload submissionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/usersubmissions/"+url.PathEscape(username), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Submissions, nil
}

func (c *Client) Ladder(ctx context.Context, tableID int) (ladder.Ladder, error) {
	var l ladder.Ladder
	err := c.doJSON(ctx, http.MethodGet, "/ladder/"+strconv.Itoa(tableID), nil, &l)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return ladder.Ladder{}, fmt.Errorf("%w: %s", ladder.ErrLadderNotFound, apiErr.Message)
		}
		return ladder.Ladder{}, err
	}
	return l, nil
}

// Ladders lists the ladders visible to username. The backend answers with a
// bare array or an object wrapping it under "ladders" or "tables".
func (c *Client) Ladders(ctx context.Context, username string) ([]ladder.Ladder, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodPost, "/ladders", laddersRequest{Username: username}, &raw); err != nil {
		return nil, err
	}
	return decodeLadders(raw)
}

func decodeLadders(raw json.RawMessage) ([]ladder.Ladder, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var ladders []ladder.Ladder
		if err := json.Unmarshal(trimmed, &ladders); err != nil {
			return nil, err
		}
		return ladders, nil
	}

	var wrapped struct {
		Ladders []ladder.Ladder `json:"ladders"`
		Tables  []ladder.Ladder `json:"tables"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Ladders != nil {
		return wrapped.Ladders, nil
	}
	return wrapped.Tables, nil
}

func (c *Client) CreateLadder(ctx context.Context, title string) (ladder.Ladder, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return ladder.Ladder{}, errors.New("ladder title is required")
	}

	var created ladder.Ladder
	request := createTableRequest{Title: title, Username: c.session.Username}
	if err := c.doJSON(ctx, http.MethodPost, "/createtable", request, &created); err != nil {
		return ladder.Ladder{}, err
	}
	if created.Title == "" {
		created.Title = title
	}
	return created, nil
}

func (c *Client) EditLadder(ctx context.Context, tableID int, ids []ladder.QuestionID, action string) error {
	if action != ActionAdd && action != ActionRemove {
		return fmt.Errorf("unknown edit action %q", action)
	}
	if len(ids) == 0 {
		return errors.New("no question ids to " + action)
	}

	request := editTableRequest{
		TableID:     tableID,
		QuestionIDs: ids,
		Action:      action,
	}
	return c.doJSON(ctx, http.MethodPatch, "/edittable", request, nil)
}

func (c *Client) MarkQuestion(ctx context.Context, id ladder.QuestionID) error {
	return c.doJSON(ctx, http.MethodPatch, "/markquestion", markRequest{QuestionID: id, User: c.session.Username}, nil)
}

func (c *Client) UnmarkQuestion(ctx context.Context, id ladder.QuestionID) error {
	return c.doJSON(ctx, http.MethodPatch, "/unmarkquestion", markRequest{QuestionID: id, User: c.session.Username}, nil)
}

func (c *Client) AddCollaborator(ctx context.Context, tableID int, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("collaborator username is required")
	}
	return c.doJSON(ctx, http.MethodPost, "/collabtable", collabRequest{SourceTableID: tableID, NewUserID: username}, nil)
}

// RemoveCollaborator returns the ladder's user list after removal.
func (c *Client) RemoveCollaborator(ctx context.Context, tableID int, username string) ([]string, error) {
	var payload removeCollabResponse
	request := removeCollabRequest{SourceTableID: tableID, UserToRemove: username}
	if err := c.doJSON(ctx, http.MethodPost, "/removecollab", request, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}
