package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"codeladder/internal/ladder"
	"codeladder/internal/session"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, session.New("alice", "tok"), WithHTTPClient(server.Client()))
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client := NewClient("  ", session.Session{})
	if client.BaseURL() != DefaultBaseURL {
		t.Fatalf("base url = %q, want %q", client.BaseURL(), DefaultBaseURL)
	}
	client = NewClient("http://example.test/", session.Session{})
	if client.BaseURL() != "http://example.test" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", client.BaseURL())
	}
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewClient("http://example.test", session.New("alice", "tok"), WithHTTPClient(&http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	}))

	_, err := client.Problemset(context.Background())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable wrapper, got %v", err)
	}
}

func TestDoJSONSendsSessionHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("x-username"); got != "alice" {
			t.Errorf("x-username = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected X-Request-ID header")
		}
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.Problemset(context.Background()); err != nil {
		t.Fatalf("Problemset failed: %v", err)
	}
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "user already a collaborator"})
	})

	err := client.AddCollaborator(context.Background(), 3, "bob")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "user already a collaborator" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("400 must not be reported as unauthorized")
	}
}

func TestUnauthorizedStatusUnwraps(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Problemset(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLadderNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ladder/42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such ladder"}`))
	})

	_, err := client.Ladder(context.Background(), 42)
	if !errors.Is(err, ladder.ErrLadderNotFound) {
		t.Fatalf("expected ErrLadderNotFound, got %v", err)
	}
}

func TestEditLadderPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/edittable" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if payload["action"] != "add" || payload["table_id"] != float64(7) {
			t.Errorf("unexpected payload: %s", body)
		}
		ids, _ := payload["questionIds"].([]any)
		if len(ids) != 2 || ids[0] != float64(1) || ids[1] != "abc" {
			t.Errorf("unexpected ids: %s", body)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := client.EditLadder(context.Background(), 7, []ladder.QuestionID{"1", "abc"}, ActionAdd); err != nil {
		t.Fatalf("EditLadder failed: %v", err)
	}
	if err := client.EditLadder(context.Background(), 7, nil, ActionAdd); err == nil {
		t.Fatalf("expected error for empty id list")
	}
	if err := client.EditLadder(context.Background(), 7, []ladder.QuestionID{"1"}, "replace"); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestMarkQuestionUsesSessionUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload markRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode: %v", err)
		}
		if r.URL.Path != "/unmarkquestion" || payload.User != "alice" || payload.QuestionID != "9" {
			t.Errorf("unexpected request %s %+v", r.URL.Path, payload)
		}
	})

	if err := client.UnmarkQuestion(context.Background(), "9"); err != nil {
		t.Fatalf("UnmarkQuestion failed: %v", err)
	}
}

func TestLaddersAcceptsWrappedAndBareArrays(t *testing.T) {
	responses := []string{
		`[{"table_id":1,"table_title":"Revision","user":["alice"]}]`,
		`{"ladders":[{"table_id":1,"table_title":"Revision","user":["alice"]}]}`,
		`{"tables":[{"table_id":1,"table_title":"Revision","user":["alice"]}]}`,
	}
	for _, body := range responses {
		body := body
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var payload laddersRequest
			_ = json.NewDecoder(r.Body).Decode(&payload)
			if payload.Username != "alice" {
				t.Errorf("username = %q", payload.Username)
			}
			_, _ = w.Write([]byte(body))
		})

		ladders, err := client.Ladders(context.Background(), "alice")
		if err != nil {
			t.Fatalf("Ladders(%s) failed: %v", body, err)
		}
		if len(ladders) != 1 || ladders[0].TableID != 1 || ladders[0].OwnerID != "alice" {
			t.Fatalf("unexpected ladders for %s: %+v", body, ladders)
		}
	}
}

func TestRemoveCollaboratorReturnsUsers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload removeCollabRequest
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload.SourceTableID != 5 || payload.UserToRemove != "bob" {
			t.Errorf("unexpected payload %+v", payload)
		}
		_, _ = w.Write([]byte(`{"users":["alice"]}`))
	})

	users, err := client.RemoveCollaborator(context.Background(), 5, "bob")
	if err != nil {
		t.Fatalf("RemoveCollaborator failed: %v", err)
	}
	if len(users) != 1 || users[0] != "alice" {
		t.Fatalf("users = %v", users)
	}
}

func TestUserSubmissions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/usersubmissions/alice" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"submissions":[{"questionId":3,"date":"2024-02-01T10:00:00Z","marked":true}]}`))
	})

	subs, err := client.UserSubmissions(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UserSubmissions failed: %v", err)
	}
	if len(subs) != 1 || subs[0].QuestionID != "3" || !subs[0].Counts() {
		t.Fatalf("unexpected submissions: %+v", subs)
	}
}

func TestQuestionCacheHitsSourceOnce(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"question_id":5,"title":"Five","tags":["dp"]}`))
	})

	cache, err := NewQuestionCache(client, 0)
	if err != nil {
		t.Fatalf("NewQuestionCache failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		problem, err := cache.Question(context.Background(), "5")
		if err != nil {
			t.Fatalf("Question failed: %v", err)
		}
		if problem.Title != "Five" {
			t.Fatalf("title = %q", problem.Title)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one backend call, got %d", calls.Load())
	}
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d", cache.Len())
	}
}
