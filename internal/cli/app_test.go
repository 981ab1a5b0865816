package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeladder/internal/devserver"
	"codeladder/internal/laddermgr"
	"codeladder/internal/session"
)

type memStore struct {
	mu      sync.Mutex
	current session.Session
}

func (m *memStore) Save(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}

func (m *memStore) Load(context.Context) (session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = session.Session{}
	return nil
}

type cliHarness struct {
	server     *httptest.Server
	issuer     *devserver.Issuer
	store      *memStore
	configPath string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	seed, err := devserver.NewStore(devserver.DefaultSeed())
	require.NoError(t, err)
	issuer := devserver.NewIssuer([]byte("cli-test-key"))
	server := httptest.NewServer(devserver.NewRouter(devserver.NewAPI(seed, issuer, nil)))
	t.Cleanup(server.Close)

	for _, key := range []string{"CODELADDER_USERNAME", "CODELADDER_TOKEN", "CODELADDER_STATIC_URL", "CODELADDER_PAGE_SIZE"} {
		t.Setenv(key, "")
	}
	t.Setenv("CODELADDER_BASE_URL", server.URL)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui:\n  no_color: true\n"), 0o600))

	return &cliHarness{server: server, issuer: issuer, store: &memStore{}, configPath: configPath}
}

func (h *cliHarness) login(t *testing.T, username string) {
	t.Helper()
	token, err := h.issuer.Issue(username)
	require.NoError(t, err)
	require.NoError(t, h.store.Save(context.Background(), session.New(username, token)))
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	opener := func(string) (session.Store, error) { return h.store, nil }
	err := Execute(context.Background(), append([]string{"--config", h.configPath}, args...),
		WithIO(strings.NewReader(stdin), &out, &errOut),
		WithStoreOpener(opener),
		WithHTTPClient(h.server.Client()))
	return out.String(), errOut.String(), err
}

func TestLoginThenWhoami(t *testing.T) {
	h := newCLIHarness(t)
	token, err := h.issuer.Issue("demo")
	require.NoError(t, err)

	out, _, err := h.run(t, "", "login", "-u", "demo", "-t", token)
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as demo")

	out, _, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "username: demo")
	assert.Contains(t, out, h.server.URL)
	assert.Contains(t, out, "expires:")
}

func TestLoginReadsTokenFromStdin(t *testing.T) {
	h := newCLIHarness(t)
	token, err := h.issuer.Issue("demo")
	require.NoError(t, err)

	_, _, err = h.run(t, token+"\n", "login", "-u", "demo")
	require.NoError(t, err)
	current, err := h.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, current.Token)
}

func TestLoginRequiresToken(t *testing.T) {
	h := newCLIHarness(t)
	_, _, err := h.run(t, "", "login", "-u", "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")

	current, _ := h.store.Load(context.Background())
	assert.Empty(t, current.Username)
}

func TestProtectedCommandsRequireLogin(t *testing.T) {
	h := newCLIHarness(t)

	for _, args := range [][]string{
		{"problems", "list"},
		{"ladder", "show", "1"},
		{"revision", "list"},
		{"calendar"},
	} {
		_, _, err := h.run(t, "", args...)
		assert.ErrorIs(t, err, session.ErrNotAuthenticated, "args %v", args)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	_, _, err := h.run(t, "", "logout")
	require.NoError(t, err)

	out, _, err := h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestProblemsListAndMark(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	out, _, err := h.run(t, "", "problems", "list", "-q", "islands")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of Islands")
	assert.NotContains(t, out, "Two Sum")

	out, _, err = h.run(t, "", "problems", "mark", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 1 marked solved.")

	out, _, err = h.run(t, "", "problems", "mark", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "already marked solved")

	out, _, err = h.run(t, "", "problems", "list", "--hide-solved")
	require.NoError(t, err)
	assert.NotContains(t, out, "Two Sum")
	assert.Contains(t, out, "1/5")
}

func TestProblemsListRejectsPageOutOfRange(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	_, _, err := h.run(t, "", "problems", "list", "-p", "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLadderShowGroupsByCategory(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	out, _, err := h.run(t, "", "ladder", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Starter Ladder")
	arrays := strings.Index(out, "Arrays")
	dp := strings.Index(out, "Dynamic Programming")
	graphs := strings.Index(out, "Graphs")
	require.True(t, arrays >= 0 && dp >= 0 && graphs >= 0, out)
	assert.Less(t, arrays, dp)
	assert.Less(t, dp, graphs)
	assert.Contains(t, out, "0/3 (0%)")
}

func TestLadderShowDeniesNonMembers(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "mallory")

	_, _, err := h.run(t, "", "ladder", "show", "1")
	require.Error(t, err)
}

func TestLadderAddCandidatesAndCollaborators(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	out, _, err := h.run(t, "", "ladder", "candidates", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "CodeChef")
	assert.NotContains(t, out, "Two Sum")

	out, _, err = h.run(t, "", "ladder", "add", "1", "4,5")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 problem(s) to Starter Ladder.")

	out, _, err = h.run(t, "", "ladder", "collab", "add", "1", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice added successfully.")

	out, _, err = h.run(t, "", "ladder", "collab", "list", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "demo (owner)")
	assert.Contains(t, out, "alice")

	_, _, err = h.run(t, "", "ladder", "collab", "remove", "1", "demo")
	assert.ErrorIs(t, err, laddermgr.ErrCannotRemoveOwner)

	h.login(t, "alice")
	_, _, err = h.run(t, "", "ladder", "collab", "add", "1", "bob")
	assert.ErrorIs(t, err, laddermgr.ErrNotOwner)

	out, _, err = h.run(t, "", "ladder", "mark", "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 5 marked solved.")
}

func TestLadderCreateAndList(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "carol")

	out, _, err := h.run(t, "", "ladder", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No ladders yet.")

	out, _, err = h.run(t, "", "ladder", "create", "Graph", "Drills")
	require.NoError(t, err)
	assert.Contains(t, out, "Graph Drills")

	out, _, err = h.run(t, "", "ladder", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Graph Drills")
	assert.Contains(t, out, "(owner)")
}

func TestImportFromStdin(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	csv := "name,link\n" +
		"Watermelon,https://codeforces.com/contest/4/problem/A\n" +
		"Two Sum,https://leetcode.com/problems/two-sum/description/\n" +
		"Unknown,https://example.com/nope\n"
	out, _, err := h.run(t, csv, "import", "1", "-", "--show-unmatched")
	require.NoError(t, err)
	assert.Contains(t, out, "added 1 problem(s), 1 already present, 1 not found")
	assert.Contains(t, out, "not found: https://example.com/nope")

	out, _, err = h.run(t, "", "ladder", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Watermelon")
}

func TestImportRequiresHeaderAndRows(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	_, _, err := h.run(t, "https://codeforces.com/contest/4/problem/A\n", "import", "1", "-")
	require.Error(t, err)
}

func TestRevisionToggleAndList(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	out, _, err := h.run(t, "", "revision", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Revision list is empty.")

	out, _, err = h.run(t, "", "revision", "toggle", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 2 added to revision.")

	out, _, err = h.run(t, "", "revision", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Longest Increasing Subsequence")

	out, _, err = h.run(t, "", "revision", "toggle", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Question 2 removed from revision.")
}

func TestCalendarShowsStatistics(t *testing.T) {
	h := newCLIHarness(t)
	h.login(t, "demo")

	_, _, err := h.run(t, "", "problems", "mark", "4")
	require.NoError(t, err)

	out, errOut, err := h.run(t, "", "calendar")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "1 submissions in")
	assert.Contains(t, out, "CodeChef rating bands")
	assert.Contains(t, out, "2★ (1400-1599)")
	assert.Contains(t, out, "CodeChef")
}

func TestCatalogDoesNotNeedLogin(t *testing.T) {
	h := newCLIHarness(t)

	out, _, err := h.run(t, "", "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Codeforces Beta Round 4 (Div. 2 Only)")
	assert.Contains(t, out, "Watermelon")
	assert.Contains(t, out, "https://codeforces.com/contest/4/problem/A")

	out, _, err = h.run(t, "", "catalog", "-q", "graphs")
	require.NoError(t, err)
	assert.Contains(t, out, "No catalog problems match.")
}

func TestDescribeMapsClientErrors(t *testing.T) {
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
