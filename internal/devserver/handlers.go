package devserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codeladder/internal/ladder"
	"codeladder/internal/logging"
)

type API struct {
	store  *Store
	issuer *Issuer
	logger *zap.Logger
}

func NewAPI(store *Store, issuer *Issuer, logger *zap.Logger) *API {
	return &API{store: store, issuer: issuer, logger: logging.OrNop(logger)}
}

func (a *API) HandleProblemset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Problems())
}

func (a *API) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := ladder.ParseQuestionID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question id is required"})
		return
	}
	problem, err := a.store.Problem(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problem)
}

func (a *API) HandleUserSubmissions(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	writeJSON(w, http.StatusOK, submissionsResponse{Submissions: a.store.Submissions(username)})
}

func (a *API) HandleLadder(w http.ResponseWriter, r *http.Request) {
	tableID, err := strconv.Atoi(chi.URLParam(r, "tableID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "table id must be an integer"})
		return
	}
	l, err := a.store.Ladder(tableID, usernameFrom(r.Context()))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *API) HandleLadders(w http.ResponseWriter, r *http.Request) {
	var request laddersRequest
	if !decodeBody(w, r, &request) {
		return
	}
	caller := usernameFrom(r.Context())
	if !sameUser(w, caller, request.Username) {
		return
	}
	writeJSON(w, http.StatusOK, a.store.Ladders(caller))
}

func (a *API) HandleCreateTable(w http.ResponseWriter, r *http.Request) {
	var request createTableRequest
	if !decodeBody(w, r, &request) {
		return
	}
	caller := usernameFrom(r.Context())
	if !sameUser(w, caller, request.Username) {
		return
	}
	created, err := a.store.CreateLadder(caller, request.Title)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	a.logger.Info("ladder created", zap.Int("table_id", created.TableID), zap.String("owner", caller))
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) HandleEditTable(w http.ResponseWriter, r *http.Request) {
	var request editTableRequest
	if !decodeBody(w, r, &request) {
		return
	}
	updated, err := a.store.EditLadder(usernameFrom(r.Context()), request.TableID, request.QuestionIDs, request.Action)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) handleSolved(solved bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request markRequest
		if !decodeBody(w, r, &request) {
			return
		}
		caller := usernameFrom(r.Context())
		if !sameUser(w, caller, request.User) {
			return
		}
		if request.QuestionID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "questionid is required"})
			return
		}
		if err := a.store.SetSolved(caller, request.QuestionID, solved); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
	}
}

func (a *API) HandleCollabTable(w http.ResponseWriter, r *http.Request) {
	var request collabRequest
	if !decodeBody(w, r, &request) {
		return
	}
	updated, err := a.store.AddCollaborator(usernameFrom(r.Context()), request.SourceTableID, request.NewUserID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: updated.Users})
}

func (a *API) HandleRemoveCollab(w http.ResponseWriter, r *http.Request) {
	var request removeCollabRequest
	if !decodeBody(w, r, &request) {
		return
	}
	users, err := a.store.RemoveCollaborator(usernameFrom(r.Context()), request.SourceTableID, request.UserToRemove)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}

// HandleToken mints a session token for any username. Local development only.
func (a *API) HandleToken(w http.ResponseWriter, r *http.Request) {
	var request tokenRequest
	if !decodeBody(w, r, &request) {
		return
	}
	token, err := a.issuer.Issue(request.Username)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Username: strings.TrimSpace(request.Username), Token: token})
}

func (a *API) HandleStaticProblemset(w http.ResponseWriter, r *http.Request) {
	var payload cfProblemset
	payload.Status = "OK"
	payload.Result.Problems = []cfProblem{}
	for _, problem := range a.store.Problems() {
		if problem.ContestID == 0 {
			continue
		}
		tags := problem.Tags
		if tags == nil {
			tags = []string{}
		}
		payload.Result.Problems = append(payload.Result.Problems, cfProblem{
			ContestID: problem.ContestID,
			Index:     problem.Index,
			Name:      problem.DisplayTitle(),
			Rating:    problem.Rating,
			Tags:      tags,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *API) HandleStaticContests(w http.ResponseWriter, r *http.Request) {
	payload := cfContests{Status: "OK", Result: []cfContest{}}
	for _, contest := range a.store.Contests() {
		payload.Result = append(payload.Result, cfContest{ID: contest.ID, Name: contest.Name, Phase: "FINISHED"})
	}
	writeJSON(w, http.StatusOK, payload)
}
