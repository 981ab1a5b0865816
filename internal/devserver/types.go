package devserver

import "codeladder/internal/ladder"

type laddersRequest struct {
	Username string `json:"username"`
}

type createTableRequest struct {
	Title    string `json:"table_title"`
	Username string `json:"username"`
}

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

type usersResponse struct {
	Users []string `json:"users"`
}

type submissionsResponse struct {
	Submissions []ladder.Submission `json:"submissions"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenRequest struct {
	Username string `json:"username"`
}

type tokenResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Static catalog files mirror the Codeforces API envelope.
type cfProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating,omitempty"`
	Tags      []string `json:"tags"`
}

type cfProblemset struct {
	Status string `json:"status"`
	Result struct {
		Problems []cfProblem `json:"problems"`
	} `json:"result"`
}

type cfContest struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phase string `json:"phase"`
}

type cfContests struct {
	Status string      `json:"status"`
	Result []cfContest `json:"result"`
}
