// Package devserver is an in-memory stand-in for the code ladder backend,
// for local development and client integration tests.
package devserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(api *API) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(api.logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Username", "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/problemset.json", api.HandleStaticProblemset)
	router.Get("/contest.json", api.HandleStaticContests)
	router.Post("/devtoken", api.HandleToken)

	router.Group(func(r chi.Router) {
		r.Use(api.issuer.Middleware)

		r.Get("/problemset", api.HandleProblemset)
		r.Get("/question/{id}", api.HandleQuestion)
		r.Get("/usersubmissions/{username}", api.HandleUserSubmissions)
		r.Get("/ladder/{tableID}", api.HandleLadder)
		r.Post("/ladders", api.HandleLadders)
		r.Post("/createtable", api.HandleCreateTable)
		r.Patch("/edittable", api.HandleEditTable)
		r.Patch("/markquestion", api.handleSolved(true))
		r.Patch("/unmarkquestion", api.handleSolved(false))
		r.Post("/collabtable", api.HandleCollabTable)
		r.Post("/removecollab", api.HandleRemoveCollab)
	})

	return router
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("elapsed", time.Since(started)))
		})
	}
}
