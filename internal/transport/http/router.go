package http

import (
	"encoding/json"
	"net/http"

	"syntax-quiz/internal/app"
	"syntax-quiz/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options tunes the presentation endpoints.
type Options struct {
	// Defaults fill filter facets missing from the query string.
	Defaults domain.Criteria
	// KeepSessions leaves sessions in the store after their connection closes,
	// for stores that expire them on their own.
	KeepSessions bool
}

// NewRouter wires the REST endpoints and the websocket endpoint.
func NewRouter(service *app.QuizService, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/facets", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, service.Facets())
		})
		r.Get("/questions", func(w http.ResponseWriter, r *http.Request) {
			questions, err := service.Questions(criteriaFromQuery(r, opts.Defaults))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorPayload{Code: errorCode(err), Message: err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, questions)
		})
	})

	r.Get("/ws", NewWSHandler(service, opts).ServeWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
