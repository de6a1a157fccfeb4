package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"syntax-quiz/internal/app"
	"syntax-quiz/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	opts     Options
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, opts Options) *WSHandler {
	return &WSHandler{
		service: service,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	AnswerIndex *int `json:"answerIndex"`
}

type gotoPayload struct {
	Index *int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and binds the connection to one quiz session.
// With a sessionId query parameter the stored session is resumed; otherwise a
// new one is built from the language, difficulty and category parameters, with
// configured defaults for absent ones. Inbound messages are handled one at a
// time. A session created here is discarded when the connection closes unless
// the store expires sessions itself.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	resumeID := r.URL.Query().Get("sessionId")
	criteria := h.criteriaFromQuery(r)
	if resumeID == "" {
		if err := criteria.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var first domain.Snapshot
	if resumeID != "" {
		first, err = h.service.Snapshot(ctx, resumeID)
	} else {
		first, err = h.service.Create(ctx, criteria)
	}
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	sessionID := first.SessionID
	if resumeID == "" && !h.opts.KeepSessions {
		defer func() {
			if err := h.service.Discard(context.WithoutCancel(ctx), sessionID); err != nil {
				log.Printf("discard session %s: %v", sessionID, err)
			}
		}()
	}

	if err := conn.WriteJSON(outboundMessage[domain.Snapshot]{Type: "session", Payload: first}); err != nil {
		log.Printf("ws write error: %v", err)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		reply := h.dispatch(r, sessionID, inbound)
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

func (h *WSHandler) dispatch(r *http.Request, sessionID string, inbound inboundMessage) any {
	ctx := r.Context()
	var (
		snap domain.Snapshot
		err  error
	)
	switch inbound.Type {
	case "start":
		snap, err = h.service.Start(ctx, sessionID)
	case "select":
		var payload selectPayload
		if json.Unmarshal(inbound.Payload, &payload) != nil || payload.AnswerIndex == nil {
			return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "invalid_payload", Message: "invalid select payload"}}
		}
		snap, err = h.service.SelectAnswer(ctx, sessionID, *payload.AnswerIndex)
	case "next":
		snap, err = h.service.Next(ctx, sessionID)
	case "previous":
		snap, err = h.service.Previous(ctx, sessionID)
	case "goto":
		var payload gotoPayload
		if json.Unmarshal(inbound.Payload, &payload) != nil || payload.Index == nil {
			return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "invalid_payload", Message: "invalid goto payload"}}
		}
		snap, err = h.service.GoTo(ctx, sessionID, *payload.Index)
	case "complete":
		snap, err = h.service.Complete(ctx, sessionID)
	case "reset":
		snap, err = h.service.Reset(ctx, sessionID)
	case "state":
		snap, err = h.service.Snapshot(ctx, sessionID)
	case "review":
		result, err := h.service.Review(ctx, sessionID)
		if err != nil {
			return errorMessage(err)
		}
		return outboundMessage[domain.Result]{Type: "review", Payload: result}
	default:
		return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: "unsupported", Message: "unsupported message type"}}
	}
	if err != nil {
		return errorMessage(err)
	}
	return outboundMessage[domain.Snapshot]{Type: "session", Payload: snap}
}

func errorMessage(err error) outboundMessage[errorPayload] {
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

// errorCode maps core errors to stable codes clients can switch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuestionSet):
		return "empty_question_set"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInvalidAnswerIndex):
		return "invalid_answer_index"
	case errors.Is(err, domain.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, domain.ErrInvalidCriteria):
		return "invalid_criteria"
	default:
		return "internal"
	}
}

func (h *WSHandler) criteriaFromQuery(r *http.Request) domain.Criteria {
	return criteriaFromQuery(r, h.opts.Defaults)
}

// criteriaFromQuery reads the filter facets, falling back to defaults for
// parameters that are absent.
func criteriaFromQuery(r *http.Request, defaults domain.Criteria) domain.Criteria {
	q := r.URL.Query()
	facet := func(name, fallback string) string {
		if q.Has(name) {
			return q.Get(name)
		}
		return fallback
	}
	return domain.Criteria{
		Language:   facet("language", defaults.Language),
		Difficulty: facet("difficulty", defaults.Difficulty),
		Category:   facet("category", defaults.Category),
	}
}
