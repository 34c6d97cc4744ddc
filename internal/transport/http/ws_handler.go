package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/domain"
)

type WSHandler struct {
	service    *app.QuizService
	sessions   app.SessionRepository
	categories app.CategoryRepository
	defaults   domain.QuizSettings
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(
	service *app.QuizService,
	sessions app.SessionRepository,
	categories app.CategoryRepository,
	defaults domain.QuizSettings,
	log zerolog.Logger,
) *WSHandler {
	return &WSHandler{
		service:    service,
		sessions:   sessions,
		categories: categories,
		defaults:   defaults,
		log:        log,
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

type settingsPayload struct {
	QuestionCount int    `json:"questionCount"`
	Difficulty    string `json:"difficulty"`
	CategoryID    *int   `json:"categoryId"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type helloPayload struct {
	SessionID string              `json:"sessionId"`
	Settings  domain.QuizSettings `json:"settings"`
}

type categoriesPayload struct {
	Categories []domain.Category `json:"categories"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session per connection.
// Passing ?session=<id> resumes a session whose previous connection has gone.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := h.sessions.GetOrCreate(sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrSessionBusy) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	defer func() {
		// Nothing to resume in an empty session.
		if session.State() == domain.SessionEmpty {
			h.sessions.Delete(sessionID)
			return
		}
		h.sessions.Release(sessionID)
	}()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("session", sessionID).Logger()
	log.Info().Msg("ws connected")
	defer func() { log.Info().Msg("ws disconnected") }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &wsConn{
		h:         h,
		log:       log,
		session:   session,
		settings:  app.NewSettingsStore(h.defaults),
		catalog:   app.NewCategoryCatalog(h.categories, log),
		send:      make(chan outboundMessage[any], 16),
		refreshed: make(chan error, 1),
		inbound:   make(chan inboundMessage),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range c.send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Msg("ws write error")
				failed = true
				_ = conn.Close()
			}
		}
	}()

	go func() {
		defer close(c.inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case c.inbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.run(ctx)

	// A fetch still in flight belongs to this connection; a resumed session starts clean.
	if c.pending != nil {
		session.Reset()
	}
	cancel()
	close(c.send)
	<-writerDone
}

// wsConn owns the session for the lifetime of a connection. Every session
// call happens on the run goroutine, which is what keeps Session lock-free.
type wsConn struct {
	h        *WSHandler
	log      zerolog.Logger
	session  *app.Session
	settings *app.SettingsStore
	catalog  *app.CategoryCatalog

	send      chan outboundMessage[any]
	inbound   chan inboundMessage
	refreshed chan error
	pending   <-chan app.FetchOutcome
}

func (c *wsConn) run(ctx context.Context) {
	c.push("session", helloPayload{SessionID: c.session.ID(), Settings: c.settings.Settings()})
	c.pushState()

	for {
		select {
		case msg, ok := <-c.inbound:
			if !ok {
				return
			}
			c.handle(ctx, msg)
		case outcome, ok := <-c.pending:
			c.pending = nil
			if !ok {
				continue
			}
			if !c.session.Complete(outcome) {
				c.log.Debug().Uint64("generation", outcome.Generation).Msg("dropping stale fetch outcome")
				continue
			}
			if err := c.session.Err(); err != nil {
				c.pushError(err)
			}
			c.pushState()
		case <-c.refreshed:
			c.push("categories", categoriesPayload{Categories: c.catalog.Categories()})
		}
	}
}

func (c *wsConn) handle(ctx context.Context, msg inboundMessage) {
	switch msg.Type {
	case "settings":
		var payload settingsPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.pushError(errors.New("invalid settings payload"))
			return
		}
		difficulty, ok := domain.ParseDifficulty(payload.Difficulty)
		if !ok {
			c.pushError(errors.New("unknown difficulty " + payload.Difficulty))
			return
		}
		c.push("settings", c.settings.Update(payload.QuestionCount, difficulty, payload.CategoryID))
	case "categories":
		go func() {
			err := c.catalog.Refresh(ctx)
			select {
			case c.refreshed <- err:
			case <-ctx.Done():
			}
		}()
	case "start":
		c.pending = c.h.service.Start(ctx, c.session, c.settings.Settings())
		c.pushState()
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.pushError(errors.New("invalid answer payload"))
			return
		}
		if _, ok := c.session.CurrentQuestion(); !ok {
			c.pushError(domain.ErrNoQuestion)
			return
		}
		if !c.session.SelectAnswer(payload.Answer) {
			c.pushError(errors.New("answer already locked"))
			return
		}
		c.pushState()
		if summary, ok := app.Results(c.session); ok {
			c.push("results", summary)
		}
	case "next":
		if !c.session.Advance() {
			c.pushError(errors.New("no next question"))
			return
		}
		c.pushState()
	case "home":
		c.session.Reset()
		c.pending = nil
		c.pushState()
	default:
		c.pushError(errors.New("unsupported message type"))
	}
}

func (c *wsConn) push(typ string, payload any) {
	c.send <- outboundMessage[any]{Type: typ, Payload: payload}
}

func (c *wsConn) pushState() {
	c.push("state", c.session.Snapshot())
}

func (c *wsConn) pushError(err error) {
	c.push("error", errorPayload{Message: err.Error()})
}
