package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/auth"
	"github.com/septivank/energy-metering-api/internal/mq"
	"github.com/septivank/energy-metering-api/internal/series"
	"github.com/septivank/energy-metering-api/internal/session"
	"github.com/septivank/energy-metering-api/internal/validator"
	"github.com/septivank/energy-metering-api/tools/timeparser"
	"go.uber.org/zap"
)

// Parameter contracts per endpoint. Order fixes the order of reported
// violations.
var (
	loginSchema = validator.Schema{
		{Name: "login", Required: true},
		{Name: "password", Required: true},
		{Name: "duration"},
	}
	logoutSchema = validator.Schema{
		{Name: "session_id", Required: true},
	}
	limitsSchema = validator.Schema{
		{Name: "session_id", Required: true},
	}
	dataSchema = validator.Schema{
		{Name: "session_id", Required: true},
		{Name: "start", Required: true},
		{Name: "count", Required: true},
		{Name: "resolution", Required: true},
	}
)

// Handlers holds the endpoint implementations and their collaborators.
type Handlers struct {
	verifier         *auth.Verifier
	sessions         *session.Store
	engine           *series.Engine
	events           *mq.Publisher
	eventsRoutingKey string
	logger           *zap.Logger
}

// NewHandlers creates the endpoint handlers. events may be nil, which
// disables session event publishing.
func NewHandlers(
	verifier *auth.Verifier,
	sessions *session.Store,
	engine *series.Engine,
	events *mq.Publisher,
	eventsRoutingKey string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		verifier:         verifier,
		sessions:         sessions,
		engine:           engine,
		events:           events,
		eventsRoutingKey: eventsRoutingKey,
		logger:           logger,
	}
}

type loginResponse struct {
	SessionID string `json:"session_id"`
	Expires   string `json:"expires"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) error {
	raw, err := decodeBody(r)
	if err != nil {
		return err
	}

	vals, err := validator.Validate(raw, loginSchema)
	if err != nil {
		return err
	}

	userID, err := h.verifier.Verify(r.Context(), vals.Login, vals.Password)
	if err != nil {
		return err
	}

	sess, err := h.sessions.Create(r.Context(), userID, vals.Duration)
	if err != nil {
		return err
	}

	h.publishEvent(r, "session.created", userID)

	apperrors.WriteJSON(w, http.StatusOK, loginResponse{
		SessionID: sess.SID,
		Expires:   timeparser.FormatDateTime(sess.Expires),
	})
	return nil
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) error {
	raw, err := decodeBody(r)
	if err != nil {
		return err
	}

	vals, err := validator.Validate(raw, logoutSchema)
	if err != nil {
		return err
	}

	if err := h.sessions.Invalidate(r.Context(), vals.SessionID); err != nil {
		return err
	}

	h.publishEvent(r, "session.invalidated", 0)

	apperrors.WriteJSON(w, http.StatusOK, struct{}{})
	return nil
}

func (h *Handlers) Limits(w http.ResponseWriter, r *http.Request) error {
	vals, err := validator.Validate(queryParams(r), limitsSchema)
	if err != nil {
		return err
	}

	userID, err := h.sessions.Resolve(r.Context(), vals.SessionID)
	if err != nil {
		return err
	}

	bounds, err := h.engine.Bounds(r.Context(), userID)
	if err != nil {
		return err
	}

	apperrors.WriteJSON(w, http.StatusOK, map[string]*series.Bounds{"limits": bounds})
	return nil
}

func (h *Handlers) Data(w http.ResponseWriter, r *http.Request) error {
	vals, err := validator.Validate(queryParams(r), dataSchema)
	if err != nil {
		return err
	}

	userID, err := h.sessions.Resolve(r.Context(), vals.SessionID)
	if err != nil {
		return err
	}

	rows, err := h.engine.Page(r.Context(), userID, vals.Resolution, *vals.Start, *vals.Count)
	if err != nil {
		return err
	}

	apperrors.WriteJSON(w, http.StatusOK, map[string][]series.Row{"data": rows})
	return nil
}

// publishEvent emits a session lifecycle event. Publishing is best-effort:
// a broker failure is logged and never fails the request.
func (h *Handlers) publishEvent(r *http.Request, event string, userID int64) {
	if h.events == nil {
		return
	}

	evt := mq.SessionEvent{
		RequestID:  RequestID(r.Context()),
		Event:      event,
		UserID:     userID,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.events.PublishSessionEvent(r.Context(), evt, h.eventsRoutingKey); err != nil {
		h.logger.Error("failed to publish session event", zap.Error(err), zap.String("event", event))
	}
}

// decodeBody flattens a JSON request body into raw string parameters for
// the validator. Numbers keep their literal form so the validator applies
// the same integer rules to query and body parameters. An empty body is an
// empty parameter set, not an error.
func decodeBody(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, apperrors.Validation([]string{"Request body must be valid JSON"})
	}

	raw := make(map[string]string, len(body))
	for name, value := range body {
		switch v := value.(type) {
		case string:
			raw[name] = v
		case json.Number:
			raw[name] = v.String()
		}
	}
	return raw, nil
}

// queryParams flattens URL query parameters, keeping the first value of
// each name.
func queryParams(r *http.Request) map[string]string {
	raw := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			raw[name] = values[0]
		}
	}
	return raw
}
