package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/core"
	"github.com/arnac-io/txcomposer/pkg/draft"
	"github.com/arnac-io/txcomposer/pkg/registry"
)

type Handler struct {
	logger   *zap.Logger
	composer draftComposer
	sessions sessions
}

func NewHandler(logger *zap.Logger, c draftComposer, s sessions) *Handler {
	return &Handler{
		logger:   logger,
		composer: c,
		sessions: s,
	}
}

// HTTPError is returned by handlers to choose the response status.
type HTTPError struct {
	Code int
	Err  error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func toError(code int, err error) error {
	return &HTTPError{Code: code, Err: err}
}

// statusOf maps domain errors to response codes. Unknown errors are internal.
func statusOf(err error) int {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, draft.ErrSlotNotFound), errors.Is(err, registry.ErrNoInfo):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrUnknownType):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) (any, error)

// handle writes the value returned by fn as JSON, or the error it returned.
// A nil value means fn has written the response itself.
func (h *Handler) handle(code int, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(w, r)
		if err != nil {
			status := statusOf(err)
			if status == http.StatusInternalServerError {
				h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
			}
			writeJSON(w, status, errorJSON{Error: err.Error()})
			return
		}
		if res == nil {
			return
		}
		writeJSON(w, code, res)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func slotIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		return 0, toError(http.StatusBadRequest, fmt.Errorf("invalid slot index %q", chi.URLParam(r, "index")))
	}
	return i, nil
}

func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return toError(http.StatusBadRequest, errors.Wrap(err, "decode request"))
	}
	return nil
}

func (h *Handler) GetMessageTypes(w http.ResponseWriter, r *http.Request) (any, error) {
	return MessageTypes{MessageTypes: h.composer.MessageTypes()}, nil
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) (any, error) {
	return h.composer.View(r.Context())
}

func (h *Handler) AddSlot(w http.ResponseWriter, r *http.Request) (any, error) {
	return h.composer.AddSlot(r.Context())
}

func (h *Handler) SetSlotType(w http.ResponseWriter, r *http.Request) (any, error) {
	i, err := slotIndex(r)
	if err != nil {
		return nil, err
	}
	var req setTypeRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return h.composer.SetType(r.Context(), i, req.Type)
}

func (h *Handler) SetSlotInput(w http.ResponseWriter, r *http.Request) (any, error) {
	i, err := slotIndex(r)
	if err != nil {
		return nil, err
	}
	var req setInputRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return h.composer.SetInput(r.Context(), i, req.Input)
}

func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) (any, error) {
	i, err := slotIndex(r)
	if err != nil {
		return nil, err
	}
	if _, err := h.composer.DeleteSlot(r.Context(), i); err != nil {
		return nil, err
	}
	return h.composer.View(r.Context())
}

// GetSlotInfo returns the info table as JSON, or as aligned text with ?format=text.
// Headings follow the Accept-Language header.
func (h *Handler) GetSlotInfo(w http.ResponseWriter, r *http.Request) (any, error) {
	i, err := slotIndex(r)
	if err != nil {
		return nil, err
	}
	info, err := h.composer.Info(r.Context(), i)
	if err != nil {
		return nil, err
	}
	info = localizeInfo(r.Header.Get("Accept-Language"), info)
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(info.String()))
		return nil, nil
	}
	return info, nil
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) (any, error) {
	return convertSession(h.composer.Session()), nil
}

func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) (any, error) {
	s, err := h.sessions.Connect(r.Context())
	if err != nil {
		return nil, toError(http.StatusBadGateway, err)
	}
	if err := h.composer.SetSession(r.Context(), s); err != nil {
		return nil, err
	}
	return convertSession(s), nil
}

func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) (any, error) {
	s := h.sessions.Disconnected()
	if err := h.composer.SetSession(r.Context(), s); err != nil {
		return nil, err
	}
	return convertSession(s), nil
}

func (h *Handler) SubmitTx(w http.ResponseWriter, r *http.Request) (any, error) {
	ok, err := h.composer.Submit(r.Context())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, toError(http.StatusConflict, errors.New("previous transaction has not been dismissed"))
	}
	return h.composer.Outcome(), nil
}

func (h *Handler) GetTx(w http.ResponseWriter, r *http.Request) (any, error) {
	return h.composer.Outcome(), nil
}

func (h *Handler) DismissTx(w http.ResponseWriter, r *http.Request) (any, error) {
	if !h.composer.Dismiss() {
		return nil, toError(http.StatusConflict, errors.New("no finished transaction to dismiss"))
	}
	return h.composer.Outcome(), nil
}
