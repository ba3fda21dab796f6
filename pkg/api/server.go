package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/arnac-io/txcomposer/pkg/pusher/websocket"
)

type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
}

type ServerOptions struct {
	middleware   []func(http.Handler) http.Handler
	readTimeout  time.Duration
	writeTimeout time.Duration
	draftSource  websocket.Source
}

type ServerOption func(options *ServerOptions)

func WithHttpMiddleware(m ...func(http.Handler) http.Handler) ServerOption {
	return func(options *ServerOptions) {
		options.middleware = append(options.middleware, m...)
	}
}

func WithTimeouts(read, write time.Duration) ServerOption {
	return func(options *ServerOptions) {
		options.readTimeout = read
		options.writeTimeout = write
	}
}

// WithDraftSource enables "/v1/events", a websocket streaming validation results and submission outcomes.
func WithDraftSource(source websocket.Source) ServerOption {
	return func(options *ServerOptions) {
		options.draftSource = source
	}
}

func NewServer(log *zap.Logger, handler *Handler, address string, opts ...ServerOption) *Server {
	options := &ServerOptions{
		readTimeout:  10 * time.Second,
		writeTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(options)
	}
	// hijacked connections outlive Shutdown unless their context is canceled
	baseCtx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:         address,
		Handler:      NewRouter(log, handler, opts...),
		ReadTimeout:  options.readTimeout,
		WriteTimeout: options.writeTimeout,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}
	httpServer.RegisterOnShutdown(cancel)
	return &Server{
		logger:     log,
		httpServer: httpServer,
	}
}

// NewRouter mounts every endpoint of handler under /v1.
func NewRouter(log *zap.Logger, h *Handler, opts ...ServerOption) chi.Router {
	options := &ServerOptions{}
	for _, o := range opts {
		o(options)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware)
	r.Use(options.middleware...)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/message-types", h.handle(http.StatusOK, h.GetMessageTypes))

		r.Route("/draft", func(r chi.Router) {
			r.Get("/", h.handle(http.StatusOK, h.GetDraft))
			r.Post("/slots", h.handle(http.StatusCreated, h.AddSlot))
			r.Route("/slots/{index}", func(r chi.Router) {
				r.Put("/type", h.handle(http.StatusOK, h.SetSlotType))
				r.Put("/input", h.handle(http.StatusOK, h.SetSlotInput))
				r.Delete("/", h.handle(http.StatusOK, h.DeleteSlot))
				r.Get("/info", h.handle(http.StatusOK, h.GetSlotInfo))
			})
		})

		r.Get("/session", h.handle(http.StatusOK, h.GetSession))
		r.Put("/session", h.handle(http.StatusOK, h.Connect))
		r.Delete("/session", h.handle(http.StatusOK, h.Disconnect))

		r.Post("/tx", h.handle(http.StatusAccepted, h.SubmitTx))
		r.Get("/tx", h.handle(http.StatusOK, h.GetTx))
		r.Delete("/tx", h.handle(http.StatusOK, h.DismissTx))

		if options.draftSource != nil {
			r.Get("/events", streaming(log, websocket.Handler(log, options.draftSource)))
		}
	})
	return r
}

// streaming adapts a handler that owns the connection once it is upgraded.
func streaming(log *zap.Logger, fn func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			log.Warn("streaming connection failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		}
	}
}

func (s *Server) Run() {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		s.logger.Info("txcomposer api quit")
		return
	}
	s.logger.Fatal("ListenAndServe() failed", zap.Error(err))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
