// Package server wires configuration, the todo store and the HTTP stack into a
// runnable service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drblury/todoweaver/api"
	"github.com/drblury/todoweaver/config"
	"github.com/drblury/todoweaver/info"
	"github.com/drblury/todoweaver/memstore"
	"github.com/drblury/todoweaver/mongostore"
	"github.com/drblury/todoweaver/probe"
	"github.com/drblury/todoweaver/responder"
	"github.com/drblury/todoweaver/router"
	"github.com/drblury/todoweaver/todo"
)

const readHeaderTimeout = 10 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithStore uses store instead of building one from the configuration.
// Run still closes it on shutdown if it implements todo.Closer.
func WithStore(store todo.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithListener serves on ln instead of listening on the configured address.
func WithListener(ln net.Listener) Option {
	return func(s *Server) {
		s.listener = ln
	}
}

// Server is the assembled todo service.
type Server struct {
	cfg      config.Config
	log      *slog.Logger
	store    todo.Store
	handler  http.Handler
	listener net.Listener
}

// New builds the store and the HTTP handler described by cfg. Connecting to
// MongoDB happens here, bounded by ctx and the configured connect timeout.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Server{cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.store == nil {
		store, err := openStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	handler, err := s.buildHandler()
	if err != nil {
		s.closeStore(ctx)
		return nil, err
	}
	s.handler = handler
	return s, nil
}

func openStore(ctx context.Context, cfg config.Store) (todo.Store, error) {
	switch cfg.Backend {
	case config.BackendMongo:
		store, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		return store, nil
	case config.BackendMemory, "":
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func (s *Server) buildHandler() (http.Handler, error) {
	opsResponder := responder.NewResponder(responder.WithLogger(s.log))
	apiHandler := api.NewHandler(s.store, api.WithResponder(
		responder.NewResponder(api.ResponderOptions(responder.WithLogger(s.log))...),
	))

	infoOpts := []info.Option{
		info.WithResponder(opsResponder),
		info.WithDocument(api.Document),
	}
	switch st := s.store.(type) {
	case probe.Prober:
		infoOpts = append(infoOpts, info.WithReadinessCheck("store", st.Probe()))
	case probe.StorePinger:
		infoOpts = append(infoOpts, info.WithReadinessCheck("store", probe.NewStoreProbe(s.cfg.Store.Backend, st)))
	}
	infoHandler := info.NewHandler(infoOpts...)

	mux := http.NewServeMux()
	apiHandler.Register(mux)
	infoHandler.Register(mux)

	routerCfg := s.cfg.Router()
	if len(routerCfg.QuietdownRoutes) == 0 {
		routerCfg.QuietdownRoutes = info.ProbePaths()
	}
	routerOpts := []router.Option{
		router.WithLogger(s.log),
		router.WithConfig(routerCfg),
		router.WithResponder(opsResponder),
	}
	if s.cfg.OpenAPI.Validate {
		swagger, err := api.LoadSwagger()
		if err != nil {
			return nil, err
		}
		routerOpts = append(routerOpts, router.WithSwagger(swagger))
	} else {
		routerOpts = append(routerOpts, router.Without(router.StageValidation))
	}

	return router.New(mux, routerOpts...), nil
}

// Handler returns the complete HTTP handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the store backing the API.
func (s *Server) Store() todo.Store {
	return s.store
}

// Run serves HTTP until ctx is done, then drains in-flight requests within
// the configured shutdown timeout and closes the store.
func (s *Server) Run(ctx context.Context) error {
	ln := s.listener
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", s.cfg.Server.Addr())
		if err != nil {
			s.closeStore(ctx)
			return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr(), err)
		}
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("serving todos", "addr", ln.Addr().String(), "backend", s.cfg.Store.Backend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.log.Info("shutting down", "timeout", s.cfg.Server.ShutdownTimeout)
		err := srv.Shutdown(shutdownCtx)
		s.closeStore(shutdownCtx)
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) closeStore(ctx context.Context) {
	closer, ok := s.store.(todo.Closer)
	if !ok {
		return
	}
	if err := closer.Close(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("closing store failed", "error", err)
	}
}
