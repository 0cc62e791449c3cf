// Package server is the local preview server: static files from a single
// root with forced content types, plus an optional live-reload stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kush-Singh-26/devserve/internal/config"
	"github.com/Kush-Singh-26/devserve/internal/mime"
)

const readHeaderTimeout = 5 * time.Second

type Server struct {
	lg       *zap.Logger
	root     string
	srv      *http.Server
	ln       net.Listener
	hub      *Hub
	debounce time.Duration
	shutdown time.Duration
}

// New wires the handler stack for cfg. The resolver decides every file
// response's Content-Type.
func New(cfg *config.Config, serveCfg *config.ServeConfig, resolver mime.Resolver) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if resolver == nil {
		return nil, errors.New("nil mime resolver")
	}

	lg := zap.L().Named("server")

	rootFs := afero.NewBasePathFs(afero.NewOsFs(), cfg.RootDir)
	var files http.Handler = NewFileHandler(rootFs, resolver)
	if serveCfg.Gzip {
		files = gzhttp.GzipHandler(files)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		NewRequestLogger(lg),
		NewRecovery(lg),
	)

	s := &Server{
		lg:       lg,
		root:     cfg.RootDir,
		debounce: serveCfg.DebounceDuration,
		shutdown: serveCfg.ShutdownTimeout,
	}

	if serveCfg.LiveReload {
		s.hub = NewHub()
		e.GET(EventsPath, s.hub.Serve)
	}

	e.GET("/*", echo.WrapHandler(files))
	e.HEAD("/*", echo.WrapHandler(files))

	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// Listen binds the socket. Run calls it when needed; calling it first
// surfaces bind errors before anything else starts.
func (s *Server) Listen() error {
	if s.ln != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr is the bound address once listening, the configured one before.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Hub is nil when live reload is disabled.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves until ctx is cancelled and then shuts down gracefully.
// A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		<-ctx.Done()

		if s.hub != nil {
			s.hub.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // graceful shutdown with new context
			return multierr.Append(fmt.Errorf("shutdown: %w", err), s.srv.Close())
		}
		return nil
	})

	eg.Go(func() error {
		s.lg.Info("listen and serve", zap.String("addr", s.Addr()), zap.String("root", s.root))

		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	if s.hub != nil {
		eg.Go(func() error {
			return s.watchRoot(ctx)
		})
	}

	return eg.Wait()
}
