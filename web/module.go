package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/locator/config"
	"github.com/skekre98/locator/core"
	"github.com/skekre98/locator/logging"
)

const Name = "web"

// Container definitions registered during Configure.
const (
	EngineService = "web.engine"
	ServerService = "web.server"
)

// Engine returns the router registered by the web module.
func Engine(c *core.Container) *gin.Engine {
	return core.MustResolve[*gin.Engine](c, EngineService)
}

// Option customises the engine built during Configure.
type Option func(*webModule)

// WithRoutes registers routes on the root router.
func WithRoutes(f func(r Router)) Option {
	return func(m *webModule) { m.routes = append(m.routes, f) }
}

// WithMiddlewares appends handlers after the built-in middleware chain.
func WithMiddlewares(h ...Handler) Option {
	return func(m *webModule) { m.middlewares = append(m.middlewares, h...) }
}

func Module(opts ...Option) core.Module {
	m := &webModule{}
	for _, o := range opts {
		o(m)
	}
	return m
}

type webModule struct {
	routes      []func(r Router)
	middlewares []Handler

	server *http.Server
	logger *slog.Logger
}

func (m *webModule) Name() string        { return Name }
func (m *webModule) DependsOn() []string { return nil }

func (m *webModule) Configure(c *core.Container) error {
	cfg, err := core.Resolve[*config.Root](c, config.ServiceName)
	if err != nil {
		return err
	}
	l, err := core.Resolve[*slog.Logger](c, logging.ServiceName)
	if err != nil {
		return err
	}
	m.logger = l.With(slog.String("module", Name))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(RequestID())
	r.Use(RecoveryProblem(m.logger))
	r.Use(AccessLog(m.logger))
	r.Use(m.middlewares...)

	for _, reg := range m.routes {
		reg(r)
	}

	m.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	if err := core.Register(c, EngineService, r); err != nil {
		return err
	}
	return core.Register(c, ServerService, m.server)
}

// Start binds the listener before returning so address errors fail startup.
func (m *webModule) Start(_ context.Context, _ *core.Container) error {
	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	m.logger.Info("http server starting", "addr", ln.Addr().String())
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("http server error", "error", err)
		}
	}()
	return nil
}

func (m *webModule) Stop(ctx context.Context, _ *core.Container) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := m.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
