package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skekre98/locator/config"
	"github.com/skekre98/locator/core"
	"github.com/skekre98/locator/web"
)

const Name = "actuator"

type Option func(*module)

// WithGatherer serves metrics from g instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(m *module) { m.gatherer = g }
}

type module struct {
	gatherer prometheus.Gatherer
}

func Module(opts ...Option) core.Module {
	m := &module{gatherer: prometheus.DefaultGatherer}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return []string{web.Name} }

func (m *module) Configure(c *core.Container) error {
	engine := web.Engine(c)
	cfg, err := core.Resolve[*config.Root](c, config.ServiceName)
	if err != nil {
		return err
	}
	app := cfg.App
	started := time.Now()

	group := engine.Group(cfg.Actuator.BasePath)

	group.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":      "UP",
			"definitions": len(c.Definitions()),
		})
	})

	group.GET("/info", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"app": gin.H{
				"name":    app.Name,
				"version": app.Version,
			},
			"runtime": gin.H{
				"go":           runtime.Version(),
				"numGoroutine": runtime.NumGoroutine(),
				"time":         time.Now().UTC().Format(time.RFC3339),
				"uptime":       time.Since(started).Round(time.Second).String(),
				"pid":          os.Getpid(),
			},
		})
	})

	if cfg.Observability.Metrics.Enabled {
		group.GET(cfg.Observability.Metrics.Path, gin.WrapH(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})))
	}

	registerServices(group, c)
	return nil
}

func (m *module) Start(_ context.Context, _ *core.Container) error { return nil }
func (m *module) Stop(_ context.Context, _ *core.Container) error  { return nil }
