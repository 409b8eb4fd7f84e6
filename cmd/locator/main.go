package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/skekre98/locator/actuator"
	"github.com/skekre98/locator/config"
	"github.com/skekre98/locator/config/source"
	"github.com/skekre98/locator/core"
	"github.com/skekre98/locator/definitions"
	"github.com/skekre98/locator/demo"
	"github.com/skekre98/locator/logging"
	"github.com/skekre98/locator/metrics"
	"github.com/skekre98/locator/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "locator:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("locator", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	dir := flags.String("config-dir", "configs", "directory holding application[.profile].yaml and .env")
	profile := flags.String("profile", os.Getenv("LOCATOR_PROFILE"), "configuration profile overlay")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// 1) config
	cfg, mgr, err := loadConfig(*dir, *profile)
	if err != nil {
		return err
	}
	defer mgr.Close()

	// 2) logging
	logger := logging.New(cfg.Logging).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)
	slog.SetDefault(logger)

	// 3) container with the demo catalog
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsObs, err := metrics.NewObserver(reg)
	if err != nil {
		return err
	}

	cat := core.NewCatalog()
	if err := demo.Declare(cat); err != nil {
		return err
	}
	c := core.NewContainer(cat, core.WithObserver(core.Observers(logging.NewObserver(logger), metricsObs)))

	// 4) seed shared objects into the container
	if err := core.Register(c, config.ServiceName, cfg); err != nil {
		return err
	}
	if err := core.Register(c, logging.ServiceName, logger); err != nil {
		return err
	}

	// 5) compose and run
	app := core.NewApp(logger, c,
		definitions.Module(mgr),
		web.Module(
			web.WithRoutes(func(r web.Router) {
				r.GET("/greet/:name", func(ctx *gin.Context) {
					g, err := core.Resolve[*demo.Greeter](c, "greeter")
					if err != nil {
						web.Problem(ctx, http.StatusServiceUnavailable, err.Error())
						return
					}
					ctx.JSON(http.StatusOK, gin.H{"message": g.Greet(ctx.Param("name"))})
				})
			}),
		),
		actuator.Module(actuator.WithGatherer(reg)),
	)
	if err := app.Run(context.Background()); err != nil {
		logger.Error("app error", "error", err)
		return err
	}
	return nil
}

// loadConfig binds Root once, then rebuilds the manager with watching
// enabled when the loaded config asks for reloads. The returned Root is a
// snapshot: later reloads reach the container only through manager events.
func loadConfig(dir, profile string) (*config.Root, *config.Manager, error) {
	live := new(config.Root)
	mgr, err := config.NewManager(live, config.Options{}, source.Standard(dir, profile, 0)...)
	if err != nil {
		return nil, nil, err
	}
	if live.Reload.Enabled {
		poll := live.Reload.PollInterval
		mgr.Close()
		live = new(config.Root)
		mgr, err = config.NewManager(live, config.Options{AutoReload: true},
			source.Standard(dir, profile, poll)...)
		if err != nil {
			return nil, nil, err
		}
	}

	var snap config.Root
	if err := mgr.Snapshot(&snap); err != nil {
		mgr.Close()
		return nil, nil, err
	}
	return &snap, mgr, nil
}
