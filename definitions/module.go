// Package definitions binds the service names from configuration to catalog
// types and keeps them current when the configuration reloads.
package definitions

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/skekre98/locator/config"
	"github.com/skekre98/locator/core"
	"github.com/skekre98/locator/logging"
)

const Name = "definitions"

type module struct {
	manager *config.Manager
	logger  *slog.Logger

	events chan config.Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Module returns the definitions module. With a non-nil manager and
// reload.enabled set, changes to the services map are re-applied.
func Module(manager *config.Manager) core.Module {
	return &module{manager: manager}
}

func (m *module) Name() string        { return Name }
func (m *module) DependsOn() []string { return nil }

func (m *module) Configure(c *core.Container) error {
	cfg, err := core.Resolve[*config.Root](c, config.ServiceName)
	if err != nil {
		return err
	}
	l, err := core.Resolve[*slog.Logger](c, logging.ServiceName)
	if err != nil {
		return err
	}
	m.logger = l.With(slog.String("module", Name))

	Apply(c, cfg.Services, m.logger)

	if m.manager != nil && cfg.Reload.Enabled {
		m.events = make(chan config.Event, 8)
		m.manager.Subscribe(m.events)
	}
	return nil
}

func (m *module) Start(_ context.Context, c *core.Container) error {
	if m.events == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.watch(ctx, c)
	}()
	return nil
}

func (m *module) Stop(_ context.Context, _ *core.Container) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	return nil
}

func (m *module) watch(ctx context.Context, c *core.Container) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-m.events:
			if !evt.Changed("Services") {
				continue
			}
			cfg, ok := evt.NewConfig.(*config.Root)
			if !ok {
				continue
			}
			m.logger.Info("services changed, re-applying definitions")
			Apply(c, cfg.Services, m.logger)
		}
	}
}

// Apply sets a definition for every entry of services in name order. Names
// missing from services keep their current definition. Types unknown to the
// catalog are still defined and fail when resolved.
func Apply(c *core.Container, services map[string]string, l *slog.Logger) {
	for _, name := range slices.Sorted(maps.Keys(services)) {
		t := core.TypeID(services[name])
		if _, ok := c.Types().Lookup(t); !ok {
			l.Warn("definition refers to undeclared type", "service", name, "type", t.String())
		}
		c.SetDefinition(name, t)
		l.Debug("definition set", "service", name, "type", t.String())
	}
}
