package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
)

var (
	ErrDuplicateModule = errors.New("duplicate module name")
	ErrModuleCycle     = errors.New("module cycle detected")
	ErrMissingModule   = errors.New("missing module dependency")
)

const defaultShutdownTimeout = 15 * time.Second

type App struct {
	Modules   []Module
	Container *Container
	Logger    *slog.Logger
	// ShutdownTimeout bounds the Stop phase. Zero means 15s.
	ShutdownTimeout time.Duration
}

// NewApp composes mods around c. A nil container gets a fresh one.
func NewApp(logger *slog.Logger, c *Container, mods ...Module) *App {
	if c == nil {
		c = NewContainer(nil)
	}
	return &App{
		Modules:   mods,
		Container: c,
		Logger:    logger,
	}
}

// Run configures and starts every module, blocks until ctx is done or the
// process is signalled, then stops the started modules in reverse order.
func (a *App) Run(ctx context.Context) error {
	order, err := topoSort(a.Modules)
	if err != nil {
		return err
	}

	for _, m := range order {
		if err := m.Configure(a.Container); err != nil {
			return fmt.Errorf("configure %s: %w", m.Name(), err)
		}
	}
	a.Logger.Info("modules configured",
		"modules", len(order),
		"definitions", len(a.Container.Definitions()),
		"types", len(a.Container.Types().IDs()),
	)

	started := 0
	var startErr error
	for _, m := range order {
		a.Logger.Info("starting module", "module", m.Name())
		if err := m.Start(ctx, a.Container); err != nil {
			startErr = fmt.Errorf("start %s: %w", m.Name(), err)
			break
		}
		started++
	}

	if startErr == nil {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
		case <-stop:
		}
		signal.Stop(stop)
	}

	timeout := a.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	firstErr := startErr
	for i := started - 1; i >= 0; i-- {
		m := order[i]
		a.Logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(shutdownCtx, a.Container); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop %s: %w", m.Name(), err)
		}
	}
	return firstErr
}

// topoSort orders mods so every module follows its dependencies. Ties are
// broken by name.
func topoSort(mods []Module) ([]Module, error) {
	byName := make(map[string]Module, len(mods))
	for _, m := range mods {
		if _, dup := byName[m.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name())
		}
		byName[m.Name()] = m
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(mods))
	out := make([]Module, 0, len(mods))

	var visit func(string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w at module %s", ErrModuleCycle, name)
		case done:
			return nil
		}
		state[name] = visiting
		m := byName[name]
		for _, dep := range m.DependsOn() {
			if _, ok := byName[dep]; !ok {
				return fmt.Errorf("%w: %s depends on %s", ErrMissingModule, name, dep)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		out = append(out, m)
		return nil
	}

	for _, name := range slices.Sorted(maps.Keys(byName)) {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}
