package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Manager loads configuration from ordered sources into a user struct and
// publishes change events.
//
// Later sources override earlier ones. A reload binds into a fresh value and
// only replaces the user struct when binding and validation succeed, so the
// struct is never left half-updated. The bound struct is live: Reload
// overwrites it in place, so code that keeps reading it from other goroutines
// should take a Snapshot instead. All methods are safe for concurrent use.
type Manager struct {
	sources []ConfigSource
	config  any
	binder  *Binder
	logger  *slog.Logger

	mu   sync.RWMutex
	subs []chan Event

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Options configures a Manager.
type Options struct {
	// AutoReload starts a watcher per source and reloads on every event.
	AutoReload bool
	// Logger receives watcher and reload failures. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewManager binds cfg, a pointer to a struct using `config`/`validate` tags,
// from sources in order. It fails if the first load does.
//
//	var cfg config.Root
//	mgr, err := config.NewManager(&cfg, config.Options{},
//	    config.Defaults(),
//	    &source.FileSource{BasePath: "configs"},
//	    &source.EnvSource{},
//	)
func NewManager(cfg any, opts Options, sources ...ConfigSource) (*Manager, error) {
	if v := reflect.ValueOf(cfg); v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("config target must be a non-nil struct pointer, got %T", cfg)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		sources: sources,
		config:  cfg,
		binder:  NewBinder(),
		logger:  logger,
	}

	if err := m.Reload(context.Background()); err != nil {
		return nil, err
	}

	if opts.AutoReload {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.startWatchers(ctx)
	}
	return m, nil
}

// Reload reads every source, merges, binds and validates, then swaps the
// result into the user struct and notifies subscribers if anything changed.
// On any failure the current configuration is kept.
func (m *Manager) Reload(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range m.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		mergeMaps(merged, vals)
	}

	typ := reflect.TypeOf(m.config).Elem()
	newCfg := reflect.New(typ).Interface()
	if err := m.binder.Bind(merged, newCfg); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	m.mu.Lock()
	oldCfg := reflect.New(typ).Interface()
	reflect.ValueOf(oldCfg).Elem().Set(reflect.ValueOf(m.config).Elem())
	reflect.ValueOf(m.config).Elem().Set(reflect.ValueOf(newCfg).Elem())
	m.mu.Unlock()

	if !reflect.DeepEqual(oldCfg, newCfg) {
		m.notify(diffEvent(oldCfg, newCfg))
	}
	return nil
}

// Snapshot copies the current configuration into out, which must be a
// pointer to the same struct type passed to NewManager.
func (m *Manager) Snapshot(out any) error {
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() || dst.Type() != reflect.TypeOf(m.config) {
		return fmt.Errorf("snapshot target must be %T, got %T", m.config, out)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	dst.Elem().Set(reflect.ValueOf(m.config).Elem())
	return nil
}

// Subscribe registers ch for change events. Delivery never blocks: a full
// channel misses the event, so use a buffered channel. ch is never closed.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

// Close stops the watchers started by AutoReload and waits for them.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (m *Manager) startWatchers(ctx context.Context) {
	for _, src := range m.sources {
		ch := make(chan Event, 1)

		m.wg.Add(2)
		go func() {
			defer m.wg.Done()
			if err := src.Watch(ctx, ch); err != nil && ctx.Err() == nil {
				m.logger.Warn("config watch stopped", "source", src.Name(), "error", err)
			}
		}()
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					if err := m.Reload(ctx); err != nil && ctx.Err() == nil {
						m.logger.Error("config reload failed", "source", src.Name(), "error", err)
					}
				}
			}
		}()
	}
}
