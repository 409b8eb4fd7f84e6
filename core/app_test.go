package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModule struct {
	name     string
	deps     []string
	startErr error
	events   *[]string
}

func (m *fakeModule) Name() string        { return m.name }
func (m *fakeModule) DependsOn() []string { return m.deps }

func (m *fakeModule) Configure(c *Container) error {
	*m.events = append(*m.events, "configure "+m.name)
	return nil
}

func (m *fakeModule) Start(context.Context, *Container) error {
	*m.events = append(*m.events, "start "+m.name)
	return m.startErr
}

func (m *fakeModule) Stop(context.Context, *Container) error {
	*m.events = append(*m.events, "stop "+m.name)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTopoSort(t *testing.T) {
	t.Parallel()

	var events []string
	mods := []Module{
		&fakeModule{name: "actuator", deps: []string{"web"}, events: &events},
		&fakeModule{name: "web", deps: []string{"definitions"}, events: &events},
		&fakeModule{name: "definitions", events: &events},
	}

	order, err := topoSort(mods)
	require.NoError(t, err)

	names := make([]string, len(order))
	for i, m := range order {
		names[i] = m.Name()
	}
	assert.Equal(t, []string{"definitions", "web", "actuator"}, names)
}

func TestTopoSort_Errors(t *testing.T) {
	t.Parallel()

	var events []string
	tests := []struct {
		name    string
		mods    []Module
		wantErr error
	}{
		{
			name: "duplicate",
			mods: []Module{
				&fakeModule{name: "a", events: &events},
				&fakeModule{name: "a", events: &events},
			},
			wantErr: ErrDuplicateModule,
		},
		{
			name: "cycle",
			mods: []Module{
				&fakeModule{name: "a", deps: []string{"b"}, events: &events},
				&fakeModule{name: "b", deps: []string{"a"}, events: &events},
			},
			wantErr: ErrModuleCycle,
		},
		{
			name:    "missing",
			mods:    []Module{&fakeModule{name: "a", deps: []string{"ghost"}, events: &events}},
			wantErr: ErrMissingModule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := topoSort(tt.mods)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApp_RunLifecycle(t *testing.T) {
	t.Parallel()

	var events []string
	app := NewApp(discardLogger(), nil,
		&fakeModule{name: "b", deps: []string{"a"}, events: &events},
		&fakeModule{name: "a", events: &events},
	)
	require.NotNil(t, app.Container)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, app.Run(ctx))
	assert.Equal(t, []string{
		"configure a", "configure b",
		"start a", "start b",
		"stop b", "stop a",
	}, events)
}

func TestApp_StartFailureStopsStartedModules(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var events []string
	app := NewApp(discardLogger(), NewContainer(nil),
		&fakeModule{name: "a", events: &events},
		&fakeModule{name: "b", deps: []string{"a"}, startErr: boom, events: &events},
	)

	err := app.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{
		"configure a", "configure b",
		"start a", "start b",
		"stop a",
	}, events)
}
