package core_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/locator/core"
)

type TestService struct {
	calls int
}

func (s *TestService) Output() string {
	s.calls++
	return "test"
}

type TestScalarInjection struct {
	Key string
}

func NewTestScalarInjection(key string) *TestScalarInjection {
	return &TestScalarInjection{Key: key}
}

type TestServiceInjection struct {
	TestService *TestService
}

func NewTestServiceInjection(s *TestService) *TestServiceInjection {
	return &TestServiceInjection{TestService: s}
}

type TestAbstract interface {
	Abstract()
}

// newContainer mirrors the usual fixture: TestService declared and bound.
func newContainer(t *testing.T, opts ...core.Option) *core.Container {
	t.Helper()
	cat := core.NewCatalog()
	require.NoError(t, core.DeclareType[*TestService](cat))
	c := core.NewContainer(cat, opts...)
	c.SetDefinition("TestService", core.TypeOf[*TestService]())
	return c
}

func TestSetDefinition(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	c.SetDefinition("test", core.TypeOf[*TestService]())

	got, err := c.GetDefinition("test")
	require.NoError(t, err)
	assert.Equal(t, core.TypeOf[*TestService](), got)
}

func TestSetDefinition_Overwrites(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	c.SetDefinition("svc", core.TypeOf[*TestService]())
	c.SetDefinition("svc", core.TypeOf[*TestScalarInjection]())

	got, err := c.GetDefinition("svc")
	require.NoError(t, err)
	assert.Equal(t, core.TypeOf[*TestScalarInjection](), got)
}

func TestGetDefinition_NotFound(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	_, err := c.GetDefinition("NotFound")

	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "NotFound", nf.Name)
	assert.EqualError(t, err, "service NotFound is not defined")
}

func TestGetDefinition_Found(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	got, err := c.GetDefinition("TestService")
	require.NoError(t, err)
	assert.Equal(t, core.TypeOf[*TestService](), got)
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	v, err := c.Get("Unknown")

	var nf *core.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Nil(t, v)
}

func TestGet_ReturnsTestServiceInstance(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	v, err := c.Get("TestService")
	require.NoError(t, err)
	svc, ok := v.(*TestService)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, "test", svc.Output())
}

func TestGet_ReturnsSameInstance(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	first, err := c.Get("TestService")
	require.NoError(t, err)
	second, err := c.Get("TestService")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, c.HasInstance(core.TypeOf[*TestService]()))
}

func TestGet_NamesSharingATypeShareTheInstance(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	c.SetDefinition("alias", core.TypeOf[*TestService]())

	a, err := c.Get("TestService")
	require.NoError(t, err)
	b, err := c.Get("alias")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestGet_AbstractType(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Types().Abstract(core.TypeOf[TestAbstract]()))
	c.SetDefinition("TestAbstract", core.TypeOf[TestAbstract]())

	_, err := c.Get("TestAbstract")

	var ni *core.NotInstantiableError
	require.ErrorAs(t, err, &ni)
	assert.Equal(t, core.TypeOf[TestAbstract](), ni.Type)
	assert.Contains(t, err.Error(), core.TypeOf[TestAbstract]().String()+" is not instantiable")
	assert.False(t, c.HasInstance(core.TypeOf[TestAbstract]()))
}

func TestGet_UndeclaredType(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	c.SetDefinition("ghost", "example.Ghost")

	_, err := c.Get("ghost")

	var ni *core.NotInstantiableError
	require.ErrorAs(t, err, &ni)
	assert.Equal(t, "undeclared", ni.Reason)
	assert.EqualError(t, err, "example.Ghost is not instantiable (undeclared)")
}

func TestGet_DependencyInjection(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Types().Constructor(NewTestServiceInjection))
	c.SetDefinition("TestServiceInjection", core.TypeOf[*TestServiceInjection]())

	v, err := c.Get("TestServiceInjection")
	require.NoError(t, err)

	inj, ok := v.(*TestServiceInjection)
	require.True(t, ok, "got %T", v)
	require.NotNil(t, inj.TestService)
	assert.IsType(t, &TestService{}, inj.TestService)

	// The dependency was cached by type, so the named lookup sees it.
	svc, err := c.Get("TestService")
	require.NoError(t, err)
	assert.Same(t, inj.TestService, svc)
}

func TestGet_ScalarInjection(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Types().Constructor(NewTestScalarInjection, core.Default(0, "value")))
	c.SetDefinition("TestScalarInjection", core.TypeOf[*TestScalarInjection]())

	v, err := c.Get("TestScalarInjection")
	require.NoError(t, err)

	inj, ok := v.(*TestScalarInjection)
	require.True(t, ok, "got %T", v)
	assert.Equal(t, "value", inj.Key)
}

func TestGet_ScalarWithoutDefault(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Types().Constructor(NewTestScalarInjection, core.Named(0, "key")))
	c.SetDefinition("TestScalarInjection", core.TypeOf[*TestScalarInjection]())

	_, err := c.Get("TestScalarInjection")

	var ud *core.UnresolvableDefaultError
	require.ErrorAs(t, err, &ud)
	assert.Equal(t, "key", ud.Param)
	assert.Equal(t, core.TypeOf[*TestScalarInjection](), ud.Type)
	assert.False(t, c.HasInstance(core.TypeOf[*TestScalarInjection]()))
}

func TestGet_ParametersResolveInDeclarationOrder(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	var got []any
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID: "example.Ordered",
		Params: []core.Param{
			core.ScalarDefault("first", 1),
			core.Service("second", core.TypeOf[*TestService]()),
			core.ScalarDefault("third", "three"),
		},
		New: func(args []any) (any, error) {
			got = args
			return &struct{ n int }{n: len(args)}, nil
		},
	}))
	c.SetDefinition("ordered", "example.Ordered")

	_, err := c.Get("ordered")
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0])
	assert.IsType(t, &TestService{}, got[1])
	assert.Equal(t, "three", got[2])
}

func TestGet_FailedDependencyCachesNothingForTheFailedTypes(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID:     "example.Broken",
		Params: []core.Param{core.Scalar("dsn")},
		New:    func([]any) (any, error) { return &struct{ ok bool }{}, nil },
	}))
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID: "example.Top",
		Params: []core.Param{
			core.Service("svc", core.TypeOf[*TestService]()),
			core.Service("broken", "example.Broken"),
		},
		New: func([]any) (any, error) { return &struct{ ok bool }{}, nil },
	}))
	c.SetDefinition("top", "example.Top")

	_, err := c.Get("top")
	var ud *core.UnresolvableDefaultError
	require.ErrorAs(t, err, &ud)
	assert.Equal(t, core.TypeID("example.Broken"), ud.Type)

	assert.False(t, c.HasInstance("example.Top"))
	assert.False(t, c.HasInstance("example.Broken"))
	// Siblings that finished before the failure stay cached.
	assert.True(t, c.HasInstance(core.TypeOf[*TestService]()))
}

func TestGet_ConstructorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := newContainer(t)
	require.NoError(t, c.Types().Constructor(func() (*TestScalarInjection, error) {
		return nil, boom
	}))
	c.SetDefinition("failing", core.TypeOf[*TestScalarInjection]())

	_, err := c.Get("failing")

	var ce *core.ConstructError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.HasInstance(core.TypeOf[*TestScalarInjection]()))
}

func TestGet_CyclicDependency(t *testing.T) {
	t.Parallel()

	newer := func([]any) (any, error) { return &struct{ ok bool }{}, nil }
	c := newContainer(t)
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID: "example.A", Params: []core.Param{core.Service("b", "example.B")}, New: newer,
	}))
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID: "example.B", Params: []core.Param{core.Service("a", "example.A")}, New: newer,
	}))
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID: "example.Root", Params: []core.Param{core.Service("a", "example.A")}, New: newer,
	}))
	c.SetDefinition("root", "example.Root")

	_, err := c.Get("root")

	var cyc *core.CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []core.TypeID{"example.A", "example.B", "example.A"}, cyc.Path)
	assert.EqualError(t, err, "circular dependency: example.A -> example.B -> example.A")
}

func TestGet_SelfDependency(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	require.NoError(t, c.Types().Declare(core.TypeInfo{
		ID:     "example.Self",
		Params: []core.Param{core.Service("self", "example.Self")},
		New:    func([]any) (any, error) { return &struct{ ok bool }{}, nil },
	}))
	c.SetDefinition("self", "example.Self")

	_, err := c.Get("self")

	var cyc *core.CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []core.TypeID{"example.Self", "example.Self"}, cyc.Path)
}

func TestGet_ConcurrentCallersBuildOnce(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	c := newContainer(t)
	require.NoError(t, c.Types().Constructor(func(s *TestService) *TestServiceInjection {
		builds.Add(1)
		time.Sleep(time.Millisecond)
		return &TestServiceInjection{TestService: s}
	}))
	c.SetDefinition("inj", core.TypeOf[*TestServiceInjection]())

	const callers = 32
	results := make([]any, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get("inj")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

type recordingObserver struct {
	mu          sync.Mutex
	resolutions []core.Resolution
	builds      []core.TypeID
}

func (o *recordingObserver) ObserveResolution(r core.Resolution) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolutions = append(o.resolutions, r)
}

func (o *recordingObserver) ObserveBuild(t core.TypeID, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.builds = append(o.builds, t)
}

func TestGet_ReportsToObservers(t *testing.T) {
	t.Parallel()

	a, b := &recordingObserver{}, &recordingObserver{}
	c := newContainer(t, core.WithObserver(core.Observers(a, nil, b)))
	require.NoError(t, c.Types().Constructor(NewTestServiceInjection))
	c.SetDefinition("inj", core.TypeOf[*TestServiceInjection]())

	_, err := c.Get("inj")
	require.NoError(t, err)
	_, err = c.Get("inj")
	require.NoError(t, err)
	_, err = c.Get("missing")
	require.Error(t, err)

	for _, o := range []*recordingObserver{a, b} {
		require.Len(t, o.resolutions, 3)
		assert.False(t, o.resolutions[0].Cached)
		assert.True(t, o.resolutions[1].Cached)
		assert.Equal(t, core.TypeOf[*TestServiceInjection](), o.resolutions[1].Type)
		assert.Empty(t, o.resolutions[2].Type)
		assert.Error(t, o.resolutions[2].Err)

		assert.Equal(t, []core.TypeID{
			core.TypeOf[*TestService](),
			core.TypeOf[*TestServiceInjection](),
		}, o.builds)
	}
}

func TestDefinitions_Snapshot(t *testing.T) {
	t.Parallel()

	c := newContainer(t)
	defs := c.Definitions()
	defs["other"] = "example.Other"

	_, err := c.GetDefinition("other")
	assert.Error(t, err)
	assert.Equal(t, map[string]core.TypeID{"TestService": core.TypeOf[*TestService]()}, c.Definitions())
}

func TestNewContainer_NilCatalog(t *testing.T) {
	t.Parallel()

	c := core.NewContainer(nil)
	require.NotNil(t, c.Types())
	assert.Empty(t, c.Types().IDs())
}
