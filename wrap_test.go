package provi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrapFixture(t *testing.T) (*Injector, *TestApp, *Marker, *Marker) {
	t.Helper()
	in := mustInjector(t)
	app := newTestApp("host", 5432)

	dbMarker, err := in.Marker("DB")
	require.NoError(t, err)
	cfgMarker, err := in.Marker("DBConfig")
	require.NoError(t, err)
	return in, app, dbMarker, cfgMarker
}

func TestWrap_FillsMissingArguments(t *testing.T) {
	in, app, dbMarker, _ := wrapFixture(t)

	handler, err := Wrap(in, "handler", func(name string, db *TestDatabase) *TestDatabase {
		return db
	}, Bind(1, dbMarker))
	require.NoError(t, err)
	require.NoError(t, in.Wire(app))

	got := handler("users", nil)
	require.NotNil(t, got)
	assert.Equal(t, "host", got.Config.Host)
}

func TestWrap_SuppliedArgumentsWin(t *testing.T) {
	in, app, dbMarker, _ := wrapFixture(t)

	handler, err := Wrap(in, "handler", func(db *TestDatabase) *TestDatabase {
		return db
	}, Bind(0, dbMarker))
	require.NoError(t, err)
	require.NoError(t, in.Wire(app))

	explicit := &TestDatabase{ID: "explicit"}
	assert.Same(t, explicit, handler(explicit))
}

func TestWrap_NoActiveContainerDegradesSilently(t *testing.T) {
	in, _, dbMarker, _ := wrapFixture(t)

	handler, err := Wrap(in, "handler", func(db *TestDatabase) *TestDatabase {
		return db
	}, Bind(0, dbMarker))
	require.NoError(t, err)

	assert.Nil(t, handler(nil))
}

func TestWrap_UnwireRevertsBehaviorNotWrapping(t *testing.T) {
	in, app, dbMarker, _ := wrapFixture(t)

	handler, err := Wrap(in, "handler", func(db *TestDatabase) *TestDatabase {
		return db
	}, Bind(0, dbMarker))
	require.NoError(t, err)

	require.NoError(t, in.Wire(app))
	require.NotNil(t, handler(nil))

	require.NoError(t, in.Unwire(app))
	// The same wrapped function now passes the zero value through.
	assert.Nil(t, handler(nil))
}

func TestWrap_FIFOPrecedence(t *testing.T) {
	in, _, _, cfgMarker := wrapFixture(t)
	first := newTestApp("first", 1)
	second := newTestApp("second", 2)

	handler, err := Wrap(in, "handler", func(cfg *TestConfig) *TestConfig {
		return cfg
	}, Bind(0, cfgMarker))
	require.NoError(t, err)

	require.NoError(t, in.Wire(first))
	require.NoError(t, in.Wire(second))

	// Earliest-wired container wins.
	assert.Equal(t, "first", handler(nil).Host)

	require.NoError(t, in.Unwire(first))
	assert.Equal(t, "second", handler(nil).Host)
}

func TestWrap_ProviderIdentityMarker(t *testing.T) {
	in, app, dbMarker, _ := wrapFixture(t)

	handler, err := Wrap(in, "handler", func(db Provider) Provider {
		return db
	}, Bind(0, dbMarker.Provider()))
	require.NoError(t, err)
	require.NoError(t, in.Wire(app))

	got := handler(nil)
	require.NotNil(t, got)
	// The provider itself is injected, not its resolved value.
	assert.Same(t, Provider(app.DB), got)
}

func TestWrap_ZeroBindingsReturnsFnUnchanged(t *testing.T) {
	in, _, _, _ := wrapFixture(t)

	fn := func(x int) int { return x }
	wrapped, err := Wrap(in, "identity", fn)
	require.NoError(t, err)

	assert.Equal(t, 7, wrapped(7))
	_, registered := in.SiteTokens("identity")
	assert.False(t, registered)
}

func TestWrap_SiteTokens(t *testing.T) {
	in, _, dbMarker, cfgMarker := wrapFixture(t)

	_, err := Wrap(in, "handler", func(cfg *TestConfig, db *TestDatabase) {}, Bind(0, cfgMarker), Bind(1, dbMarker))
	require.NoError(t, err)

	tokens, ok := in.SiteTokens("handler")
	require.True(t, ok)
	require.Len(t, tokens, 2)
	assert.Equal(t, cfgMarker.Token(), tokens[0])
	assert.Equal(t, dbMarker.Token(), tokens[1])
}

func TestWrap_DuplicateSiteName(t *testing.T) {
	in, _, dbMarker, _ := wrapFixture(t)

	_, err := Wrap(in, "handler", func(db *TestDatabase) {}, Bind(0, dbMarker))
	require.NoError(t, err)

	_, err = Wrap(in, "handler", func(db *TestDatabase) {}, Bind(0, dbMarker))
	require.Error(t, err)

	var are AlreadyRegisteredError
	require.ErrorAs(t, err, &are)
	assert.Equal(t, "handler", are.Site)
}

func TestWrap_BindingValidation(t *testing.T) {
	in, _, dbMarker, _ := wrapFixture(t)
	foreign, err := NewInjector[struct{ Other *Factory }]()
	require.NoError(t, err)
	foreignMarker, err := foreign.Marker("Other")
	require.NoError(t, err)

	fn := func(a, b *TestDatabase) {}
	variadicFn := func(db *TestDatabase, rest ...int) {}

	tests := []struct {
		name     string
		fn       any
		bindings []Binding
		wantErr  error
	}{
		{"nil marker", fn, []Binding{Bind(0, nil)}, ErrNilMarker},
		{"foreign marker", fn, []Binding{Bind(0, foreignMarker)}, ErrForeignMarker},
		{"negative index", fn, []Binding{Bind(-1, dbMarker)}, ErrIndexOutOfRange},
		{"index past arity", fn, []Binding{Bind(2, dbMarker)}, ErrIndexOutOfRange},
		{"duplicate index", fn, []Binding{Bind(0, dbMarker), Bind(0, dbMarker)}, ErrDuplicateIndex},
		{"variadic slot", variadicFn, []Binding{Bind(1, dbMarker)}, ErrVariadicIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Wrap(in, "site-"+tt.name, tt.fn, tt.bindings...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWrap_TargetValidation(t *testing.T) {
	in, _, dbMarker, _ := wrapFixture(t)

	_, err := Wrap(in, "notfunc", 42, Bind(0, dbMarker))
	require.ErrorIs(t, err, ErrNotFunc)

	_, err = Wrap(in, "nilfunc", (func(db *TestDatabase))(nil), Bind(0, dbMarker))
	require.ErrorIs(t, err, ErrNilFunc)
}

func TestWrap_ResolutionErrorThroughTrailingError(t *testing.T) {
	type failApp struct {
		Bad *Factory
	}
	in, err := NewInjector[failApp]()
	require.NoError(t, err)
	badMarker, err := in.Marker("Bad")
	require.NoError(t, err)

	bad := mustFactory(t, func() (*TestConfig, error) { return nil, ErrTest })
	app := &failApp{Bad: bad}
	require.NoError(t, in.Wire(app))

	handler, err := Wrap(in, "handler", func(cfg *TestConfig) (*TestConfig, error) {
		return cfg, nil
	}, Bind(0, badMarker))
	require.NoError(t, err)

	_, err = handler(nil)
	require.ErrorIs(t, err, ErrTest)

	var ie InjectionError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "handler", ie.Site)
}

func TestWrap_ResolutionErrorPanicsWithoutErrorResult(t *testing.T) {
	type failApp struct {
		Bad *Factory
	}
	in, err := NewInjector[failApp]()
	require.NoError(t, err)
	badMarker, err := in.Marker("Bad")
	require.NoError(t, err)

	bad := mustFactory(t, func() (*TestConfig, error) { return nil, ErrTest })
	require.NoError(t, in.Wire(&failApp{Bad: bad}))

	handler, err := Wrap(in, "handler", func(cfg *TestConfig) *TestConfig {
		return cfg
	}, Bind(0, badMarker))
	require.NoError(t, err)

	assert.Panics(t, func() { handler(nil) })
}

func TestWrap_VariadicFunction(t *testing.T) {
	in, app, _, cfgMarker := wrapFixture(t)

	handler, err := Wrap(in, "handler", func(cfg *TestConfig, tags ...string) string {
		return cfg.Host
	}, Bind(0, cfgMarker))
	require.NoError(t, err)
	require.NoError(t, in.Wire(app))

	assert.Equal(t, "host", handler(nil, "a", "b"))
	assert.Equal(t, "host", handler(nil))
}

func TestWrap_ConstructorShapedFunction(t *testing.T) {
	in, app, _, cfgMarker := wrapFixture(t)

	// Constructors are wrapped the same way as any other callable.
	build, err := Wrap(in, "NewTestDatabase", NewTestDatabase, Bind(0, cfgMarker))
	require.NoError(t, err)
	require.NoError(t, in.Wire(app))

	db := build(nil)
	require.NotNil(t, db)
	assert.Equal(t, "host", db.Config.Host)
}
