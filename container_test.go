package provi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFields(t *testing.T) {
	app := newTestApp("host", 5432)

	fields, err := ProviderFields(app)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Same(t, Provider(app.DBConfig), fields["DBConfig"])
	assert.Same(t, Provider(app.DB), fields["DB"])
}

func TestProviderFields_IgnoresNonProviderFields(t *testing.T) {
	type mixed struct {
		Name string
		P    *Factory
		n    int //nolint:unused // unexported fields must be skipped, not panic
	}

	fields, err := ProviderFields(&mixed{Name: "x", P: mustFactory(t, func() int { return 1 })})
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestProviderFields_Validation(t *testing.T) {
	tests := []struct {
		name      string
		container any
		wantErr   error
	}{
		{"nil", nil, ErrNilContainer},
		{"nil pointer", (*TestApp)(nil), ErrNilContainer},
		{"non-struct", 42, ErrNotStruct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProviderFields(tt.container)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResetProviderOverrides(t *testing.T) {
	app := newTestApp("host", 5432)
	mock := mustFactory(t, func() string { return "mock" })

	require.NoError(t, app.DBConfig.Override(mock))
	require.NoError(t, app.DB.Override(mock))

	require.NoError(t, ResetProviderOverrides(app))

	assert.False(t, app.DBConfig.IsOverridden())
	assert.False(t, app.DB.IsOverridden())
}

func TestResetSingletonInstances(t *testing.T) {
	app := newTestApp("host", 5432)

	first := mustResolve(t, app.DB).(*TestDatabase)
	require.NoError(t, ResetSingletonInstances(app))

	second := mustResolve(t, app.DB).(*TestDatabase)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestResetSingletonInstances_LeavesFactoriesAlone(t *testing.T) {
	app := newTestApp("host", 5432)
	mock := mustFactory(t, func() *TestConfig { return NewTestConfig("mock", 1) })
	require.NoError(t, app.DBConfig.Override(mock))

	require.NoError(t, ResetSingletonInstances(app))

	// Overrides survive a singleton reset; only memo slots are cleared.
	assert.True(t, app.DBConfig.IsOverridden())
}

func TestShared_LazySingleInstance(t *testing.T) {
	builds := 0
	shared := NewShared(func() *TestApp {
		builds++
		return newTestApp("shared", 1)
	})

	assert.Equal(t, 0, builds)
	first := shared.Get()
	second := shared.Get()

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestShared_IndependentFromConstructedInstances(t *testing.T) {
	shared := NewShared(func() *TestApp { return newTestApp("shared", 1) })

	viaShared := mustResolve(t, shared.Get().DB).(*TestDatabase)
	viaNew := mustResolve(t, newTestApp("shared", 1).DB).(*TestDatabase)

	assert.NotEqual(t, viaShared.ID, viaNew.ID)

	// The shared path keeps its own memoized value.
	again := mustResolve(t, shared.Get().DB).(*TestDatabase)
	assert.Equal(t, viaShared.ID, again.ID)
}
