package provi

import (
	"testing"

	"github.com/google/uuid"
)

// Shared fixtures for the white-box tests in this package.

type TestConfig struct {
	Host string
	Port int
}

func NewTestConfig(host string, port int) *TestConfig {
	return &TestConfig{Host: host, Port: port}
}

type TestDatabase struct {
	ID     string
	Config *TestConfig
}

func NewTestDatabase(config *TestConfig) *TestDatabase {
	return &TestDatabase{ID: uuid.NewString(), Config: config}
}

type TestApp struct {
	DBConfig *Factory
	DB       *Singleton
}

func newTestApp(host string, port int) *TestApp {
	dbConfig := mustFactory(nil, NewTestConfig, host, port)
	return &TestApp{
		DBConfig: dbConfig,
		DB:       mustSingleton(nil, NewTestDatabase, dbConfig),
	}
}

func mustFactory(t *testing.T, target any, injected ...any) *Factory {
	if t != nil {
		t.Helper()
	}
	f, err := NewFactory(target, injected...)
	if err != nil {
		if t != nil {
			t.Fatalf("NewFactory: %v", err)
		}
		panic(err)
	}
	return f
}

func mustSingleton(t *testing.T, target any, injected ...any) *Singleton {
	if t != nil {
		t.Helper()
	}
	s, err := NewSingleton(target, injected...)
	if err != nil {
		if t != nil {
			t.Fatalf("NewSingleton: %v", err)
		}
		panic(err)
	}
	return s
}

func mustDelegate(t *testing.T, p Provider) *Delegate {
	t.Helper()
	d, err := NewDelegate(p)
	if err != nil {
		t.Fatalf("NewDelegate: %v", err)
	}
	return d
}

func mustResolve(t *testing.T, p Provider, args ...any) any {
	t.Helper()
	v, err := p.Resolve(args...)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return v
}
