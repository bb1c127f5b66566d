// Package testutil provides shared fixture services and containers for
// provi's tests.
package testutil

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/provilib/provi"
)

// Config is a basic test configuration value.
type Config struct {
	Host string
	Port int
}

// NewConfig creates a Config from positional values.
func NewConfig(host string, port int) *Config {
	return &Config{Host: host, Port: port}
}

// Database is a test service with a unique identity per construction.
type Database struct {
	ID     string
	Config *Config
}

// NewDatabase creates a Database around a Config.
func NewDatabase(config *Config) *Database {
	return &Database{ID: uuid.NewString(), Config: config}
}

// Logger is a test logger that records messages.
type Logger struct {
	mu   sync.Mutex
	logs []string
}

// NewLogger creates an empty Logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logs = append(l.logs, msg)
}

func (l *Logger) Logs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.logs))
	copy(out, l.logs)
	return out
}

// Counter counts constructions, for asserting how often a target ran.
type Counter struct {
	n atomic.Int64
}

// Make returns a constructor that bumps the counter and returns its call
// number.
func (c *Counter) Make() func() int64 {
	return func() int64 {
		return c.n.Add(1)
	}
}

// Count returns the number of constructions so far.
func (c *Counter) Count() int64 {
	return c.n.Load()
}

// AppContainer is the canonical test container: a fresh config per
// resolution, one database per container instance.
type AppContainer struct {
	DBConfig *provi.Factory
	DB       *provi.Singleton
	Log      *provi.Singleton
}

// NewAppContainer builds an AppContainer with its providers wired together.
func NewAppContainer(host string, port int) *AppContainer {
	dbConfig, err := provi.NewFactory(NewConfig, host, port)
	if err != nil {
		panic(err)
	}

	db, err := provi.NewSingleton(NewDatabase, dbConfig)
	if err != nil {
		panic(err)
	}

	log, err := provi.NewSingleton(NewLogger)
	if err != nil {
		panic(err)
	}

	return &AppContainer{DBConfig: dbConfig, DB: db, Log: log}
}
