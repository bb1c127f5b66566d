// Package provi is a declarative, provider-based dependency injection
// micro-framework. Dependencies are modeled as lazily-evaluated provider
// objects grouped into plain container structs, and wired to call sites
// through an explicit injection engine; there is no automatic type-driven
// resolution: every parameter is wired to a provider on purpose.
//
// # Providers
//
// A Provider produces a value on demand. Three variants exist:
//
//   - Factory: a new value per resolution
//   - Singleton: the first resolution result, memoized per provider instance
//   - Delegate: another provider, not a value
//
// Providers take a target function plus injected arguments, which may
// themselves be providers at any depth of the value graph:
//
//	dbConfig, _ := provi.NewFactory(NewConfig, "host", 5432)
//	db, _ := provi.NewSingleton(NewDatabase, dbConfig)
//
//	first, _ := db.Resolve()
//	second, _ := db.Resolve() // same instance
//
// Every provider carries an override stack for testing: Override pushes a
// replacement whose behavior wholly shadows the provider's own, and
// ResetOverride restores the original behavior exactly.
//
//	db.Override(mockDB)
//	defer db.ResetOverride()
//
// # Containers
//
// A container is any struct whose exported fields hold providers. Bulk
// operations work on an instance through reflection:
//
//	type App struct {
//	    DBConfig *provi.Factory
//	    DB       *provi.Singleton
//	}
//
//	provi.ResetProviderOverrides(app)
//	provi.ResetSingletonInstances(app)
//
// Two container instances never share a Singleton's cached value.
//
// # Wiring
//
// NewInjector builds the wiring engine for a container type, synthesizing one
// marker per provider field. Wrap registers a call site: it binds parameters
// to markers and returns a same-signature function whose zero-valued bound
// arguments are filled from the first wired container at call time.
//
//	in, _ := provi.NewInjector[App]()
//	db, _ := in.Marker("DB")
//
//	handler, _ := provi.Wrap(in, "handleUsers", handleUsers, provi.Bind(1, db))
//
//	in.Wire(app)   // handler now auto-fills its database argument
//	in.Unwire(app) // handler passes zero values through again
//
// Injection degrades silently: with no wired container, or a marker matching
// nothing on it, arguments flow through untouched. This lets the same call
// sites run fully wired in production and fully explicit in tests.
package provi
