package provi

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Injector is the wiring engine for one container type. It owns every piece
// of injection state: the synthesized markers, the registered sites, and the
// ordered set of currently wired container instances. Nothing is global; two
// injectors for the same container type are fully independent.
type Injector struct {
	id            string
	containerType reflect.Type
	markers       map[string]*Marker
	log           zerolog.Logger

	mu     sync.RWMutex
	active []reflect.Value
	sites  map[string]*site
}

// site is one registered callable: a name, the callable's type, and the
// parameter bindings recorded for it.
type site struct {
	name     string
	fnType   reflect.Type
	bindings []paramBinding
}

type paramBinding struct {
	index int
	token Token
}

// InjectorOption configures an Injector.
type InjectorOption func(*Injector)

// WithLogger enables structured logging of wiring events (wire, unwire, site
// registration, injection hits and misses) at debug level. The default is a
// no-op logger.
func WithLogger(log zerolog.Logger) InjectorOption {
	return func(in *Injector) {
		in.log = log
	}
}

// NewInjector creates the wiring engine for container type T, synthesizing
// one marker per provider field. T must be a struct type with at least one
// exported field whose declared type is a provider variant or the Provider
// interface.
func NewInjector[T any](opts ...InjectorOption) (*Injector, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, ContainerError{Type: t, Cause: ErrNotStruct}
	}

	names := providerFieldTypes(t)
	if len(names) == 0 {
		return nil, ContainerError{Type: t, Cause: ErrNoProviderFields}
	}

	in := &Injector{
		id:            uuid.NewString(),
		containerType: t,
		markers:       make(map[string]*Marker, len(names)),
		log:           zerolog.Nop(),
		sites:         make(map[string]*site),
	}
	for _, name := range names {
		in.markers[name] = newMarker(mintToken(t, name, false))
	}

	for _, opt := range opts {
		if opt != nil {
			opt(in)
		}
	}

	return in, nil
}

// ID returns the injector's unique identifier.
func (in *Injector) ID() string {
	return in.id
}

// ContainerType returns the container struct type the injector was built for.
func (in *Injector) ContainerType() reflect.Type {
	return in.containerType
}

// Marker returns the marker for a provider field.
func (in *Injector) Marker(field string) (*Marker, error) {
	m, ok := in.markers[field]
	if !ok {
		return nil, TokenError{Type: in.containerType, Field: field, Cause: ErrUnknownField}
	}
	return m, nil
}

// Markers returns a copy of the field-to-marker map.
func (in *Injector) Markers() map[string]*Marker {
	out := make(map[string]*Marker, len(in.markers))
	for k, v := range in.markers {
		out[k] = v
	}
	return out
}

// Wire adds a container instance to the ordered active set. The earliest
// wired container is the one consulted when substituting injected arguments
// (first-wired wins); wiring more containers does not change already-wrapped
// callables. Wiring the same instance twice is a no-op.
func (in *Injector) Wire(container any) error {
	cv, err := in.containerOf(container)
	if err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	for _, existing := range in.active {
		if existing.Pointer() == cv.Pointer() {
			return nil
		}
	}

	in.active = append(in.active, cv)
	in.log.Debug().
		Str("injector", in.id).
		Str("container", formatType(in.containerType)).
		Int("active", len(in.active)).
		Msg("container wired")
	return nil
}

// Unwire removes a container instance from the active set. Registered sites
// stay wrapped; with no active container, injection degrades to leaving
// zero-valued arguments untouched. Unwiring a container that is not wired is
// a no-op.
func (in *Injector) Unwire(container any) error {
	cv, err := in.containerOf(container)
	if err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	for i, existing := range in.active {
		if existing.Pointer() == cv.Pointer() {
			in.active = append(in.active[:i], in.active[i+1:]...)
			in.log.Debug().
				Str("injector", in.id).
				Str("container", formatType(in.containerType)).
				Int("active", len(in.active)).
				Msg("container unwired")
			return nil
		}
	}
	return nil
}

// Wired returns the active container instances in wiring order.
func (in *Injector) Wired() []any {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]any, len(in.active))
	for i, cv := range in.active {
		out[i] = cv.Interface()
	}
	return out
}

// SiteTokens returns the parameter-index-to-token map recorded for a site
// name, and whether the site exists.
func (in *Injector) SiteTokens(name string) (map[int]Token, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	s, ok := in.sites[name]
	if !ok {
		return nil, false
	}

	out := make(map[int]Token, len(s.bindings))
	for _, b := range s.bindings {
		out[b.index] = b.token
	}
	return out, true
}

// containerOf validates that container is a *T for the injector's container
// type.
func (in *Injector) containerOf(container any) (reflect.Value, error) {
	if container == nil {
		return reflect.Value{}, ContainerError{Type: in.containerType, Cause: ErrNilContainer}
	}

	cv := reflect.ValueOf(container)
	if cv.Kind() != reflect.Pointer || cv.Type().Elem() != in.containerType {
		return reflect.Value{}, ContainerError{Type: in.containerType, Cause: ErrWrongContainer}
	}
	if cv.IsNil() {
		return reflect.Value{}, ContainerError{Type: in.containerType, Cause: ErrNilContainer}
	}
	return cv, nil
}

// head returns the first wired container, if any.
func (in *Injector) head() (reflect.Value, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if len(in.active) == 0 {
		return reflect.Value{}, false
	}
	return in.active[0], true
}

// lookup finds the provider matching a token on the first wired container.
// A provider-identity token resolves through the field's ProviderOfSelf
// accessor. A missing container or unmatched token is not an error.
func (in *Injector) lookup(tok Token) (Provider, bool) {
	cv, ok := in.head()
	if !ok {
		return nil, false
	}

	field := cv.Elem().FieldByName(tok.field)
	if !field.IsValid() || !field.CanInterface() {
		return nil, false
	}

	p, ok := field.Interface().(Provider)
	if !ok || p == nil {
		return nil, false
	}

	if tok.provider {
		return p.ProviderOfSelf(), true
	}
	return p, true
}
