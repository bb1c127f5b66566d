package provi

import (
	"reflect"
	"sync"
)

var providerIfaceType = reflect.TypeOf((*Provider)(nil)).Elem()

// A container is any struct whose exported fields hold providers. The
// functions below operate on a container instance through reflection,
// touching only the fields that actually hold a provider.

// ProviderFields returns the container's provider-valued exported fields by
// name. The container may be a struct or a pointer to one.
func ProviderFields(container any) (map[string]Provider, error) {
	rv, err := containerValue(container)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]Provider)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rv.Field(i)
		if !field.CanInterface() {
			continue
		}

		if p, ok := field.Interface().(Provider); ok && p != nil {
			fields[rt.Field(i).Name] = p
		}
	}

	return fields, nil
}

// ResetProviderOverrides clears the override stack of every provider field of
// the container.
func ResetProviderOverrides(container any) error {
	fields, err := ProviderFields(container)
	if err != nil {
		return err
	}

	for _, p := range fields {
		p.ResetOverride()
	}
	return nil
}

// ResetSingletonInstances clears the memoized value of every Singleton field
// of the container, in place. Factory and Delegate fields are untouched.
func ResetSingletonInstances(container any) error {
	fields, err := ProviderFields(container)
	if err != nil {
		return err
	}

	for _, p := range fields {
		if s, ok := p.(*Singleton); ok {
			s.Reset()
		}
	}
	return nil
}

func containerValue(container any) (reflect.Value, error) {
	if container == nil {
		return reflect.Value{}, ContainerError{Cause: ErrNilContainer}
	}

	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, ContainerError{Type: rv.Type(), Cause: ErrNilContainer}
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ContainerError{Type: rv.Type(), Cause: ErrNotStruct}
	}
	return rv, nil
}

// providerFieldTypes returns the names of t's exported fields whose declared
// type is a provider variant (or the Provider interface itself), in field
// order.
func providerFieldTypes(t reflect.Type) []string {
	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Type == providerIfaceType || f.Type.Implements(providerIfaceType) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Shared holds a lazily-built shared instance of a container type, giving a
// package-level access path alongside individually constructed instances.
// The shared instance and any separately constructed instance are independent
// singleton scopes.
type Shared[T any] struct {
	build func() *T
	once  sync.Once
	inst  *T
}

// NewShared creates a Shared that builds its instance with build on first
// Get.
func NewShared[T any](build func() *T) *Shared[T] {
	return &Shared[T]{build: build}
}

// Get returns the shared instance, building it exactly once.
func (s *Shared[T]) Get() *T {
	s.once.Do(func() {
		s.inst = s.build()
	})
	return s.inst
}
