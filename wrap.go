package provi

import (
	"reflect"
	"sort"
)

// Binding declares that one parameter of a wrapped callable is fed by a
// marker. Build bindings with Bind.
type Binding struct {
	index  int
	marker *Marker
}

// Bind binds parameter index of the callable being wrapped to a marker.
func Bind(index int, m *Marker) Binding {
	return Binding{index: index, marker: m}
}

// Wrap registers fn under name on the injector and returns a same-signature
// wrapper. On every invocation, each bound parameter whose caller-supplied
// value is the zero value for its type is filled by resolving the marker's
// provider on the first wired container. With no wired container, or a token
// matching no field of it, the argument is left untouched rather than
// reported as an error.
//
// A resolution failure during substitution is returned through fn's trailing
// error result when it declares one; otherwise the wrapper panics with the
// typed error.
//
// The wrapping happens here, exactly once per site; Wire and Unwire only
// toggle which container the already-wrapped callable consults. With no
// bindings fn is returned unchanged and no site is recorded. Constructors are
// wrapped the same way as any other function.
//
// A zero value is how a caller signals "argument not supplied".
// A caller that must pass a genuine zero at a bound position should use a
// pointer parameter or call the unwrapped callable.
func Wrap[F any](in *Injector, name string, fn F, bindings ...Binding) (F, error) {
	var zero F

	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return zero, TargetError{Target: name, Cause: ErrNotFunc}
	}
	if fv.IsNil() {
		return zero, TargetError{Target: name, Cause: ErrNilFunc}
	}

	if len(bindings) == 0 {
		return fn, nil
	}

	fnType := fv.Type()
	s, err := newSite(in, name, fnType, bindings)
	if err != nil {
		return zero, err
	}

	if err := in.register(s); err != nil {
		return zero, err
	}

	wrapped := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		if err := in.fill(s, args); err != nil {
			return failResults(fnType, err)
		}
		// MakeFunc hands the variadic tail over as a slice.
		if fnType.IsVariadic() {
			return fv.CallSlice(args)
		}
		return fv.Call(args)
	})

	return wrapped.Interface().(F), nil
}

func newSite(in *Injector, name string, fnType reflect.Type, bindings []Binding) (*site, error) {
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	s := &site{name: name, fnType: fnType}
	seen := make(map[int]bool, len(bindings))
	for _, b := range bindings {
		if b.marker == nil {
			return nil, BindingError{Site: name, Index: b.index, Cause: ErrNilMarker}
		}
		if b.marker.token.owner != in.containerType {
			return nil, BindingError{Site: name, Index: b.index, Cause: ErrForeignMarker}
		}
		if b.index < 0 || b.index >= numIn {
			return nil, BindingError{Site: name, Index: b.index, Cause: ErrIndexOutOfRange}
		}
		if variadic && b.index == numIn-1 {
			return nil, BindingError{Site: name, Index: b.index, Cause: ErrVariadicIndex}
		}
		if seen[b.index] {
			return nil, BindingError{Site: name, Index: b.index, Cause: ErrDuplicateIndex}
		}
		seen[b.index] = true

		s.bindings = append(s.bindings, paramBinding{index: b.index, token: b.marker.token})
	}

	sort.Slice(s.bindings, func(i, j int) bool {
		return s.bindings[i].index < s.bindings[j].index
	})
	return s, nil
}

func (in *Injector) register(s *site) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if _, exists := in.sites[s.name]; exists {
		return AlreadyRegisteredError{Site: s.name}
	}

	in.sites[s.name] = s
	in.log.Debug().
		Str("injector", in.id).
		Str("site", s.name).
		Int("bindings", len(s.bindings)).
		Msg("site registered")
	return nil
}

// fill substitutes resolved values into zero-valued bound arguments, in
// place.
func (in *Injector) fill(s *site, args []reflect.Value) error {
	for _, b := range s.bindings {
		arg := args[b.index]
		if !arg.IsZero() {
			continue
		}

		p, found := in.lookup(b.token)
		if !found {
			in.log.Debug().
				Str("injector", in.id).
				Str("site", s.name).
				Int("param", b.index).
				Stringer("token", b.token).
				Msg("injection miss")
			continue
		}

		value, err := p.Resolve()
		if err != nil {
			return InjectionError{Site: s.name, Index: b.index, Token: b.token, Cause: err}
		}

		paramType := s.fnType.In(b.index)
		if value == nil {
			continue
		}

		rv := reflect.ValueOf(value)
		if !rv.Type().AssignableTo(paramType) {
			return InjectionError{
				Site:  s.name,
				Index: b.index,
				Token: b.token,
				Cause: TypeMismatchError{Target: s.name, Index: b.index, Expected: paramType, Got: rv.Type()},
			}
		}

		args[b.index] = rv
		in.log.Debug().
			Str("injector", in.id).
			Str("site", s.name).
			Int("param", b.index).
			Stringer("token", b.token).
			Msg("injection hit")
	}
	return nil
}

// failResults builds the return values for an injection failure: zero values
// throughout, with err in the trailing error result when the function
// declares one. Without an error result the failure panics.
func failResults(fnType reflect.Type, err error) []reflect.Value {
	numOut := fnType.NumOut()
	if numOut == 0 || fnType.Out(numOut-1) != errorType {
		panic(err)
	}

	out := make([]reflect.Value, numOut)
	for i := 0; i < numOut-1; i++ {
		out[i] = reflect.Zero(fnType.Out(i))
	}

	ev := reflect.New(errorType).Elem()
	ev.Set(reflect.ValueOf(err))
	out[numOut-1] = ev
	return out
}
