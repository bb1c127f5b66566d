package provi

import (
	"reflect"
)

// ResolveValue deep-resolves v: every reachable Provider is replaced by the
// result of its Resolve call, and structure is otherwise preserved.
//
// Only bare data structures are traversed: maps, slices and arrays. Scalars,
// functions, struct values (including time.Time) and pointers pass through by
// identity, untouched and never invoked: arbitrary domain objects are not the
// resolver's business, even when they happen to expose a Resolve method of
// their own. Cyclic structures are safe; a map or slice that reaches itself
// resolves to a new value that closes the cycle onto itself.
func ResolveValue(v any) (any, error) {
	return deepResolve(v, &resolutionPath{})
}

// deepResolve is the internal entry threading the provider cycle guard
// through nested resolution.
func deepResolve(v any, path *resolutionPath) (any, error) {
	w := &valueWalker{
		path:   path,
		memo:   make(map[walkKey]any),
		active: make(map[walkKey]bool),
	}
	return w.walk(v)
}

// walkKey identifies a map or slice by reference for the per-call memo and
// cycle tables.
type walkKey struct {
	kind reflect.Kind
	ptr  uintptr
	len  int
}

type valueWalker struct {
	path *resolutionPath

	// memo maps an already-rewritten value to its replacement, registered
	// before children are walked so that cycles close onto the new value.
	memo map[walkKey]any

	// active guards values currently being rewritten.
	active map[walkKey]bool
}

func (w *valueWalker) walk(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	// Providers are resolved, not traversed, even on repeat visits.
	if p, ok := v.(Provider); ok {
		return p.resolveAlong(w.path, nil)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return w.walkMap(rv)
	case reflect.Slice:
		return w.walkSlice(rv)
	case reflect.Array:
		return w.walkArray(rv)
	default:
		// Scalars, funcs, channels, structs and pointers pass through by
		// identity. This covers the opaque leaves (time.Time,
		// *regexp.Regexp) as well as every other class-like value.
		return v, nil
	}
}

func (w *valueWalker) walkMap(rv reflect.Value) (any, error) {
	if rv.IsNil() {
		return rv.Interface(), nil
	}

	key := walkKey{kind: reflect.Map, ptr: rv.Pointer()}
	if replacement, ok := w.memo[key]; ok {
		return replacement, nil
	}
	if w.active[key] {
		return rv.Interface(), nil
	}

	w.active[key] = true
	defer delete(w.active, key)

	out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
	w.memo[key] = out.Interface()

	elemType := rv.Type().Elem()
	iter := rv.MapRange()
	for iter.Next() {
		resolved, err := w.walk(iter.Value().Interface())
		if err != nil {
			return nil, err
		}

		ev, err := coerce(resolved, elemType)
		if err != nil {
			return nil, err
		}
		out.SetMapIndex(iter.Key(), ev)
	}

	return out.Interface(), nil
}

func (w *valueWalker) walkSlice(rv reflect.Value) (any, error) {
	if rv.IsNil() {
		return rv.Interface(), nil
	}

	key := walkKey{kind: reflect.Slice, ptr: rv.Pointer(), len: rv.Len()}
	if replacement, ok := w.memo[key]; ok {
		return replacement, nil
	}
	if w.active[key] {
		return rv.Interface(), nil
	}

	w.active[key] = true
	defer delete(w.active, key)

	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	w.memo[key] = out.Interface()

	if err := w.fillSeq(rv, out); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (w *valueWalker) walkArray(rv reflect.Value) (any, error) {
	// Arrays are values without reference identity; no memo entry, just a
	// structural copy.
	out := reflect.New(rv.Type()).Elem()
	if err := w.fillSeq(rv, out); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (w *valueWalker) fillSeq(src, dst reflect.Value) error {
	elemType := src.Type().Elem()
	for i := 0; i < src.Len(); i++ {
		resolved, err := w.walk(src.Index(i).Interface())
		if err != nil {
			return err
		}

		ev, err := coerce(resolved, elemType)
		if err != nil {
			return err
		}
		dst.Index(i).Set(ev)
	}
	return nil
}

// coerce turns a resolved value back into a reflect.Value assignable to the
// destination element type.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		if !isNilable(t.Kind()) && t.Kind() != reflect.Struct && t.Kind() != reflect.Interface {
			return reflect.Value{}, TypeMismatchError{Target: "resolved value", Expected: t}
		}
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, TypeMismatchError{Target: "resolved value", Expected: t, Got: rv.Type()}
	}
	return rv, nil
}
