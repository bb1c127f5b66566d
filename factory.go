package provi

import (
	"reflect"
	"runtime"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Factory is a provider that builds a fresh value on every resolution by
// invoking a target function.
//
// The final argument list passed to the target is the call arguments followed
// by the resolved injected arguments. When any injected argument is an Extend
// wrapper, the target instead receives exactly the resolved argument list,
// with the Extend replaced by its merged object and the first call argument
// consumed as the merge context.
type Factory struct {
	overridable

	target     reflect.Value
	targetType reflect.Type
	injected   []any
}

// NewFactory creates a Factory around target, a function invoked on every
// Resolve. Injected arguments may be plain values, other providers, or an
// Extend wrapper; providers are resolved anew on each resolution, at any
// depth of the value graph.
func NewFactory(target any, injected ...any) (*Factory, error) {
	f := &Factory{}
	if err := f.setTarget(target, injected); err != nil {
		return nil, err
	}

	f.init(f, "Factory("+f.targetName()+")")
	return f, nil
}

func (f *Factory) setTarget(target any, injected []any) error {
	if target == nil {
		return TargetError{Cause: ErrNilTarget}
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Func {
		return TargetError{Target: formatType(v.Type()), Cause: ErrTargetNotFunc}
	}
	if v.IsNil() {
		return TargetError{Target: formatType(v.Type()), Cause: ErrNilTarget}
	}

	f.target = v
	f.targetType = v.Type()
	f.injected = injected
	return nil
}

// targetName returns the target function's name for diagnostics.
func (f *Factory) targetName() string {
	if fn := runtime.FuncForPC(f.target.Pointer()); fn != nil && fn.Name() != "" {
		return fn.Name()
	}
	return formatType(f.targetType)
}

// Resolve builds a fresh value by resolving the injected arguments and
// invoking the target with callArgs followed by the resolved arguments.
// An active override takes precedence over the Factory's own logic.
func (f *Factory) Resolve(args ...any) (any, error) {
	return f.resolveAlong(&resolutionPath{}, args)
}

func (f *Factory) resolveAlong(path *resolutionPath, args []any) (any, error) {
	if ov, ok := f.activeOverride(); ok {
		return ov.resolveAlong(path, args)
	}

	if err := path.enter(f, f.desc); err != nil {
		return nil, err
	}
	defer path.leave()

	return f.construct(path, args)
}

// construct resolves the injected arguments and invokes the target. It is
// shared with Singleton, which adds memoization on top.
func (f *Factory) construct(path *resolutionPath, callArgs []any) (any, error) {
	extended := false
	for _, arg := range f.injected {
		if _, ok := arg.(Extend); ok {
			extended = true
			break
		}
	}

	if extended {
		return f.constructExtended(path, callArgs)
	}

	final := make([]any, 0, len(callArgs)+len(f.injected))
	final = append(final, callArgs...)
	for _, arg := range f.injected {
		resolved, err := deepResolve(arg, path)
		if err != nil {
			return nil, err
		}
		final = append(final, resolved)
	}

	return f.invoke(final)
}

// constructExtended handles the Extend form: the first call argument is the
// merge context and the target receives exactly the resolved injected list.
func (f *Factory) constructExtended(path *resolutionPath, callArgs []any) (any, error) {
	var ctx map[string]any
	if len(callArgs) > 0 && callArgs[0] != nil {
		m, ok := callArgs[0].(map[string]any)
		if !ok {
			return nil, TargetError{Target: f.targetName(), Cause: ErrExtendContext}
		}
		ctx = m
	}

	final := make([]any, 0, len(f.injected))
	for _, arg := range f.injected {
		if ext, ok := arg.(Extend); ok {
			merged, err := ext.merge(ctx, path)
			if err != nil {
				return nil, err
			}
			final = append(final, merged)
			continue
		}

		resolved, err := deepResolve(arg, path)
		if err != nil {
			return nil, err
		}
		final = append(final, resolved)
	}

	return f.invoke(final)
}

// invoke calls the target function with args, converting them to
// reflect.Values with assignability checks and recovering target panics into
// a typed error.
func (f *Factory) invoke(args []any) (result any, err error) {
	numIn := f.targetType.NumIn()
	variadic := f.targetType.IsVariadic()

	if variadic {
		if len(args) < numIn-1 {
			return nil, TargetError{
				Target: f.targetName(),
				Cause:  ArgumentCountError{Target: f.targetName(), Want: numIn - 1, Got: len(args), Variadic: true},
			}
		}
	} else if len(args) != numIn {
		return nil, TargetError{
			Target: f.targetName(),
			Cause:  ArgumentCountError{Target: f.targetName(), Want: numIn, Got: len(args)},
		}
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := f.paramType(i, numIn, variadic)

		if arg == nil {
			if !isNilable(paramType.Kind()) {
				return nil, TargetError{
					Target: f.targetName(),
					Cause:  TypeMismatchError{Target: f.targetName(), Index: i, Expected: paramType},
				}
			}
			in[i] = reflect.Zero(paramType)
			continue
		}

		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(paramType) {
			return nil, TargetError{
				Target: f.targetName(),
				Cause:  TypeMismatchError{Target: f.targetName(), Index: i, Expected: paramType, Got: av.Type()},
			}
		}
		in[i] = av
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = TargetPanicError{Target: f.targetName(), Recovered: r}
		}
	}()

	out := f.target.Call(in)
	return splitResults(out)
}

// paramType returns the declared type of parameter i, unrolling the variadic
// tail.
func (f *Factory) paramType(i, numIn int, variadic bool) reflect.Type {
	if variadic && i >= numIn-1 {
		return f.targetType.In(numIn - 1).Elem()
	}
	return f.targetType.In(i)
}

// splitResults extracts the produced value and a trailing error, if the
// target declares one.
func splitResults(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}

	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
