package provi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors that are wrapped in typed errors when returned.
// Match them with errors.Is.

var (
	// Provider construction errors.
	ErrNilTarget     = errors.New("target cannot be nil")
	ErrTargetNotFunc = errors.New("target must be a function")
	ErrNilProvider   = errors.New("provider cannot be nil")

	// Override stack errors.
	ErrNilOverride       = errors.New("override must be a provider")
	ErrNoActiveOverrides = errors.New("provider has no active overrides")

	// Extend errors.
	ErrExtendContext = errors.New("extend context must be a map[string]any")

	// Container errors.
	ErrNotStruct        = errors.New("container type must be a struct")
	ErrNoProviderFields = errors.New("container type has no provider fields")
	ErrUnknownField     = errors.New("no provider field with that name")
	ErrWrongContainer   = errors.New("container is not an instance of the injector's container type")
	ErrNilContainer     = errors.New("container cannot be nil")

	// Wrapping errors.
	ErrNilFunc         = errors.New("function cannot be nil")
	ErrNotFunc         = errors.New("wrap target must be a function")
	ErrNilMarker       = errors.New("binding marker cannot be nil")
	ErrForeignMarker   = errors.New("marker belongs to a different container type")
	ErrIndexOutOfRange = errors.New("binding index is out of range for the function")
	ErrDuplicateIndex  = errors.New("binding index is already bound")
	ErrVariadicIndex   = errors.New("the variadic parameter cannot be bound")
)

var (
	_ error = OverrideError{}
	_ error = TargetError{}
	_ error = ArgumentCountError{}
	_ error = TypeMismatchError{}
	_ error = TargetPanicError{}
	_ error = CircularResolutionError{}
	_ error = ContainerError{}
	_ error = TokenError{}
	_ error = BindingError{}
	_ error = AlreadyRegisteredError{}
	_ error = InjectionError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// OverrideError indicates an invalid operation on a provider's override stack.
type OverrideError struct {
	Provider string
	Cause    error
}

func (e OverrideError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("override %s: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("override: %v", e.Cause)
}

func (e OverrideError) Unwrap() error {
	return e.Cause
}

// TargetError indicates a problem with a provider's target function,
// either at construction or at invocation time.
type TargetError struct {
	Target string
	Cause  error
}

func (e TargetError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("target %s: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("target: %v", e.Cause)
}

func (e TargetError) Unwrap() error {
	return e.Cause
}

// ArgumentCountError indicates a resolved argument list whose length does not
// match the target function's parameter count.
type ArgumentCountError struct {
	Target   string
	Want     int
	Got      int
	Variadic bool
}

func (e ArgumentCountError) Error() string {
	if e.Variadic {
		return fmt.Sprintf("target %s: expected at least %d arguments, got %d", e.Target, e.Want, e.Got)
	}
	return fmt.Sprintf("target %s: expected %d arguments, got %d", e.Target, e.Want, e.Got)
}

// TypeMismatchError indicates a resolved argument that is not assignable to
// the parameter it is destined for.
type TypeMismatchError struct {
	Target   string
	Index    int
	Expected reflect.Type
	Got      reflect.Type
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("target %s: argument %d must be %s, got %s",
		e.Target, e.Index, formatType(e.Expected), formatType(e.Got))
}

// TargetPanicError wraps a panic raised by a target function during resolution.
type TargetPanicError struct {
	Target    string
	Recovered any
}

func (e TargetPanicError) Error() string {
	return fmt.Sprintf("target %s panicked: %v", e.Target, e.Recovered)
}

// CircularResolutionError indicates a provider that re-entered its own
// resolution chain, for example a Factory whose injected arguments depend,
// possibly indirectly, on the Factory itself.
type CircularResolutionError struct {
	Chain []string
}

func (e CircularResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("circular provider resolution detected")
	if len(e.Chain) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Chain, " -> "))
	}
	return b.String()
}

// ContainerError indicates an invalid container value or container type.
type ContainerError struct {
	Type  reflect.Type
	Cause error
}

func (e ContainerError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("container %s: %v", formatType(e.Type), e.Cause)
	}
	return fmt.Sprintf("container: %v", e.Cause)
}

func (e ContainerError) Unwrap() error {
	return e.Cause
}

// TokenError indicates a token request for a field that is not a provider
// field of the container type.
type TokenError struct {
	Type  reflect.Type
	Field string
	Cause error
}

func (e TokenError) Error() string {
	return fmt.Sprintf("token for %s.%s: %v", formatType(e.Type), e.Field, e.Cause)
}

func (e TokenError) Unwrap() error {
	return e.Cause
}

// BindingError indicates an invalid parameter binding passed to Wrap.
type BindingError struct {
	Site  string
	Index int
	Cause error
}

func (e BindingError) Error() string {
	return fmt.Sprintf("site %q, parameter %d: %v", e.Site, e.Index, e.Cause)
}

func (e BindingError) Unwrap() error {
	return e.Cause
}

// AlreadyRegisteredError indicates that a site name was wrapped twice on the
// same injector.
type AlreadyRegisteredError struct {
	Site string
}

func (e AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("site %q is already registered on this injector", e.Site)
}

// InjectionError wraps a failure that occurred while substituting an injected
// argument at an intercepted call site.
type InjectionError struct {
	Site  string
	Index int
	Token Token
	Cause error
}

func (e InjectionError) Error() string {
	return fmt.Sprintf("site %q, parameter %d (%s): %v", e.Site, e.Index, e.Token, e.Cause)
}

func (e InjectionError) Unwrap() error {
	return e.Cause
}

// IsCircular reports whether err is, or wraps, a CircularResolutionError.
func IsCircular(err error) bool {
	var c CircularResolutionError
	return errors.As(err, &c)
}

// IsOverrideUnderflow reports whether err comes from a ResetLastOverriding
// call on an empty override stack.
func IsOverrideUnderflow(err error) bool {
	return errors.Is(err, ErrNoActiveOverrides)
}

// formatType returns a readable representation of a reflect.Type.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
