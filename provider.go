package provi

import (
	"sync"
)

// Provider is the capability contract shared by all provider variants:
// produce a value on demand, and carry an override stack that can replace
// that behavior for testing.
//
// The interface is sealed. Only the variants defined by this package
// (Factory, Singleton, Delegate) implement it; an arbitrary type that merely
// has a Resolve method is never treated as a provider. This is what lets the
// value resolver walk untrusted data without ever invoking a third-party
// object's coincidentally-named method.
type Provider interface {
	// Resolve produces the provider's value. Factory builds a fresh value per
	// call, Singleton memoizes the first result, Delegate returns the wrapped
	// provider itself.
	Resolve(args ...any) (any, error)

	// Override pushes p onto the override stack. While the stack is
	// non-empty, Resolve delegates entirely to the most recently pushed
	// override.
	Override(p Provider) error

	// ResetLastOverriding pops and returns the most recently pushed override.
	// It fails with ErrNoActiveOverrides when the stack is empty.
	ResetLastOverriding() (Provider, error)

	// ResetOverride removes every override and returns them in push order.
	// An empty stack is not an error.
	ResetOverride() []Provider

	// IsOverridden reports whether the override stack is non-empty.
	IsOverridden() bool

	// Overrides returns a snapshot of the override stack in push order.
	Overrides() []Provider

	// ProviderOfSelf wraps the provider in a fresh Delegate. Each call
	// returns a distinct Delegate instance.
	ProviderOfSelf() *Delegate

	// resolveAlong is the internal resolution entry carrying the active
	// resolution path for cycle detection. It also seals the interface.
	resolveAlong(path *resolutionPath, args []any) (any, error)
}

// overridable is the single implementation of the override stack, embedded by
// every provider variant.
type overridable struct {
	mu        sync.Mutex
	overrides []Provider

	// self is the embedding provider, set once at construction. It backs
	// ProviderOfSelf and the cycle guard.
	self Provider
	desc string
}

func (o *overridable) init(self Provider, desc string) {
	o.self = self
	o.desc = desc
}

func (o *overridable) Override(p Provider) error {
	if p == nil {
		return OverrideError{Provider: o.desc, Cause: ErrNilOverride}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.overrides = append(o.overrides, p)
	return nil
}

func (o *overridable) ResetLastOverriding() (Provider, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.overrides) == 0 {
		return nil, OverrideError{Provider: o.desc, Cause: ErrNoActiveOverrides}
	}

	last := o.overrides[len(o.overrides)-1]
	o.overrides = o.overrides[:len(o.overrides)-1]
	return last, nil
}

func (o *overridable) ResetOverride() []Provider {
	o.mu.Lock()
	defer o.mu.Unlock()

	removed := o.overrides
	o.overrides = nil
	return removed
}

func (o *overridable) IsOverridden() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.overrides) > 0
}

func (o *overridable) Overrides() []Provider {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := make([]Provider, len(o.overrides))
	copy(snapshot, o.overrides)
	return snapshot
}

func (o *overridable) ProviderOfSelf() *Delegate {
	return newDelegate(o.self)
}

// activeOverride returns the top of the override stack, if any.
func (o *overridable) activeOverride() (Provider, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.overrides) == 0 {
		return nil, false
	}
	return o.overrides[len(o.overrides)-1], true
}

// resolutionPath tracks the chain of providers on the current resolution
// stack. A provider appearing twice means its dependency chain loops back to
// itself, which would otherwise recurse until the call stack is exhausted.
// Every public Resolve starts a fresh path, so concurrent resolutions of the
// same provider never interfere.
type resolutionPath struct {
	chain []Provider
	descs []string
}

func (p *resolutionPath) enter(pr Provider, desc string) error {
	for _, seen := range p.chain {
		if seen == pr {
			chain := make([]string, 0, len(p.descs)+1)
			chain = append(chain, p.descs...)
			chain = append(chain, desc)
			return CircularResolutionError{Chain: chain}
		}
	}

	p.chain = append(p.chain, pr)
	p.descs = append(p.descs, desc)
	return nil
}

func (p *resolutionPath) leave() {
	p.chain = p.chain[:len(p.chain)-1]
	p.descs = p.descs[:len(p.descs)-1]
}
