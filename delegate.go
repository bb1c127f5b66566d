package provi

// Delegate is a provider that resolves to another provider rather than to a
// value: Delegate(p).Resolve() returns p itself, whatever arguments are
// passed. It is the way to inject "a thing that can produce X" instead of X.
type Delegate struct {
	overridable

	wrapped Provider
}

// NewDelegate creates a Delegate around p.
func NewDelegate(p Provider) (*Delegate, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	return newDelegate(p), nil
}

// newDelegate skips the nil check for internal callers that already hold a
// valid provider (ProviderOfSelf).
func newDelegate(p Provider) *Delegate {
	d := &Delegate{wrapped: p}
	d.init(d, "Delegate")
	return d
}

// Resolve returns the wrapped provider itself, not its resolved value.
// An active override takes precedence, as with every variant.
func (d *Delegate) Resolve(args ...any) (any, error) {
	return d.resolveAlong(&resolutionPath{}, args)
}

func (d *Delegate) resolveAlong(path *resolutionPath, args []any) (any, error) {
	if ov, ok := d.activeOverride(); ok {
		return ov.resolveAlong(path, args)
	}
	return d.wrapped, nil
}

// Wrapped returns the provider this Delegate resolves to.
func (d *Delegate) Wrapped() Provider {
	return d.wrapped
}
