package provi

// Extend marks a Factory or Singleton injected argument as a set of default
// values to be shallow-merged with a runtime-supplied context object, the
// context winning on key collision.
//
// Extend is not a provider. It is only meaningful inside a provider's
// injected argument list: when present, the first call argument of Resolve is
// taken as the context map and the target receives exactly the merged
// argument list.
//
// Default values may themselves be providers; a default is resolved only when
// its key is absent from the context, so a shadowed provider default is never
// invoked.
type Extend struct {
	defaults map[string]any
}

// NewExtend creates an Extend around a copy of defaults.
func NewExtend(defaults map[string]any) Extend {
	copied := make(map[string]any, len(defaults))
	for k, v := range defaults {
		copied[k] = v
	}
	return Extend{defaults: copied}
}

// Defaults returns a copy of the wrapped default values, unresolved.
func (e Extend) Defaults() map[string]any {
	copied := make(map[string]any, len(e.defaults))
	for k, v := range e.defaults {
		copied[k] = v
	}
	return copied
}

// merge computes the final object: resolved defaults for keys absent from
// ctx, then every ctx entry verbatim.
func (e Extend) merge(ctx map[string]any, path *resolutionPath) (map[string]any, error) {
	merged := make(map[string]any, len(e.defaults)+len(ctx))

	for k, v := range e.defaults {
		if _, shadowed := ctx[k]; shadowed {
			continue
		}

		resolved, err := deepResolve(v, path)
		if err != nil {
			return nil, err
		}
		merged[k] = resolved
	}

	for k, v := range ctx {
		merged[k] = v
	}

	return merged, nil
}
