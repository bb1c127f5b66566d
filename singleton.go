package provi

import "sync"

// Singleton is a Factory whose first resolution result is memoized per
// provider instance. Two containers holding two Singleton instances never
// share a cached value.
//
// An active override bypasses the cache entirely: while overridden, Resolve
// neither reads nor writes the memo slot, and resetting the override restores
// whatever was cached before.
type Singleton struct {
	Factory

	instMu   sync.Mutex
	instance any
	resolved bool
}

// NewSingleton creates a Singleton around target. See NewFactory for the
// target and injected-argument semantics.
func NewSingleton(target any, injected ...any) (*Singleton, error) {
	s := &Singleton{}
	if err := s.setTarget(target, injected); err != nil {
		return nil, err
	}

	s.init(s, "Singleton("+s.targetName()+")")
	return s, nil
}

// Resolve returns the memoized value, computing it on the first call.
// Call arguments only participate in that first computation.
func (s *Singleton) Resolve(args ...any) (any, error) {
	return s.resolveAlong(&resolutionPath{}, args)
}

func (s *Singleton) resolveAlong(path *resolutionPath, args []any) (any, error) {
	if ov, ok := s.activeOverride(); ok {
		return ov.resolveAlong(path, args)
	}

	// The cycle guard runs before the instance lock; a self-dependent chain
	// must fail with CircularResolutionError, not deadlock on instMu.
	if err := path.enter(s, s.desc); err != nil {
		return nil, err
	}
	defer path.leave()

	s.instMu.Lock()
	defer s.instMu.Unlock()

	if s.resolved {
		return s.instance, nil
	}

	value, err := s.construct(path, args)
	if err != nil {
		return nil, err
	}

	s.instance = value
	s.resolved = true
	return value, nil
}

// Reset clears the memoized value. The next un-overridden Resolve computes a
// fresh one.
func (s *Singleton) Reset() {
	s.instMu.Lock()
	defer s.instMu.Unlock()
	s.instance = nil
	s.resolved = false
}

// Resolved reports whether a memoized value is currently held.
func (s *Singleton) Resolved() bool {
	s.instMu.Lock()
	defer s.instMu.Unlock()
	return s.resolved
}
