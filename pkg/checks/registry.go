package checks

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateCheck is returned when a name is registered twice.
var ErrDuplicateCheck = errors.New("custom check already registered")

// Func evaluates a single non-null cell value. It returns true when the
// value passes the check.
type Func func(value any) bool

// Check is a named custom check.
type Check struct {
	Name        string
	Description string
	Fn          Func
}

// Registry holds the custom checks a schema's custom_check field may name.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checks: make(map[string]Check)}
}

// Register adds a check under name.
func (r *Registry) Register(name, description string, fn Func) error {
	if name == "" {
		return errors.New("custom check name is empty")
	}
	if fn == nil {
		return fmt.Errorf("custom check %q has no function", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checks[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCheck, name)
	}
	r.checks[name] = Check{Name: name, Description: description, Fn: fn}
	return nil
}

// MustRegister is Register that panics on error. Intended for init-time
// registration of built-in checks.
func (r *Registry) MustRegister(name, description string, fn Func) {
	if err := r.Register(name, description, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the check registered under name.
func (r *Registry) Lookup(name string) (Check, bool) {
	if r == nil {
		return Check{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.checks[name]
	return c, ok
}

// Names returns the registered check names, sorted. A nil registry has
// none.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every registered check, sorted by name.
func (r *Registry) List() []Check {
	names := r.Names()
	if len(names) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Check, 0, len(names))
	for _, name := range names {
		out = append(out, r.checks[name])
	}
	return out
}
