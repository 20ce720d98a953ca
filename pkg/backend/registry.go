package backend

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Key identifies a backend within a category.
type Key struct {
	Category Category
	Name     string
}

// IsZero reports whether the key is incomplete.
func (k Key) IsZero() bool { return k.Category == "" || k.Name == "" }

func (k Key) String() string { return string(k.Category) + "/" + k.Name }

func (k Key) normalize() Key {
	return Key{
		Category: Category(strings.ToLower(string(k.Category))),
		Name:     strings.ToLower(k.Name),
	}
}

// Registry maps (category, name) to a backend factory. It is append-only:
// entries are never replaced or removed, and Seal freezes it once startup
// registration is done. Lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[Key]Factory
	sealed    atomic.Bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Key]Factory)}
}

// Default is the process-wide registry used by the CLI.
var Default = NewRegistry()

// Register adds a factory under (category, name). Names are case-insensitive.
func (r *Registry) Register(category Category, name string, f Factory) error {
	k := Key{Category: category, Name: name}
	if k.IsZero() || f == nil {
		return fmt.Errorf("registering %s: invalid key or factory", k)
	}
	if r.sealed.Load() {
		return fmt.Errorf("registering %s: %w", k, ErrRegistrySealed)
	}
	k = k.normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[k]; exists {
		return fmt.Errorf("registering %s: %w", k, ErrDuplicateBackend)
	}
	r.factories[k] = f
	return nil
}

// MustRegister panics on registration error.
func (r *Registry) MustRegister(category Category, name string, f Factory) {
	if err := r.Register(category, name, f); err != nil {
		panic(err)
	}
}

// Seal prevents further registrations. It returns true if this call sealed
// the registry.
func (r *Registry) Seal() bool { return !r.sealed.Swap(true) }

// Sealed reports whether the registry is sealed.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

// New constructs a fresh backend for (category, name). A miss is always a
// configuration error matching ErrUnknownBackend.
func (r *Registry) New(category Category, name string) (Backend, error) {
	k := Key{Category: category, Name: name}.normalize()

	r.mu.RLock()
	f, ok := r.factories[k]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, Key{Category: category, Name: name})
	}
	return f(), nil
}

// Has reports whether (category, name) is registered.
func (r *Registry) Has(category Category, name string) bool {
	k := Key{Category: category, Name: name}.normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[k]
	return ok
}

// Keys returns all registered keys sorted by category, then name.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category == keys[j].Category {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Category < keys[j].Category
	})
	return keys
}

// Names returns the sorted names registered in category.
func (r *Registry) Names(category Category) []string {
	var names []string
	for _, k := range r.Keys() {
		if k.Category == category {
			names = append(names, k.Name)
		}
	}
	return names
}
