package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe set of fetchers keyed by name. The first
// registered fetcher is the default until SetDefault says otherwise.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
	def      string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher)}
}

// Register adds a fetcher. Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(f Fetcher) error {
	name := f.Info().Name
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.fetchers[name] = f
	if r.def == "" {
		r.def = name
	}
	return nil
}

// Unregister removes a fetcher.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.fetchers, name)
	if r.def == name {
		r.def = ""
		if names := r.namesLocked(); len(names) > 0 {
			r.def = names[0]
		}
	}
}

// Get returns a fetcher by name. An empty name selects the default.
func (r *Registry) Get(name string) (Fetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.def
	}
	f, ok := r.fetchers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return f, nil
}

// SetDefault makes name the default fetcher.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.fetchers[name]; !ok {
		return &ErrProviderNotFound{Name: name}
	}
	r.def = name
	return nil
}

// Default returns the default fetcher name, or "" if the registry is empty.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// List returns info about all registered fetchers, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.fetchers))
	for _, name := range r.namesLocked() {
		infos = append(infos, r.fetchers[name].Info())
	}
	return infos
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.fetchers))
	for n := range r.fetchers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
