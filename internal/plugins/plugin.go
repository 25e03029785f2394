package plugins

import (
	"fmt"
	"sort"
	"sync"
)

// Plugin is the single capability interface every plugin implements.
// Implementations are compiled in and inserted into a Registry; there is no
// dynamic code loading.
type Plugin interface {
	Name() string
	Description() string
	// Commands maps command names (lowercase, no slash) to descriptions.
	Commands() map[string]string
	// AllowedRoles is the plugin's permitted role set. It may contain the
	// wildcard "all"; an empty set denies everyone.
	AllowedRoles() []string
	// HandleCommand processes one invocation and returns the reply text.
	HandleCommand(command string, args []string, userID int64, role string) (string, error)
	Activate() error
	Deactivate()
	Active() bool
}

// Registry is the typed map of known plugin implementations.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

func (r *Registry) Add(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Name()] = p
}

func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Active returns all currently active plugins, ordered by name.
func (r *Registry) Active() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Plugin
	for _, p := range r.plugins {
		if p.Active() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (r *Registry) Activate(name string) error {
	p, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("plugin %q not found", name)
	}
	return p.Activate()
}

func (r *Registry) Deactivate(name string) error {
	p, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("plugin %q not found", name)
	}
	p.Deactivate()
	return nil
}
