package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Command
	cmds   []Command // one entry per command, in registration order
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Command)}
}

// Register adds a command under its name and aliases. It fails without
// registering anything when one of those names is taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := append([]string{c.Name()}, c.Aliases()...)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if prev, exists := r.byName[name]; exists {
			return fmt.Errorf("command name %q already taken by %s", name, prev.Name())
		}
		if seen[name] {
			return fmt.Errorf("command name %q listed twice by %s", name, c.Name())
		}
		seen[name] = true
	}

	for _, name := range names {
		r.byName[name] = c
	}
	r.cmds = append(r.cmds, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	result := append([]Command(nil), r.cmds...)
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// Describe returns the usage block of one command: usage line, synopsis and
// aliases.
func (r *Registry) Describe(name string) (string, bool) {
	cmd, ok := r.Find(name)
	if !ok {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %s\n", strings.Join(aliases, ", "))
	}
	return b.String(), true
}

// DefaultRegistry holds the commands registered by this package's init funcs.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry. It panics on a name clash.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
