package usecases

import (
	"sync"

	"github.com/rs/zerolog"

	"rolebot/internal/entities"
)

// CommandHandler processes one authorized command invocation. Handlers send
// their own replies (including usage text for malformed arguments) and return
// an error only for unexpected failures.
type CommandHandler func(msg entities.Message) error

// CommandEntry pairs a handler with its minimum role. MinRole may be
// RoleUnrestricted.
type CommandEntry struct {
	Handler CommandHandler
	MinRole string
}

// CommandRegistry maps lowercase command names to entries. Registration is
// open for the whole process lifetime so late plugin activation can add
// commands. Re-registering a name overwrites silently: last write wins.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandEntry
	log      zerolog.Logger
}

func NewCommandRegistry(log zerolog.Logger) *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandEntry),
		log:      log.With().Str("component", "registry").Logger(),
	}
}

// Register stores or overwrites an entry. Callers must pass the name already
// lowercased; the registry stores whatever key it is given.
func (r *CommandRegistry) Register(name string, handler CommandHandler, minRole string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		r.log.Debug().Str("command", name).Msg("overwriting existing command registration")
	}
	r.commands[name] = CommandEntry{Handler: handler, MinRole: minRole}
	r.log.Debug().Str("command", name).Str("min_role", minRole).Msg("registered command")
}

func (r *CommandRegistry) Lookup(name string) (CommandEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.commands[name]
	return entry, ok
}

func (r *CommandRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}
