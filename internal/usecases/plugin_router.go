package usecases

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"rolebot/internal/entities"
	"rolebot/internal/interfaces"
	"rolebot/internal/plugins"
)

// PluginRouter bridges the command registry (single role floor per entry)
// with plugins (live allowed-role sets). The floor stored at registration is
// an optimization for the registry's generic gate; the router re-checks the
// plugin's current set on every dispatch, so a set changed after registration
// is still enforced.
type PluginRouter struct {
	registry  *CommandRegistry
	pluginReg *plugins.Registry
	access    *AccessControl
	messenger interfaces.Messenger
	log       zerolog.Logger
}

func NewPluginRouter(
	registry *CommandRegistry,
	pluginReg *plugins.Registry,
	access *AccessControl,
	messenger interfaces.Messenger,
	log zerolog.Logger,
) *PluginRouter {
	return &PluginRouter{
		registry:  registry,
		pluginReg: pluginReg,
		access:    access,
		messenger: messenger,
		log:       log.With().Str("component", "plugin_router").Logger(),
	}
}

// RegisterAll registers the commands of every currently active plugin.
// Idempotent: re-registration overwrites entries with the same values.
func (p *PluginRouter) RegisterAll() {
	for _, plugin := range p.pluginReg.Active() {
		p.RegisterPlugin(plugin)
	}
}

// RegisterPlugin registers one plugin's commands, used after late activation.
func (p *PluginRouter) RegisterPlugin(plugin plugins.Plugin) {
	if !plugin.Active() {
		return
	}
	floor := MinimumRole(plugin.AllowedRoles())
	name := plugin.Name()
	for cmd := range plugin.Commands() {
		cmdName := strings.ToLower(strings.TrimPrefix(cmd, "/"))
		p.registry.Register(cmdName, p.commandHandler(name), floor)
	}
}

// commandHandler builds a registry handler that dispatches to one plugin.
func (p *PluginRouter) commandHandler(pluginName string) CommandHandler {
	return func(msg entities.Message) error {
		return p.dispatch(msg, pluginName)
	}
}

func (p *PluginRouter) dispatch(msg entities.Message, pluginName string) error {
	plugin, found := p.pluginReg.Get(pluginName)
	if !found || !plugin.Active() {
		// Never reveal plugin existence or activation state.
		p.log.Warn().Str("plugin", pluginName).Bool("found", found).Msg("plugin unavailable")
		return p.messenger.SendMessage(msg.ChatID, DeniedText)
	}

	role, err := p.access.Role(msg.UserID)
	if err != nil {
		return fmt.Errorf("role lookup: %w", err)
	}

	// Authoritative check against the live allowed-role set, not the floor
	// computed at registration time.
	if !RoleInAllowedSet(role, plugin.AllowedRoles()) {
		p.log.Warn().
			Str("plugin", pluginName).
			Int64("user", msg.UserID).
			Str("role", role).
			Msg("plugin access denied")
		return p.messenger.SendMessage(msg.ChatID, DeniedText)
	}

	parts := strings.Fields(msg.Text)
	command := commandToken(parts[0])
	args := parts[1:]

	reply, err := plugin.HandleCommand(command, args, msg.UserID, role)
	if err != nil {
		return fmt.Errorf("plugin %s: %w", pluginName, err)
	}
	if reply == "" {
		return nil
	}
	// The messenger retries unformatted if the markup is rejected.
	return p.messenger.SendMarkdown(msg.ChatID, reply)
}
