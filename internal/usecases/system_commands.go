package usecases

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"rolebot/internal/entities"
	"rolebot/internal/interfaces"
	"rolebot/internal/plugins"
	"rolebot/internal/repository"
)

// SystemCommands implements the built-in user-facing and superadmin commands.
type SystemCommands struct {
	access    *AccessControl
	chats     *repository.ChatRepository
	settings  *SettingsManager
	pluginReg *plugins.Registry
	messenger interfaces.Messenger
	botName   string
	log       zerolog.Logger
}

func NewSystemCommands(
	access *AccessControl,
	chats *repository.ChatRepository,
	settings *SettingsManager,
	pluginReg *plugins.Registry,
	messenger interfaces.Messenger,
	botName string,
	log zerolog.Logger,
) *SystemCommands {
	return &SystemCommands{
		access:    access,
		chats:     chats,
		settings:  settings,
		pluginReg: pluginReg,
		messenger: messenger,
		botName:   botName,
		log:       log.With().Str("component", "system_commands").Logger(),
	}
}

func (c *SystemCommands) RegisterAll(registry *CommandRegistry) {
	registry.Register("start", c.Start, RoleUser)
	registry.Register("help", c.Help, RoleUnrestricted)
	registry.Register("info", c.Info, RoleUser)
	registry.Register("stop", c.StopReplies, RoleUser)
	registry.Register("promote_user", c.PromoteUser, RoleSuperadmin)
	registry.Register("demote_user", c.DemoteUser, RoleSuperadmin)
}

func (c *SystemCommands) Start(msg entities.Message) error {
	// /start also clears a self-imposed block from /stop.
	if err := c.chats.SetBlocked(msg.UserID, false); err != nil {
		return err
	}
	welcome := "👋 Welcome! Use /help to see available commands."
	if msg.Username != "" {
		welcome = fmt.Sprintf("👋 Welcome %s! Use /help to see available commands.", msg.Username)
	}
	return c.messenger.SendMessage(msg.ChatID, welcome)
}

func (c *SystemCommands) StopReplies(msg entities.Message) error {
	if err := c.chats.SetBlocked(msg.UserID, true); err != nil {
		return err
	}
	return c.messenger.SendMessage(msg.ChatID, "🔕 You won't receive replies anymore. Send /start to resume.")
}

var commandDescriptions = map[string]string{
	"start":            "/start - Start interaction",
	"help":             "/help - Show this help message",
	"info":             "/info - Bot info",
	"stop":             "/stop - Stop the bot from replying",
	"broadcast":        "/broadcast - Send a message to all users",
	"schedule_message": "/schedule_message - Schedule a message",
	"list_scheduled":   "/list_scheduled - View pending scheduled messages",
	"cancel_scheduled": "/cancel_scheduled - Cancel scheduled messages",
	"create_poll":      "/create_poll - Send a poll to group chats",
	"settings":         "/settings - View current bot settings",
	"set":              "/set - Change bot settings",
	"promote_user":     "/promote_user <user_id> <role> - Promote user to role (superadmin only)",
	"demote_user":      "/demote_user <user_id> - Demote user one level (superadmin only)",
}

// Help lists the commands the caller's rank can see, plus active plugin
// commands. Privileged users asking in a group get the list privately.
func (c *SystemCommands) Help(msg entities.Message) error {
	role, err := c.access.Role(msg.UserID)
	if err != nil {
		return err
	}
	level := Rank(role)
	if level < 0 {
		level = 0
	}

	lines := []string{"Bot Help", "", "User Commands:"}
	for _, cmd := range []string{"start", "help", "info", "stop"} {
		lines = append(lines, "  "+commandDescriptions[cmd])
	}
	if level >= Rank(RoleAdmin) {
		lines = append(lines, "", "Admin Commands:")
		for _, cmd := range []string{"broadcast", "schedule_message", "list_scheduled", "cancel_scheduled", "create_poll", "settings", "set"} {
			lines = append(lines, "  "+commandDescriptions[cmd])
		}
	}
	if level >= Rank(RoleSuperadmin) {
		lines = append(lines, "", "Superadmin Commands:")
		for _, cmd := range []string{"promote_user", "demote_user"} {
			lines = append(lines, "  "+commandDescriptions[cmd])
		}
	}

	for _, plugin := range c.pluginReg.Active() {
		// A plugin the caller cannot invoke is not listed; its commands
		// would only be denied, which reveals they exist.
		if !RoleInAllowedSet(role, plugin.AllowedRoles()) {
			continue
		}
		cmds := plugin.Commands()
		if len(cmds) == 0 {
			continue
		}
		lines = append(lines, "", fmt.Sprintf("%s Plugin Commands:", capitalize(plugin.Name())))
		for cmd, desc := range cmds {
			lines = append(lines, fmt.Sprintf("  /%s - %s", cmd, desc))
		}
	}

	helpText := strings.Join(lines, "\n")

	inGroup := msg.ChatType == "group" || msg.ChatType == "supergroup"
	if inGroup && level >= Rank(RoleAdmin) {
		if err := c.messenger.SendMessage(msg.UserID, helpText); err != nil {
			c.log.Error().Err(err).Int64("user", msg.UserID).Msg("failed to DM help")
			return c.messenger.SendMessage(msg.ChatID, "Could not send help privately.")
		}
		return c.messenger.SendMessage(msg.ChatID, "Sent your role commands privately.")
	}
	return c.messenger.SendMessage(msg.ChatID, helpText)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c *SystemCommands) Info(msg entities.Message) error {
	admins, err := c.access.UsersWithRole(RoleAdmin)
	if err != nil {
		return err
	}
	superadmins, err := c.access.UsersWithRole(RoleSuperadmin)
	if err != nil {
		return err
	}
	info := fmt.Sprintf(
		"🤖 Bot: @%s\n🌍 Timezone: %s\n🌐 Language: %s\n👮 Admins: %d",
		c.botName,
		c.settings.Get("timezone"),
		c.settings.Get("language"),
		len(admins)+len(superadmins),
	)
	return c.messenger.SendMessage(msg.ChatID, info)
}

func (c *SystemCommands) PromoteUser(msg entities.Message) error {
	parts := strings.Fields(msg.Text)
	if len(parts) < 3 {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /promote_user <user_id> <role>")
	}
	targetID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /promote_user <user_id> <role>")
	}
	newRole := strings.ToLower(parts[2])

	ok, err := c.access.Promote(targetID, newRole, msg.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return c.messenger.SendMessage(msg.ChatID, fmt.Sprintf("Failed to promote user %d to %s.", targetID, newRole))
	}

	if newRole == RoleAdmin {
		if err := c.messenger.SendMessage(targetID, "You have been promoted to admin! Try /help to see your commands."); err != nil {
			c.log.Error().Err(err).Int64("target", targetID).Msg("failed to notify promoted admin")
		}
	}
	return c.messenger.SendMessage(msg.ChatID, fmt.Sprintf("✅ Promoted user %d to %s.", targetID, newRole))
}

func (c *SystemCommands) DemoteUser(msg entities.Message) error {
	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /demote_user <user_id>")
	}
	targetID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /demote_user <user_id>")
	}

	ok, err := c.access.Demote(targetID, msg.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return c.messenger.SendMessage(msg.ChatID, fmt.Sprintf("Failed to demote user %d.", targetID))
	}
	return c.messenger.SendMessage(msg.ChatID, fmt.Sprintf("✅ Demoted user %d.", targetID))
}
