package usecases

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rolebot/internal/entities"
	"rolebot/internal/interfaces"
	"rolebot/internal/repository"
)

// AdminCommands implements broadcast, scheduling, poll and settings commands.
type AdminCommands struct {
	chats     *repository.ChatRepository
	schedules *repository.ScheduleRepository
	settings  *SettingsManager
	access    *AccessControl
	messenger interfaces.Messenger
	log       zerolog.Logger
}

func NewAdminCommands(
	chats *repository.ChatRepository,
	schedules *repository.ScheduleRepository,
	settings *SettingsManager,
	access *AccessControl,
	messenger interfaces.Messenger,
	log zerolog.Logger,
) *AdminCommands {
	return &AdminCommands{
		chats:     chats,
		schedules: schedules,
		settings:  settings,
		access:    access,
		messenger: messenger,
		log:       log.With().Str("component", "admin_commands").Logger(),
	}
}

func (c *AdminCommands) RegisterAll(registry *CommandRegistry) {
	registry.Register("broadcast", c.Broadcast, RoleAdmin)
	registry.Register("schedule_message", c.ScheduleMessage, RoleAdmin)
	registry.Register("list_scheduled", c.ListScheduled, RoleAdmin)
	registry.Register("cancel_scheduled", c.CancelScheduled, RoleAdmin)
	registry.Register("create_poll", c.CreatePoll, RoleAdmin)
	registry.Register("settings", c.ShowSettings, RoleAdmin)
	registry.Register("set", c.SetSetting, RoleAdmin)
}

// Broadcast sends text to every known chat immediately. Per-recipient
// failures are logged and counted, never aborting the batch.
func (c *AdminCommands) Broadcast(msg entities.Message) error {
	parts := strings.SplitN(strings.TrimSpace(msg.Text), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /broadcast <message>")
	}
	text := parts[1]

	chats, err := c.chats.AllChats()
	if err != nil {
		return err
	}

	sent, failed := 0, 0
	for _, chat := range chats {
		if err := c.messenger.SendMessage(chat.ChatID, "📢 Broadcast:\n"+text); err != nil {
			failed++
			c.log.Error().Err(err).Int64("chat", chat.ChatID).Msg("broadcast delivery failed")
			continue
		}
		sent++
	}
	return c.messenger.SendMessage(msg.ChatID,
		fmt.Sprintf("Broadcast complete. Sent: %d. Failed: %d.", sent, failed))
}

const scheduleUsage = "Usage: /schedule_message <target> <YYYY-MM-DD> <HH:MM> <message>\nTargets: individuals | groups | all"

func (c *AdminCommands) ScheduleMessage(msg entities.Message) error {
	parts := strings.SplitN(strings.TrimSpace(msg.Text), " ", 5)
	if len(parts) < 5 {
		return c.messenger.SendMessage(msg.ChatID, scheduleUsage)
	}
	target, dateStr, timeStr, text := parts[1], parts[2], parts[3], parts[4]

	switch target {
	case entities.TargetIndividuals, entities.TargetGroups, entities.TargetAll:
	default:
		return c.messenger.SendMessage(msg.ChatID, "Invalid target. Must be one of: individuals, groups, all.")
	}

	loc, err := time.LoadLocation(c.settings.Get("timezone"))
	if err != nil {
		loc = time.UTC
	}
	sendTime, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
	if err != nil {
		return c.messenger.SendMessage(msg.ChatID, "Invalid date/time format. Use: YYYY-MM-DD HH:MM (24h).")
	}
	if !sendTime.After(time.Now().In(loc)) {
		return c.messenger.SendMessage(msg.ChatID, "Send time must be in the future.")
	}

	if _, err := c.schedules.Add(target, text, sendTime); err != nil {
		return err
	}
	return c.messenger.SendMarkdown(msg.ChatID, fmt.Sprintf(
		"✅ Message scheduled for *%s* at %s.\nMessage: %s",
		target, sendTime.Format("2006-01-02 15:04"), text))
}

func (c *AdminCommands) ListScheduled(msg entities.Message) error {
	pending, err := c.schedules.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return c.messenger.SendMessage(msg.ChatID, "No scheduled messages.")
	}

	loc, err := time.LoadLocation(c.settings.Get("timezone"))
	if err != nil {
		loc = time.UTC
	}
	var lines []string
	for i, b := range pending {
		text := b.Text
		if runes := []rune(text); len(runes) > 60 {
			text = string(runes[:60])
		}
		lines = append(lines, fmt.Sprintf("%d. Target: %s at %s — %s",
			i+1, b.Target, b.SendTime.In(loc).Format("2006-01-02 15:04"), text))
	}
	return c.messenger.SendMessage(msg.ChatID, strings.Join(lines, "\n"))
}

// CancelScheduled deletes one pending broadcast by its /list_scheduled index,
// or all pending ones. Already-sent rows are outside the deletion scope.
func (c *AdminCommands) CancelScheduled(msg entities.Message) error {
	parts := strings.SplitN(strings.TrimSpace(msg.Text), " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /cancel_scheduled <index|all>")
	}
	arg := strings.TrimSpace(parts[1])

	if strings.EqualFold(arg, "all") {
		if err := c.schedules.DeleteAllPending(); err != nil {
			return err
		}
		return c.messenger.SendMessage(msg.ChatID, "All scheduled messages cancelled.")
	}

	idx, err := strconv.Atoi(arg)
	if err != nil {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /cancel_scheduled <index|all>")
	}
	pending, err := c.schedules.Pending()
	if err != nil {
		return err
	}
	if idx < 1 || idx > len(pending) {
		return c.messenger.SendMessage(msg.ChatID, "Index out of range.")
	}
	broadcast := pending[idx-1]
	if err := c.schedules.Delete(broadcast.ID); err != nil {
		return err
	}
	return c.messenger.SendMessage(msg.ChatID, "Cancelled scheduled: "+broadcast.Text)
}

const pollUsage = "Usage: /create_poll [group1,group2,...|all] <question> | <option1> | <option2> ..."

// CreatePoll sends an anonymous poll to the named groups (or all groups) and
// confirms to every superadmin. Only usable from a private chat.
func (c *AdminCommands) CreatePoll(msg entities.Message) error {
	if msg.ChatType != "private" {
		return c.messenger.SendMessage(msg.ChatID, "Polls can only be created from private chat.")
	}
	parts := strings.SplitN(strings.TrimSpace(msg.Text), " ", 3)
	if len(parts) < 3 || !strings.Contains(parts[2], "|") {
		return c.messenger.SendMessage(msg.ChatID, pollUsage)
	}
	targetsRaw := strings.TrimSpace(parts[1])

	pollParts := strings.Split(parts[2], "|")
	question := strings.TrimSpace(pollParts[0])
	var options []string
	for _, opt := range pollParts[1:] {
		if o := strings.TrimSpace(opt); o != "" {
			options = append(options, o)
		}
	}
	if len(options) < 2 {
		return c.messenger.SendMessage(msg.ChatID, "A poll must have at least two options.")
	}

	chats, err := c.chats.AllChats()
	if err != nil {
		return err
	}
	groupsByName := make(map[string]int64)
	var allGroupIDs []int64
	var allGroupNames []string
	for _, chat := range chats {
		if chat.ChatType != "group" && chat.ChatType != "supergroup" {
			continue
		}
		name := chat.Username
		if name == "" {
			name = strconv.FormatInt(chat.ChatID, 10)
		}
		groupsByName[name] = chat.ChatID
		allGroupIDs = append(allGroupIDs, chat.ChatID)
		allGroupNames = append(allGroupNames, name)
	}

	var targetIDs []int64
	var targetNames []string
	if strings.EqualFold(targetsRaw, "all") {
		targetIDs = allGroupIDs
		targetNames = allGroupNames
	} else {
		for _, name := range strings.Split(targetsRaw, ",") {
			name = strings.TrimSpace(name)
			if id, ok := groupsByName[name]; ok {
				targetIDs = append(targetIDs, id)
				targetNames = append(targetNames, name)
			}
		}
	}
	if len(targetIDs) == 0 {
		return c.messenger.SendMessage(msg.ChatID, "No valid target groups found.")
	}

	sent := 0
	for _, gid := range targetIDs {
		if err := c.messenger.SendPoll(gid, question, options); err != nil {
			c.log.Error().Err(err).Int64("group", gid).Msg("failed to send poll")
			continue
		}
		sent++
	}

	c.notifySuperadmins(msg, question, targetNames)
	return c.messenger.SendMessage(msg.ChatID, fmt.Sprintf("Poll sent to %d group(s).", sent))
}

func (c *AdminCommands) notifySuperadmins(msg entities.Message, question string, targetNames []string) {
	loc, err := time.LoadLocation(c.settings.Get("timezone"))
	if err != nil {
		loc = time.UTC
	}
	adminName := msg.Username
	if adminName == "" {
		adminName = strconv.FormatInt(msg.UserID, 10)
	}
	confirm := fmt.Sprintf("✅ Poll created by admin @%s at %s\nQuestion: %s\nSent to groups: %s",
		adminName, time.Now().In(loc).Format("2006-01-02 15:04 MST"), question, strings.Join(targetNames, ", "))

	superadmins, err := c.access.UsersWithRole(RoleSuperadmin)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to list superadmins")
		return
	}
	for _, id := range superadmins {
		if err := c.messenger.SendMessage(id, confirm); err != nil {
			c.log.Error().Err(err).Int64("superadmin", id).Msg("failed to notify superadmin")
		}
	}
}

func (c *AdminCommands) ShowSettings(msg entities.Message) error {
	all, err := c.settings.All()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, all[k]))
	}
	return c.messenger.SendMessage(msg.ChatID, "Admin settings:\n"+strings.Join(lines, "\n"))
}

func (c *AdminCommands) SetSetting(msg entities.Message) error {
	parts := strings.SplitN(strings.TrimSpace(msg.Text), " ", 3)
	if len(parts) < 3 {
		return c.messenger.SendMessage(msg.ChatID, "Usage: /set <key> <value>")
	}
	key, value := parts[1], parts[2]

	if key == "timezone" {
		if _, err := time.LoadLocation(value); err != nil {
			return c.messenger.SendMessage(msg.ChatID, "Invalid timezone: "+value)
		}
	}

	ok, err := c.settings.Set(key, value)
	if err != nil {
		return err
	}
	if !ok {
		return c.messenger.SendMessage(msg.ChatID, "Unknown setting: "+key)
	}
	return c.messenger.SendMessage(msg.ChatID, fmt.Sprintf("Updated %s -> %s", key, value))
}
