package usecases

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"rolebot/internal/entities"
	"rolebot/internal/interfaces"
	"rolebot/internal/repository"
)

// DeniedText is the single outward reply for both "no such command" and
// "insufficient role". The two causes must never be distinguishable to the
// caller; they differ only in log fields.
const DeniedText = "⚠️ This command either doesn't exist or you don't have permission to use it."

// ErrorText is the generic reply for handler failures. Underlying detail
// stays in the logs.
const ErrorText = "⚠️ Sorry, something went wrong processing that request."

var commandPattern = regexp.MustCompile(`^/[a-zA-Z0-9_]+`)

// Fallback is the optional conversational collaborator for free-text events.
type Fallback interface {
	Active() bool
	RespondToMessage(userID int64, text string) (string, error)
}

// MessageRouter is the top-level entry point for inbound events: it records
// the sender, classifies command vs. free text, authorizes and dispatches.
type MessageRouter struct {
	registry  *CommandRegistry
	access    *AccessControl
	chats     *repository.ChatRepository
	messenger interfaces.Messenger
	fallback  Fallback // may be nil
	log       zerolog.Logger
}

func NewMessageRouter(
	registry *CommandRegistry,
	access *AccessControl,
	chats *repository.ChatRepository,
	messenger interfaces.Messenger,
	fallback Fallback,
	log zerolog.Logger,
) *MessageRouter {
	return &MessageRouter{
		registry:  registry,
		access:    access,
		chats:     chats,
		messenger: messenger,
		fallback:  fallback,
		log:       log.With().Str("component", "router").Logger(),
	}
}

// HandleMessage routes one inbound event. It never propagates an error to the
// transport layer; every failure path ends in a logged generic reply or a
// silent drop.
func (r *MessageRouter) HandleMessage(msg entities.Message) {
	// Presence is observed unconditionally, before any access check.
	if err := r.chats.RecordSeen(msg.ChatID, msg.Username, msg.ChatType); err != nil {
		r.log.Error().Err(err).Int64("chat", msg.ChatID).Msg("failed to record chat")
	}

	text := strings.TrimSpace(msg.Text)
	isCommand := commandPattern.MatchString(text)

	// A user who sent /stop is dropped silently. /start is exempt so the
	// block is reversible without operator involvement.
	if blocked, err := r.chats.IsBlocked(msg.UserID); err != nil {
		r.log.Error().Err(err).Int64("user", msg.UserID).Msg("blocked lookup failed")
		return
	} else if blocked && !(isCommand && commandToken(text) == "start") {
		return
	}

	if isCommand {
		r.handleCommand(msg, text)
		return
	}

	if r.fallback == nil || !r.fallback.Active() {
		return // free text with no active fallback is silently dropped
	}
	reply, err := r.fallback.RespondToMessage(msg.UserID, text)
	if err != nil {
		r.log.Error().Err(err).Int64("user", msg.UserID).Msg("fallback failed")
		r.reply(msg.ChatID, ErrorText)
		return
	}
	if reply != "" {
		r.reply(msg.ChatID, reply)
	}
}

func (r *MessageRouter) handleCommand(msg entities.Message, text string) {
	command := commandToken(text)

	entry, found := r.registry.Lookup(command)
	if !found {
		// Anti-enumeration: identical outward text as the role denial below.
		r.log.Warn().Str("command", command).Int64("user", msg.UserID).Msg("unknown command")
		r.reply(msg.ChatID, DeniedText)
		return
	}

	role, err := r.access.Role(msg.UserID)
	if err != nil {
		r.log.Error().Err(err).Int64("user", msg.UserID).Msg("role lookup failed")
		r.reply(msg.ChatID, ErrorText)
		return
	}
	if !IsAuthorized(role, entry.MinRole) {
		r.log.Warn().
			Str("command", command).
			Int64("user", msg.UserID).
			Str("role", role).
			Str("required", entry.MinRole).
			Msg("access denied")
		r.reply(msg.ChatID, DeniedText)
		return
	}

	r.invoke(msg, command, entry.Handler)
}

// invoke runs a handler, containing both returned errors and panics at the
// router boundary.
func (r *MessageRouter) invoke(msg entities.Message, command string, handler CommandHandler) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().
				Str("command", command).
				Int64("user", msg.UserID).
				Interface("panic", rec).
				Msg("handler panicked")
			r.reply(msg.ChatID, ErrorText)
		}
	}()

	if err := handler(msg); err != nil {
		r.log.Error().Err(err).Str("command", command).Int64("user", msg.UserID).Msg("handler failed")
		r.reply(msg.ChatID, ErrorText)
	}
}

func (r *MessageRouter) reply(chatID int64, text string) {
	if err := r.messenger.SendMessage(chatID, text); err != nil {
		r.log.Error().Err(err).Int64("chat", chatID).Msg("reply failed")
	}
}

// commandToken extracts the lowercase command name from text already known to
// start with a command: strip the slash, cut at whitespace, and drop a
// "@botname" suffix.
func commandToken(text string) string {
	token := strings.Fields(text)[0][1:]
	if at := strings.Index(token, "@"); at >= 0 {
		token = token[:at]
	}
	return strings.ToLower(token)
}
