package usecases

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolebot/internal/entities"
	"rolebot/internal/repository"
)

type routerFixture struct {
	router    *MessageRouter
	registry  *CommandRegistry
	access    *AccessControl
	chats     *repository.ChatRepository
	messenger *fakeMessenger
}

type fakeFallback struct {
	active bool
	reply  string
	err    error
	calls  int
}

func (f *fakeFallback) Active() bool { return f.active }

func (f *fakeFallback) RespondToMessage(userID int64, text string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newRouterFixture(t *testing.T, fallback Fallback) *routerFixture {
	t.Helper()
	db := newTestDB(t)
	registry := NewCommandRegistry(zerolog.Nop())
	access := NewAccessControl(repository.NewRoleRepository(db), zerolog.Nop())
	chats := repository.NewChatRepository(db)
	messenger := &fakeMessenger{}
	return &routerFixture{
		router:    NewMessageRouter(registry, access, chats, messenger, fallback, zerolog.Nop()),
		registry:  registry,
		access:    access,
		chats:     chats,
		messenger: messenger,
	}
}

func msg(text string) entities.Message {
	return entities.Message{ChatID: 100, UserID: 100, Username: "alice", ChatType: "private", Text: text}
}

func TestCommandToken(t *testing.T) {
	assert.Equal(t, "help", commandToken("/help"))
	assert.Equal(t, "help", commandToken("/HELP extra args"))
	assert.Equal(t, "broadcast", commandToken("/broadcast@rolebot hello"))
}

func TestUnknownAndUnauthorizedRepliesAreIdentical(t *testing.T) {
	fx := newRouterFixture(t, nil)
	fx.registry.Register("broadcast", func(entities.Message) error { return nil }, RoleAdmin)

	fx.router.HandleMessage(msg("/definitely_not_a_command"))
	fx.router.HandleMessage(msg("/broadcast hello"))

	require.Len(t, fx.messenger.sent, 2)
	assert.Equal(t, DeniedText, fx.messenger.sent[0].text)
	assert.Equal(t, fx.messenger.sent[0].text, fx.messenger.sent[1].text,
		"unknown command and insufficient role must be indistinguishable")
}

func TestAuthorizedCommandRuns(t *testing.T) {
	fx := newRouterFixture(t, nil)
	invoked := false
	fx.registry.Register("ping", func(entities.Message) error {
		invoked = true
		return nil
	}, RoleUser)

	fx.router.HandleMessage(msg("/ping"))

	assert.True(t, invoked)
	assert.Empty(t, fx.messenger.sent, "handler sends its own replies")
}

func TestUnrestrictedCommandSkipsRoleGate(t *testing.T) {
	fx := newRouterFixture(t, nil)
	invoked := false
	fx.registry.Register("help", func(entities.Message) error {
		invoked = true
		return nil
	}, RoleUnrestricted)

	fx.router.HandleMessage(msg("/help"))
	assert.True(t, invoked)
}

func TestHandlerErrorYieldsGenericReply(t *testing.T) {
	fx := newRouterFixture(t, nil)
	fx.registry.Register("boom", func(entities.Message) error {
		return errors.New("database exploded")
	}, RoleUser)

	fx.router.HandleMessage(msg("/boom"))

	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, ErrorText, fx.messenger.sent[0].text, "internal detail must not leak")
}

func TestHandlerPanicIsContained(t *testing.T) {
	fx := newRouterFixture(t, nil)
	fx.registry.Register("crash", func(entities.Message) error {
		panic("nil map write")
	}, RoleUser)

	assert.NotPanics(t, func() {
		fx.router.HandleMessage(msg("/crash"))
	})
	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, ErrorText, fx.messenger.sent[0].text)
}

func TestPresenceRecordedBeforeDenial(t *testing.T) {
	fx := newRouterFixture(t, nil)

	fx.router.HandleMessage(msg("/nope"))

	chats, err := fx.chats.AllChats()
	require.NoError(t, err)
	require.Len(t, chats, 1, "presence is recorded even when the command is denied")
	assert.Equal(t, int64(100), chats[0].ChatID)
	assert.Equal(t, "alice", chats[0].Username)
}

func TestFreeTextWithoutFallbackIsDropped(t *testing.T) {
	fx := newRouterFixture(t, nil)

	fx.router.HandleMessage(msg("hello there"))
	assert.Empty(t, fx.messenger.sent)
}

func TestFreeTextRoutedToActiveFallback(t *testing.T) {
	fb := &fakeFallback{active: true, reply: "hi!"}
	fx := newRouterFixture(t, fb)

	fx.router.HandleMessage(msg("hello there"))

	assert.Equal(t, 1, fb.calls)
	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, "hi!", fx.messenger.sent[0].text)
}

func TestInactiveFallbackIsSkipped(t *testing.T) {
	fb := &fakeFallback{active: false, reply: "hi!"}
	fx := newRouterFixture(t, fb)

	fx.router.HandleMessage(msg("hello there"))

	assert.Equal(t, 0, fb.calls)
	assert.Empty(t, fx.messenger.sent)
}

func TestFallbackErrorYieldsGenericReply(t *testing.T) {
	fb := &fakeFallback{active: true, err: errors.New("api quota exceeded")}
	fx := newRouterFixture(t, fb)

	fx.router.HandleMessage(msg("hello there"))

	require.Len(t, fx.messenger.sent, 1)
	assert.Equal(t, ErrorText, fx.messenger.sent[0].text)
}

func TestBlockedUserIsDroppedExceptStart(t *testing.T) {
	fx := newRouterFixture(t, nil)
	started := false
	fx.registry.Register("start", func(entities.Message) error {
		started = true
		return nil
	}, RoleUser)
	fx.registry.Register("help", func(entities.Message) error { return nil }, RoleUnrestricted)
	require.NoError(t, fx.chats.SetBlocked(100, true))

	fx.router.HandleMessage(msg("/help"))
	fx.router.HandleMessage(msg("free text"))
	assert.Empty(t, fx.messenger.sent, "blocked users get no replies at all")

	fx.router.HandleMessage(msg("/start"))
	assert.True(t, started, "/start must reach its handler so the block is reversible")
}

func TestRegistryLastWriteWins(t *testing.T) {
	registry := NewCommandRegistry(zerolog.Nop())
	registry.Register("dup", func(entities.Message) error { return nil }, RoleUser)
	registry.Register("dup", func(entities.Message) error { return nil }, RoleSuperadmin)

	entry, ok := registry.Lookup("dup")
	require.True(t, ok)
	assert.Equal(t, RoleSuperadmin, entry.MinRole)
	assert.Len(t, registry.Names(), 1)
}
