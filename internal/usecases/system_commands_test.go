package usecases

import (
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolebot/internal/entities"
	"rolebot/internal/plugins"
	"rolebot/internal/repository"
)

type systemFixture struct {
	cmds      *SystemCommands
	access    *AccessControl
	chats     *repository.ChatRepository
	pluginReg *plugins.Registry
	messenger *fakeMessenger
}

func newSystemFixture(t *testing.T) *systemFixture {
	t.Helper()
	db := newTestDB(t)
	access := NewAccessControl(repository.NewRoleRepository(db), zerolog.Nop())
	chats := repository.NewChatRepository(db)
	settings, err := NewSettingsManager(repository.NewSettingsRepository(db), zerolog.Nop())
	require.NoError(t, err)
	pluginReg := plugins.NewRegistry()
	messenger := &fakeMessenger{}
	return &systemFixture{
		cmds:      NewSystemCommands(access, chats, settings, pluginReg, messenger, "rolebot", zerolog.Nop()),
		access:    access,
		chats:     chats,
		pluginReg: pluginReg,
		messenger: messenger,
	}
}

func userMsg(userID int64, text string) entities.Message {
	return entities.Message{ChatID: userID, UserID: userID, Username: "alice", ChatType: "private", Text: text}
}

func TestStopThenStartTogglesBlock(t *testing.T) {
	fx := newSystemFixture(t)

	require.NoError(t, fx.cmds.StopReplies(userMsg(5, "/stop")))
	blocked, err := fx.chats.IsBlocked(5)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, fx.cmds.Start(userMsg(5, "/start")))
	blocked, err = fx.chats.IsBlocked(5)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestHelpSectionsFollowRole(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(2, RoleAdmin))
	require.NoError(t, fx.access.SetRole(3, RoleSuperadmin))

	require.NoError(t, fx.cmds.Help(userMsg(1, "/help")))
	require.NoError(t, fx.cmds.Help(userMsg(2, "/help")))
	require.NoError(t, fx.cmds.Help(userMsg(3, "/help")))

	require.Len(t, fx.messenger.sent, 3)
	userHelp, adminHelp, superHelp := fx.messenger.sent[0].text, fx.messenger.sent[1].text, fx.messenger.sent[2].text

	assert.NotContains(t, userHelp, "Admin Commands")
	assert.Contains(t, adminHelp, "Admin Commands")
	assert.NotContains(t, adminHelp, "Superadmin Commands")
	assert.Contains(t, superHelp, "Superadmin Commands")
	assert.Contains(t, superHelp, "/promote_user")
}

func TestHelpInGroupDMsPrivilegedUsers(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(2, RoleAdmin))

	groupMsg := entities.Message{ChatID: -100, UserID: 2, Username: "bob", ChatType: "group", Text: "/help"}
	require.NoError(t, fx.cmds.Help(groupMsg))

	require.Len(t, fx.messenger.sent, 2)
	assert.Equal(t, int64(2), fx.messenger.sent[0].chatID, "full help goes to the private chat")
	assert.Contains(t, fx.messenger.sent[0].text, "Admin Commands")
	assert.Equal(t, int64(-100), fx.messenger.sent[1].chatID)
	assert.NotContains(t, fx.messenger.sent[1].text, "/broadcast", "group sees no privileged commands")
}

func TestHelpListsActivePluginCommands(t *testing.T) {
	fx := newSystemFixture(t)
	p := &stubPlugin{
		name:    "weather",
		cmds:    map[string]string{"weather": "Get current weather"},
		allowed: []string{"all"},
		active:  true,
	}
	fx.pluginReg.Add(p)

	require.NoError(t, fx.cmds.Help(userMsg(1, "/help")))

	require.Len(t, fx.messenger.sent, 1)
	assert.Contains(t, fx.messenger.sent[0].text, "Weather Plugin Commands")
	assert.Contains(t, fx.messenger.sent[0].text, "/weather")
}

func TestHelpHidesPluginsTheCallerCannotInvoke(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(2, RoleAdmin))
	fx.pluginReg.Add(&stubPlugin{
		name:    "llm",
		cmds:    map[string]string{"llm_persona": "Set the bot persona"},
		allowed: []string{"admin", "superadmin"},
		active:  true,
	})

	require.NoError(t, fx.cmds.Help(userMsg(1, "/help")))
	require.NoError(t, fx.cmds.Help(userMsg(2, "/help")))

	require.Len(t, fx.messenger.sent, 2)
	userHelp, adminHelp := fx.messenger.sent[0].text, fx.messenger.sent[1].text
	assert.NotContains(t, userHelp, "Llm Plugin Commands",
		"a restricted plugin must not appear in a user's help")
	assert.NotContains(t, userHelp, "/llm_persona")
	assert.Contains(t, adminHelp, "Llm Plugin Commands")
	assert.Contains(t, adminHelp, "/llm_persona")
}

func TestPromoteUserCommand(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(1, RoleSuperadmin))

	require.NoError(t, fx.cmds.PromoteUser(userMsg(1, "/promote_user 9 admin")))

	role, err := fx.access.Role(9)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	texts := strings.Join(fx.messenger.texts(), "\n")
	assert.Contains(t, texts, "Promoted user 9 to admin")
	assert.Contains(t, texts, "promoted to admin", "the new admin is notified")
}

func TestPromoteUserCommandReportsFailure(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(1, RoleSuperadmin))

	require.NoError(t, fx.cmds.PromoteUser(userMsg(1, "/promote_user 9 superadmin")))

	role, err := fx.access.Role(9)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)
	require.NotEmpty(t, fx.messenger.sent)
	assert.Contains(t, fx.messenger.sent[len(fx.messenger.sent)-1].text, "Failed to promote")
}

func TestDemoteUserCommand(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(1, RoleSuperadmin))
	require.NoError(t, fx.access.SetRole(9, RoleAdmin))

	require.NoError(t, fx.cmds.DemoteUser(userMsg(1, "/demote_user 9")))

	role, err := fx.access.Role(9)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)
}

func TestInfoCountsAdmins(t *testing.T) {
	fx := newSystemFixture(t)
	require.NoError(t, fx.access.SetRole(1, RoleSuperadmin))
	require.NoError(t, fx.access.SetRole(2, RoleAdmin))
	require.NoError(t, fx.access.SetRole(3, RoleAdmin))

	require.NoError(t, fx.cmds.Info(userMsg(1, "/info")))

	require.Len(t, fx.messenger.sent, 1)
	assert.Contains(t, fx.messenger.sent[0].text, "@rolebot")
	assert.Contains(t, fx.messenger.sent[0].text, fmt.Sprintf("Admins: %d", 3))
}
