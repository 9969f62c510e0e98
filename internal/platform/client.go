package platform

import "time"

// Discord audit log action values used by the detectors.
const (
	AuditChannelCreate    = 10
	AuditChannelUpdate    = 11
	AuditChannelDelete    = 12
	AuditMemberKick       = 20
	AuditMemberRoleUpdate = 25
	AuditBotAdd           = 28
	AuditRoleCreate       = 30
	AuditWebhookCreate    = 50
)

// PermissionAdministrator is the Discord administrator permission bit.
const PermissionAdministrator = int64(1) << 3

type Role struct {
	ID          string
	Name        string
	Permissions int64
	Managed     bool
}

type Member struct {
	UserID   string
	Username string
	Bot      bool
	RoleIDs  []string
}

type Message struct {
	ID               string
	ChannelID        string
	GuildID          string
	AuthorID         string
	AuthorUsername   string
	AuthorBot        bool
	Content          string
	HasEmbed         bool
	MentionsEveryone bool
}

type Channel struct {
	ID      string
	GuildID string
	Name    string
}

type Webhook struct {
	ID        string
	ChannelID string
	Name      string
	OwnerID   string
}

type AuditEntry struct {
	ActorID    string
	ActorIsBot bool
	TargetID   string
	ActionType int
	CreatedAt  time.Time
}

// Client is the capability set the engine needs from the chat platform. The
// production implementation wraps a discordgo session; tests inject a fake.
type Client interface {
	// Identity of the engine's own bot user, exempt from containment.
	BotUserID() string

	// Guild metadata.
	RoleByName(guildID, name string) (*Role, bool, error)
	GuildRoles(guildID string) ([]*Role, error)
	Member(guildID, userID string) (*Member, error)

	// Member mutations.
	SetMemberRoles(guildID, userID string, roleIDs []string, reason string) error
	AddMemberRole(guildID, userID, roleID string, reason string) error
	RemoveMemberRole(guildID, userID, roleID string, reason string) error
	TimeoutMember(guildID, userID string, duration time.Duration, reason string) error
	BanUser(guildID, userID, reason string) error

	// Structural mutations.
	DeleteRole(guildID, roleID, reason string) error
	DeleteChannel(channelID, reason string) error
	RenameChannel(channelID, name, reason string) error
	ChannelWebhooks(channelID string) ([]*Webhook, error)
	DeleteWebhook(webhookID, reason string) error

	// Messages.
	DeleteMessage(channelID, messageID string) error
	BulkDeleteMessages(channelID string, messageIDs []string) error
	RecentMessages(channelID string, limit int) ([]*Message, error)
	SendMessage(channelID, content string) (*Message, error)
	SendLogEmbed(channelID, description string) error

	// Audit log query, most recent first.
	FetchAuditLog(guildID string, actionType, limit int) ([]*AuditEntry, error)
}
