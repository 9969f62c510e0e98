package platform

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"guild-sentinel/internal/dispatcher"
)

// Discord implements Client over a discordgo session. Ban and timeout calls
// go through the fasthttp executor; everything else uses the session's REST
// layer.
type Discord struct {
	session  *discordgo.Session
	executor *dispatcher.Executor
}

func NewDiscord(session *discordgo.Session, executor *dispatcher.Executor) *Discord {
	return &Discord{session: session, executor: executor}
}

func (d *Discord) BotUserID() string {
	if d.session.State != nil && d.session.State.User != nil {
		return d.session.State.User.ID
	}
	return ""
}

func (d *Discord) RoleByName(guildID, name string) (*Role, bool, error) {
	roles, err := d.GuildRoles(guildID)
	if err != nil {
		return nil, false, err
	}
	for _, r := range roles {
		if r.Name == name {
			return r, true, nil
		}
	}
	return nil, false, nil
}

func (d *Discord) GuildRoles(guildID string) ([]*Role, error) {
	roles, err := d.session.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	out := make([]*Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, convertRole(r))
	}
	return out, nil
}

func (d *Discord) Member(guildID, userID string) (*Member, error) {
	m, err := d.session.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	return convertMember(m), nil
}

func (d *Discord) SetMemberRoles(guildID, userID string, roleIDs []string, reason string) error {
	if roleIDs == nil {
		roleIDs = []string{}
	}
	_, err := d.session.GuildMemberEdit(guildID, userID, &discordgo.GuildMemberParams{
		Roles: &roleIDs,
	}, discordgo.WithAuditLogReason(reason))
	return err
}

func (d *Discord) AddMemberRole(guildID, userID, roleID string, reason string) error {
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
}

func (d *Discord) RemoveMemberRole(guildID, userID, roleID string, reason string) error {
	return d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithAuditLogReason(reason))
}

func (d *Discord) TimeoutMember(guildID, userID string, duration time.Duration, reason string) error {
	return d.executor.ExecuteTimeout(guildID, userID, duration, reason)
}

func (d *Discord) BanUser(guildID, userID, reason string) error {
	_, err := d.executor.ExecuteBan(guildID, userID, reason)
	return err
}

func (d *Discord) DeleteRole(guildID, roleID, reason string) error {
	return d.session.GuildRoleDelete(guildID, roleID, discordgo.WithAuditLogReason(reason))
}

func (d *Discord) DeleteChannel(channelID, reason string) error {
	_, err := d.session.ChannelDelete(channelID, discordgo.WithAuditLogReason(reason))
	return err
}

func (d *Discord) RenameChannel(channelID, name, reason string) error {
	_, err := d.session.ChannelEdit(channelID, &discordgo.ChannelEdit{
		Name: name,
	}, discordgo.WithAuditLogReason(reason))
	return err
}

func (d *Discord) ChannelWebhooks(channelID string) ([]*Webhook, error) {
	hooks, err := d.session.ChannelWebhooks(channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch webhooks: %w", err)
	}
	out := make([]*Webhook, 0, len(hooks))
	for _, h := range hooks {
		hook := &Webhook{ID: h.ID, ChannelID: h.ChannelID, Name: h.Name}
		if h.User != nil {
			hook.OwnerID = h.User.ID
		}
		out = append(out, hook)
	}
	return out, nil
}

func (d *Discord) DeleteWebhook(webhookID, reason string) error {
	return d.session.WebhookDelete(webhookID, discordgo.WithAuditLogReason(reason))
}

func (d *Discord) DeleteMessage(channelID, messageID string) error {
	return d.session.ChannelMessageDelete(channelID, messageID)
}

func (d *Discord) BulkDeleteMessages(channelID string, messageIDs []string) error {
	return d.session.ChannelMessagesBulkDelete(channelID, messageIDs)
}

func (d *Discord) RecentMessages(channelID string, limit int) ([]*Message, error) {
	msgs, err := d.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel messages: %w", err)
	}
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ConvertMessage(m))
	}
	return out, nil
}

func (d *Discord) SendMessage(channelID, content string) (*Message, error) {
	m, err := d.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return nil, err
	}
	return ConvertMessage(m), nil
}

func (d *Discord) SendLogEmbed(channelID, description string) error {
	embed := &discordgo.MessageEmbed{
		Color:       0x0099FF,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	_, err := d.session.ChannelMessageSendEmbed(channelID, embed)
	return err
}

func (d *Discord) FetchAuditLog(guildID string, actionType, limit int) ([]*AuditEntry, error) {
	audit, err := d.session.GuildAuditLog(guildID, "", "", actionType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit log: %w", err)
	}

	bots := make(map[string]bool, len(audit.Users))
	for _, u := range audit.Users {
		bots[u.ID] = u.Bot
	}

	out := make([]*AuditEntry, 0, len(audit.AuditLogEntries))
	for _, entry := range audit.AuditLogEntries {
		createdAt, _ := discordgo.SnowflakeTimestamp(entry.ID)
		action := 0
		if entry.ActionType != nil {
			action = int(*entry.ActionType)
		}
		out = append(out, &AuditEntry{
			ActorID:    entry.UserID,
			ActorIsBot: bots[entry.UserID],
			TargetID:   entry.TargetID,
			ActionType: action,
			CreatedAt:  createdAt,
		})
	}
	return out, nil
}

func convertRole(r *discordgo.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: r.Permissions,
		Managed:     r.Managed,
	}
}

func convertMember(m *discordgo.Member) *Member {
	member := &Member{RoleIDs: m.Roles}
	if m.User != nil {
		member.UserID = m.User.ID
		member.Username = m.User.Username
		member.Bot = m.User.Bot
	}
	return member
}

// ConvertMessage maps a gateway or REST message into the engine's view of it.
func ConvertMessage(m *discordgo.Message) *Message {
	msg := &Message{
		ID:               m.ID,
		ChannelID:        m.ChannelID,
		GuildID:          m.GuildID,
		Content:          m.Content,
		HasEmbed:         len(m.Embeds) > 0,
		MentionsEveryone: m.MentionEveryone,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorUsername = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}
