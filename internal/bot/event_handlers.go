package bot

import (
	"github.com/bwmarrin/discordgo"

	"guild-sentinel/internal/engine"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
)

// SetupEventHandlers wires the gateway events into the detection engine.
// Call before Connect so nothing is missed on the initial guild sync.
func (s *Session) SetupEventHandlers(eng *engine.Engine) {
	logging.Info("Setting up Discord event handlers...")

	s.discord.AddHandler(func(sess *discordgo.Session, r *discordgo.Ready) {
		logging.Info("Ready! Connected as %s, watching %d guilds", r.User.Username, len(r.Guilds))
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.GuildID == "" || m.User == nil {
			return
		}
		eng.OnMemberJoin(m.GuildID, &platform.Member{
			UserID:   m.User.ID,
			Username: m.User.Username,
			Bot:      m.User.Bot,
			RoleIDs:  m.Roles,
		})
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.GuildID == "" || m.User == nil {
			return
		}
		eng.OnMemberLeave(m.GuildID, m.User.ID)
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageCreate) {
		if m.GuildID == "" || m.Author == nil {
			return
		}
		eng.OnMessageCreate(platform.ConvertMessage(m.Message))
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.GuildMemberUpdate) {
		if m.GuildID == "" || m.User == nil {
			return
		}
		var oldRoles []string
		if m.BeforeUpdate != nil {
			oldRoles = m.BeforeUpdate.Roles
		}
		eng.OnMemberUpdate(m.GuildID, m.User.ID, oldRoles, m.Roles)
	})

	s.discord.AddHandler(func(sess *discordgo.Session, r *discordgo.GuildRoleCreate) {
		if r.GuildID == "" || r.Role == nil {
			return
		}
		eng.OnRoleCreate(r.GuildID, &platform.Role{
			ID:          r.Role.ID,
			Name:        r.Role.Name,
			Permissions: r.Role.Permissions,
			Managed:     r.Role.Managed,
		})
	})

	s.discord.AddHandler(func(sess *discordgo.Session, c *discordgo.ChannelCreate) {
		if c.GuildID == "" {
			return
		}
		eng.OnChannelCreate(c.GuildID, &platform.Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name})
	})

	s.discord.AddHandler(func(sess *discordgo.Session, c *discordgo.ChannelUpdate) {
		if c.GuildID == "" {
			return
		}
		oldName := c.Name
		if c.BeforeUpdate != nil {
			oldName = c.BeforeUpdate.Name
		}
		eng.OnChannelUpdate(c.GuildID, oldName, &platform.Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name})
	})

	s.discord.AddHandler(func(sess *discordgo.Session, c *discordgo.ChannelDelete) {
		if c.GuildID == "" {
			return
		}
		eng.OnChannelDelete(c.GuildID, &platform.Channel{ID: c.ID, GuildID: c.GuildID, Name: c.Name})
	})

	s.discord.AddHandler(func(sess *discordgo.Session, w *discordgo.WebhooksUpdate) {
		if w.GuildID == "" {
			return
		}
		eng.OnWebhookUpdate(w.GuildID, w.ChannelID)
	})

	logging.Info("Discord event handlers configured")
}
