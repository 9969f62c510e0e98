package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-sentinel/internal/bot"
	"guild-sentinel/internal/database"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/notifier"
	"guild-sentinel/internal/quarantine"
)

// Handler routes slash commands and button presses to their handlers.
type Handler struct {
	session  *bot.Session
	manager  *quarantine.Manager
	notifier *notifier.Notifier
	db       *database.Database
	guildID  string
}

var globalHandler *Handler

// Initialize registers the command set and the interaction router.
func Initialize(session *bot.Session, manager *quarantine.Manager, n *notifier.Notifier,
	db *database.Database, guildID string) error {
	globalHandler = &Handler{
		session:  session,
		manager:  manager,
		notifier: n,
		db:       db,
		guildID:  guildID,
	}

	session.AddHandler(globalHandler.handleInteraction)

	commands := GetAllCommands()
	if err := session.RegisterCommands(guildID, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	logging.Info("Command handler initialized with %d commands", len(commands))
	return nil
}

func (h *Handler) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(s, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(s, i)
	}
}

func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "quarantine":
		err = h.handleQuarantine(s, i)
	case "remove-quarantine":
		err = h.handleRemoveQuarantine(s, i)
	case "reverse-actions":
		err = h.handleReverseActions(s, i)
	case "staff":
		err = h.handleStaff(s, i)
	case "status":
		err = h.handleStatus(s, i)
	}

	if err != nil {
		logging.Error("Command /%s failed: %v", data.Name, err)
	}
}

func (h *Handler) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	var err error
	switch {
	case strings.HasPrefix(customID, "quarantine-lift-"):
		err = h.handleLiftButton(s, i, strings.TrimPrefix(customID, "quarantine-lift-"))
	case strings.HasPrefix(customID, "quarantine-reverse-"):
		err = h.handleReverseButton(s, i, strings.TrimPrefix(customID, "quarantine-reverse-"))
	}

	if err != nil {
		logging.Error("Component %s failed: %v", customID, err)
	}
}

// requireAdmin replies with a refusal unless the invoker has the
// administrator permission.
func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	respondText(s, i, "You do not have permission to use this command.")
	return false
}

func respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}
