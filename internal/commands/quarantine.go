package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// handleQuarantine contains the chosen user and replies with an embed plus
// lift/reverse confirmation buttons.
func (h *Handler) handleQuarantine(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !requireAdmin(s, i) {
		return nil
	}

	user := i.ApplicationCommandData().Options[0].UserValue(s)
	if user == nil {
		return respondText(s, i, "User not found.")
	}

	if err := h.manager.Quarantine(h.guildID, user.ID, "Quarantined by administrator"); err != nil {
		return respondText(s, i, fmt.Sprintf("Quarantine failed: %v", err))
	}

	h.notifier.LogAction(h.guildID, fmt.Sprintf("User %s has been quarantined by an administrator.", user.Username))

	embed := &discordgo.MessageEmbed{
		Title:       "Quarantine Actions",
		Description: fmt.Sprintf("User %s has been quarantined.", user.Username),
		Color:       0x9E8AFF,
	}

	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: "quarantine-lift-" + user.ID,
				Label:    "Remove Quarantine",
				Style:    discordgo.PrimaryButton,
			},
			discordgo.Button{
				CustomID: "quarantine-reverse-" + user.ID,
				Label:    "Reverse Actions",
				Style:    discordgo.DangerButton,
			},
		},
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{row},
		},
	})
}

func (h *Handler) handleRemoveQuarantine(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !requireAdmin(s, i) {
		return nil
	}

	user := i.ApplicationCommandData().Options[0].UserValue(s)
	if user == nil {
		return respondText(s, i, "User not found.")
	}

	if err := h.manager.LiftToDefault(h.guildID, user.ID); err != nil {
		return respondText(s, i, fmt.Sprintf("Lift failed: %v", err))
	}

	h.notifier.LogAction(h.guildID, fmt.Sprintf("Quarantine lifted from %s.", user.Username))
	return respondText(s, i, fmt.Sprintf("%s is no longer quarantined.", user.Username))
}

func (h *Handler) handleReverseActions(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !requireAdmin(s, i) {
		return nil
	}

	user := i.ApplicationCommandData().Options[0].UserValue(s)
	if user == nil {
		return respondText(s, i, "User not found.")
	}

	if err := h.manager.Reverse(h.guildID, user.ID); err != nil {
		return respondText(s, i, fmt.Sprintf("Reverse failed: %v", err))
	}

	h.notifier.LogAction(h.guildID, fmt.Sprintf("Reversed containment actions for %s.", user.Username))
	return respondText(s, i, fmt.Sprintf("Reversed actions for %s.", user.Username))
}

func (h *Handler) handleLiftButton(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return nil
	}

	if err := h.manager.LiftToDefault(h.guildID, userID); err != nil {
		return err
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("<@%s> is no longer quarantined.", userID),
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	})
}

func (h *Handler) handleReverseButton(s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionAdministrator == 0 {
		return nil
	}

	if err := h.manager.Reverse(h.guildID, userID); err != nil {
		return err
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("Reversed actions for <@%s>.", userID),
			Embeds:     []*discordgo.MessageEmbed{},
			Components: []discordgo.MessageComponent{},
		},
	})
}
