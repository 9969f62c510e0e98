package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"guild-sentinel/internal/config"
)

// handleStaff builds the staff roster: every member is listed under the
// first configured staff role they hold, in tier order.
func (h *Handler) handleStaff(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	staffRoles := config.Get().Staff
	if len(staffRoles) == 0 {
		return respondText(s, i, "No staff roles are configured.")
	}

	members, err := fetchAllMembers(s, h.guildID)
	if err != nil {
		return fmt.Errorf("failed to fetch members: %w", err)
	}

	byTier := make(map[string][]*discordgo.Member)
	for _, member := range members {
		held := make(map[string]struct{}, len(member.Roles))
		for _, roleID := range member.Roles {
			held[roleID] = struct{}{}
		}
		for _, tier := range staffRoles {
			if _, ok := held[tier.RoleID]; ok {
				byTier[tier.Name] = append(byTier[tier.Name], member)
				break
			}
		}
	}

	staffCount := 0
	for _, tierMembers := range byTier {
		staffCount += len(tierMembers)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Staff Members",
		Description: fmt.Sprintf("There are %d staff members.", staffCount),
		Color:       0x73D0FF,
	}

	for _, tier := range staffRoles {
		tierMembers := byTier[tier.Name]
		if len(tierMembers) == 0 {
			continue
		}
		mentions := make([]string, 0, len(tierMembers))
		for _, m := range tierMembers {
			mentions = append(mentions, m.Mention())
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  tier.Name,
			Value: strings.Join(mentions, "\n"),
		})
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

// fetchAllMembers pages through the full member list.
func fetchAllMembers(s *discordgo.Session, guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < 1000 {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}
