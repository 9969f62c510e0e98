package commands

import "github.com/bwmarrin/discordgo"

// GetAllCommands returns the slash command definitions registered on the
// watched guild.
func GetAllCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "quarantine",
			Description: "Quarantines a user (strips roles and applies the quarantine role)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to quarantine",
					Required:    true,
				},
			},
		},
		{
			Name:        "remove-quarantine",
			Description: "Removes Quarantine from a user",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to remove the quarantine from",
					Required:    true,
				},
			},
		},
		{
			Name:        "reverse-actions",
			Description: "Restores the role set a user had before quarantine",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "The user to restore",
					Required:    true,
				},
			},
		},
		{
			Name:        "staff",
			Description: "Get information about the server staff members",
		},
		{
			Name:        "status",
			Description: "Shows engine and system status",
		},
	}
}
