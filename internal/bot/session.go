package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guild-sentinel/internal/logging"
)

type Session struct {
	discord *discordgo.Session
}

var globalSession *Session

// Initialize creates the Discord session. Call Connect after the handlers
// are registered.
func Initialize(token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsAll
	dg.StateEnabled = true

	globalSession = &Session{discord: dg}
	return nil
}

func GetSession() *Session {
	return globalSession
}

func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	if s.discord.State.User != nil {
		logging.Info("Connected as %s (%s)", s.discord.State.User.Username, s.discord.State.User.ID)
	}
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

func (s *Session) AddHandler(handler interface{}) {
	s.discord.AddHandler(handler)
}

// RegisterCommands registers slash commands scoped to the watched guild.
func (s *Session) RegisterCommands(guildID string, commands []*discordgo.ApplicationCommand) error {
	logging.Info("Registering %d slash commands...", len(commands))

	for _, cmd := range commands {
		_, err := s.discord.ApplicationCommandCreate(s.discord.State.User.ID, guildID, cmd)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		logging.Info("Registered command: /%s", cmd.Name)
	}
	return nil
}
