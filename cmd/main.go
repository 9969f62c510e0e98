package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guild-sentinel/internal/audit"
	"guild-sentinel/internal/bot"
	"guild-sentinel/internal/commands"
	"guild-sentinel/internal/config"
	"guild-sentinel/internal/database"
	"guild-sentinel/internal/detectors"
	"guild-sentinel/internal/dispatcher"
	"guild-sentinel/internal/engine"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/notifier"
	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/policy"
	"guild-sentinel/internal/quarantine"
	"guild-sentinel/internal/ratewindow"
)

func main() {
	fmt.Println("Starting Guild Sentinel")

	cfg := loadConfig()

	if err := logging.InitGlobalLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		panic(err)
	}

	if err := database.Initialize(cfg.Database.Path); err != nil {
		panic(err)
	}

	if err := bot.Initialize(cfg.Bot.Token); err != nil {
		panic(err)
	}
	session := bot.GetSession()

	executor := dispatcher.NewExecutor(cfg.Bot.Token)
	client := platform.NewDiscord(session.GetDiscord(), executor)

	n := notifier.New(client, cfg.Guild.LogChannelID, database.GetDB(),
		time.Duration(cfg.Detection.TransientDeleteSec)*time.Second)

	manager := quarantine.NewManager(client, cfg.Guild.QuarantineRoleName, cfg.Guild.DefaultRoleName)
	eng := buildEngine(cfg, client, n, manager)

	// Handlers must be registered before the gateway opens
	session.SetupEventHandlers(eng)

	if err := session.Connect(); err != nil {
		panic(err)
	}

	if err := commands.Initialize(session, manager, n, database.GetDB(), cfg.Guild.ID); err != nil {
		panic(err)
	}

	logging.Info("All components started, watching guild %s", cfg.Guild.ID)

	waitForShutdown()

	eng.Drain()
	n.Close()
	session.Close()
	database.Close()
	logging.Info("Shutdown complete")
	logging.CloseGlobalLogger()
}

func loadConfig() *config.Config {
	cfg, err := config.Load("config.json")
	if err != nil {
		fmt.Printf("Config load failed: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func buildEngine(cfg *config.Config, client platform.Client, n *notifier.Notifier,
	manager *quarantine.Manager) *engine.Engine {
	det := cfg.Detection

	joinWindow := ratewindow.New(time.Duration(det.JoinWindowSec) * time.Second)
	leaveWindow := ratewindow.New(time.Duration(det.LeaveWindowSec) * time.Second)
	spamWindow := ratewindow.New(time.Duration(det.SpamWindowSec) * time.Second)

	resolver := audit.NewResolver(client)
	gate := policy.NewGate(cfg.Approved.Users, cfg.Approved.Bots, client.BotUserID)

	joinBurst := detectors.NewJoinBurst(client, joinWindow, resolver, gate, manager, n, det.JoinThreshold)
	leaveBurst := detectors.NewLeaveBurst(client, leaveWindow, resolver, gate, n,
		det.LeaveThreshold, time.Duration(det.LeaveWindowSec)*time.Second)
	messageSpam := detectors.NewMessageSpam(client, spamWindow, gate, manager, n,
		det.SpamThreshold, time.Duration(det.TimeoutSec)*time.Second)
	structural := detectors.NewStructuralChange(client, resolver, gate, manager, n)

	return engine.New(cfg.Guild.ID, joinBurst, leaveBurst, messageSpam, structural)
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	fmt.Println("\nShutdown signal received")
}
