package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

var processStart = time.Now()

// handleStatus reports engine uptime, logged action counts and host load.
func (h *Handler) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	// Defer: gathering host stats can exceed the 3s interaction deadline
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	actionCount := 0
	if h.db != nil {
		if n, err := h.db.CountActions(h.guildID); err == nil {
			actionCount = n
		}
	}

	cpuPercent := 0.0
	if percents, err := cpu.Percent(time.Second, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	memUsed := "unknown"
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsed = fmt.Sprintf("%.1f%% of %.1f GB", vm.UsedPercent, float64(vm.Total)/(1<<30))
	}

	hostUptime := "unknown"
	if up, err := host.Uptime(); err == nil {
		hostUptime = (time.Duration(up) * time.Second).String()
	}

	embed := &discordgo.MessageEmbed{
		Title: "Guild Sentinel Status",
		Color: 0x57F287,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Engine Uptime", Value: time.Since(processStart).Round(time.Second).String(), Inline: true},
			{Name: "Actions Logged", Value: fmt.Sprintf("%d", actionCount), Inline: true},
			{Name: "CPU", Value: fmt.Sprintf("%.1f%%", cpuPercent), Inline: true},
			{Name: "Memory", Value: memUsed, Inline: true},
			{Name: "Host Uptime", Value: hostUptime, Inline: true},
		},
	}

	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})
	return err
}
