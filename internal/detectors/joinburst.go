package detectors

import (
	"fmt"
	"time"

	"guild-sentinel/internal/audit"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/policy"
	"guild-sentinel/internal/quarantine"
	"guild-sentinel/internal/ratewindow"
)

// JoinBurst raises a raid alert when joins exceed the threshold inside the
// lookback window, and contains whoever invited an unapproved bot.
type JoinBurst struct {
	client    platform.Client
	window    *ratewindow.Window
	resolver  *audit.Resolver
	gate      *policy.Gate
	manager   *quarantine.Manager
	describer Describer
	threshold int
}

func NewJoinBurst(client platform.Client, window *ratewindow.Window, resolver *audit.Resolver,
	gate *policy.Gate, manager *quarantine.Manager, describer Describer, threshold int) *JoinBurst {
	return &JoinBurst{
		client:    client,
		window:    window,
		resolver:  resolver,
		gate:      gate,
		manager:   manager,
		describer: describer,
		threshold: threshold,
	}
}

func (d *JoinBurst) HandleJoin(guildID string, member *platform.Member, at time.Time) {
	count := d.window.Record(guildID, at)

	// Alert exactly once per breach, on the crossing transition. The window
	// re-arms only after draining back under the threshold.
	if count == d.threshold+1 {
		d.describer.LogAction(guildID, "Raid detected! Taking action.")
	}

	if !member.Bot || d.gate.IsApprovedBot(member.UserID) {
		return
	}

	// An unapproved bot joined. Contain the inviter if attribution succeeds
	// and they are not approved; ban the bot regardless.
	if actor, ok := d.resolver.ResolveActor(guildID, platform.AuditBotAdd); ok {
		if !d.gate.IsApprovedUser(actor.ID) {
			if err := d.manager.Quarantine(guildID, actor.ID, "Invited unauthorized bot"); err != nil {
				logging.Error("failed to quarantine bot inviter %s: %v", actor.ID, err)
			} else {
				d.describer.LogAction(guildID, fmt.Sprintf(
					"User %s has been quarantined for inviting unauthorized bot %s.",
					d.username(guildID, actor.ID), member.Username))
			}
		}
	}

	if err := d.client.BanUser(guildID, member.UserID, "Unauthorized bot"); err != nil {
		logging.Error("failed to ban unauthorized bot %s: %v", member.UserID, err)
		return
	}
	d.describer.LogAction(guildID, fmt.Sprintf("Unauthorized bot %s has been banned.", member.Username))
}

func (d *JoinBurst) username(guildID, userID string) string {
	m, err := d.client.Member(guildID, userID)
	if err != nil || m.Username == "" {
		return userID
	}
	return m.Username
}
