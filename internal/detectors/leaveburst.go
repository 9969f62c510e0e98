package detectors

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"guild-sentinel/internal/audit"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/policy"
	"guild-sentinel/internal/ratewindow"
)

// banParallelism bounds the concurrent ban fan-out for a single burst.
const banParallelism = 4

// LeaveBurst watches for mass-leave events and bans the actors whose kick
// counts implicate them.
type LeaveBurst struct {
	client    platform.Client
	window    *ratewindow.Window
	resolver  *audit.Resolver
	gate      *policy.Gate
	describer Describer
	threshold int
	lookback  time.Duration
}

func NewLeaveBurst(client platform.Client, window *ratewindow.Window, resolver *audit.Resolver,
	gate *policy.Gate, describer Describer, threshold int, lookback time.Duration) *LeaveBurst {
	return &LeaveBurst{
		client:    client,
		window:    window,
		resolver:  resolver,
		gate:      gate,
		describer: describer,
		threshold: threshold,
		lookback:  lookback,
	}
}

func (d *LeaveBurst) HandleLeave(guildID, userID string, at time.Time) {
	count := d.window.Record(guildID, at)
	if count <= d.threshold {
		return
	}

	d.describer.LogAction(guildID, "Mass leave detected! Investigating...")

	since := at.Add(-d.lookback)
	suspects := d.resolver.SuspiciousKickers(guildID, since, d.threshold)

	// Bans for independent suspects run concurrently with bounded
	// parallelism; ordering between them is not guaranteed.
	var g errgroup.Group
	g.SetLimit(banParallelism)
	for _, suspect := range suspects {
		suspect := suspect
		if d.gate.IsApprovedUser(suspect.ActorID) {
			continue
		}
		g.Go(func() error {
			if err := d.client.BanUser(guildID, suspect.ActorID, "Detected as part of mass leave event."); err != nil {
				logging.Error("failed to ban mass-leave suspect %s: %v", suspect.ActorID, err)
				return nil
			}
			d.describer.LogAction(guildID, fmt.Sprintf(
				"Banned %s for suspected mass leave involvement.", mention(suspect.ActorID)))
			return nil
		})
	}
	g.Wait()
}
