package detectors

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/policy"
	"guild-sentinel/internal/quarantine"
	"guild-sentinel/internal/ratewindow"
)

// MessageSpam applies the per-message checks in fixed order: embed, then
// @everyone mention, then link, then the rate window. Each check
// short-circuits the rest for that message.
type MessageSpam struct {
	client    platform.Client
	window    *ratewindow.Window
	gate      *policy.Gate
	manager   *quarantine.Manager
	describer Describer
	threshold int
	timeout   time.Duration

	// warned holds users already warned for spam. It is never pruned: once
	// warned, a user stays silent through later episodes until restart. This
	// matches long-standing deployed behavior; see the known-behavior test.
	warnedMu sync.Mutex
	warned   map[string]struct{}
}

func NewMessageSpam(client platform.Client, window *ratewindow.Window, gate *policy.Gate,
	manager *quarantine.Manager, describer Describer, threshold int, timeout time.Duration) *MessageSpam {
	return &MessageSpam{
		client:    client,
		window:    window,
		gate:      gate,
		manager:   manager,
		describer: describer,
		threshold: threshold,
		timeout:   timeout,
		warned:    make(map[string]struct{}),
	}
}

func (d *MessageSpam) HandleMessage(msg *platform.Message, at time.Time) {
	if msg.AuthorBot {
		return
	}

	if msg.HasEmbed {
		d.handleEmbed(msg)
		return
	}

	if strings.Contains(msg.Content, "@everyone") && !d.gate.IsApprovedUser(msg.AuthorID) {
		d.deleteMessage(msg)
		d.describer.Transient(msg.ChannelID, fmt.Sprintf("%s, you are not authorized to use that.", mention(msg.AuthorID)))
		return
	}

	if strings.Contains(msg.Content, "https:") || strings.Contains(msg.Content, "discord.gg") {
		d.handleLink(msg)
		return
	}

	count := d.window.Record(msg.AuthorID, at)
	if count > d.threshold {
		d.handleFlood(msg)
	}
}

func (d *MessageSpam) handleEmbed(msg *platform.Message) {
	d.deleteMessage(msg)

	if err := d.manager.Quarantine(msg.GuildID, msg.AuthorID, "Attempted to send embeds"); err != nil {
		logging.Error("failed to quarantine embed sender %s: %v", msg.AuthorID, err)
		return
	}

	if _, err := d.client.SendMessage(msg.ChannelID, fmt.Sprintf(
		"%s has been quarantined for attempting to send embeds.", msg.AuthorUsername)); err != nil {
		logging.Warn("failed to send embed notice: %v", err)
	}
}

func (d *MessageSpam) handleLink(msg *platform.Message) {
	d.deleteMessage(msg)

	if err := d.manager.StripAll(msg.GuildID, msg.AuthorID, "Posted unauthorized link"); err != nil {
		logging.Error("failed to strip roles from link poster %s: %v", msg.AuthorID, err)
		return
	}
	d.describer.LogAction(msg.GuildID, fmt.Sprintf(
		"%s has been timed out for posting unauthorized links.", mention(msg.AuthorID)))
}

func (d *MessageSpam) handleFlood(msg *platform.Message) {
	if d.firstWarning(msg.AuthorID) {
		d.describer.Transient(msg.ChannelID, fmt.Sprintf(
			"%s, you are sending messages too quickly!", mention(msg.AuthorID)))
	}

	d.purgeAuthorMessages(msg.ChannelID, msg.AuthorID)

	if err := d.client.TimeoutMember(msg.GuildID, msg.AuthorID, d.timeout, "Spam detected"); err != nil {
		logging.Error("failed to timeout spammer %s: %v", msg.AuthorID, err)
	}
	if err := d.manager.StripAll(msg.GuildID, msg.AuthorID, "Spamming"); err != nil {
		logging.Error("failed to strip roles from spammer %s: %v", msg.AuthorID, err)
	}
	d.describer.LogAction(msg.GuildID, fmt.Sprintf(
		"%s has been timed out for spamming.", mention(msg.AuthorID)))
}

// firstWarning reports whether this is the user's first spam warning and
// marks them warned.
func (d *MessageSpam) firstWarning(userID string) bool {
	d.warnedMu.Lock()
	defer d.warnedMu.Unlock()
	if _, warned := d.warned[userID]; warned {
		return false
	}
	d.warned[userID] = struct{}{}
	return true
}

// purgeAuthorMessages bulk-deletes the author's messages among the channel's
// last 100.
func (d *MessageSpam) purgeAuthorMessages(channelID, authorID string) {
	recent, err := d.client.RecentMessages(channelID, 100)
	if err != nil {
		logging.Error("failed to fetch messages for purge in %s: %v", channelID, err)
		return
	}

	var ids []string
	for _, m := range recent {
		if m.AuthorID == authorID {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	if err := d.client.BulkDeleteMessages(channelID, ids); err != nil {
		logging.Error("failed to bulk delete %d messages in %s: %v", len(ids), channelID, err)
	}
}

func (d *MessageSpam) deleteMessage(msg *platform.Message) {
	if err := d.client.DeleteMessage(msg.ChannelID, msg.ID); err != nil {
		logging.Warn("failed to delete message %s: %v", msg.ID, err)
	}
}
