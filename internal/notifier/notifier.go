// Package notifier forwards human-readable action descriptions to the
// moderation log channel and the action-log table.
package notifier

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
)

// ActionStore persists containment actions. Implemented by the database
// package; nil disables persistence.
type ActionStore interface {
	AddActionLog(incidentID, guildID, description string, ts time.Time) error
}

type Notifier struct {
	client         platform.Client
	logChannelID   string
	store          ActionStore
	transientDelay time.Duration

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

func New(client platform.Client, logChannelID string, store ActionStore, transientDelay time.Duration) *Notifier {
	return &Notifier{
		client:         client,
		logChannelID:   logChannelID,
		store:          store,
		transientDelay: transientDelay,
		timers:         make(map[*time.Timer]struct{}),
	}
}

// LogAction sends the description to the log channel as an embed and appends
// it to the action log. Failures are logged and swallowed.
func (n *Notifier) LogAction(guildID, description string) {
	if n.logChannelID != "" {
		if err := n.client.SendLogEmbed(n.logChannelID, description); err != nil {
			logging.Error("failed to send log embed: %v", err)
		}
	}
	if n.store != nil {
		incidentID := uuid.NewString()
		if err := n.store.AddActionLog(incidentID, guildID, description, time.Now()); err != nil {
			logging.Error("failed to persist action log: %v", err)
		}
	}
	logging.Info("[ACTION] guild=%s %s", guildID, description)
}

// Transient sends a channel message and schedules its deletion. The deletion
// is fire-and-forget; a failed delete is not an error. Pending deletions are
// cancelled by Close.
func (n *Notifier) Transient(channelID, content string) {
	msg, err := n.client.SendMessage(channelID, content)
	if err != nil {
		logging.Warn("failed to send transient message: %v", err)
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(n.transientDelay, func() {
		n.mu.Lock()
		delete(n.timers, timer)
		n.mu.Unlock()
		if err := n.client.DeleteMessage(channelID, msg.ID); err != nil {
			logging.Debug("transient delete failed for %s: %v", msg.ID, err)
		}
	})
	n.timers[timer] = struct{}{}
	n.mu.Unlock()
}

// Close cancels all pending transient deletions.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for timer := range n.timers {
		timer.Stop()
	}
	n.timers = make(map[*time.Timer]struct{})
}
