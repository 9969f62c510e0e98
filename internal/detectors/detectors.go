// Package detectors holds the four reaction functions over platform events:
// join bursts, leave bursts, message spam, and unauthorized structural
// changes. Each detector gets its dependencies injected so it can be
// exercised without a live platform connection.
package detectors

// Describer is the notifier surface the detectors report through.
type Describer interface {
	// LogAction forwards a human-readable action description to the
	// moderation log.
	LogAction(guildID, description string)
	// Transient sends a short-lived channel message.
	Transient(channelID, content string)
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
