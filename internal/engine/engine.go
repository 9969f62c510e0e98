// Package engine routes platform events to the matching detector. Every
// event is handled on its own goroutine so a slow platform call for one
// identity cannot starve ingestion for others; per-key ordering is enforced
// inside the rate windows and the quarantine manager.
package engine

import (
	"sync"
	"time"

	"guild-sentinel/internal/detectors"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
)

type Engine struct {
	guildID string

	joinBurst   *detectors.JoinBurst
	leaveBurst  *detectors.LeaveBurst
	messageSpam *detectors.MessageSpam
	structural  *detectors.StructuralChange

	wg sync.WaitGroup
}

func New(guildID string, joinBurst *detectors.JoinBurst, leaveBurst *detectors.LeaveBurst,
	messageSpam *detectors.MessageSpam, structural *detectors.StructuralChange) *Engine {
	return &Engine{
		guildID:     guildID,
		joinBurst:   joinBurst,
		leaveBurst:  leaveBurst,
		messageSpam: messageSpam,
		structural:  structural,
	}
}

// dispatch runs a detector invocation on its own goroutine. A panic in one
// handler is contained so it can never take the ingestion loop down.
func (e *Engine) dispatch(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logging.Error("detector panic recovered: %v", r)
			}
		}()
		fn()
	}()
}

func (e *Engine) watches(guildID string) bool {
	return guildID == e.guildID
}

func (e *Engine) OnMemberJoin(guildID string, member *platform.Member) {
	if !e.watches(guildID) {
		return
	}
	at := time.Now()
	e.dispatch(func() { e.joinBurst.HandleJoin(guildID, member, at) })
}

func (e *Engine) OnMemberLeave(guildID, userID string) {
	if !e.watches(guildID) {
		return
	}
	at := time.Now()
	e.dispatch(func() { e.leaveBurst.HandleLeave(guildID, userID, at) })
}

func (e *Engine) OnMessageCreate(msg *platform.Message) {
	if !e.watches(msg.GuildID) {
		return
	}
	at := time.Now()
	e.dispatch(func() { e.messageSpam.HandleMessage(msg, at) })
}

func (e *Engine) OnMemberUpdate(guildID, userID string, oldRoleIDs, newRoleIDs []string) {
	if !e.watches(guildID) {
		return
	}
	e.dispatch(func() { e.structural.HandleMemberUpdate(guildID, userID, oldRoleIDs, newRoleIDs) })
}

func (e *Engine) OnRoleCreate(guildID string, role *platform.Role) {
	if !e.watches(guildID) {
		return
	}
	e.dispatch(func() { e.structural.HandleRoleCreate(guildID, role) })
}

func (e *Engine) OnChannelCreate(guildID string, channel *platform.Channel) {
	if !e.watches(guildID) {
		return
	}
	e.dispatch(func() { e.structural.HandleChannelCreate(guildID, channel) })
}

func (e *Engine) OnChannelUpdate(guildID, oldName string, channel *platform.Channel) {
	if !e.watches(guildID) {
		return
	}
	e.dispatch(func() { e.structural.HandleChannelUpdate(guildID, oldName, channel) })
}

func (e *Engine) OnChannelDelete(guildID string, channel *platform.Channel) {
	if !e.watches(guildID) {
		return
	}
	e.dispatch(func() { e.structural.HandleChannelDelete(guildID, channel) })
}

func (e *Engine) OnWebhookUpdate(guildID, channelID string) {
	if !e.watches(guildID) {
		return
	}
	e.dispatch(func() { e.structural.HandleWebhookUpdate(guildID, channelID) })
}

// Drain waits for in-flight detector invocations to finish.
func (e *Engine) Drain() {
	e.wg.Wait()
}
