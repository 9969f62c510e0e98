// Package audit maps structural changes to the actor responsible for them
// using the platform's audit log.
package audit

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
)

const cacheTTL = 5 * time.Second

type cacheEntry struct {
	actorID  string
	targetID string
	storedAt time.Time
}

// Resolver fetches the most recent audit entry of a given action type.
// Results are cached for a few seconds because a single burst of events
// usually maps to one audit entry.
type Resolver struct {
	client platform.Client

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

func NewResolver(client platform.Client) *Resolver {
	return &Resolver{
		client: client,
		cache:  make(map[string]*cacheEntry),
	}
}

// Actor is the executor of an audit-logged action.
type Actor struct {
	ID       string
	TargetID string
}

// ResolveActor returns the executor of the most recent audit entry of
// actionType, or ok=false when no entry exists or the fetch fails. A miss is
// not an error condition: the caller takes no containment action.
func (r *Resolver) ResolveActor(guildID string, actionType int) (Actor, bool) {
	key := guildID + ":" + strconv.Itoa(actionType)

	r.mu.Lock()
	if entry, exists := r.cache[key]; exists && time.Since(entry.storedAt) < cacheTTL {
		r.mu.Unlock()
		return Actor{ID: entry.actorID, TargetID: entry.targetID}, true
	}
	r.mu.Unlock()

	entries, err := r.client.FetchAuditLog(guildID, actionType, 1)
	if err != nil {
		logging.Warn("audit fetch failed for guild %s action %d: %v", guildID, actionType, err)
		return Actor{}, false
	}
	if len(entries) == 0 {
		return Actor{}, false
	}

	entry := entries[0]
	if entry.ActorIsBot {
		// Automated actions are never attributed to a containable actor
		return Actor{}, false
	}

	r.mu.Lock()
	r.cache[key] = &cacheEntry{
		actorID:  entry.ActorID,
		targetID: entry.TargetID,
		storedAt: time.Now(),
	}
	for k, v := range r.cache {
		if time.Since(v.storedAt) > cacheTTL {
			delete(r.cache, k)
		}
	}
	r.mu.Unlock()

	return Actor{ID: entry.ActorID, TargetID: entry.TargetID}, true
}

// Suspect is an actor implicated in a mass-leave event.
type Suspect struct {
	ActorID   string
	KickCount int
	FirstKick time.Time
}

// SuspiciousKickers returns the actors who executed more than threshold/2
// kicks since the given time, ordered by kick count descending, ties broken
// by earliest first kick. Bot executors are skipped.
func (r *Resolver) SuspiciousKickers(guildID string, since time.Time, threshold int) []Suspect {
	entries, err := r.client.FetchAuditLog(guildID, platform.AuditMemberKick, 10)
	if err != nil {
		logging.Warn("kick audit fetch failed for guild %s: %v", guildID, err)
		return nil
	}

	byActor := make(map[string]*Suspect)
	for _, entry := range entries {
		if !entry.CreatedAt.After(since) || entry.ActorIsBot {
			continue
		}
		s, exists := byActor[entry.ActorID]
		if !exists {
			s = &Suspect{ActorID: entry.ActorID, FirstKick: entry.CreatedAt}
			byActor[entry.ActorID] = s
		}
		s.KickCount++
		if entry.CreatedAt.Before(s.FirstKick) {
			s.FirstKick = entry.CreatedAt
		}
	}

	suspects := make([]Suspect, 0, len(byActor))
	for _, s := range byActor {
		if float64(s.KickCount) > float64(threshold)/2 {
			suspects = append(suspects, *s)
		}
	}

	sort.Slice(suspects, func(i, j int) bool {
		if suspects[i].KickCount != suspects[j].KickCount {
			return suspects[i].KickCount > suspects[j].KickCount
		}
		return suspects[i].FirstKick.Before(suspects[j].FirstKick)
	})

	return suspects
}
