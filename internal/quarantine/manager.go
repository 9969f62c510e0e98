// Package quarantine owns the containment state machine: snapshot a member's
// roles, strip them, apply the quarantine role, and later lift or reverse.
package quarantine

import (
	"errors"
	"fmt"
	"sync"

	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
)

// ErrQuarantineRoleNotFound means the configured quarantine role is absent
// from the guild's role catalog. Nothing is mutated in that case.
var ErrQuarantineRoleNotFound = errors.New("quarantine role not found in guild")

// ErrDefaultRoleNotFound means the configured post-quarantine role is absent.
var ErrDefaultRoleNotFound = errors.New("default role not found in guild")

// RoleRef identifies a platform role captured in a snapshot.
type RoleRef struct {
	ID   string
	Name string
}

type record struct {
	savedRoles []RoleRef
	active     bool
}

// Manager serializes all containment mutations per member. A record is
// created the first time a member is contained and destroyed only by Reverse;
// lifting quarantine leaves the snapshot in place.
type Manager struct {
	client             platform.Client
	quarantineRoleName string
	defaultRoleName    string

	mu      sync.Mutex
	records map[string]*record
	locks   map[string]*sync.Mutex
}

func NewManager(client platform.Client, quarantineRoleName, defaultRoleName string) *Manager {
	return &Manager{
		client:             client,
		quarantineRoleName: quarantineRoleName,
		defaultRoleName:    defaultRoleName,
		records:            make(map[string]*record),
		locks:              make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, exists := m.locks[userID]
	if !exists {
		l = &sync.Mutex{}
		m.locks[userID] = l
	}
	return l
}

// Quarantine strips all of the member's roles (snapshotting them first) and
// applies the quarantine role. Re-entry while a record is active re-applies
// the strip and role without overwriting the original snapshot.
func (m *Manager) Quarantine(guildID, userID, reason string) error {
	l := m.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	role, found, err := m.client.RoleByName(guildID, m.quarantineRoleName)
	if err != nil {
		return fmt.Errorf("quarantine role lookup failed: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrQuarantineRoleNotFound, m.quarantineRoleName)
	}

	if err := m.captureSnapshot(guildID, userID); err != nil {
		return err
	}

	if err := m.client.SetMemberRoles(guildID, userID, nil, reason); err != nil {
		// Keep going: applying the quarantine role still limits the member
		logging.Error("failed to strip roles from %s: %v", userID, err)
	}
	if err := m.client.AddMemberRole(guildID, userID, role.ID, reason); err != nil {
		logging.Error("failed to add quarantine role to %s: %v", userID, err)
	}
	return nil
}

// StripAll snapshots and clears the member's roles without applying the
// quarantine role (the link and spam containment paths).
func (m *Manager) StripAll(guildID, userID, reason string) error {
	l := m.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	if err := m.captureSnapshot(guildID, userID); err != nil {
		return err
	}

	if err := m.client.SetMemberRoles(guildID, userID, nil, reason); err != nil {
		logging.Error("failed to strip roles from %s: %v", userID, err)
	}
	return nil
}

// captureSnapshot records the member's non-@everyone roles unless an active
// record already exists. Callers hold the member lock.
func (m *Manager) captureSnapshot(guildID, userID string) error {
	m.mu.Lock()
	rec, exists := m.records[userID]
	m.mu.Unlock()
	if exists && rec.active {
		return nil
	}

	member, err := m.client.Member(guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch member for snapshot: %w", err)
	}

	names := m.roleNames(guildID)
	saved := make([]RoleRef, 0, len(member.RoleIDs))
	for _, id := range member.RoleIDs {
		if id == guildID {
			// @everyone shares the guild's ID and is never stripped
			continue
		}
		saved = append(saved, RoleRef{ID: id, Name: names[id]})
	}

	m.mu.Lock()
	m.records[userID] = &record{savedRoles: saved, active: true}
	m.mu.Unlock()
	return nil
}

func (m *Manager) roleNames(guildID string) map[string]string {
	names := make(map[string]string)
	roles, err := m.client.GuildRoles(guildID)
	if err != nil {
		logging.Warn("failed to resolve role names for snapshot: %v", err)
		return names
	}
	for _, r := range roles {
		names[r.ID] = r.Name
	}
	return names
}

// LiftToDefault removes the quarantine role and grants the configured default
// role. The stored snapshot is neither consulted nor cleared, so a later
// Reverse still restores the pre-quarantine role set.
func (m *Manager) LiftToDefault(guildID, userID string) error {
	l := m.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	qRole, found, err := m.client.RoleByName(guildID, m.quarantineRoleName)
	if err != nil {
		return fmt.Errorf("quarantine role lookup failed: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrQuarantineRoleNotFound, m.quarantineRoleName)
	}

	dRole, found, err := m.client.RoleByName(guildID, m.defaultRoleName)
	if err != nil {
		return fmt.Errorf("default role lookup failed: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrDefaultRoleNotFound, m.defaultRoleName)
	}

	if err := m.client.RemoveMemberRole(guildID, userID, qRole.ID, "Quarantine lifted"); err != nil {
		logging.Error("failed to remove quarantine role from %s: %v", userID, err)
	}
	if err := m.client.AddMemberRole(guildID, userID, dRole.ID, "Quarantine lifted"); err != nil {
		logging.Error("failed to grant default role to %s: %v", userID, err)
	}
	return nil
}

// Reverse restores exactly the snapshotted role set via a full replace and
// deletes the record. No-op when no record exists.
func (m *Manager) Reverse(guildID, userID string) error {
	l := m.lockFor(userID)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	rec, exists := m.records[userID]
	m.mu.Unlock()
	if !exists {
		return nil
	}

	roleIDs := make([]string, 0, len(rec.savedRoles))
	for _, r := range rec.savedRoles {
		roleIDs = append(roleIDs, r.ID)
	}

	if err := m.client.SetMemberRoles(guildID, userID, roleIDs, "Containment reversed"); err != nil {
		// Keep the record so the restore can be retried
		return fmt.Errorf("failed to restore roles for %s: %w", userID, err)
	}

	m.mu.Lock()
	delete(m.records, userID)
	m.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the member's saved role set, if a record exists.
func (m *Manager) Snapshot(userID string) ([]RoleRef, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, exists := m.records[userID]
	if !exists {
		return nil, false
	}
	out := make([]RoleRef, len(rec.savedRoles))
	copy(out, rec.savedRoles)
	return out, true
}
