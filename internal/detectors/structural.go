package detectors

import (
	"fmt"

	"guild-sentinel/internal/audit"
	"guild-sentinel/internal/logging"
	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/policy"
	"guild-sentinel/internal/quarantine"
)

// StructuralChange reacts to audit-tracked mutations of the guild itself:
// admin-role grants, role creation, channel create/update/delete, and
// webhook creation. The pattern is uniform: attribute the change, skip
// approved actors, best-effort revert, contain the actor, describe what
// happened. An attribution miss means no action is taken.
type StructuralChange struct {
	client    platform.Client
	resolver  *audit.Resolver
	gate      *policy.Gate
	manager   *quarantine.Manager
	describer Describer
}

func NewStructuralChange(client platform.Client, resolver *audit.Resolver, gate *policy.Gate,
	manager *quarantine.Manager, describer Describer) *StructuralChange {
	return &StructuralChange{
		client:    client,
		resolver:  resolver,
		gate:      gate,
		manager:   manager,
		describer: describer,
	}
}

func (d *StructuralChange) HandleRoleCreate(guildID string, role *platform.Role) {
	// Managed roles are created by the platform for integrations, not actors
	if role.Managed {
		return
	}

	actor, ok := d.resolver.ResolveActor(guildID, platform.AuditRoleCreate)
	if !ok || d.gate.IsApprovedUser(actor.ID) {
		return
	}

	if err := d.client.DeleteRole(guildID, role.ID, "Unauthorized role creation"); err != nil {
		logging.Error("failed to delete unauthorized role %s: %v", role.ID, err)
	}

	if !d.contain(guildID, actor.ID, "Unauthorized role creation") {
		return
	}
	name := d.username(guildID, actor.ID)
	d.describer.LogAction(guildID, fmt.Sprintf(
		"Role `%s` created by %s was deleted and all roles were removed from %s, who was also assigned the quarantine role.",
		role.Name, name, name))
}

func (d *StructuralChange) HandleChannelCreate(guildID string, channel *platform.Channel) {
	actor, ok := d.resolver.ResolveActor(guildID, platform.AuditChannelCreate)
	if !ok || d.gate.IsApprovedUser(actor.ID) {
		return
	}

	if err := d.client.DeleteChannel(channel.ID, "Unauthorized channel creation"); err != nil {
		logging.Error("failed to delete unauthorized channel %s: %v", channel.ID, err)
	}

	if !d.contain(guildID, actor.ID, "Unauthorized channel creation") {
		return
	}
	name := d.username(guildID, actor.ID)
	d.describer.LogAction(guildID, fmt.Sprintf(
		"Channel `%s` created by %s was deleted and all roles were removed from %s, who was also assigned the quarantine role.",
		channel.Name, name, name))
}

func (d *StructuralChange) HandleChannelUpdate(guildID, oldName string, channel *platform.Channel) {
	actor, ok := d.resolver.ResolveActor(guildID, platform.AuditChannelUpdate)
	if !ok || d.gate.IsApprovedUser(actor.ID) {
		return
	}

	if err := d.client.RenameChannel(channel.ID, oldName, "Unauthorized channel update"); err != nil {
		logging.Error("failed to revert channel %s name: %v", channel.ID, err)
	}

	if !d.contain(guildID, actor.ID, "Unauthorized channel update") {
		return
	}
	name := d.username(guildID, actor.ID)
	d.describer.LogAction(guildID, fmt.Sprintf(
		"Channel `%s` updated by %s was reverted and all roles were removed from %s, who was also assigned the quarantine role.",
		oldName, name, name))
}

func (d *StructuralChange) HandleChannelDelete(guildID string, channel *platform.Channel) {
	actor, ok := d.resolver.ResolveActor(guildID, platform.AuditChannelDelete)
	if !ok || d.gate.IsApprovedUser(actor.ID) {
		return
	}

	// A deleted channel cannot be restored, so there is no revert step
	if !d.contain(guildID, actor.ID, "Unauthorized channel deletion") {
		return
	}
	name := d.username(guildID, actor.ID)
	d.describer.LogAction(guildID, fmt.Sprintf(
		"Channel `%s` deleted by %s, who was assigned the quarantine role and had all their roles removed.",
		channel.Name, name))
}

func (d *StructuralChange) HandleWebhookUpdate(guildID, channelID string) {
	actor, ok := d.resolver.ResolveActor(guildID, platform.AuditWebhookCreate)
	if !ok || d.gate.IsApprovedUser(actor.ID) {
		return
	}

	name := d.username(guildID, actor.ID)

	hooks, err := d.client.ChannelWebhooks(channelID)
	if err != nil {
		logging.Error("failed to fetch webhooks for channel %s: %v", channelID, err)
	}
	for _, hook := range hooks {
		if hook.OwnerID != actor.ID {
			continue
		}
		if err := d.client.DeleteWebhook(hook.ID, "Unauthorized webhook creation"); err != nil {
			logging.Error("failed to delete webhook %s: %v", hook.ID, err)
			continue
		}
		d.describer.LogAction(guildID, fmt.Sprintf(
			"Unauthorized webhook `%s` created by %s has been deleted.", hook.Name, name))
	}

	if !d.contain(guildID, actor.ID, "Unauthorized webhook creation") {
		return
	}
	d.describer.LogAction(guildID, fmt.Sprintf(
		"Unauthorized webhook created by %s has been deleted and the user has been quarantined.", name))
}

// HandleMemberUpdate reacts to role-set changes on a member: a newly granted
// admin role by an unapproved executor is removed from the target and the
// executor is contained.
func (d *StructuralChange) HandleMemberUpdate(guildID, targetUserID string, oldRoleIDs, newRoleIDs []string) {
	added := addedRoles(oldRoleIDs, newRoleIDs)
	if len(added) == 0 {
		return
	}

	roles, err := d.client.GuildRoles(guildID)
	if err != nil {
		logging.Error("failed to fetch roles for member update in %s: %v", guildID, err)
		return
	}
	byID := make(map[string]*platform.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}

	for _, roleID := range added {
		role, exists := byID[roleID]
		if !exists || role.Permissions&platform.PermissionAdministrator == 0 {
			continue
		}

		actor, ok := d.resolver.ResolveActor(guildID, platform.AuditMemberRoleUpdate)
		if !ok || d.gate.IsApprovedUser(actor.ID) {
			continue
		}

		if !d.contain(guildID, actor.ID, "Unauthorized admin role assignment") {
			continue
		}

		if err := d.client.RemoveMemberRole(guildID, targetUserID, role.ID, "Unauthorized admin role assignment"); err != nil {
			logging.Error("failed to remove granted admin role from %s: %v", targetUserID, err)
		}

		executorName := d.username(guildID, actor.ID)
		targetName := d.username(guildID, targetUserID)
		d.describer.LogAction(guildID, fmt.Sprintf(
			"Admin role assigned by %s to %s was removed. %s was also assigned the quarantine role.",
			executorName, targetName, executorName))
	}
}

// contain quarantines the actor and reports whether it succeeded. A missing
// quarantine role is a configuration error: it is logged and nothing is
// mutated.
func (d *StructuralChange) contain(guildID, actorID, reason string) bool {
	if err := d.manager.Quarantine(guildID, actorID, reason); err != nil {
		logging.Error("failed to quarantine %s (%s): %v", actorID, reason, err)
		return false
	}
	return true
}

func (d *StructuralChange) username(guildID, userID string) string {
	m, err := d.client.Member(guildID, userID)
	if err != nil || m.Username == "" {
		return userID
	}
	return m.Username
}

func addedRoles(oldIDs, newIDs []string) []string {
	old := make(map[string]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		old[id] = struct{}{}
	}
	var added []string
	for _, id := range newIDs {
		if _, exists := old[id]; !exists {
			added = append(added, id)
		}
	}
	return added
}
