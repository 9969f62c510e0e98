package detectors

import (
	"testing"
	"time"

	"guild-sentinel/internal/platform"
)

func newStructuralFixture(approvedUsers []string) (*fixture, *StructuralChange) {
	f := newDetectorFixture(approvedUsers, nil)
	d := NewStructuralChange(f.fake, f.resolver, f.gate, f.manager, f.describer)
	return f, d
}

func TestRoleCreateRevertedAndActorContained(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.addMember("attacker", "r-member")
	f.auditEntry(platform.AuditRoleCreate, "attacker", "r-new", time.Now())

	d.HandleRoleCreate(testGuild, &platform.Role{ID: "r-new", Name: "Backdoor"})

	dels := f.fake.CallsOf("DeleteRole")
	if len(dels) != 1 || dels[0].Args[1] != "r-new" {
		t.Fatalf("role deletes = %+v", dels)
	}
	if _, ok := f.manager.Snapshot("attacker"); !ok {
		t.Fatal("actor should be quarantined")
	}
	want := "Role `Backdoor` created by attacker was deleted and all roles were removed from attacker, who was also assigned the quarantine role."
	if !f.describer.hasAction(want) {
		t.Fatalf("actions = %v", f.describer.actions)
	}
}

func TestManagedRoleIgnored(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.auditEntry(platform.AuditRoleCreate, "attacker", "r-new", time.Now())

	d.HandleRoleCreate(testGuild, &platform.Role{ID: "r-new", Name: "Integration", Managed: true})

	if len(f.fake.Calls) != 0 {
		t.Fatalf("managed role triggered calls: %+v", f.fake.Calls)
	}
}

func TestAttributionMissMeansNoAction(t *testing.T) {
	f, d := newStructuralFixture(nil)

	d.HandleRoleCreate(testGuild, &platform.Role{ID: "r-new", Name: "Backdoor"})

	if f.fake.Called("DeleteRole") || f.fake.Called("SetMemberRoles") {
		t.Fatal("no revert or containment without attribution")
	}
	if got := f.describer.actionCount(); got != 0 {
		t.Fatalf("actions = %d, want 0", got)
	}
}

func TestApprovedActorSkipped(t *testing.T) {
	f, d := newStructuralFixture([]string{"admin"})
	f.auditEntry(platform.AuditRoleCreate, "admin", "r-new", time.Now())

	d.HandleRoleCreate(testGuild, &platform.Role{ID: "r-new", Name: "Legit"})

	if f.fake.Called("DeleteRole") {
		t.Fatal("approved actor's role must survive")
	}
}

func TestChannelCreateReverted(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.addMember("attacker", "r-member")
	f.auditEntry(platform.AuditChannelCreate, "attacker", "c-new", time.Now())

	d.HandleChannelCreate(testGuild, &platform.Channel{ID: "c-new", GuildID: testGuild, Name: "spam"})

	dels := f.fake.CallsOf("DeleteChannel")
	if len(dels) != 1 || dels[0].Args[0] != "c-new" {
		t.Fatalf("channel deletes = %+v", dels)
	}
	if _, ok := f.manager.Snapshot("attacker"); !ok {
		t.Fatal("actor should be quarantined")
	}
}

func TestChannelUpdateRevertedToOldName(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.addMember("attacker", "r-member")
	f.auditEntry(platform.AuditChannelUpdate, "attacker", "c-1", time.Now())

	d.HandleChannelUpdate(testGuild, "general", &platform.Channel{ID: "c-1", GuildID: testGuild, Name: "hacked"})

	renames := f.fake.CallsOf("RenameChannel")
	if len(renames) != 1 || renames[0].Args[0] != "c-1" || renames[0].Args[1] != "general" {
		t.Fatalf("renames = %+v, want revert to old name", renames)
	}
	if _, ok := f.manager.Snapshot("attacker"); !ok {
		t.Fatal("actor should be quarantined")
	}
}

func TestChannelDeleteContainsWithoutRevert(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.addMember("attacker", "r-member")
	f.auditEntry(platform.AuditChannelDelete, "attacker", "c-1", time.Now())

	d.HandleChannelDelete(testGuild, &platform.Channel{ID: "c-1", GuildID: testGuild, Name: "general"})

	if _, ok := f.manager.Snapshot("attacker"); !ok {
		t.Fatal("actor should be quarantined")
	}
	want := "Channel `general` deleted by attacker, who was assigned the quarantine role and had all their roles removed."
	if !f.describer.hasAction(want) {
		t.Fatalf("actions = %v", f.describer.actions)
	}
}

func TestWebhookUpdateDeletesActorWebhooks(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.addMember("attacker", "r-member")
	f.auditEntry(platform.AuditWebhookCreate, "attacker", "w-1", time.Now())
	f.fake.Hooks["c-1"] = []*platform.Webhook{
		{ID: "w-1", ChannelID: "c-1", Name: "exfil", OwnerID: "attacker"},
		{ID: "w-2", ChannelID: "c-1", Name: "ci", OwnerID: "someone-else"},
	}

	d.HandleWebhookUpdate(testGuild, "c-1")

	dels := f.fake.CallsOf("DeleteWebhook")
	if len(dels) != 1 || dels[0].Args[0] != "w-1" {
		t.Fatalf("webhook deletes = %+v, only the actor's hooks go", dels)
	}
	if _, ok := f.manager.Snapshot("attacker"); !ok {
		t.Fatal("actor should be quarantined")
	}
}

func TestAdminRoleGrantReverted(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.addMember("attacker", "r-member")
	f.addMember("target", "r-member", "r-admin")
	f.auditEntry(platform.AuditMemberRoleUpdate, "attacker", "target", time.Now())

	d.HandleMemberUpdate(testGuild, "target",
		[]string{testGuild, "r-member"},
		[]string{testGuild, "r-member", "r-admin"})

	if _, ok := f.manager.Snapshot("attacker"); !ok {
		t.Fatal("executor should be quarantined")
	}

	var removedAdmin bool
	for _, c := range f.fake.CallsOf("RemoveMemberRole") {
		if c.Args[1] == "target" && c.Args[2] == "r-admin" {
			removedAdmin = true
		}
	}
	if !removedAdmin {
		t.Fatal("granted admin role should be removed from the target")
	}
	want := "Admin role assigned by attacker to target was removed. attacker was also assigned the quarantine role."
	if !f.describer.hasAction(want) {
		t.Fatalf("actions = %v", f.describer.actions)
	}
}

func TestNonAdminRoleGrantIgnored(t *testing.T) {
	f, d := newStructuralFixture(nil)
	f.auditEntry(platform.AuditMemberRoleUpdate, "attacker", "target", time.Now())

	d.HandleMemberUpdate(testGuild, "target",
		[]string{testGuild},
		[]string{testGuild, "r-member"})

	if f.fake.Called("RemoveMemberRole") || f.fake.Called("SetMemberRoles") {
		t.Fatal("non-admin grants are not reverted")
	}
}
