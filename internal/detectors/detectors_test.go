package detectors

import (
	"sync"
	"time"

	"guild-sentinel/internal/audit"
	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/platform/platformtest"
	"guild-sentinel/internal/policy"
	"guild-sentinel/internal/quarantine"
)

const testGuild = "guild-1"

// recordingDescriber captures notifier output for assertions.
type recordingDescriber struct {
	mu         sync.Mutex
	actions    []string
	transients []string
}

func (r *recordingDescriber) LogAction(guildID, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, description)
}

func (r *recordingDescriber) Transient(channelID, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transients = append(r.transients, content)
}

func (r *recordingDescriber) actionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

func (r *recordingDescriber) hasAction(want string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a == want {
			return true
		}
	}
	return false
}

type fixture struct {
	fake      *platformtest.Fake
	resolver  *audit.Resolver
	gate      *policy.Gate
	manager   *quarantine.Manager
	describer *recordingDescriber
}

func newDetectorFixture(approvedUsers, approvedBots []string) *fixture {
	fake := platformtest.NewFake()
	fake.SelfID = "self-bot"
	fake.Roles[testGuild] = []*platform.Role{
		{ID: testGuild, Name: "@everyone"},
		{ID: "r-admin", Name: "Admin", Permissions: platform.PermissionAdministrator},
		{ID: "r-member", Name: "Member"},
		{ID: "r-quarantine", Name: "Quarantine"},
	}
	return &fixture{
		fake:      fake,
		resolver:  audit.NewResolver(fake),
		gate:      policy.NewGate(approvedUsers, approvedBots, func() string { return fake.SelfID }),
		manager:   quarantine.NewManager(fake, "Quarantine", "Member"),
		describer: &recordingDescriber{},
	}
}

func (f *fixture) addMember(userID string, roleIDs ...string) {
	f.fake.AddMember(testGuild, &platform.Member{
		UserID:   userID,
		Username: userID,
		RoleIDs:  append([]string{testGuild}, roleIDs...),
	})
}

func (f *fixture) auditEntry(actionType int, actorID, targetID string, at time.Time) {
	f.fake.Audit[actionType] = append([]*platform.AuditEntry{{
		ActorID:    actorID,
		TargetID:   targetID,
		ActionType: actionType,
		CreatedAt:  at,
	}}, f.fake.Audit[actionType]...)
}
