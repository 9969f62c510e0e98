package detectors

import (
	"testing"
	"time"

	"guild-sentinel/internal/platform"
	"guild-sentinel/internal/ratewindow"
)

func newLeaveFixture(approvedUsers []string, threshold int) (*fixture, *LeaveBurst) {
	f := newDetectorFixture(approvedUsers, nil)
	d := NewLeaveBurst(f.fake, ratewindow.New(60*time.Second), f.resolver, f.gate, f.describer, threshold, 60*time.Second)
	return f, d
}

func (f *fixture) kicks(actorID string, n int, newest time.Time) {
	for i := 0; i < n; i++ {
		f.auditEntry(platform.AuditMemberKick, actorID, "victim", newest.Add(-time.Duration(i)*time.Second))
	}
}

func bannedUsers(f *fixture) map[string]bool {
	out := make(map[string]bool)
	for _, c := range f.fake.CallsOf("BanUser") {
		out[c.Args[1]] = true
	}
	return out
}

func TestLeaveBurstBansSuspiciousKickers(t *testing.T) {
	f, d := newLeaveFixture(nil, 5)
	now := time.Now()
	f.kicks("attacker", 4, now)

	for i := 0; i < 6; i++ {
		d.HandleLeave(testGuild, "leaver", now.Add(time.Duration(i)*time.Second))
	}

	if !f.describer.hasAction("Mass leave detected! Investigating...") {
		t.Fatalf("actions = %v", f.describer.actions)
	}
	if !bannedUsers(f)["attacker"] {
		t.Fatal("attacker with 4 kicks should be banned")
	}
	if !f.describer.hasAction("Banned <@attacker> for suspected mass leave involvement.") {
		t.Fatalf("actions = %v", f.describer.actions)
	}
}

func TestLeaveBurstBelowThresholdNoAction(t *testing.T) {
	f, d := newLeaveFixture(nil, 5)
	now := time.Now()
	f.kicks("attacker", 4, now)

	for i := 0; i < 5; i++ {
		d.HandleLeave(testGuild, "leaver", now.Add(time.Duration(i)*time.Second))
	}

	if f.fake.Called("BanUser") {
		t.Fatal("no bans at or below the threshold")
	}
	if got := f.describer.actionCount(); got != 0 {
		t.Fatalf("actions = %d, want 0", got)
	}
}

func TestLeaveBurstSkipsApprovedActors(t *testing.T) {
	f, d := newLeaveFixture([]string{"mod"}, 5)
	now := time.Now()
	f.kicks("mod", 4, now)
	f.kicks("attacker", 3, now)

	for i := 0; i < 6; i++ {
		d.HandleLeave(testGuild, "leaver", now.Add(time.Duration(i)*time.Second))
	}

	banned := bannedUsers(f)
	if banned["mod"] {
		t.Fatal("approved actor must not be banned")
	}
	if !banned["attacker"] {
		t.Fatal("unapproved suspect should be banned")
	}
}

func TestLeaveBurstIgnoresLightKickers(t *testing.T) {
	f, d := newLeaveFixture(nil, 5)
	now := time.Now()
	// 2 kicks is not more than threshold/2 = 2.5.
	f.kicks("bystander", 2, now)

	for i := 0; i < 6; i++ {
		d.HandleLeave(testGuild, "leaver", now.Add(time.Duration(i)*time.Second))
	}

	if f.fake.Called("BanUser") {
		t.Fatal("actors at or below half the threshold are not suspects")
	}
}
