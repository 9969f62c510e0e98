// Package platformtest provides an in-memory platform.Client for exercising
// the engine without a live connection.
package platformtest

import (
	"fmt"
	"sync"
	"time"

	"guild-sentinel/internal/platform"
)

// Call records one mutation call against the fake.
type Call struct {
	Method string
	Args   []string
}

// Fake implements platform.Client over in-memory maps. Role mutations are
// applied to the stored members so snapshot/restore round-trips behave like
// the real platform.
type Fake struct {
	mu sync.Mutex

	SelfID  string
	Roles   map[string][]*platform.Role        // guild -> catalog
	Members map[string]*platform.Member        // guild:user -> member
	Audit   map[int][]*platform.AuditEntry     // action -> entries, newest first
	History map[string][]*platform.Message     // channel -> recent messages
	Hooks   map[string][]*platform.Webhook     // channel -> webhooks
	Errs    map[string]error                   // method -> injected error

	Calls     []Call
	EmbedLog  []string
	nextMsgID int
}

func NewFake() *Fake {
	return &Fake{
		Roles:   make(map[string][]*platform.Role),
		Members: make(map[string]*platform.Member),
		Audit:   make(map[int][]*platform.AuditEntry),
		History: make(map[string][]*platform.Message),
		Hooks:   make(map[string][]*platform.Webhook),
		Errs:    make(map[string]error),
	}
}

func memberKey(guildID, userID string) string { return guildID + ":" + userID }

// AddMember registers a member; roleIDs should include the @everyone role
// (the guild ID) when modeling a real member.
func (f *Fake) AddMember(guildID string, m *platform.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Members[memberKey(guildID, m.UserID)] = m
}

func (f *Fake) record(method string, args ...string) {
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
}

// CallsOf returns the recorded calls for a method.
func (f *Fake) CallsOf(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) Called(method string) bool {
	return len(f.CallsOf(method)) > 0
}

func (f *Fake) err(method string) error {
	return f.Errs[method]
}

func (f *Fake) BotUserID() string { return f.SelfID }

func (f *Fake) RoleByName(guildID, name string) (*platform.Role, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("RoleByName"); err != nil {
		return nil, false, err
	}
	for _, r := range f.Roles[guildID] {
		if r.Name == name {
			return r, true, nil
		}
	}
	return nil, false, nil
}

func (f *Fake) GuildRoles(guildID string) ([]*platform.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("GuildRoles"); err != nil {
		return nil, err
	}
	return f.Roles[guildID], nil
}

func (f *Fake) Member(guildID, userID string) (*platform.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("Member"); err != nil {
		return nil, err
	}
	m, ok := f.Members[memberKey(guildID, userID)]
	if !ok {
		return nil, fmt.Errorf("member %s not found", userID)
	}
	cp := *m
	cp.RoleIDs = append([]string(nil), m.RoleIDs...)
	return &cp, nil
}

func (f *Fake) SetMemberRoles(guildID, userID string, roleIDs []string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetMemberRoles", guildID, userID, fmt.Sprint(roleIDs), reason)
	if err := f.err("SetMemberRoles"); err != nil {
		return err
	}
	if m, ok := f.Members[memberKey(guildID, userID)]; ok {
		// @everyone always remains
		kept := []string{}
		for _, id := range m.RoleIDs {
			if id == guildID {
				kept = append(kept, id)
			}
		}
		m.RoleIDs = append(kept, roleIDs...)
	}
	return nil
}

func (f *Fake) AddMemberRole(guildID, userID, roleID string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddMemberRole", guildID, userID, roleID, reason)
	if err := f.err("AddMemberRole"); err != nil {
		return err
	}
	if m, ok := f.Members[memberKey(guildID, userID)]; ok {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}
	return nil
}

func (f *Fake) RemoveMemberRole(guildID, userID, roleID string, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveMemberRole", guildID, userID, roleID, reason)
	if err := f.err("RemoveMemberRole"); err != nil {
		return err
	}
	if m, ok := f.Members[memberKey(guildID, userID)]; ok {
		kept := m.RoleIDs[:0]
		for _, id := range m.RoleIDs {
			if id != roleID {
				kept = append(kept, id)
			}
		}
		m.RoleIDs = kept
	}
	return nil
}

func (f *Fake) TimeoutMember(guildID, userID string, duration time.Duration, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("TimeoutMember", guildID, userID, duration.String(), reason)
	return f.err("TimeoutMember")
}

func (f *Fake) BanUser(guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BanUser", guildID, userID, reason)
	return f.err("BanUser")
}

func (f *Fake) DeleteRole(guildID, roleID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteRole", guildID, roleID, reason)
	return f.err("DeleteRole")
}

func (f *Fake) DeleteChannel(channelID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteChannel", channelID, reason)
	return f.err("DeleteChannel")
}

func (f *Fake) RenameChannel(channelID, name, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RenameChannel", channelID, name, reason)
	return f.err("RenameChannel")
}

func (f *Fake) ChannelWebhooks(channelID string) ([]*platform.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("ChannelWebhooks"); err != nil {
		return nil, err
	}
	return f.Hooks[channelID], nil
}

func (f *Fake) DeleteWebhook(webhookID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteWebhook", webhookID, reason)
	return f.err("DeleteWebhook")
}

func (f *Fake) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteMessage", channelID, messageID)
	return f.err("DeleteMessage")
}

func (f *Fake) BulkDeleteMessages(channelID string, messageIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BulkDeleteMessages", append([]string{channelID}, messageIDs...)...)
	return f.err("BulkDeleteMessages")
}

func (f *Fake) RecentMessages(channelID string, limit int) ([]*platform.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("RecentMessages"); err != nil {
		return nil, err
	}
	msgs := f.History[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *Fake) SendMessage(channelID, content string) (*platform.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendMessage", channelID, content)
	if err := f.err("SendMessage"); err != nil {
		return nil, err
	}
	f.nextMsgID++
	return &platform.Message{
		ID:        fmt.Sprintf("sent-%d", f.nextMsgID),
		ChannelID: channelID,
		Content:   content,
	}, nil
}

func (f *Fake) SendLogEmbed(channelID, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SendLogEmbed", channelID, description)
	if err := f.err("SendLogEmbed"); err != nil {
		return err
	}
	f.EmbedLog = append(f.EmbedLog, description)
	return nil
}

func (f *Fake) FetchAuditLog(guildID string, actionType, limit int) ([]*platform.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err("FetchAuditLog"); err != nil {
		return nil, err
	}
	entries := f.Audit[actionType]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
