// Package policy decides which actors are exempt from containment.
package policy

// Gate holds the immutable approved-actor sets loaded at startup. The
// engine's own bot user is always exempt; its ID is looked up lazily because
// it is only known once the session is connected.
type Gate struct {
	approvedUsers map[string]struct{}
	approvedBots  map[string]struct{}
	selfID        func() string
}

func NewGate(approvedUsers, approvedBots []string, selfID func() string) *Gate {
	g := &Gate{
		approvedUsers: make(map[string]struct{}, len(approvedUsers)),
		approvedBots:  make(map[string]struct{}, len(approvedBots)),
		selfID:        selfID,
	}
	for _, id := range approvedUsers {
		g.approvedUsers[id] = struct{}{}
	}
	for _, id := range approvedBots {
		g.approvedBots[id] = struct{}{}
	}
	return g
}

func (g *Gate) IsApprovedUser(id string) bool {
	if id == "" {
		return false
	}
	if g.selfID != nil && id == g.selfID() {
		return true
	}
	_, ok := g.approvedUsers[id]
	return ok
}

func (g *Gate) IsApprovedBot(id string) bool {
	if id == "" {
		return false
	}
	_, ok := g.approvedBots[id]
	return ok
}
