package world

import (
	"realestate.gg/internal/protocol"
)

type Vec3i struct {
	X, Y, Z int
}

// Player is a world participant. Players outlive their connections; balances,
// claims and mail stay when the client drops.
type Player struct {
	ID    string
	Name  string
	Pos   Vec3i
	Perms map[string]bool

	// Allowance is the scarce claim-allowance budget limiting total claimed
	// area.
	Allowance int

	events []protocol.Event
	mail   []string
	rate   map[string]*rateWindow
}

func (p *Player) AddEvent(ev protocol.Event) {
	p.events = append(p.events, ev)
}

type rateWindow struct {
	start uint64
	count int
}

// RateLimitAllow admits up to max actions of a kind per window of ticks and
// reports the cooldown in ticks when it refuses.
func (p *Player) RateLimitAllow(kind string, nowTick, windowTicks uint64, max int) (bool, uint64) {
	if windowTicks == 0 || max <= 0 {
		return true, 0
	}
	if p.rate == nil {
		p.rate = map[string]*rateWindow{}
	}
	rw := p.rate[kind]
	if rw == nil || nowTick-rw.start >= windowTicks {
		p.rate[kind] = &rateWindow{start: nowTick, count: 1}
		return true, 0
	}
	if rw.count < max {
		rw.count++
		return true, 0
	}
	return false, rw.start + windowTicks - nowTick
}

// LandClaim is a rectangular owned region. A sub-claim nests inside its
// parent and is tradable independently while the parent keeps its owner.
type LandClaim struct {
	ID       string
	Owner    string // player id; empty for administrative (server) claims
	ParentID string // empty for parent claims
	X1, Z1   int    // inclusive bounds
	X2, Z2   int
	Members  map[string]bool
}

func (c *LandClaim) Contains(pos Vec3i) bool {
	return pos.X >= c.X1 && pos.X <= c.X2 && pos.Z >= c.Z1 && pos.Z <= c.Z2
}

func (c *LandClaim) Area() int {
	return (c.X2 - c.X1 + 1) * (c.Z2 - c.Z1 + 1)
}

// Sign is the physical marker a listing renders onto.
type Sign struct {
	Pos         Vec3i
	Lines       [4]string
	UpdatedTick uint64
}
