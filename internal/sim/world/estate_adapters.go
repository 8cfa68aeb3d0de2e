package world

import (
	"realestate.gg/internal/protocol"
	"realestate.gg/internal/sim/estate"
)

// The estate engine sees the world through narrow interfaces. Each adapter
// below is the world under a different hat; all calls happen on the loop.

// claimAt resolves the claim covering a position, preferring the innermost
// sub-claim over its parent.
func (w *World) claimAt(pos Vec3i) *LandClaim {
	var parent *LandClaim
	for _, c := range w.claims {
		if !c.Contains(pos) {
			continue
		}
		if c.ParentID != "" {
			return c
		}
		parent = c
	}
	return parent
}

// claimView adapts a LandClaim to the estate engine's claim contract.
type claimView struct {
	w *World
	c *LandClaim
}

func (v claimView) IsWilderness() bool { return false }
func (v claimView) IsParent() bool     { return v.c.ParentID == "" }
func (v claimView) IsSub() bool        { return v.c.ParentID != "" }

// OwnerID reports the owning account; sub-claims report the parent's owner.
func (v claimView) OwnerID() string {
	if v.c.ParentID != "" {
		if parent := v.w.claims[v.c.ParentID]; parent != nil {
			return parent.Owner
		}
	}
	return v.c.Owner
}

func (v claimView) OwnerName() string {
	return v.w.nameOf(v.OwnerID())
}

func (v claimView) Parent() estate.Claim {
	if v.c.ParentID == "" {
		return nil
	}
	parent := v.w.claims[v.c.ParentID]
	if parent == nil {
		return nil
	}
	return claimView{w: v.w, c: parent}
}

func (v claimView) Area() int { return v.c.Area() }

func (v claimView) Location() estate.Location {
	return estate.Location{World: v.w.cfg.ID, X: v.c.X1, Y: 0, Z: v.c.Z1}
}

type claimRegistry World

func (r *claimRegistry) world() *World { return (*World)(r) }

func (r *claimRegistry) At(loc estate.Location) estate.Claim {
	w := r.world()
	if loc.World != w.cfg.ID {
		return nil
	}
	c := w.claimAt(vec3Of(loc))
	if c == nil {
		return nil
	}
	return claimView{w: w, c: c}
}

func (r *claimRegistry) RemainingAllowance(playerID string) int {
	w := r.world()
	p := w.players[playerID]
	if p == nil {
		return 0
	}
	used := 0
	for _, c := range w.claims {
		if c.ParentID == "" && c.Owner == playerID {
			used += c.Area()
		}
	}
	return p.Allowance - used
}

func (r *claimRegistry) Transfer(c estate.Claim, newOwner, oldOwner string) {
	v, ok := c.(claimView)
	if !ok {
		return
	}
	if v.c.ParentID != "" {
		// Sub-claim trade grants the buyer standing; the parent keeps its
		// owner.
		if v.c.Members == nil {
			v.c.Members = map[string]bool{}
		}
		v.c.Members[newOwner] = true
		return
	}
	v.c.Owner = newOwner
	v.c.Members = map[string]bool{}
}

func (r *claimRegistry) AddMember(c estate.Claim, playerID string) {
	if v, ok := c.(claimView); ok {
		if v.c.Members == nil {
			v.c.Members = map[string]bool{}
		}
		v.c.Members[playerID] = true
	}
}

func (r *claimRegistry) RemoveMember(c estate.Claim, playerID string) {
	if v, ok := c.(claimView); ok {
		delete(v.c.Members, playerID)
	}
}

// ledger is the payment gateway: a flat coin balance per player, with the
// absent account standing in for the server sink.
type ledger World

func (l *ledger) world() *World { return (*World)(l) }

func (l *ledger) Pay(receiver, payer string, amount float64, allowNegative bool) bool {
	w := l.world()
	if amount < 0 {
		return false
	}
	if payer != "" {
		if w.balances[payer] < amount && !allowNegative {
			w.notify(payer, "You cannot afford this, it costs "+estate.FormatPrice(amount, w.tun.Currency)+".")
			return false
		}
		w.balances[payer] -= amount
	}
	if receiver != "" {
		w.balances[receiver] += amount
	}
	return true
}

func (l *ledger) Format(amount float64) string {
	return estate.FormatPrice(amount, l.world().tun.Currency)
}

func (l *ledger) CurrencyNamePlural() string {
	return l.world().tun.Currency.NamePlural
}

// markerAccess exposes the sign map to the engine.
type markerAccess World

func (m *markerAccess) world() *World { return (*World)(m) }

func (m *markerAccess) Exists(loc estate.Location) bool {
	w := m.world()
	return loc.World == w.cfg.ID && w.signs[vec3Of(loc)] != nil
}

func (m *markerAccess) SetLines(loc estate.Location, lines estate.SignLines) {
	w := m.world()
	s := w.ensureSign(vec3Of(loc))
	s.Lines = lines
	s.UpdatedTick = w.tick.Load()
}

func (m *markerAccess) Clear(loc estate.Location) {
	delete(m.world().signs, vec3Of(loc))
}

func (w *World) ensureSign(pos Vec3i) *Sign {
	s := w.signs[pos]
	if s == nil {
		s = &Sign{Pos: pos}
		w.signs[pos] = s
	}
	return s
}

type messenger World

func (m *messenger) world() *World { return (*World)(m) }

func (m *messenger) Send(recipientID, text string) {
	m.world().notify(recipientID, text)
}

func (m *messenger) Online(recipientID string) bool {
	return m.world().clients[recipientID] != nil
}

func (w *World) notify(recipientID, text string) {
	p := w.players[recipientID]
	if p == nil {
		return
	}
	p.AddEvent(protocol.Event{"t": w.tick.Load(), "type": "NOTICE", "text": text})
}

type mailbox World

func (m *mailbox) AddMail(recipientID, text string) {
	w := (*World)(m)
	if p := w.players[recipientID]; p != nil {
		p.mail = append(p.mail, text)
	}
}

type directory World

func (d *directory) Name(playerID string) string {
	return (*World)(d).nameOf(playerID)
}

func (w *World) nameOf(playerID string) string {
	if playerID == "" {
		return "SERVER"
	}
	if p := w.players[playerID]; p != nil {
		return p.Name
	}
	return playerID
}

// actorView adapts a player to the engine's actor contract.
type actorView struct {
	w *World
	p *Player
}

func (a actorView) ID() string   { return a.p.ID }
func (a actorView) Name() string { return a.p.Name }

func (a actorView) HasPermission(perm string) bool { return a.p.Perms[perm] }

func (a actorView) Pos() estate.Location { return a.w.locOf(a.p.Pos) }
