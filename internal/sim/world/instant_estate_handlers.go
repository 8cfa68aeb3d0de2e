package world

import (
	"realestate.gg/internal/protocol"
	"realestate.gg/internal/sim/estate"
)

func handleInstantClaimLand(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	radius := inst.Radius
	if radius <= 0 || radius > 128 {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "radius must be 1..128"))
		return
	}
	pos := vec3(inst.Pos)
	area := (2*radius + 1) * (2*radius + 1)
	reg := (*claimRegistry)(w)
	if reg.RemainingAllowance(p.ID) < area {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoResource, "not enough claim allowance"))
		return
	}
	candidate := &LandClaim{
		ID:      w.newLandID(),
		Owner:   p.ID,
		X1:      pos.X - radius,
		Z1:      pos.Z - radius,
		X2:      pos.X + radius,
		Z2:      pos.Z + radius,
		Members: map[string]bool{},
	}
	for _, c := range w.claims {
		if c.ParentID != "" {
			continue
		}
		if candidate.X1 <= c.X2 && candidate.X2 >= c.X1 && candidate.Z1 <= c.Z2 && candidate.Z2 >= c.Z1 {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "overlaps an existing claim"))
			return
		}
	}
	w.claims[candidate.ID] = candidate
	ev := actionResult(nowTick, inst.ID, true, "", "ok")
	ev["land_id"] = candidate.ID
	p.AddEvent(ev)
}

func handleInstantListSale(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	owner, ok := w.checkListing(p, inst, nowTick)
	if !ok {
		return
	}
	w.createListing(p, inst, nowTick, estate.NewSell(owner, inst.Price, w.locOf(vec3(inst.Pos))))
}

func handleInstantListRent(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	owner, ok := w.checkListing(p, inst, nowTick)
	if !ok {
		return
	}
	w.createListing(p, inst, nowTick, estate.NewRent(owner, inst.Price, inst.PeriodDays, w.locOf(vec3(inst.Pos))))
}

// checkListing validates a LIST_* request and resolves the listing owner:
// the claim's owner, or the server for administrative claims listed by an
// admin.
func (w *World) checkListing(p *Player, inst protocol.InstantReq, nowTick uint64) (string, bool) {
	if ok, cd := p.RateLimitAllow("LIST", nowTick,
		uint64(w.tun.RateLimits.ListWindowTicks), w.tun.RateLimits.ListMax); !ok {
		ev := actionResult(nowTick, inst.ID, false, protocol.ErrRateLimit, "too many listings")
		ev["cooldown_ticks"] = cd
		p.AddEvent(ev)
		return "", false
	}
	if inst.Price < 0 {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "price must not be negative"))
		return "", false
	}
	pos := vec3(inst.Pos)
	claim := w.claimAt(pos)
	if claim == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no claim here"))
		return "", false
	}
	view := claimView{w: w, c: claim}
	tier := "claim"
	if view.IsSub() {
		tier = "subclaim"
	}
	if !p.Perms["realestate."+tier+".sell"] {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "no listing permission"))
		return "", false
	}
	owner := view.OwnerID()
	if owner == "" {
		// Administrative claim: only admins list it, on the server's behalf.
		if !p.Perms["realestate.admin"] {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "not your claim"))
			return "", false
		}
		return "", true
	}
	if owner != p.ID {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "not your claim"))
		return "", false
	}
	return owner, true
}

func (w *World) createListing(p *Player, inst protocol.InstantReq, nowTick uint64, t estate.Transaction) {
	pos := vec3(inst.Pos)
	if w.store.At(w.locOf(pos)) != nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "location already listed"))
		return
	}
	w.ensureSign(pos)
	if !w.store.Create(w.env, t) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "location already listed"))
		return
	}
	ev := actionResult(nowTick, inst.ID, true, "", "ok")
	ev["kind"] = t.Kind()
	p.AddEvent(ev)
}

func handleInstantInteractMarker(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	t := w.store.At(w.locOf(vec3(inst.Pos)))
	if t == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no listing here"))
		return
	}
	stale := w.listingStale(t)
	t.Interact(w.env, actorView{w: w, p: p})
	if stale {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrStale, "claim changed hands since listing"))
		return
	}
	p.AddEvent(actionResult(nowTick, inst.ID, true, "", "ok"))
}

// listingStale reports whether the listed claim's owner no longer matches the
// listing. The transaction cancels itself on interact; the handler only picks
// the result code.
func (w *World) listingStale(t estate.Transaction) bool {
	if t.Owner() == "" {
		return false
	}
	claim := w.claimAt(vec3Of(t.Marker()))
	if claim == nil || claim.ParentID != "" {
		return false
	}
	return (claimView{w: w, c: claim}).OwnerID() != t.Owner()
}

func handleInstantPreviewMarker(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	t := w.store.At(w.locOf(vec3(inst.Pos)))
	if t == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no listing here"))
		return
	}
	t.Preview(w.env, actorView{w: w, p: p})
	p.AddEvent(actionResult(nowTick, inst.ID, true, "", "ok"))
}

func handleInstantMarkerInfo(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	t := w.store.At(w.locOf(vec3(inst.Pos)))
	if t == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no listing here"))
		return
	}
	t.MsgInfo(w.env, p.ID)
	p.AddEvent(actionResult(nowTick, inst.ID, true, "", "ok"))
}

func handleInstantCancelListing(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	t := w.store.At(w.locOf(vec3(inst.Pos)))
	if t == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no listing here"))
		return
	}
	admin := p.Perms["realestate.admin"]
	if t.Owner() != p.ID && !admin {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "not your listing"))
		return
	}
	if !t.TryCancel(w.env, actorView{w: w, p: p}, inst.Force && admin) {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrConflict, "listing refused cancellation"))
		return
	}
	p.AddEvent(actionResult(nowTick, inst.ID, true, "", "cancelled"))
}

func handleInstantBreakMarker(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	pos := vec3(inst.Pos)
	if w.signs[pos] == nil {
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrInvalidTarget, "no marker here"))
		return
	}
	claim := w.claimAt(pos)
	if claim != nil {
		owner := (claimView{w: w, c: claim}).OwnerID()
		if owner != "" && owner != p.ID && !p.Perms["realestate.admin"] {
			p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrNoPermission, "not your marker"))
			return
		}
	}
	delete(w.signs, pos)
	// The listing itself is retired by the next sweep, which observes the
	// missing marker.
	p.AddEvent(actionResult(nowTick, inst.ID, true, "", "ok"))
}

func handleInstantBalance(w *World, p *Player, inst protocol.InstantReq, nowTick uint64) {
	ev := actionResult(nowTick, inst.ID, true, "", "ok")
	ev["balance"] = w.balances[p.ID]
	p.AddEvent(ev)
}
