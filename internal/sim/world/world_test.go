package world

import (
	"strings"
	"testing"

	"realestate.gg/internal/protocol"
	"realestate.gg/internal/sim/tuning"
)

func newTestWorld() *World {
	return New(WorldConfig{
		ID:             "overworld",
		TickRateHz:     5,
		StartBalance:   1000,
		StartAllowance: 2000,
	}, tuning.Default())
}

func join(t *testing.T, w *World, name string) *Player {
	t.Helper()
	out := make(chan []byte, 4)
	resp := make(chan JoinResponse, 1)
	w.handleJoin(JoinRequest{Name: name, Out: out, Resp: resp})
	jr := <-resp
	p := w.players[jr.Welcome.PlayerID]
	if p == nil {
		t.Fatalf("join %s: no player", name)
	}
	return p
}

func instant(w *World, p *Player, inst protocol.InstantReq) {
	w.applyInstant(p, inst, w.tick.Add(1))
}

func lastResult(t *testing.T, p *Player) protocol.Event {
	t.Helper()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i]["type"] == "ACTION_RESULT" {
			return p.events[i]
		}
	}
	t.Fatalf("no ACTION_RESULT for %s", p.ID)
	return nil
}

func notices(p *Player) []string {
	var out []string
	for _, ev := range p.events {
		if ev["type"] == "NOTICE" {
			out = append(out, ev["text"].(string))
		}
	}
	return out
}

func addClaim(w *World, owner string, x1, z1, x2, z2 int) *LandClaim {
	c := &LandClaim{
		ID:      w.newLandID(),
		Owner:   owner,
		X1:      x1,
		Z1:      z1,
		X2:      x2,
		Z2:      z2,
		Members: map[string]bool{},
	}
	w.claims[c.ID] = c
	return c
}

func TestClaimResolutionPrefersSubclaim(t *testing.T) {
	w := newTestWorld()
	parent := addClaim(w, "P1", 0, 0, 31, 31)
	sub := addClaim(w, "", 4, 4, 7, 7)
	sub.ParentID = parent.ID

	got := w.claimAt(Vec3i{X: 5, Y: 64, Z: 5})
	if got != sub {
		t.Fatalf("claimAt inside sub = %v, want the sub-claim", got)
	}
	if w.claimAt(Vec3i{X: 20, Y: 64, Z: 20}) != parent {
		t.Fatalf("claimAt outside sub should be the parent")
	}
	if w.claimAt(Vec3i{X: 100, Y: 64, Z: 100}) != nil {
		t.Fatalf("wilderness should resolve to nil")
	}

	view := claimView{w: w, c: sub}
	if view.OwnerID() != "P1" {
		t.Fatalf("sub-claim must report the parent's owner, got %q", view.OwnerID())
	}
}

func TestClaimLandInstant(t *testing.T) {
	w := newTestWorld()
	p := join(t, w, "alice")

	instant(w, p, protocol.InstantReq{ID: "i1", Type: protocol.InstantClaimLand, Pos: [3]int{0, 64, 0}, Radius: 10})
	if res := lastResult(t, p); res["ok"] != true {
		t.Fatalf("claim land failed: %v", res)
	}

	q := join(t, w, "bob")
	instant(w, q, protocol.InstantReq{ID: "i2", Type: protocol.InstantClaimLand, Pos: [3]int{5, 64, 5}, Radius: 4})
	if res := lastResult(t, q); res["ok"] != false || res["code"] != protocol.ErrConflict {
		t.Fatalf("overlapping claim should conflict: %v", res)
	}
}

func TestListAndBuyFlow(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	buyer := join(t, w, "buyer")
	claim := addClaim(w, seller.ID, 0, 0, 9, 9) // area 100

	pos := [3]int{3, 64, 3}
	instant(w, seller, protocol.InstantReq{ID: "l1", Type: protocol.InstantListSale, Pos: pos, Price: 250})
	if res := lastResult(t, seller); res["ok"] != true {
		t.Fatalf("list failed: %v", res)
	}
	sign := w.signs[vec3(pos)]
	if sign == nil || sign.Lines[1] != "FOR SALE" || sign.Lines[3] != "$ 250" {
		t.Fatalf("sign not rendered: %+v", sign)
	}

	instant(w, buyer, protocol.InstantReq{ID: "b1", Type: protocol.InstantInteractMarker, Pos: pos})
	if claim.Owner != buyer.ID {
		t.Fatalf("claim owner = %q, want buyer", claim.Owner)
	}
	if w.balances[buyer.ID] != 750 || w.balances[seller.ID] != 1250 {
		t.Fatalf("balances = buyer %v seller %v", w.balances[buyer.ID], w.balances[seller.ID])
	}
	if w.store.At(w.locOf(vec3(pos))) != nil {
		t.Fatalf("listing should be retired after the sale")
	}
	if w.signs[vec3(pos)] != nil {
		t.Fatalf("marker should be cleared after the sale")
	}
}

func TestListConflictAndOwnership(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	stranger := join(t, w, "stranger")
	addClaim(w, seller.ID, 0, 0, 9, 9)
	pos := [3]int{1, 64, 1}

	instant(w, stranger, protocol.InstantReq{ID: "x1", Type: protocol.InstantListSale, Pos: pos, Price: 10})
	if res := lastResult(t, stranger); res["code"] != protocol.ErrNoPermission {
		t.Fatalf("listing someone else's claim: %v", res)
	}

	instant(w, seller, protocol.InstantReq{ID: "l1", Type: protocol.InstantListSale, Pos: pos, Price: 10})
	instant(w, seller, protocol.InstantReq{ID: "l2", Type: protocol.InstantListSale, Pos: pos, Price: 99})
	if res := lastResult(t, seller); res["code"] != protocol.ErrConflict {
		t.Fatalf("double listing should conflict: %v", res)
	}
	if w.store.At(w.locOf(vec3(pos))).Price() != 10 {
		t.Fatalf("existing listing was replaced")
	}
}

func TestBrokenMarkerRetiresListingOnSweep(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	addClaim(w, seller.ID, 0, 0, 9, 9)
	pos := [3]int{2, 64, 2}

	instant(w, seller, protocol.InstantReq{ID: "l1", Type: protocol.InstantListSale, Pos: pos, Price: 10})
	instant(w, seller, protocol.InstantReq{ID: "b1", Type: protocol.InstantBreakMarker, Pos: pos})
	if w.store.At(w.locOf(vec3(pos))) == nil {
		t.Fatalf("listing should survive until the sweep observes the missing marker")
	}

	w.store.Tick(w.env)
	if w.store.At(w.locOf(vec3(pos))) != nil {
		t.Fatalf("sweep should retire a listing whose marker is gone")
	}
}

func TestRentFlowGrantsAccess(t *testing.T) {
	w := newTestWorld()
	owner := join(t, w, "owner")
	tenant := join(t, w, "tenant")
	claim := addClaim(w, owner.ID, 0, 0, 9, 9)
	pos := [3]int{4, 64, 4}

	instant(w, owner, protocol.InstantReq{ID: "l1", Type: protocol.InstantListRent, Pos: pos, Price: 50, PeriodDays: 7})
	instant(w, tenant, protocol.InstantReq{ID: "r1", Type: protocol.InstantInteractMarker, Pos: pos})

	if !claim.Members[tenant.ID] {
		t.Fatalf("tenant should gain claim access")
	}
	if claim.Owner != owner.ID {
		t.Fatalf("rent must not move ownership")
	}
	if w.balances[tenant.ID] != 950 || w.balances[owner.ID] != 1050 {
		t.Fatalf("balances = tenant %v owner %v", w.balances[tenant.ID], w.balances[owner.ID])
	}
	if sign := w.signs[vec3(pos)]; sign == nil || sign.Lines[1] != "RENTED" {
		t.Fatalf("sign = %+v", sign)
	}
}

func TestInsufficientFundsNoticeAndNoTransfer(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	buyer := join(t, w, "buyer")
	claim := addClaim(w, seller.ID, 0, 0, 9, 9)
	pos := [3]int{5, 64, 5}

	instant(w, seller, protocol.InstantReq{ID: "l1", Type: protocol.InstantListSale, Pos: pos, Price: 5000})
	instant(w, buyer, protocol.InstantReq{ID: "b1", Type: protocol.InstantInteractMarker, Pos: pos})

	if claim.Owner != seller.ID {
		t.Fatalf("claim must not change hands on a declined payment")
	}
	if w.balances[buyer.ID] != 1000 {
		t.Fatalf("buyer balance = %v", w.balances[buyer.ID])
	}
	found := false
	for _, text := range notices(buyer) {
		if strings.Contains(text, "cannot afford") {
			found = true
		}
	}
	if !found {
		t.Fatalf("buyer should be told the payment was declined: %v", notices(buyer))
	}
	if w.store.At(w.locOf(vec3(pos))) == nil {
		t.Fatalf("listing stays live for the next buyer")
	}
}

func TestOfflineSellerGetsMailOnNextJoin(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	buyer := join(t, w, "buyer")
	addClaim(w, seller.ID, 0, 0, 9, 9)
	pos := [3]int{6, 64, 6}

	instant(w, seller, protocol.InstantReq{ID: "l1", Type: protocol.InstantListSale, Pos: pos, Price: 100})
	w.handleLeave(seller.ID)
	seller.events = nil

	instant(w, buyer, protocol.InstantReq{ID: "b1", Type: protocol.InstantInteractMarker, Pos: pos})
	if len(seller.mail) != 1 || !strings.Contains(seller.mail[0], "has purchased your claim") {
		t.Fatalf("offline seller mail = %v", seller.mail)
	}

	again := join(t, w, "seller")
	if again != seller {
		t.Fatalf("rejoin should reuse the player")
	}
	foundMail := false
	for _, ev := range seller.events {
		if ev["type"] == "MAIL" {
			foundMail = true
		}
	}
	if !foundMail {
		t.Fatalf("mail should be delivered on join: %v", seller.events)
	}
}

func TestListRateLimit(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	addClaim(w, seller.ID, 0, 0, 63, 63)

	max := w.tun.RateLimits.ListMax
	for i := 0; i <= max; i++ {
		instant(w, seller, protocol.InstantReq{
			ID:    "l",
			Type:  protocol.InstantListSale,
			Pos:   [3]int{i, 64, 0},
			Price: 10,
		})
	}
	if res := lastResult(t, seller); res["code"] != protocol.ErrRateLimit {
		t.Fatalf("expected rate limit, got %v", res)
	}
}
