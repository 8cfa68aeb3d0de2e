package world

import (
	"testing"

	"realestate.gg/internal/protocol"
)

func TestActionResultUnknownCodeSanitized(t *testing.T) {
	ev := actionResult(1, "X", false, "E_NOT_DEFINED", "")
	if got, _ := ev["code"].(string); got != protocol.ErrInternal {
		t.Fatalf("code=%q want %q", got, protocol.ErrInternal)
	}
	if msg, _ := ev["msg"].(string); msg == "" {
		t.Fatalf("sanitized result should carry a message")
	}
}

func TestInteractStaleListingReportsStale(t *testing.T) {
	w := newTestWorld()
	seller := join(t, w, "seller")
	buyer := join(t, w, "buyer")
	claim := addClaim(w, seller.ID, 0, 0, 9, 9)
	pos := [3]int{7, 64, 7}

	instant(w, seller, protocol.InstantReq{ID: "l1", Type: protocol.InstantListSale, Pos: pos, Price: 10})
	claim.Owner = "P999999" // changed hands outside the listing

	instant(w, buyer, protocol.InstantReq{ID: "b1", Type: protocol.InstantInteractMarker, Pos: pos})
	if res := lastResult(t, buyer); res["code"] != protocol.ErrStale {
		t.Fatalf("expected stale result, got %v", res)
	}
	if w.store.At(w.locOf(vec3(pos))) != nil {
		t.Fatalf("stale listing should be retired")
	}
	if w.balances[buyer.ID] != 1000 {
		t.Fatalf("no payment should happen, balance = %v", w.balances[buyer.ID])
	}
}
