package estate

import (
	"strings"
	"testing"
	"time"
)

func TestRentInteractStartsTenancy(t *testing.T) {
	store := NewStore()
	env := newTestEnv(store)
	env.registry.claim = sellableClaim("O")

	store.Create(env.Env, NewRent("O", 12.5, 7, markerLoc))
	p := buyer("P")
	store.At(markerLoc).Interact(env.Env, p)

	if len(env.economy.pays) != 1 || env.economy.pays[0].receiver != "O" || env.economy.pays[0].amount != 12.5 {
		t.Fatalf("rent payment = %+v", env.economy.pays)
	}
	r := store.At(markerLoc).(*Rent)
	if !r.Rented() || r.Renter() != "P" {
		t.Fatalf("tenancy not recorded: %+v", r)
	}
	if !env.registry.members["P"] {
		t.Fatalf("renter was not granted claim access")
	}
	if lines := env.markers.lines[markerLoc]; lines[1] != "RENTED" {
		t.Fatalf("sign tag = %q, want RENTED", lines[1])
	}
	if !r.Update(env.Env) {
		t.Fatalf("rented listing must report pending from update")
	}
	if len(env.registry.transfers) != 0 {
		t.Fatalf("rent must never transfer ownership")
	}
}

func TestRentExpiryEndsTenancy(t *testing.T) {
	store := NewStore()
	env := newTestEnv(store)
	env.registry.claim = sellableClaim("O")

	store.Create(env.Env, NewRent("O", 12.5, 7, markerLoc))
	store.At(markerLoc).Interact(env.Env, buyer("P"))

	env.Now = func() time.Time {
		return time.Date(2026, 9, 7, 12, 0, 0, 1, time.UTC) // one period later
	}
	r := store.At(markerLoc).(*Rent)
	if r.Update(env.Env) {
		t.Fatalf("expired tenancy must report not pending")
	}
	if r.Rented() {
		t.Fatalf("tenancy should be over")
	}
	if env.registry.members["P"] {
		t.Fatalf("expired renter must lose claim access")
	}
	if lines := env.markers.lines[markerLoc]; lines[1] != "FOR RENT" {
		t.Fatalf("sign should re-render as available, tag = %q", lines[1])
	}
	if store.At(markerLoc) == nil {
		t.Fatalf("listing survives across tenancies")
	}
}

func TestRentInteractWhileRentedRejected(t *testing.T) {
	store := NewStore()
	env := newTestEnv(store)
	env.registry.claim = sellableClaim("O")

	store.Create(env.Env, NewRent("O", 12.5, 7, markerLoc))
	store.At(markerLoc).Interact(env.Env, buyer("P"))
	store.At(markerLoc).Interact(env.Env, buyer("Q"))

	if len(env.economy.pays) != 1 {
		t.Fatalf("second renter must not be charged")
	}
	if got := env.messenger.sent["Q"]; len(got) != 1 || !strings.Contains(got[0], "already rented") {
		t.Fatalf("notice to second renter = %v", got)
	}
}

func TestRentCancelRefusedWhileRented(t *testing.T) {
	store := NewStore()
	env := newTestEnv(store)
	env.registry.claim = sellableClaim("O")

	store.Create(env.Env, NewRent("O", 12.5, 7, markerLoc))
	store.At(markerLoc).Interact(env.Env, buyer("P"))

	if store.At(markerLoc).TryCancel(env.Env, buyer("O"), false) {
		t.Fatalf("cancel without force must be refused during a tenancy")
	}
	if store.At(markerLoc) == nil {
		t.Fatalf("refused cancel must leave the listing live")
	}

	if !store.At(markerLoc).TryCancel(env.Env, nil, true) {
		t.Fatalf("forced cancel must succeed")
	}
	if store.At(markerLoc) != nil {
		t.Fatalf("forced cancel must retire the listing")
	}
	if env.registry.members["P"] {
		t.Fatalf("forced cancel must revoke the renter's access")
	}
}

func TestRentStaleOwnerCancels(t *testing.T) {
	store := NewStore()
	env := newTestEnv(store)
	env.registry.claim = sellableClaim("B")

	store.Create(env.Env, NewRent("A", 12.5, 7, markerLoc))
	store.At(markerLoc).Interact(env.Env, buyer("P"))

	if len(env.economy.pays) != 0 {
		t.Fatalf("stale rent listing must not charge")
	}
	if store.At(markerLoc) != nil {
		t.Fatalf("stale rent listing must be cancelled")
	}
}
