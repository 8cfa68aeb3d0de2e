// Package estate implements the property-listing transaction engine: a
// registry of live listings keyed by marker location, the Sell/Rent
// transaction variants, marker sign rendering, and flat-record persistence.
//
// The engine never touches world state directly. Every operation receives an
// Env carrying the external collaborators (claim registry, economy, marker
// access, messaging), so the world binds real state and tests bind stubs.
package estate

import (
	"fmt"
	"time"

	"realestate.gg/internal/sim/tuning"
)

// Location is the world coordinate of a marker block. It is the primary key
// of a transaction within the store.
type Location struct {
	World string
	X     int
	Y     int
	Z     int
}

func (l Location) String() string {
	return fmt.Sprintf("[%s, X: %d, Y: %d, Z: %d]", l.World, l.X, l.Y, l.Z)
}

// Claim is the engine's view of a registered region. Implementations are
// resolved fresh through the ClaimRegistry on every operation; the engine
// never caches one across ticks.
type Claim interface {
	IsWilderness() bool
	IsParent() bool
	IsSub() bool
	// OwnerID is the account owning the claim. Sub-claims report the parent
	// claim's owner. Empty means an administrative (server) claim.
	OwnerID() string
	OwnerName() string
	Parent() Claim
	Area() int
	Location() Location
}

// ClaimRegistry is the external territory subsystem boundary.
type ClaimRegistry interface {
	// At resolves the claim covering a location, or nil for wilderness.
	At(loc Location) Claim
	// RemainingAllowance is the player's unspent claim-allowance budget.
	RemainingAllowance(playerID string) int
	// Transfer moves ownership of a parent claim, or grants the buyer
	// standing on a sub-claim.
	Transfer(c Claim, newOwner, oldOwner string)
	// AddMember and RemoveMember adjust access without changing ownership.
	AddMember(c Claim, playerID string)
	RemoveMember(c Claim, playerID string)
}

// Economy is the payment ledger boundary.
type Economy interface {
	// Pay moves amount from payer to receiver. An empty receiver pays into
	// the server sink; an empty payer draws from it.
	Pay(receiver, payer string, amount float64, allowNegative bool) bool
	Format(amount float64) string
	CurrencyNamePlural() string
}

// Messenger delivers plain-text notices to online players.
type Messenger interface {
	Send(recipientID, text string)
	Online(recipientID string) bool
}

// Mailbox stores notices for offline players. May be absent.
type Mailbox interface {
	AddMail(recipientID, text string)
}

// Directory resolves account identifiers to display names.
type Directory interface {
	Name(playerID string) string
}

// MarkerAccess reads and writes the physical marker a listing is bound to.
type MarkerAccess interface {
	Exists(loc Location) bool
	SetLines(loc Location, lines SignLines)
	Clear(loc Location)
}

// ListingDB persists live listings. May be absent (in-memory store).
type ListingDB interface {
	PutListing(rec Record) error
	DeleteListing(loc Location) error
}

// AuditSink receives dated trade-log lines. May be absent.
type AuditSink interface {
	AppendLine(line string) error
}

// Actor is a player performing an operation against a listing.
type Actor interface {
	ID() string
	Name() string
	HasPermission(perm string) bool
	Pos() Location
}

// Env is the context object passed into every store and transaction
// operation. It replaces process-wide singleton access so tests can
// substitute fakes without global mutation.
type Env struct {
	Claims    ClaimRegistry
	Economy   Economy
	Markers   MarkerAccess
	Messenger Messenger
	Mailbox   Mailbox // optional
	Names     Directory
	DB        ListingDB // optional
	Log       AuditSink // optional

	Store *Store
	Cfg   *tuning.Tuning
	Msg   *Messages
	Now   func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// tierOf maps a claim to its permission/display tier.
func tierOf(c Claim) string {
	if c.IsParent() {
		return "claim"
	}
	return "subclaim"
}
