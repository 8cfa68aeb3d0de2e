package estate

import (
	"fmt"
	"time"
)

// Rent is a recurring-tenancy listing: the renter pays the price for a fixed
// period and gains access to the claim; ownership never moves. The listing
// stays live across tenancies until cancelled or its marker disappears.
type Rent struct {
	listing
	periodDays  int
	renter      string
	rentedUntil time.Time
}

func NewRent(owner string, price float64, periodDays int, marker Location) *Rent {
	if periodDays <= 0 {
		periodDays = 7
	}
	return &Rent{
		listing:    listing{owner: owner, price: price, marker: marker},
		periodDays: periodDays,
	}
}

func (r *Rent) Kind() string    { return KindRent }
func (r *Rent) Renter() string  { return r.renter }
func (r *Rent) PeriodDays() int { return r.periodDays }
func (r *Rent) Rented() bool    { return r.renter != "" }

func (r *Rent) Update(env *Env) bool {
	if !env.Markers.Exists(r.marker) {
		env.Store.Cancel(env, r.marker)
		return false
	}
	if r.renter != "" && !env.now().Before(r.rentedUntil) {
		r.endTenancy(env)
	}
	if r.renter != "" {
		env.Markers.SetLines(r.marker, SignLines{
			env.Cfg.Policy.SignHeader,
			"RENTED",
			env.Names.Name(r.renter),
			remainingText(r.rentedUntil.Sub(env.now())),
		})
	} else {
		env.Markers.SetLines(r.marker, RenderSign(
			env.Cfg.Policy.SignHeader,
			env.Cfg.Policy.RentTag,
			r.ownerName(env),
			r.price,
			env.Cfg.Currency,
		))
	}
	return r.renter != ""
}

func (r *Rent) endTenancy(env *Env) {
	if claim := env.Claims.At(r.marker); claim != nil && !claim.IsWilderness() {
		env.Claims.RemoveMember(claim, r.renter)
	}
	tenant := r.renter
	r.renter = ""
	r.rentedUntil = time.Time{}
	if r.owner != "" {
		r.notifySeller(env, fmt.Sprintf(env.Msg.InfoRentEnded, env.Msg.KeywordClaim, r.marker))
	}
	env.Messenger.Send(tenant, fmt.Sprintf(env.Msg.InfoRentEnded, env.Msg.KeywordClaim, r.marker))
	if env.DB != nil {
		_ = env.DB.PutListing(r.Record())
	}
}

func (r *Rent) TryCancel(env *Env, actor Actor, force bool) bool {
	if r.renter != "" && !force {
		// The tenancy protects the renter until the period runs out.
		if actor != nil {
			env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrAlreadyRented, env.Msg.KeywordClaim))
		}
		return false
	}
	if r.renter != "" {
		if claim := env.Claims.At(r.marker); claim != nil && !claim.IsWilderness() {
			env.Claims.RemoveMember(claim, r.renter)
		}
	}
	env.Store.Cancel(env, r.marker)
	return true
}

func (r *Rent) Interact(env *Env, actor Actor) {
	claim := env.Claims.At(r.marker)
	if claim == nil || claim.IsWilderness() {
		env.Messenger.Send(actor.ID(), env.Msg.ErrClaimDoesNotExist)
		env.Store.Cancel(env, r.marker)
		return
	}
	tier := tierOf(claim)
	keyword := env.Msg.keyword(tier)

	if r.owner != "" && actor.ID() == r.owner {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrAlreadyOwner, keyword))
		return
	}
	if claim.IsParent() && r.owner != "" && r.owner != claim.OwnerID() {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrNotSoldByOwner, keyword))
		env.Store.Cancel(env, r.marker)
		return
	}
	if r.renter != "" {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrAlreadyRented, keyword))
		return
	}
	if !actor.HasPermission("realestate." + tier + ".rent") {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrNoRentPermission, keyword))
		return
	}
	if !env.Economy.Pay(r.owner, actor.ID(), r.price, env.Cfg.Policy.AllowNegativeBalance) {
		return
	}
	env.Claims.AddMember(claim, actor.ID())
	r.renter = actor.ID()
	r.rentedUntil = env.now().Add(time.Duration(r.periodDays) * 24 * time.Hour)

	env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.InfoRented,
		keyword, r.periodDays, env.Economy.Format(r.price)))
	env.Store.AppendLog(env, fmt.Sprintf("%s has rented a %s at %s Price: %s %s",
		actor.Name(), tier, actor.Pos(), trimFloat(r.price), env.Economy.CurrencyNamePlural()))
	r.notifySeller(env, fmt.Sprintf(env.Msg.InfoRentedOut,
		actor.Name(), keyword, actor.Pos(), env.Economy.Format(r.price)))
	if env.DB != nil {
		_ = env.DB.PutListing(r.Record())
	}
	r.Update(env)
}

func (r *Rent) Preview(env *Env, actor Actor) {
	if !actor.HasPermission("realestate.info") {
		env.Messenger.Send(actor.ID(), env.Msg.ErrNoInfoPermission)
		return
	}
	claim := env.Claims.At(r.marker)
	if claim == nil || claim.IsWilderness() {
		env.Messenger.Send(actor.ID(), env.Msg.ErrClaimDoesNotExist)
		return
	}
	tier := tierOf(claim)
	msg := env.Msg.PreviewRentHeader + "\n"
	msg += fmt.Sprintf(env.Msg.PreviewRentGeneral, env.Msg.keyword(tier), env.Economy.Format(r.price), r.periodDays) + "\n"
	if tier == "claim" {
		msg += fmt.Sprintf(env.Msg.PreviewOwner, claim.OwnerName())
	} else {
		msg += fmt.Sprintf(env.Msg.PreviewMainOwner, claim.Parent().OwnerName()) + "\n"
		msg += env.Msg.PreviewSubNote
	}
	env.Messenger.Send(actor.ID(), msg)
}

func (r *Rent) MsgInfo(env *Env, recipientID string) {
	claim := env.Claims.At(r.marker)
	if claim == nil || claim.IsWilderness() {
		r.TryCancel(env, nil, true)
		return
	}
	status := "available"
	if r.renter != "" {
		status = "rented by " + env.Names.Name(r.renter)
	}
	env.Messenger.Send(recipientID, fmt.Sprintf(env.Msg.OnelineRent,
		claim.Area(), claim.Location(), env.Economy.Format(r.price), status))
}

func (r *Rent) Record() Record {
	rec := baseRecord(KindRent, r.owner, r.price, r.marker)
	rec["period_days"] = itoa(r.periodDays)
	if r.renter != "" {
		rec["renter"] = r.renter
		rec["rented_until"] = itoa64(r.rentedUntil.Unix())
	}
	return rec
}

// remainingText renders a coarse countdown for the marker line.
func remainingText(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh left", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh left", hours)
	}
	return fmt.Sprintf("%dm left", int(d.Minutes()))
}
