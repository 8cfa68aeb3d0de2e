package estate

import "fmt"

// Sell is a one-shot sale listing: the buyer pays the stored price and the
// claim changes hands. A sale never completes from the tick sweep alone.
type Sell struct {
	listing
}

func NewSell(owner string, price float64, marker Location) *Sell {
	return &Sell{listing{owner: owner, price: price, marker: marker}}
}

func (s *Sell) Kind() string { return KindSell }

func (s *Sell) Update(env *Env) bool {
	if !env.Markers.Exists(s.marker) {
		env.Store.Cancel(env, s.marker)
		return false
	}
	env.Markers.SetLines(s.marker, RenderSign(
		env.Cfg.Policy.SignHeader,
		env.Cfg.Policy.SellTag,
		s.ownerName(env),
		s.price,
		env.Cfg.Currency,
	))
	return false
}

func (s *Sell) TryCancel(env *Env, actor Actor, force bool) bool {
	// A sale is only ever waiting for a buyer; cancelling is always allowed.
	env.Store.Cancel(env, s.marker)
	return true
}

func (s *Sell) Interact(env *Env, actor Actor) {
	claim := env.Claims.At(s.marker)
	if claim == nil || claim.IsWilderness() {
		env.Messenger.Send(actor.ID(), env.Msg.ErrClaimDoesNotExist)
		env.Store.Cancel(env, s.marker)
		return
	}
	tier := tierOf(claim)
	keyword := env.Msg.keyword(tier)

	if s.owner != "" && actor.ID() == s.owner {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrAlreadyOwner, keyword))
		return
	}
	// Stale listing: the claim changed hands since it was listed.
	if claim.IsParent() && s.owner != "" && s.owner != claim.OwnerID() {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrNotSoldByOwner, keyword))
		env.Store.Cancel(env, s.marker)
		return
	}
	if !actor.HasPermission("realestate." + tier + ".buy") {
		env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrNoBuyPermission, keyword))
		return
	}
	if tier == "claim" && !env.Cfg.Policy.TransferClaimAllowance {
		remaining := env.Claims.RemainingAllowance(actor.ID())
		if remaining < claim.Area() {
			env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.ErrNoClaimAllowance,
				claim.Area(), remaining, claim.Area()-remaining))
			return
		}
	}
	if !env.Economy.Pay(s.owner, actor.ID(), s.price, env.Cfg.Policy.AllowNegativeBalance) {
		// The gateway reports the decline itself; the listing stays live for
		// the next buyer.
		return
	}
	env.Claims.Transfer(claim, actor.ID(), s.owner)

	claim = env.Claims.At(s.marker)
	if claim == nil || (!claim.IsSub() && claim.OwnerID() != actor.ID()) {
		// Payment went through but the ownership inspection disagrees. Leave
		// the listing live for an administrator instead of destroying it.
		env.Messenger.Send(actor.ID(), env.Msg.ErrUnexpected)
		return
	}

	env.Messenger.Send(actor.ID(), fmt.Sprintf(env.Msg.InfoBought, keyword, env.Economy.Format(s.price)))
	env.Store.AppendLog(env, fmt.Sprintf("%s has purchased a %s at %s Price: %s %s",
		actor.Name(), tier, actor.Pos(), trimFloat(s.price), env.Economy.CurrencyNamePlural()))
	s.notifySeller(env, fmt.Sprintf(env.Msg.InfoSold,
		actor.Name(), keyword, actor.Pos(), env.Economy.Format(s.price)))
	env.Store.Cancel(env, s.marker)
}

func (s *Sell) Preview(env *Env, actor Actor) {
	if !actor.HasPermission("realestate.info") {
		env.Messenger.Send(actor.ID(), env.Msg.ErrNoInfoPermission)
		return
	}
	claim := env.Claims.At(s.marker)
	if claim == nil || claim.IsWilderness() {
		env.Messenger.Send(actor.ID(), env.Msg.ErrClaimDoesNotExist)
		return
	}
	tier := tierOf(claim)
	msg := env.Msg.PreviewSellHeader + "\n"
	msg += fmt.Sprintf(env.Msg.PreviewSellGeneral, env.Msg.keyword(tier), env.Economy.Format(s.price)) + "\n"
	if tier == "claim" {
		msg += fmt.Sprintf(env.Msg.PreviewOwner, claim.OwnerName())
	} else {
		msg += fmt.Sprintf(env.Msg.PreviewMainOwner, claim.Parent().OwnerName()) + "\n"
		msg += env.Msg.PreviewSubNote
	}
	env.Messenger.Send(actor.ID(), msg)
}

func (s *Sell) MsgInfo(env *Env, recipientID string) {
	claim := env.Claims.At(s.marker)
	if claim == nil || claim.IsWilderness() {
		s.TryCancel(env, nil, true)
		return
	}
	env.Messenger.Send(recipientID, fmt.Sprintf(env.Msg.OnelineSell,
		claim.Area(), claim.Location(), env.Economy.Format(s.price)))
}

func (s *Sell) Record() Record {
	rec := baseRecord(KindSell, s.owner, s.price, s.marker)
	return rec
}
