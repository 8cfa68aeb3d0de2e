package world

import (
	"realestate.gg/internal/protocol"
)

func defaultPerms() map[string]bool {
	return map[string]bool{
		"realestate.claim.buy":     true,
		"realestate.subclaim.buy":  true,
		"realestate.claim.rent":    true,
		"realestate.subclaim.rent": true,
		"realestate.claim.sell":    true,
		"realestate.subclaim.sell": true,
		"realestate.info":          true,
	}
}

// handleJoin attaches a connection to a player account, creating one for an
// unknown name. The name is the whole identity: there is no resume token, so
// any client presenting a known name reattaches to that account's balance,
// claims and mail. Deployments that need real identity must front the
// websocket with an authenticating gateway.
func (w *World) handleJoin(req JoinRequest) {
	p := w.playerByName(req.Name)
	if p == nil {
		p = &Player{
			ID:        w.newPlayerID(),
			Name:      req.Name,
			Perms:     defaultPerms(),
			Allowance: w.cfg.StartAllowance,
		}
		w.players[p.ID] = p
		w.balances[p.ID] = w.cfg.StartBalance
	}
	if req.Out != nil {
		w.clients[p.ID] = &clientState{Out: req.Out}
	}

	// Deliver mail that arrived while offline.
	for _, text := range p.mail {
		p.AddEvent(protocol.Event{"t": w.tick.Load(), "type": "MAIL", "text": text})
	}
	p.mail = nil

	req.Resp <- JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        p.ID,
		WorldID:         w.cfg.ID,
		TickRateHz:      w.cfg.TickRateHz,
		Currency: protocol.CurrencyInfo{
			Symbol:     w.tun.Currency.Symbol,
			NamePlural: w.tun.Currency.NamePlural,
		},
	}}
}

func (w *World) handleLeave(playerID string) {
	delete(w.clients, playerID)
}

func (w *World) playerByName(name string) *Player {
	for _, p := range w.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}
