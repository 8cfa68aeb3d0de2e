package world

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"realestate.gg/internal/protocol"
	"realestate.gg/internal/sim/estate"
	"realestate.gg/internal/sim/tuning"
)

type WorldConfig struct {
	ID             string
	TickRateHz     int
	StartBalance   float64
	StartAllowance int
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

type ActionEnvelope struct {
	PlayerID string
	Act      protocol.ActMsg
}

type clientState struct {
	Out chan []byte
}

// World is a single-threaded authoritative simulation hosting the listing
// engine and the collaborators it needs: player sessions, land claims, the
// coin ledger and marker signs. All state must be accessed only from the
// world loop goroutine.
type World struct {
	cfg WorldConfig
	tun tuning.Tuning

	tick atomic.Uint64

	players  map[string]*Player
	clients  map[string]*clientState
	claims   map[string]*LandClaim
	signs    map[Vec3i]*Sign
	balances map[string]float64

	store *estate.Store
	env   *estate.Env

	inbox chan ActionEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextPlayerNum atomic.Uint64
	nextLandNum   atomic.Uint64

	statPlayers  atomic.Int64
	statClients  atomic.Int64
	statListings atomic.Int64
	statStepUS   atomic.Int64
}

// WorldMetrics is a race-free snapshot for the /metrics endpoint.
type WorldMetrics struct {
	Tick     uint64 `json:"tick"`
	Players  int64  `json:"players"`
	Clients  int64  `json:"clients"`
	Listings int64  `json:"listings"`
	StepUS   int64  `json:"step_us"`
}

func (w *World) Metrics() WorldMetrics {
	return WorldMetrics{
		Tick:     w.tick.Load(),
		Players:  w.statPlayers.Load(),
		Clients:  w.statClients.Load(),
		Listings: w.statListings.Load(),
		StepUS:   w.statStepUS.Load(),
	}
}

func New(cfg WorldConfig, tun tuning.Tuning) *World {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = tun.TickRateHz
	}
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 5
	}
	w := &World{
		cfg:      cfg,
		tun:      tun,
		players:  map[string]*Player{},
		clients:  map[string]*clientState{},
		claims:   map[string]*LandClaim{},
		signs:    map[Vec3i]*Sign{},
		balances: map[string]float64{},
		store:    estate.NewStore(),
		inbox:    make(chan ActionEnvelope, 1024),
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		stop:     make(chan struct{}),
	}
	w.env = &estate.Env{
		Claims:    (*claimRegistry)(w),
		Economy:   (*ledger)(w),
		Markers:   (*markerAccess)(w),
		Messenger: (*messenger)(w),
		Mailbox:   (*mailbox)(w),
		Names:     (*directory)(w),
		Store:     w.store,
		Cfg:       &w.tun,
		Msg:       estate.DefaultMessages(),
		Now:       time.Now,
	}
	return w
}

// SetSinks wires the persistence backends. Must be called before Run.
func (w *World) SetSinks(db estate.ListingDB, log estate.AuditSink) {
	w.env.DB = db
	w.env.Log = log
}

// LoadListings restores persisted listings into the store. Must be called
// before Run.
func (w *World) LoadListings(recs []estate.Record) []error {
	errs := w.store.Load(w.env, recs)
	// Markers for restored listings may not exist yet; recreate them so the
	// first sweep renders instead of cancelling.
	for _, t := range w.listings() {
		w.ensureSign(vec3Of(t.Marker()))
	}
	return errs
}

func (w *World) listings() []estate.Transaction {
	out := make([]estate.Transaction, 0, w.store.Len())
	for _, rec := range w.store.Records() {
		loc, err := rec.Marker()
		if err != nil {
			continue
		}
		if t := w.store.At(loc); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (w *World) Inbox() chan<- ActionEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest     { return w.join }
func (w *World) Leave() chan<- string         { return w.leave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingActions)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

func (w *World) step(joins []JoinRequest, leaves []string, actions []ActionEnvelope) {
	started := time.Now()
	nowTick := w.tick.Add(1)
	for _, req := range joins {
		w.handleJoin(req)
	}
	for _, id := range leaves {
		w.handleLeave(id)
	}
	for _, env := range actions {
		w.applyAct(env, nowTick)
	}
	every := w.tun.ListingTickEvery
	if every <= 0 {
		every = 25
	}
	if nowTick%uint64(every) == 0 {
		w.store.Tick(w.env)
	}
	w.flushEvents(nowTick)

	w.statPlayers.Store(int64(len(w.players)))
	w.statClients.Store(int64(len(w.clients)))
	w.statListings.Store(int64(w.store.Len()))
	w.statStepUS.Store(time.Since(started).Microseconds())
}

func (w *World) applyAct(env ActionEnvelope, nowTick uint64) {
	p := w.players[env.PlayerID]
	if p == nil {
		return
	}
	for _, inst := range env.Act.Instants {
		w.applyInstant(p, inst, nowTick)
	}
}

func (w *World) applyInstant(p *Player, inst protocol.InstantReq, nowTick uint64) {
	switch inst.Type {
	case protocol.InstantClaimLand:
		handleInstantClaimLand(w, p, inst, nowTick)
	case protocol.InstantListSale:
		handleInstantListSale(w, p, inst, nowTick)
	case protocol.InstantListRent:
		handleInstantListRent(w, p, inst, nowTick)
	case protocol.InstantInteractMarker:
		handleInstantInteractMarker(w, p, inst, nowTick)
	case protocol.InstantPreviewMarker:
		handleInstantPreviewMarker(w, p, inst, nowTick)
	case protocol.InstantMarkerInfo:
		handleInstantMarkerInfo(w, p, inst, nowTick)
	case protocol.InstantCancelListing:
		handleInstantCancelListing(w, p, inst, nowTick)
	case protocol.InstantBreakMarker:
		handleInstantBreakMarker(w, p, inst, nowTick)
	case protocol.InstantBalance:
		handleInstantBalance(w, p, inst, nowTick)
	default:
		p.AddEvent(actionResult(nowTick, inst.ID, false, protocol.ErrBadRequest, "unknown instant type"))
	}
}

func (w *World) flushEvents(nowTick uint64) {
	for id, p := range w.players {
		if len(p.events) == 0 {
			continue
		}
		client := w.clients[id]
		if client == nil {
			continue
		}
		msg := protocol.EventsMsg{
			Type:            protocol.TypeEvents,
			ProtocolVersion: protocol.Version,
			Tick:            nowTick,
			PlayerID:        id,
			Events:          p.events,
		}
		b, err := json.Marshal(msg)
		if err == nil {
			select {
			case client.Out <- b:
			default:
				// Slow client: drop the batch rather than stall the loop.
			}
		}
		p.events = nil
	}
}

func actionResult(t uint64, ref string, ok bool, code, msg string) protocol.Event {
	if !protocol.IsKnownCode(code) {
		code = protocol.ErrInternal
		if msg == "" {
			msg = "unknown error code"
		}
	}
	ev := protocol.Event{"t": t, "type": "ACTION_RESULT", "ref": ref, "ok": ok}
	if code != "" {
		ev["code"] = code
	}
	if msg != "" {
		ev["msg"] = msg
	}
	return ev
}

func (w *World) newPlayerID() string {
	return fmt.Sprintf("P%06d", w.nextPlayerNum.Add(1))
}

func (w *World) newLandID() string {
	return fmt.Sprintf("LAND%06d", w.nextLandNum.Add(1))
}

func vec3(pos [3]int) Vec3i { return Vec3i{X: pos[0], Y: pos[1], Z: pos[2]} }

func (w *World) locOf(pos Vec3i) estate.Location {
	return estate.Location{World: w.cfg.ID, X: pos.X, Y: pos.Y, Z: pos.Z}
}

func vec3Of(loc estate.Location) Vec3i {
	return Vec3i{X: loc.X, Y: loc.Y, Z: loc.Z}
}
