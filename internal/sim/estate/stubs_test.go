package estate

import (
	"time"

	"realestate.gg/internal/sim/tuning"
)

type stubClaim struct {
	wilderness bool
	parent     bool
	owner      string
	ownerName  string
	up         *stubClaim
	area       int
	loc        Location
}

func (c *stubClaim) IsWilderness() bool { return c.wilderness }
func (c *stubClaim) IsParent() bool     { return c.parent }
func (c *stubClaim) IsSub() bool        { return !c.parent && !c.wilderness }
func (c *stubClaim) OwnerID() string    { return c.owner }
func (c *stubClaim) OwnerName() string  { return c.ownerName }
func (c *stubClaim) Parent() Claim {
	if c.up == nil {
		return nil
	}
	return c.up
}
func (c *stubClaim) Area() int          { return c.area }
func (c *stubClaim) Location() Location { return c.loc }

type transferCall struct {
	newOwner string
	oldOwner string
}

type stubRegistry struct {
	claim        *stubClaim
	allowance    map[string]int
	transfers    []transferCall
	failTransfer bool
	members      map[string]bool
}

func (r *stubRegistry) At(loc Location) Claim {
	if r.claim == nil {
		return nil
	}
	return r.claim
}

func (r *stubRegistry) RemainingAllowance(playerID string) int {
	return r.allowance[playerID]
}

func (r *stubRegistry) Transfer(c Claim, newOwner, oldOwner string) {
	r.transfers = append(r.transfers, transferCall{newOwner: newOwner, oldOwner: oldOwner})
	if !r.failTransfer && r.claim != nil && r.claim.parent {
		r.claim.owner = newOwner
	}
}

func (r *stubRegistry) AddMember(c Claim, playerID string) {
	if r.members == nil {
		r.members = map[string]bool{}
	}
	r.members[playerID] = true
}

func (r *stubRegistry) RemoveMember(c Claim, playerID string) {
	delete(r.members, playerID)
}

type payCall struct {
	receiver      string
	payer         string
	amount        float64
	allowNegative bool
}

type stubEconomy struct {
	pays    []payCall
	decline bool
}

func (e *stubEconomy) Pay(receiver, payer string, amount float64, allowNegative bool) bool {
	e.pays = append(e.pays, payCall{receiver, payer, amount, allowNegative})
	return !e.decline
}

func (e *stubEconomy) Format(amount float64) string { return trimFloat(amount) + " coins" }
func (e *stubEconomy) CurrencyNamePlural() string   { return "coins" }

type stubMessenger struct {
	sent   map[string][]string
	online map[string]bool
}

func (m *stubMessenger) Send(recipientID, text string) {
	if m.sent == nil {
		m.sent = map[string][]string{}
	}
	m.sent[recipientID] = append(m.sent[recipientID], text)
}

func (m *stubMessenger) Online(recipientID string) bool { return m.online[recipientID] }

type stubMailbox struct {
	mail map[string][]string
}

func (m *stubMailbox) AddMail(recipientID, text string) {
	if m.mail == nil {
		m.mail = map[string][]string{}
	}
	m.mail[recipientID] = append(m.mail[recipientID], text)
}

type stubNames struct{ names map[string]string }

func (n *stubNames) Name(playerID string) string {
	if s, ok := n.names[playerID]; ok {
		return s
	}
	return playerID
}

type stubMarkers struct {
	missing map[Location]bool
	lines   map[Location]SignLines
	cleared []Location
}

func (m *stubMarkers) Exists(loc Location) bool { return !m.missing[loc] }

func (m *stubMarkers) SetLines(loc Location, lines SignLines) {
	if m.lines == nil {
		m.lines = map[Location]SignLines{}
	}
	m.lines[loc] = lines
}

func (m *stubMarkers) Clear(loc Location) {
	m.cleared = append(m.cleared, loc)
	delete(m.lines, loc)
}

type stubSink struct{ lines []string }

func (s *stubSink) AppendLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

type stubDB struct {
	puts    []Record
	deletes []Location
}

func (d *stubDB) PutListing(rec Record) error {
	d.puts = append(d.puts, rec)
	return nil
}

func (d *stubDB) DeleteListing(loc Location) error {
	d.deletes = append(d.deletes, loc)
	return nil
}

type stubActor struct {
	id    string
	name  string
	perms map[string]bool
	pos   Location
}

func (a *stubActor) ID() string                     { return a.id }
func (a *stubActor) Name() string                   { return a.name }
func (a *stubActor) HasPermission(perm string) bool { return a.perms[perm] }
func (a *stubActor) Pos() Location                  { return a.pos }

func buyer(id string) *stubActor {
	return &stubActor{
		id:   id,
		name: id,
		perms: map[string]bool{
			"realestate.claim.buy":     true,
			"realestate.subclaim.buy":  true,
			"realestate.claim.rent":    true,
			"realestate.subclaim.rent": true,
			"realestate.info":          true,
		},
		pos: Location{World: "overworld", X: 10, Y: 64, Z: -5},
	}
}

type testEnv struct {
	*Env
	registry  *stubRegistry
	economy   *stubEconomy
	messenger *stubMessenger
	mailbox   *stubMailbox
	markers   *stubMarkers
	sink      *stubSink
	db        *stubDB
}

func newTestEnv(store *Store) *testEnv {
	cfg := tuning.Default()
	te := &testEnv{
		registry:  &stubRegistry{allowance: map[string]int{}},
		economy:   &stubEconomy{},
		messenger: &stubMessenger{online: map[string]bool{}},
		mailbox:   &stubMailbox{},
		markers:   &stubMarkers{missing: map[Location]bool{}},
		sink:      &stubSink{},
		db:        &stubDB{},
	}
	te.Env = &Env{
		Claims:    te.registry,
		Economy:   te.economy,
		Markers:   te.markers,
		Messenger: te.messenger,
		Mailbox:   te.mailbox,
		Names:     &stubNames{},
		DB:        te.db,
		Log:       te.sink,
		Store:     store,
		Cfg:       &cfg,
		Msg:       DefaultMessages(),
		Now: func() time.Time {
			return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		},
	}
	return te
}
