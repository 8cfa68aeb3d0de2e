package estate

import (
	"fmt"
	"sort"
)

const logTimeLayout = "2006-01-02 15:04:05"

// Store is the process-wide owner of transaction identity: the only component
// that creates and retires listings. One live listing per marker location.
// All access happens on the world loop; no locking.
type Store struct {
	live map[Location]Transaction
}

func NewStore() *Store {
	return &Store{live: map[Location]Transaction{}}
}

// Create registers a new listing, renders its marker and persists it. It
// fails without touching anything when the location is already listed.
func (s *Store) Create(env *Env, t Transaction) bool {
	loc := t.Marker()
	if _, busy := s.live[loc]; busy {
		return false
	}
	s.live[loc] = t
	t.Update(env)
	if env.DB != nil {
		_ = env.DB.PutListing(t.Record())
	}
	return true
}

// At returns the live listing at a marker location, or nil.
func (s *Store) At(loc Location) Transaction {
	return s.live[loc]
}

func (s *Store) Len() int { return len(s.live) }

// Cancel retires the listing at loc: removes it from the live map, clears
// the marker and deletes the persisted row. Idempotent; two validation
// branches of one interact may both land here.
func (s *Store) Cancel(env *Env, loc Location) {
	if _, ok := s.live[loc]; !ok {
		return
	}
	delete(s.live, loc)
	env.Markers.Clear(loc)
	if env.DB != nil {
		_ = env.DB.DeleteListing(loc)
	}
}

// Tick runs Update on every live listing once. The sweep order is stable and
// a fault in one listing must not stop the rest.
func (s *Store) Tick(env *Env) {
	locs := make([]Location, 0, len(s.live))
	for loc := range s.live {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return lessLoc(locs[i], locs[j]) })
	for _, loc := range locs {
		t := s.live[loc]
		if t == nil {
			continue
		}
		s.updateOne(env, t)
	}
}

func (s *Store) updateOne(env *Env, t Transaction) {
	defer func() {
		if r := recover(); r != nil && env.Log != nil {
			_ = env.Log.AppendLine(fmt.Sprintf("[%s] update fault at %s: %v",
				env.now().Format(logTimeLayout), t.Marker(), r))
		}
	}()
	t.Update(env)
}

// AppendLog writes one dated line to the trade log.
func (s *Store) AppendLog(env *Env, text string) {
	if env.Log == nil {
		return
	}
	_ = env.Log.AppendLine("[" + env.now().Format(logTimeLayout) + "] " + text)
}

// Load registers previously persisted listings without re-persisting them.
// A record that fails to decode is skipped and reported, not fatal.
func (s *Store) Load(env *Env, recs []Record) []error {
	var errs []error
	for _, rec := range recs {
		t, err := Decode(rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, busy := s.live[t.Marker()]; busy {
			errs = append(errs, fmt.Errorf("duplicate listing at %s", t.Marker()))
			continue
		}
		s.live[t.Marker()] = t
	}
	return errs
}

// Records snapshots every live listing's flat record, in stable order.
func (s *Store) Records() []Record {
	locs := make([]Location, 0, len(s.live))
	for loc := range s.live {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return lessLoc(locs[i], locs[j]) })
	out := make([]Record, 0, len(locs))
	for _, loc := range locs {
		out = append(out, s.live[loc].Record())
	}
	return out
}

func lessLoc(a, b Location) bool {
	if a.World != b.World {
		return a.World < b.World
	}
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
