package estate

// Variant kinds. The set is closed; dispatch is by kind string.
const (
	KindSell = "SELL"
	KindRent = "RENT"
)

// Transaction is one live listing bound to a marker location. Implementations
// are single-threaded: the world loop is the only caller.
type Transaction interface {
	Kind() string
	// Owner is the selling account. Empty means listed by the server: no
	// payout, the price is paid into the server sink.
	Owner() string
	Price() float64
	Marker() Location

	// Update re-renders the marker from current state and reports whether
	// the listing is still waiting on a distinct external event (only the
	// rent variant ever is). A missing marker cancels the listing.
	Update(env *Env) bool
	// TryCancel attempts administrative cancellation. Variants may refuse
	// unless force is set or the actor has standing; actor may be nil.
	TryCancel(env *Env, actor Actor, force bool) bool
	// Interact is the buyer-facing entry point fired when a player triggers
	// the marker.
	Interact(env *Env, actor Actor)
	// Preview sends a permission-gated multi-line summary. Read-only.
	Preview(env *Env, actor Actor)
	// MsgInfo sends a one-line administrative summary, or force-cancels if
	// the claim no longer resolves.
	MsgInfo(env *Env, recipientID string)

	// Record returns the flat persistence record for the listing.
	Record() Record
}

// listing carries the fields every variant shares. owner and price are fixed
// at creation; re-pricing is cancel-and-relist.
type listing struct {
	owner  string
	price  float64
	marker Location
}

func (l *listing) Owner() string    { return l.owner }
func (l *listing) Price() float64   { return l.price }
func (l *listing) Marker() Location { return l.marker }

func (l *listing) ownerName(env *Env) string {
	if l.owner == "" {
		return ""
	}
	return env.Names.Name(l.owner)
}

// notifySeller tells the previous owner about a completed trade, in-world
// when online, through the offline mailbox otherwise.
func (l *listing) notifySeller(env *Env, text string) {
	if !env.Cfg.Policy.MessageOwner || l.owner == "" {
		return
	}
	if env.Messenger.Online(l.owner) {
		env.Messenger.Send(l.owner, text)
		return
	}
	if env.Cfg.Policy.MailOffline && env.Mailbox != nil {
		env.Mailbox.AddMail(l.owner, text)
	}
}
