package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	MaxQueue        int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	PlayerID        string       `json:"player_id"`
	WorldID         string       `json:"world_id"`
	TickRateHz      int          `json:"tick_rate_hz"`
	Currency        CurrencyInfo `json:"currency"`
}

type CurrencyInfo struct {
	Symbol     string `json:"symbol"`
	NamePlural string `json:"name_plural"`
}

// ACT (client -> server): a batch of instant actions for one player.
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Instants        []InstantReq `json:"instants,omitempty"`
}

// Instant action types.
const (
	InstantClaimLand      = "CLAIM_LAND"
	InstantListSale       = "LIST_SALE"
	InstantListRent       = "LIST_RENT"
	InstantInteractMarker = "INTERACT_MARKER"
	InstantPreviewMarker  = "PREVIEW_MARKER"
	InstantMarkerInfo     = "MARKER_INFO"
	InstantCancelListing  = "CANCEL_LISTING"
	InstantBreakMarker    = "BREAK_MARKER"
	InstantBalance        = "BALANCE"
)

type InstantReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Pos [3]int `json:"pos,omitempty"`

	Price      float64 `json:"price,omitempty"`
	PeriodDays int     `json:"period_days,omitempty"`
	Radius     int     `json:"radius,omitempty"`
	Force      bool    `json:"force,omitempty"`
}

// EVENTS (server -> client): one batch per tick when anything happened.
type EventsMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	PlayerID        string  `json:"player_id"`
	Events          []Event `json:"events"`
}
