package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"realestate.gg/internal/protocol"
)

// A small scripted client: joins, claims a plot, lists it for sale and then
// prints every event batch the server sends. Useful for smoke-testing a
// running server by hand.
func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name   = flag.String("name", "bot", "player name")
		price  = flag.Float64("price", 100, "listing price")
		radius = flag.Int("radius", 5, "claim radius")
		x      = flag.Int("x", 0, "claim center x")
		z      = flag.Int("z", 0, "claim center z")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		MaxQueue:        8,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%s world=%s tick_rate=%d", w.PlayerID, w.WorldID, w.TickRateHz)

			act := protocol.ActMsg{
				Type:            protocol.TypeAct,
				ProtocolVersion: protocol.Version,
				Instants: []protocol.InstantReq{
					{ID: "I_bal", Type: protocol.InstantBalance},
					{ID: "I_claim", Type: protocol.InstantClaimLand, Pos: [3]int{*x, 64, *z}, Radius: *radius},
					{ID: "I_list", Type: protocol.InstantListSale, Pos: [3]int{*x, 64, *z}, Price: *price},
				},
			}
			if err := conn.WriteJSON(act); err != nil {
				logger.Fatalf("send ACT: %v", err)
			}

		case protocol.TypeEvents:
			var ev protocol.EventsMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			for _, e := range ev.Events {
				logger.Printf("tick=%d %s", ev.Tick, fmtEvent(e))
			}
		}
	}
}

func fmtEvent(e protocol.Event) string {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf("%v", e)
	}
	return string(b)
}
