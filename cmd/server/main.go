package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"realestate.gg/internal/persistence/estatedb"
	"realestate.gg/internal/persistence/tradelog"
	"realestate.gg/internal/sim/estate"
	"realestate.gg/internal/sim/tuning"
	"realestate.gg/internal/sim/world"
	"realestate.gg/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "overworld", "world id")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite listing/trade-log store")

		startBalance   = flag.Float64("start_balance", 1000, "starting coin balance for new players")
		startAllowance = flag.Int("start_allowance", 10000, "starting claim allowance for new players")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	w := world.New(world.WorldConfig{
		ID:             *worldID,
		TickRateHz:     tune.TickRateHz,
		StartBalance:   *startBalance,
		StartAllowance: *startAllowance,
	}, tune)

	tradeLog := tradelog.New(filepath.Join(worldDir, "trades"))
	defer tradeLog.Close()

	var db *estatedb.DB
	if !*disableDB {
		db, err = estatedb.Open(filepath.Join(worldDir, "estate.db"))
		if err != nil {
			logger.Fatalf("open estate db: %v", err)
		}
		defer db.Close()
	}

	if db != nil {
		w.SetSinks(db, multiAuditSink{a: tradeLog, b: db})
		recs, err := db.LoadListings()
		if err != nil {
			logger.Fatalf("load listings: %v", err)
		}
		for _, lerr := range w.LoadListings(recs) {
			logger.Printf("skipping persisted listing: %v", lerr)
		}
		logger.Printf("restored %d listings", len(recs))
	} else {
		w.SetSinks(nil, tradeLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := w.Metrics()

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP realestate_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE realestate_world_tick gauge\n")
		fmt.Fprintf(rw, "realestate_world_tick{world=%q} %d\n", *worldID, m.Tick)

		fmt.Fprintf(rw, "# HELP realestate_world_players Known player accounts.\n")
		fmt.Fprintf(rw, "# TYPE realestate_world_players gauge\n")
		fmt.Fprintf(rw, "realestate_world_players{world=%q} %d\n", *worldID, m.Players)

		fmt.Fprintf(rw, "# HELP realestate_world_clients Connected clients.\n")
		fmt.Fprintf(rw, "# TYPE realestate_world_clients gauge\n")
		fmt.Fprintf(rw, "realestate_world_clients{world=%q} %d\n", *worldID, m.Clients)

		fmt.Fprintf(rw, "# HELP realestate_world_listings Live listings.\n")
		fmt.Fprintf(rw, "# TYPE realestate_world_listings gauge\n")
		fmt.Fprintf(rw, "realestate_world_listings{world=%q} %d\n", *worldID, m.Listings)

		fmt.Fprintf(rw, "# HELP realestate_world_step_us Last tick step duration in microseconds.\n")
		fmt.Fprintf(rw, "# TYPE realestate_world_step_us gauge\n")
		fmt.Fprintf(rw, "realestate_world_step_us{world=%q} %d\n", *worldID, m.StepUS)
	})
	mux.HandleFunc("/admin/v1/trades", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		if db == nil {
			http.Error(rw, "db disabled", http.StatusServiceUnavailable)
			return
		}
		lines, err := db.TradeLines(100)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusInternalServerError)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(map[string]any{"trades": lines})
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// multiAuditSink fans audit lines out to the rotated file log and sqlite.
type multiAuditSink struct {
	a estate.AuditSink
	b estate.AuditSink
}

func (m multiAuditSink) AppendLine(line string) error {
	if m.a != nil {
		_ = m.a.AppendLine(line)
	}
	if m.b != nil {
		_ = m.b.AppendLine(line)
	}
	return nil
}
