// Package estatedb persists live listings and the trade log in SQLite.
// Writes go through a single background goroutine so the world loop never
// blocks on disk.
package estatedb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"realestate.gg/internal/sim/estate"
)

type DB struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqPut reqKind = iota + 1
	reqDelete
	reqLogLine
)

type req struct {
	kind reqKind

	rec  estate.Record
	loc  estate.Location
	at   string
	line string
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &DB{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			world  TEXT NOT NULL,
			x      INTEGER NOT NULL,
			y      INTEGER NOT NULL,
			z      INTEGER NOT NULL,
			kind   TEXT NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (world, x, y, z)
		);`,
		`CREATE TABLE IF NOT EXISTS trade_log (
			id   INTEGER PRIMARY KEY AUTOINCREMENT,
			at   TEXT NOT NULL,
			line TEXT NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PutListing implements the estate listing sink.
func (s *DB) PutListing(rec estate.Record) error {
	return s.enqueue(req{kind: reqPut, rec: rec})
}

// DeleteListing implements the estate listing sink.
func (s *DB) DeleteListing(loc estate.Location) error {
	return s.enqueue(req{kind: reqDelete, loc: loc})
}

// AppendLine implements the estate audit sink.
func (s *DB) AppendLine(line string) error {
	return s.enqueue(req{kind: reqLogLine, at: time.Now().UTC().Format(time.RFC3339), line: line})
}

func (s *DB) enqueue(r req) error {
	if s.closed.Load() {
		return fmt.Errorf("estatedb closed")
	}
	select {
	case s.ch <- r:
		return nil
	default:
		return fmt.Errorf("estatedb write queue full")
	}
}

func (s *DB) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqPut:
			s.put(r.rec)
		case reqDelete:
			_, _ = s.db.Exec(`DELETE FROM listings WHERE world=? AND x=? AND y=? AND z=?`,
				r.loc.World, r.loc.X, r.loc.Y, r.loc.Z)
		case reqLogLine:
			_, _ = s.db.Exec(`INSERT INTO trade_log(at, line) VALUES(?, ?)`, r.at, r.line)
		}
	}
}

func (s *DB) put(rec estate.Record) {
	loc, err := rec.Marker()
	if err != nil {
		return
	}
	blob, err := json.Marshal(rec)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(`INSERT INTO listings(world, x, y, z, kind, record)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(world, x, y, z) DO UPDATE SET kind=excluded.kind, record=excluded.record`,
		loc.World, loc.X, loc.Y, loc.Z, rec["kind"], string(blob))
}

// LoadListings reads every persisted listing record. Called once at boot,
// before the world loop starts.
func (s *DB) LoadListings() ([]estate.Record, error) {
	rows, err := s.db.Query(`SELECT record FROM listings ORDER BY world, x, y, z`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []estate.Record
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var rec estate.Record
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// TradeLines returns the most recent trade-log lines, newest first.
func (s *DB) TradeLines(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT line FROM trade_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// Close drains pending writes and closes the database.
func (s *DB) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
	})
	s.wg.Wait()
	return s.db.Close()
}
