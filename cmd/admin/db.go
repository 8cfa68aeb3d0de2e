package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func openDB(dataDir, worldID, dbPath string) *sql.DB {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		if strings.TrimSpace(worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(dataDir, "worlds", worldID, "estate.db")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return db
}

func listingsCmd(args []string) {
	fs := flag.NewFlagSet("listings", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	kind := fs.String("kind", "", "filter by kind (SELL or RENT)")
	_ = fs.Parse(args)

	db := openDB(*dataDir, *worldID, *dbPath)
	defer db.Close()

	query := `SELECT world, x, y, z, kind, record FROM listings ORDER BY world, x, y, z`
	rows, err := db.Query(query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()

	enc := json.NewEncoder(os.Stdout)
	for rows.Next() {
		var r struct {
			World  string          `json:"world"`
			X      int             `json:"x"`
			Y      int             `json:"y"`
			Z      int             `json:"z"`
			Kind   string          `json:"kind"`
			Record json.RawMessage `json:"record"`
		}
		var blob string
		if err := rows.Scan(&r.World, &r.X, &r.Y, &r.Z, &r.Kind, &blob); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		if *kind != "" && r.Kind != strings.ToUpper(*kind) {
			continue
		}
		r.Record = json.RawMessage(blob)
		_ = enc.Encode(r)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}

func tradesCmd(args []string) {
	fs := flag.NewFlagSet("trades", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	limit := fs.Int("limit", 50, "result limit")
	_ = fs.Parse(args)

	db := openDB(*dataDir, *worldID, *dbPath)
	defer db.Close()

	if *limit <= 0 {
		*limit = 50
	}
	rows, err := db.Query(`SELECT at, line FROM trade_log ORDER BY id DESC LIMIT ?`, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()

	for rows.Next() {
		var at, line string
		if err := rows.Scan(&at, &line); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Printf("%s %s\n", at, line)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "rows:", err)
		os.Exit(1)
	}
}
