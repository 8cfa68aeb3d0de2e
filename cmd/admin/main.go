package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Offline and loopback admin tooling for a realestate server: inspect the
// sqlite listing store and trade log, or hit a running server's admin
// endpoints.
func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "listings":
			listingsCmd(os.Args[2:])
			return
		case "trades":
			tradesCmd(os.Args[2:])
			return
		case "remote-trades":
			remoteTradesCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}
