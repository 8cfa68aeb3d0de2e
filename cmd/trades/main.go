package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"realestate.gg/internal/persistence/tradelog"
)

// Reads the rotated trade-log files a server wrote and prints the lines in
// order, optionally filtered by substring. Lines in the currently open zstd
// frame only become decodable once the writer rotates or closes, so the
// newest hour may be incomplete on a live directory.
func main() {
	var (
		dir    = flag.String("dir", "./data/worlds/overworld/trades", "trade log directory")
		filter = flag.String("grep", "", "only print lines containing this substring")
	)
	flag.Parse()

	files, err := listTradeFiles(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list trades:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no trade files found in", *dir)
		os.Exit(1)
	}

	var printed int
	for _, path := range files {
		n, err := catFile(path, *filter)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
			os.Exit(1)
		}
		printed += n
	}
	fmt.Fprintf(os.Stderr, "%d lines from %d files\n", printed, len(files))
}

func listTradeFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "trades-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func catFile(path, filter string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	n := 0
	for sc.Scan() {
		var entry tradelog.Entry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			return n, fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if filter != "" && !strings.Contains(entry.Line, filter) {
			continue
		}
		fmt.Println(entry.Line)
		n++
	}
	return n, sc.Err()
}
