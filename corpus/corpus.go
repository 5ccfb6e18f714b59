// Package corpus loads (UF, SF) training pairs from a delimited file,
// accepting the row shapes original_source/src/utils.py's load function
// supports: 2 columns (UF, SF), 3 columns (UF, SF, frequency), or 4
// columns (an ignored leading column — e.g. a gloss or lemma id — then UF,
// SF, frequency). Frequency defaults to 0 when the row omits it.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Pair is one training example as loaded from a corpus row.
type Pair struct {
	UF   string
	SF   string
	Freq float64
}

// Options configures corpus loading.
type Options struct {
	// Sep is the field delimiter. Defaults to '\t'.
	Sep string
	// SkipHeader discards the first line before parsing rows.
	SkipHeader bool
}

func (o Options) sep() string {
	if o.Sep == "" {
		return "\t"
	}
	return o.Sep
}

// Load reads a corpus file from path.
func Load(path string, opts Options) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts)
}

// Read parses a corpus from r, one training pair per non-empty line.
func Read(r io.Reader, opts Options) ([]Pair, error) {
	sep := opts.sep()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pairs []Pair
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		if opts.SkipHeader && lineNo == 1 {
			continue
		}
		fields := strings.Split(line, sep)
		pair, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("corpus: line %d: %w", lineNo, err)
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read: %w", err)
	}
	return pairs, nil
}

func parseRow(fields []string) (Pair, error) {
	switch len(fields) {
	case 2:
		return Pair{UF: fields[0], SF: fields[1]}, nil
	case 3:
		freq, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Pair{}, fmt.Errorf("invalid frequency %q: %w", fields[2], err)
		}
		return Pair{UF: fields[0], SF: fields[1], Freq: freq}, nil
	case 4:
		freq, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return Pair{}, fmt.Errorf("invalid frequency %q: %w", fields[3], err)
		}
		return Pair{UF: fields[1], SF: fields[2], Freq: freq}, nil
	default:
		return Pair{}, fmt.Errorf("unsupported row shape: %d fields", len(fields))
	}
}
