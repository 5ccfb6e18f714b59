// Package ipa loads the feature table an Alphabet is built over: a TSV
// file whose header row names the feature space and whose remaining rows
// each give one IPA symbol's signed feature vector (spec.md §3's "loaded
// from a feature table", §4.1).
//
// Grounded on original_source/src/alphabet.py's Alphabet.__init__, which
// reads the same tab-separated shape (first column the IPA symbol,
// remaining columns its feature values, first line the feature names) a
// line at a time rather than through a general-purpose CSV parser — loaded
// here with encoding/csv in tab-delimited mode instead, the idiom the rest
// of the pack reaches for whenever a teacher or sibling repo parses a
// delimited table (package corpus, by contrast, splits its training-pair
// lines by hand with bufio.Scanner and strings.Split).
package ipa

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/phonolearn/plp/segment"
)

// Table is a loaded feature table: the ordered feature space, and every
// symbol's feature vector keyed by its IPA string.
type Table struct {
	FeatureSpace []string
	Segments     map[string][]segment.Value
}

// Load reads a feature table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ipa: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a feature table from r: a tab-separated file whose first
// row is "<ignored>\t<feat1>\t<feat2>\t...", and whose remaining rows are
// "<ipa symbol>\t<val1>\t<val2>\t...", each val one of '+', '-', '0', '?'.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ipa: parse: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("ipa: empty feature table")
	}

	header := rows[0]
	featureSpace := append([]string(nil), header[1:]...)

	segs := make(map[string][]segment.Value, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		ipa := row[0]
		vals := row[1:]
		if len(vals) != len(featureSpace) {
			return nil, fmt.Errorf("ipa: row %q has %d values, want %d", ipa, len(vals), len(featureSpace))
		}
		vec := make([]segment.Value, len(vals))
		for i, v := range vals {
			if len(v) != 1 {
				return nil, fmt.Errorf("ipa: row %q feature %q: invalid value %q", ipa, featureSpace[i], v)
			}
			vec[i] = segment.Value(v[0])
		}
		segs[ipa] = vec
	}

	return &Table{FeatureSpace: featureSpace, Segments: segs}, nil
}
