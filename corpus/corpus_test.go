package corpus_test

import (
	"strings"
	"testing"

	"github.com/phonolearn/plp/corpus"
)

func TestReadTwoColumnRows(t *testing.T) {
	pairs, err := corpus.Read(strings.NewReader("ab\tap\nad\tat\n"), corpus.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("len(pairs) = %d, want 2", len(pairs))
	}
	if pairs[0].UF != "ab" || pairs[0].SF != "ap" || pairs[0].Freq != 0 {
		t.Fatalf("pairs[0] = %+v", pairs[0])
	}
}

func TestReadThreeColumnRowsWithFrequency(t *testing.T) {
	pairs, err := corpus.Read(strings.NewReader("ab\tap\t12\n"), corpus.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pairs[0].Freq != 12 {
		t.Fatalf("Freq = %v, want 12", pairs[0].Freq)
	}
}

func TestReadFourColumnRowsDropLeadingField(t *testing.T) {
	pairs, err := corpus.Read(strings.NewReader("lemma1\tab\tap\t3\n"), corpus.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pairs[0].UF != "ab" || pairs[0].SF != "ap" || pairs[0].Freq != 3 {
		t.Fatalf("pairs[0] = %+v", pairs[0])
	}
}

func TestReadSkipsBlankLinesAndHeader(t *testing.T) {
	pairs, err := corpus.Read(strings.NewReader("uf\tsf\n\nab\tap\n"), corpus.Options{SkipHeader: true})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(pairs) != 1 || pairs[0].UF != "ab" {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestReadRejectsUnsupportedRowShape(t *testing.T) {
	if _, err := corpus.Read(strings.NewReader("ab\n"), corpus.Options{}); err == nil {
		t.Fatalf("expected error for a single-column row")
	}
}
