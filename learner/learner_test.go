package learner_test

import (
	"testing"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/learner"
	"github.com/phonolearn/plp/segment"
)

func devoicingAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	feats := []string{"cons", "voi", "son", "lab"}
	table := map[string][]segment.Value{
		"p": {segment.Plus, segment.Minus, segment.Minus, segment.Plus},
		"b": {segment.Plus, segment.Plus, segment.Minus, segment.Plus},
		"t": {segment.Plus, segment.Minus, segment.Minus, segment.Minus},
		"d": {segment.Plus, segment.Plus, segment.Minus, segment.Minus},
		"a": {segment.Minus, segment.Plus, segment.Plus, segment.Minus},
	}
	return alphabet.New(feats, table)
}

// TestLearnerFinalDevoicing trains on a tiny corpus where a voiced stop
// devoices word-finally but survives intervocalically, mirroring spec.md
// §8's German/Polish final-devoicing scenarios.
func TestLearnerFinalDevoicing(t *testing.T) {
	a := devoicingAlphabet(t)
	cfg := learner.DefaultConfig()
	l := learner.New(a, cfg)

	train := []learner.Pair{
		{UF: "ab", SF: "ap"},
		{UF: "ad", SF: "at"},
		{UF: "aba", SF: "aba"},
		{UF: "ada", SF: "ada"},
	}
	if err := l.Train(train); err != nil {
		t.Fatalf("Train: %v", err)
	}

	for _, p := range train {
		out, err := l.Produce(p.UF)
		if err != nil {
			t.Fatalf("Produce(%q): %v", p.UF, err)
		}
		if out.String() != p.SF {
			t.Fatalf("Produce(%q) = %q, want %q\ngrammar:\n%s", p.UF, out.String(), p.SF, l.String())
		}
	}

	acc, errs, err := l.Accuracy(train)
	if err != nil {
		t.Fatalf("Accuracy: %v", err)
	}
	if acc != 1.0 {
		t.Fatalf("Accuracy = %v, want 1.0, errors: %v", acc, errs)
	}
}

// TestLearnerTrainIncrementalMatchesBatchTrain checks that feeding the
// same pairs one at a time via TrainIncremental converges to a grammar
// that predicts identically to a single batch Train call.
func TestLearnerTrainIncrementalMatchesBatchTrain(t *testing.T) {
	pairs := []learner.Pair{
		{UF: "ab", SF: "ap"},
		{UF: "ad", SF: "at"},
		{UF: "aba", SF: "aba"},
		{UF: "ada", SF: "ada"},
	}

	batch := learner.New(devoicingAlphabet(t), learner.DefaultConfig())
	if err := batch.Train(pairs); err != nil {
		t.Fatalf("batch Train: %v", err)
	}

	incremental := learner.New(devoicingAlphabet(t), learner.DefaultConfig())
	for _, p := range pairs {
		if err := incremental.TrainIncremental(p.UF, p.SF); err != nil {
			t.Fatalf("TrainIncremental(%q, %q): %v", p.UF, p.SF, err)
		}
	}

	for _, p := range pairs {
		out, err := incremental.Produce(p.UF)
		if err != nil {
			t.Fatalf("Produce(%q): %v", p.UF, err)
		}
		if out.String() != p.SF {
			t.Fatalf("incremental Produce(%q) = %q, want %q\ngrammar:\n%s", p.UF, out.String(), p.SF, incremental.String())
		}
		batchOut, err := batch.Produce(p.UF)
		if err != nil {
			t.Fatalf("batch Produce(%q): %v", p.UF, err)
		}
		if out.String() != batchOut.String() {
			t.Fatalf("incremental Produce(%q) = %q, batch Produce = %q", p.UF, out.String(), batchOut.String())
		}
	}
}
