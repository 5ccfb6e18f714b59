// Command plp is the corpus-processing driver around package learner: it
// loads an IPA feature table and a (UF, SF) training corpus, trains a
// grammar, prints it, and optionally scores it against a held-out test
// file.
//
// Grounded on the teacher's preference for stdlib flag over a command
// framework at this scale (SPEC_FULL.md §1, "CLI / corpus driver") and on
// the pack's line-oriented corpus-processing tools for the shape of a
// small batch CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/phonolearn/plp/alphabet"
	"github.com/phonolearn/plp/corpus"
	"github.com/phonolearn/plp/ipa"
	"github.com/phonolearn/plp/learner"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "plp:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("plp", flag.ContinueOnError)
	ipaPath := fs.String("ipa", "", "path to the IPA feature table (TSV)")
	corpusPath := fs.String("corpus", "", "path to the training corpus (TSV: uf\\tsf[\\tfreq])")
	testPath := fs.String("test", "", "optional held-out test corpus to score after training")
	nasVowels := fs.Bool("nas-vowels", false, "synthesize nasalized vowel variants")
	addSegs := fs.Bool("add-segs", false, "eagerly intern every symbol the IPA table defines")
	skipGenA := fs.Bool("skip-gen-a", false, "do not generalize a rule's target position during natural class induction")
	verbose := fs.Bool("verbose", false, "log lexicalized-rule fallbacks to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ipaPath == "" || *corpusPath == "" {
		fs.Usage()
		return fmt.Errorf("both -ipa and -corpus are required")
	}

	table, err := ipa.Load(*ipaPath)
	if err != nil {
		return err
	}

	opts := []alphabet.Option{alphabet.WithNasalVowels(*nasVowels)}
	a := alphabet.New(table.FeatureSpace, table.Segments, opts...)
	if *addSegs {
		if err := a.AddAllKnown(); err != nil {
			return err
		}
	}

	pairs, err := corpus.Load(*corpusPath, corpus.Options{})
	if err != nil {
		return err
	}

	cfg := learner.DefaultConfig()
	cfg.SkipGenA = *skipGenA
	if *verbose {
		cfg.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	l := learner.New(a, cfg)
	trainPairs := make([]learner.Pair, len(pairs))
	for i, p := range pairs {
		trainPairs[i] = learner.Pair{UF: p.UF, SF: p.SF}
	}
	if err := l.Train(trainPairs); err != nil {
		return err
	}

	fmt.Println(l.String())

	if *testPath != "" {
		testPairs, err := corpus.Load(*testPath, corpus.Options{})
		if err != nil {
			return err
		}
		evalPairs := make([]learner.Pair, len(testPairs))
		for i, p := range testPairs {
			evalPairs[i] = learner.Pair{UF: p.UF, SF: p.SF}
		}
		acc, errs, err := l.Accuracy(evalPairs)
		if err != nil {
			return err
		}
		fmt.Printf("accuracy: %.4f\n", acc)
		for _, e := range errs {
			fmt.Println(e)
		}
	}

	return nil
}
