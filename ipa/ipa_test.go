package ipa_test

import (
	"strings"
	"testing"

	"github.com/phonolearn/plp/ipa"
	"github.com/phonolearn/plp/segment"
)

const table = "sym\tcons\tvoi\tson\n" +
	"p\t+\t-\t-\n" +
	"b\t+\t+\t-\n" +
	"a\t-\t+\t+\n"

func TestReadParsesFeatureSpaceAndSegments(t *testing.T) {
	tbl, err := ipa.Read(strings.NewReader(table))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	wantFeats := []string{"cons", "voi", "son"}
	if len(tbl.FeatureSpace) != len(wantFeats) {
		t.Fatalf("FeatureSpace = %v, want %v", tbl.FeatureSpace, wantFeats)
	}
	for i, f := range wantFeats {
		if tbl.FeatureSpace[i] != f {
			t.Fatalf("FeatureSpace[%d] = %q, want %q", i, tbl.FeatureSpace[i], f)
		}
	}

	p, ok := tbl.Segments["p"]
	if !ok {
		t.Fatalf("expected segment %q", "p")
	}
	want := []segment.Value{segment.Plus, segment.Minus, segment.Minus}
	for i, v := range want {
		if p[i] != v {
			t.Fatalf("p[%d] = %q, want %q", i, p[i], v)
		}
	}
}

func TestReadRejectsMismatchedRowWidth(t *testing.T) {
	bad := "sym\tcons\tvoi\n" + "p\t+\n"
	if _, err := ipa.Read(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for row with too few values")
	}
}

func TestReadRejectsEmptyFile(t *testing.T) {
	if _, err := ipa.Read(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for an empty feature table")
	}
}
