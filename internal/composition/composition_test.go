package composition

import (
	"math"
	"strings"
	"testing"
)

func TestCountCaseInvariance(t *testing.T) {
	inputs := []string{"acgt", "AcGt", "gggGGccCCa", "tTtT"}
	for _, s := range inputs {
		lower := Count(s)
		upper := Count(strings.ToUpper(s))
		if lower != upper {
			t.Fatalf("counts differ for %q: %+v vs %+v", s, lower, upper)
		}
	}
}

func TestCountIgnoresOtherSymbols(t *testing.T) {
	c := Count("ACGTN-U acgt")
	want := Counts{A: 2, C: 2, G: 2, T: 2}
	if c != want {
		t.Fatalf("expected %+v, got %+v", want, c)
	}
}

func TestGCContentEmpty(t *testing.T) {
	if got := GCContent(""); got != 0.0 {
		t.Fatalf("expected 0.0 for empty sequence, got %v", got)
	}
}

func TestGCContentBounds(t *testing.T) {
	inputs := []string{"", "A", "G", "ACGT", "NNNN", "GGGGCC", strings.Repeat("AT", 100)}
	for _, s := range inputs {
		gc := GCContent(s)
		if gc < 0.0 || gc > 100.0 {
			t.Fatalf("GC content out of range for %q: %v", s, gc)
		}
	}
}

func TestAnalyzeBalanced(t *testing.T) {
	res := Analyze("GGGGCCCCAAAATTTT", 50.0)
	want := Counts{A: 4, C: 4, G: 4, T: 4}
	if res.Counts != want {
		t.Fatalf("expected counts %+v, got %+v", want, res.Counts)
	}
	if res.GCPercent != 50.0 {
		t.Fatalf("expected GC 50.0, got %v", res.GCPercent)
	}
	if res.Test == nil {
		t.Fatalf("expected test to be computable")
	}
	if res.Test.Statistic > 1e-12 {
		t.Fatalf("expected statistic ~0, got %v", res.Test.Statistic)
	}
	if res.Test.PValue < 0.999 {
		t.Fatalf("expected p-value ~1, got %v", res.Test.PValue)
	}
	if res.Test.TotalBases != 16 {
		t.Fatalf("expected 16 classified bases, got %d", res.Test.TotalBases)
	}
}

func TestAnalyzeSkewed(t *testing.T) {
	res := Analyze("GGGGGGGGAAAA", 50.0)
	if math.Abs(res.GCPercent-66.666666) > 0.001 {
		t.Fatalf("expected GC ~66.67, got %v", res.GCPercent)
	}
	if res.Test == nil {
		t.Fatalf("expected test to be computable")
	}
	if res.Test.Statistic <= 0 {
		t.Fatalf("expected positive statistic, got %v", res.Test.Statistic)
	}
	// observed [c g a t] = [0 8 4 0], expected [3 3 3 3]: statistic is
	// 3+25/3+1/3+3 > 14, far beyond the 0.05 critical value at df=3.
	if res.Test.PValue >= 0.05 {
		t.Fatalf("expected p-value < 0.05, got %v", res.Test.PValue)
	}
}

func TestAnalyzeAllAmbiguous(t *testing.T) {
	res := Analyze("NNNNNNNN", 50.0)
	if res.Length != 8 {
		t.Fatalf("expected length 8, got %d", res.Length)
	}
	if res.Counts.Classified() != 0 {
		t.Fatalf("expected 0 classified bases, got %d", res.Counts.Classified())
	}
	if res.GCPercent != 0.0 {
		t.Fatalf("expected GC 0.0, got %v", res.GCPercent)
	}
	if res.Test != nil {
		t.Fatalf("expected no test for all-ambiguous sequence")
	}
}

func TestAnalyzeExtremeExpectedGC(t *testing.T) {
	// Expected GC of 100 zeroes the AT cells; the two GC cells still carry
	// a degree of freedom, so the test stays computable.
	res := Analyze("GGGGCCCC", 100.0)
	if res.Test == nil {
		t.Fatalf("expected test with two surviving GC cells")
	}
	if res.Test.Statistic > 1e-12 {
		t.Fatalf("expected statistic ~0 for perfectly matching input, got %v", res.Test.Statistic)
	}

	// At expected GC 0 the GC cells are zero and the AT cells carry the
	// whole total.
	res = Analyze("AATT", 0.0)
	if res.Test == nil {
		t.Fatalf("expected test with two surviving AT cells")
	}

	// Both extremes with no classified bases drop everything.
	res = Analyze("NN", 100.0)
	if res.Test != nil {
		t.Fatalf("expected no test when every cell is dropped")
	}
}

func TestAnalyzeObservedGCUsesClassifiedTotal(t *testing.T) {
	// Half the record is N: GCPercent is over the whole length, the test's
	// ObservedGC over classified bases only. The two must stay different.
	res := Analyze("GGCCNNNN", 50.0)
	if res.GCPercent != 50.0 {
		t.Fatalf("expected whole-length GC 50.0, got %v", res.GCPercent)
	}
	if res.Test == nil {
		t.Fatalf("expected test to be computable")
	}
	if res.Test.ObservedGC != 100.0 {
		t.Fatalf("expected classified GC 100.0, got %v", res.Test.ObservedGC)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	res := Analyze("", 50.0)
	if res.Length != 0 || res.GCPercent != 0.0 {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}
	if res.Test != nil {
		t.Fatalf("expected no test for empty input")
	}
}
