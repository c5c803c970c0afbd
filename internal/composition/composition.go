// Package composition derives nucleotide statistics for a single DNA
// sequence: exact A/C/G/T counts, GC percentage, and a chi-square
// goodness-of-fit test of the base composition against an expected GC
// fraction.
package composition

import "gonum.org/v1/gonum/stat/distuv"

// Counts holds exact occurrences of the four canonical nucleotides.
type Counts struct {
	A int `json:"a"`
	C int `json:"c"`
	G int `json:"g"`
	T int `json:"t"`
}

// Classified returns how many bases were counted as one of A, C, G or T.
func (c Counts) Classified() int { return c.A + c.C + c.G + c.T }

// ChiSquare is the goodness-of-fit test of observed base composition
// against an expected GC fraction. ObservedGC is computed over the
// classified total only, so it can differ from Result.GCPercent when the
// sequence carries symbols outside A/C/G/T; both values are kept.
type ChiSquare struct {
	Statistic  float64 `json:"statistic"`
	PValue     float64 `json:"p_value"`
	ObservedGC float64 `json:"observed_gc_percent"`
	ExpectedGC float64 `json:"expected_gc_percent"`
	TotalBases int     `json:"total_classified_bases"`
}

// Result is the full composition analysis of one sequence. Test is nil when
// the chi-square test is not computable; that is an expected outcome (an
// all-N sequence, or an expected GC of exactly 0 or 100), not a failure.
type Result struct {
	RecordID  string     `json:"record_id"`
	Length    int        `json:"length"`
	GCPercent float64    `json:"gc_percent"`
	Counts    Counts     `json:"counts"`
	Test      *ChiSquare `json:"test,omitempty"`
}

// Count tallies A, C, G and T in bases, matching either case. Every other
// symbol (ambiguity codes such as N, gaps, RNA's U) is left out of the
// tally; it still contributes to the sequence length.
func Count(bases string) Counts {
	var c Counts
	for i := 0; i < len(bases); i++ {
		switch bases[i] {
		case 'A', 'a':
			c.A++
		case 'C', 'c':
			c.C++
		case 'G', 'g':
			c.G++
		case 'T', 't':
			c.T++
		}
	}
	return c
}

// GCContent returns the percentage of G and C over the whole sequence
// length. A zero-length sequence has GC content 0.0 by definition.
func GCContent(bases string) float64 {
	if len(bases) == 0 {
		return 0.0
	}
	c := Count(bases)
	return float64(c.G+c.C) / float64(len(bases)) * 100
}

// Analyze computes counts, GC content and the chi-square test of bases
// against expectedGC (a percentage in [0,100]). The caller fills in
// RecordID. When fewer than two expected cells are non-zero the test is not
// computable and Result.Test is nil.
func Analyze(bases string, expectedGC float64) Result {
	counts := Count(bases)
	return Result{
		Length:    len(bases),
		GCPercent: GCContent(bases),
		Counts:    counts,
		Test:      chiSquareTest(counts, expectedGC),
	}
}

// chiSquareTest compares the observed vector [c, g, a, t] against expected
// cells built by splitting the classified total into two GC-class and two
// AT-class cells. Cells whose expected value is exactly zero are dropped;
// with fewer than two cells left there is no degree of freedom and the test
// is not computable.
func chiSquareTest(counts Counts, expectedGC float64) *ChiSquare {
	total := counts.Classified()
	observed := [4]float64{float64(counts.C), float64(counts.G), float64(counts.A), float64(counts.T)}
	gcCell := float64(total) * expectedGC / 100 / 2
	atCell := float64(total) * (100 - expectedGC) / 100 / 2
	expected := [4]float64{gcCell, gcCell, atCell, atCell}

	statistic := 0.0
	cells := 0
	for i, e := range expected {
		if e == 0 {
			continue
		}
		d := observed[i] - e
		statistic += d * d / e
		cells++
	}
	if cells < 2 {
		return nil
	}

	dist := distuv.ChiSquared{K: float64(cells - 1)}
	observedGC := 0.0
	if total > 0 {
		observedGC = float64(counts.C+counts.G) / float64(total) * 100
	}
	return &ChiSquare{
		Statistic:  statistic,
		PValue:     dist.Survival(statistic),
		ObservedGC: observedGC,
		ExpectedGC: expectedGC,
		TotalBases: total,
	}
}
