// Package report turns a composition result into the boundary payload used
// for printing and chart rendering. It performs no I/O.
package report

import "gcontent/internal/composition"

// Verdict strings attached to a summary.
const (
	VerdictSignificant    = "significant deviation"
	VerdictNotSignificant = "not significant"
	VerdictInsufficient   = "insufficient data"
)

// Summary carries the values handed to the rendering collaborator: two
// labeled GC percentages, the verdict, and the sequence length. Tested is
// false when the chi-square test was not computable; Values then holds the
// whole-record GC percentage and a zero expected slot, and no significance
// claim is made.
type Summary struct {
	RecordID string     `json:"record_id"`
	Length   int        `json:"length"`
	Labels   [2]string  `json:"labels"`
	Values   [2]float64 `json:"values"`
	Verdict  string     `json:"verdict"`
	Tested   bool       `json:"tested"`
}

// Summarize decides the significance verdict for res at threshold alpha.
// The comparison is strictly less-than: p == alpha is not significant.
func Summarize(res composition.Result, alpha float64) Summary {
	s := Summary{
		RecordID: res.RecordID,
		Length:   res.Length,
		Labels:   [2]string{"observed", "expected"},
	}
	if res.Test == nil {
		s.Values[0] = res.GCPercent
		s.Verdict = VerdictInsufficient
		return s
	}
	s.Tested = true
	s.Values[0] = res.Test.ObservedGC
	s.Values[1] = res.Test.ExpectedGC
	if res.Test.PValue < alpha {
		s.Verdict = VerdictSignificant
	} else {
		s.Verdict = VerdictNotSignificant
	}
	return s
}
