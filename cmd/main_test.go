package main

import (
	"reflect"
	"testing"

	"gcontent/internal/config"
)

func f64(v float64) *float64 { return &v }

// flag defaults as declared in main
func defaultFlagVals() options {
	return options{
		OutputJSON: "results.json",
		ChartDir:   "charts",
		ExpectedGC: 50.0,
		Alpha:      0.05,
	}
}

func TestMergeOptions(t *testing.T) {
	cases := []struct {
		name     string
		cfg      config.Config
		set      map[string]bool
		flagVals options
		want     options
	}{
		{
			name:     "empty config keeps flag defaults",
			cfg:      config.Config{},
			set:      map[string]bool{},
			flagVals: defaultFlagVals(),
			want:     defaultFlagVals(),
		},
		{
			name: "config fills unset flags",
			cfg: config.Config{
				InputFasta: "seqs.fasta",
				OutputJSON: "out.json",
				ChartDir:   "plots",
				ExpectedGC: f64(40.0),
				Alpha:      f64(0.01),
				Accessions: []string{"NM_1", "NM_2"},
			},
			set:      map[string]bool{},
			flagVals: defaultFlagVals(),
			want: options{
				InputFasta: "seqs.fasta",
				OutputJSON: "out.json",
				ChartDir:   "plots",
				ExpectedGC: 40.0,
				Alpha:      0.01,
				Accessions: []string{"NM_1", "NM_2"},
			},
		},
		{
			name: "explicit flags beat config",
			cfg: config.Config{
				InputFasta: "seqs.fasta",
				OutputJSON: "out.json",
				ExpectedGC: f64(40.0),
				Alpha:      f64(0.01),
			},
			set: map[string]bool{"in": true, "out": true, "expected-gc": true, "alpha": true},
			flagVals: options{
				InputFasta: "other.fasta",
				OutputJSON: "other.json",
				ChartDir:   "charts",
				ExpectedGC: 60.0,
				Alpha:      0.1,
			},
			want: options{
				InputFasta: "other.fasta",
				OutputJSON: "other.json",
				ChartDir:   "charts",
				ExpectedGC: 60.0,
				Alpha:      0.1,
			},
		},
		{
			name: "explicit zero expected GC in config survives",
			cfg: config.Config{
				ExpectedGC: f64(0.0),
			},
			set:      map[string]bool{},
			flagVals: defaultFlagVals(),
			want: func() options {
				o := defaultFlagVals()
				o.ExpectedGC = 0.0
				return o
			}(),
		},
		{
			name: "-acc overrides config accessions",
			cfg: config.Config{
				Accessions: []string{"NM_1"},
			},
			set: map[string]bool{"acc": true},
			flagVals: func() options {
				o := defaultFlagVals()
				o.Accessions = splitAccessions(" NM_9 , NM_10 ,")
				return o
			}(),
			want: func() options {
				o := defaultFlagVals()
				o.Accessions = []string{"NM_9", "NM_10"}
				return o
			}(),
		},
	}

	for _, c := range cases {
		got := mergeOptions(&c.cfg, c.set, c.flagVals)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s: expected %+v, got %+v", c.name, c.want, got)
		}
	}
}

func TestSplitAccessions(t *testing.T) {
	if got := splitAccessions(""); got != nil {
		t.Fatalf("expected nil for empty flag, got %v", got)
	}
	got := splitAccessions("NM_000518.5, NC_000913.3 ,,")
	want := []string{"NM_000518.5", "NC_000913.3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
