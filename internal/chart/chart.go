// Package chart renders a per-record GC comparison chart. It is the sink
// side of the pipeline: it consumes a finished report.Summary and knows
// nothing about how the numbers were computed.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"gcontent/internal/report"
)

// Render draws the observed-vs-expected GC bar chart for s and saves it as
// a PNG under dir, creating dir if needed. The file name is derived from
// the record id, so one record always maps to the same artifact. Returns
// the written path.
func Render(s report.Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("chart: create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = "GC content: " + s.RecordID
	p.Y.Label.Text = "GC content (%)"
	p.X.Label.Text = fmt.Sprintf("length %d, %s", s.Length, s.Verdict)
	p.Y.Min = 0
	p.Y.Max = 100

	bars, err := plotter.NewBarChart(plotter.Values{s.Values[0], s.Values[1]}, vg.Points(30))
	if err != nil {
		return "", fmt.Errorf("chart: build bars: %w", err)
	}
	p.Add(bars)
	p.NominalX(s.Labels[0], s.Labels[1])

	path := filepath.Join(dir, FileName(s.RecordID))
	if err := p.Save(4*vg.Inch, 4*vg.Inch, path); err != nil {
		return "", fmt.Errorf("chart: save %s: %w", path, err)
	}
	return path, nil
}

// FileName maps a record id to its chart artifact name. Only the first
// whitespace-separated token (the accession in NCBI headers) is used, with
// path-hostile characters replaced.
func FileName(id string) string {
	token := id
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	if token == "" {
		token = "record"
	}
	token = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, token)
	return token + "_gc_content.png"
}
