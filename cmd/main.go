package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gcontent/internal/chart"
	"gcontent/internal/composition"
	"gcontent/internal/config"
	"gcontent/internal/fasta"
	"gcontent/internal/ncbi"
	"gcontent/internal/report"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// RecordReport couples everything computed for one sequence: the raw
// composition result, the verdict summary handed to rendering, and the
// bases themselves so the TUI can display them.
type RecordReport struct {
	Accession string             `json:"accession,omitempty"`
	Result    composition.Result `json:"result"`
	Summary   report.Summary     `json:"summary"`
	Bases     string             `json:"bases,omitempty"`
}

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	total := n
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			break
		}
		ts := time.Now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return total, err
		}
	}
	return total, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so libraries that
// inspect the file descriptor (for TTY detection) can work with wrapped writers.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

func main() {
	// CLI flags
	accFlag := flag.String("acc", "", "comma-separated NCBI accession numbers to fetch and analyze")
	inputFlag := flag.String("in", "", "local FASTA file to analyze (no network fetch)")
	outputFlag := flag.String("out", "results.json", "output JSON file path")
	chartsFlag := flag.String("charts", "charts", "directory for rendered GC charts")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	expectedGCFlag := flag.Float64("expected-gc", 50.0, "expected GC percentage to test against, in [0,100]")
	alphaFlag := flag.Float64("alpha", 0.05, "significance threshold for the chi-square test, in (0,1)")
	dryRun := flag.Bool("dry-run", false, "perform a dry run without writing results or charts")
	verbose := flag.Bool("verbose", false, "enable verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("gcontent", version)
		return
	}

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	// load config (optional file)
	cfg, cfgErr := config.LoadConfig(*configFlag)

	// merge CLI flags over config (flags win when explicitly passed)
	opts := mergeOptions(cfg, setFlags, options{
		InputFasta: *inputFlag,
		OutputJSON: *outputFlag,
		ChartDir:   *chartsFlag,
		ExpectedGC: *expectedGCFlag,
		Alpha:      *alphaFlag,
		Accessions: splitAccessions(*accFlag),
	})

	// configure logger output
	var loggerOut io.Writer = os.Stderr
	var logFileHandle *os.File
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			// write to both stderr and file so running interactively still shows logs
			loggerOut = io.MultiWriter(os.Stderr, f)
			logFileHandle = f
			defer func() { _ = logFileHandle.Close() }()
		}
	}
	// If stderr is a terminal-like device, force colors for libraries that honor FORCE_COLOR.
	if fi, err := os.Stderr.Stat(); err == nil {
		if fi.Mode()&os.ModeCharDevice != 0 {
			_ = os.Setenv("FORCE_COLOR", "1")
		}
	}
	// create logger backed by the timestamping writer and expose Fd so charm.log can detect TTY
	tw := &timestampWriter{w: loggerOut}
	termW := &terminalWriter{w: tw, fd: os.Stderr.Fd()}
	logger := log.New(termW)

	// apply log level from flags/config (flags override config)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		switch strings.ToLower(cfg.LogLevel) {
		case "debug":
			logger.SetLevel(log.DebugLevel)
		case "info", "":
			logger.SetLevel(log.InfoLevel)
		case "warn", "warning":
			logger.SetLevel(log.WarnLevel)
		case "error":
			logger.SetLevel(log.ErrorLevel)
		default:
			logger.SetLevel(log.InfoLevel)
			logger.Warn("unknown log_level in config.json, defaulting to info", "provided", cfg.LogLevel)
		}
	}

	if cfgErr != nil {
		logger.Fatal("failed to parse config", "path", *configFlag, "err", cfgErr)
	}
	if opts.ExpectedGC < 0 || opts.ExpectedGC > 100 {
		logger.Fatal("expected GC must be within [0,100]", "expected_gc", opts.ExpectedGC)
	}
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		logger.Fatal("alpha must be within (0,1)", "alpha", opts.Alpha)
	}

	logger.Debug("loaded config", "input_fasta", opts.InputFasta, "output_json", opts.OutputJSON, "chart_dir", opts.ChartDir, "log_file", cfg.LogFile, "log_level", cfg.LogLevel)
	logger.Info("starting gcontent", "accessions", len(opts.Accessions), "input_fasta", opts.InputFasta, "expected_gc", opts.ExpectedGC, "alpha", opts.Alpha)

	// apply ncbi config
	if cfg.NcbiCachePath != "" {
		absPath, aerr := filepath.Abs(cfg.NcbiCachePath)
		if aerr == nil {
			ncbi.SetCacheFilePath(absPath)
			logger.Info("ncbi cache path set from config (absolute)", "path", absPath)
		} else {
			ncbi.SetCacheFilePath(cfg.NcbiCachePath)
			logger.Info("ncbi cache path set from config", "path", cfg.NcbiCachePath)
		}
		defer ncbi.FlushCache()
	}
	if cfg.NcbiApiKey != "" {
		// set the API key from config.json (config-only mode)
		os.Setenv("NCBI_API_KEY", cfg.NcbiApiKey)
		logger.Info("ncbi api key set from config.json (value not logged)")
	}
	if cfg.NcbiCacheTTLSecs > 0 {
		ncbi.SetCacheTTLSeconds(cfg.NcbiCacheTTLSecs)
	}

	// gather sequences: record id -> bases, plus the accession each record
	// came from when known
	seqs := map[string]string{}
	accOf := map[string]string{}

	if opts.InputFasta != "" {
		f, err := os.Open(opts.InputFasta)
		if err != nil {
			logger.Fatal("failed to open input fasta", "path", opts.InputFasta, "err", err)
		}
		parsed, perr := fasta.Parse(f)
		f.Close()
		if perr != nil {
			logger.Fatal("failed to parse input fasta", "path", opts.InputFasta, "err", perr)
		}
		logger.Info("parsed fasta", "path", opts.InputFasta, "records", len(parsed))
		for id, bases := range parsed {
			seqs[id] = bases
			if fields := strings.Fields(id); len(fields) > 0 {
				accOf[id] = fields[0]
			}
		}
	}

	if len(opts.Accessions) > 0 {
		fetched := fetchAll(logger, cfg, opts.Accessions)
		for acc, s := range fetched {
			seqs[s.Header] = s.Bases
			accOf[s.Header] = acc
		}
		for _, acc := range opts.Accessions {
			if _, ok := fetched[acc]; !ok {
				logger.Warn("no sequence retrieved for accession", "accession", acc)
			}
		}
	}

	if len(seqs) == 0 {
		logger.Fatal("nothing to analyze: provide --acc, --in, or accessions in config.json")
	}

	// analyze records concurrently; each one is independent
	out := make(chan RecordReport)
	var wg sync.WaitGroup
	for id, bases := range seqs {
		wg.Add(1)
		go func(id, bases string) {
			defer wg.Done()
			res := composition.Analyze(bases, opts.ExpectedGC)
			res.RecordID = id
			out <- RecordReport{
				Accession: accOf[id],
				Result:    res,
				Summary:   report.Summarize(res, opts.Alpha),
				Bases:     bases,
			}
		}(id, bases)
	}
	go func() {
		wg.Wait()
		close(out)
	}()

	var reports []RecordReport
	for r := range out {
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Result.RecordID < reports[j].Result.RecordID })

	printReports(reports)
	logBatchStats(logger, reports)

	if *dryRun {
		logger.Info("dry-run: skipping results JSON and chart output", "records", len(reports))
		return
	}

	jsonData, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		logger.Fatal("json marshal failed", "err", err)
	}
	if err := os.WriteFile(opts.OutputJSON, jsonData, 0o644); err != nil {
		logger.Error("failed to write results JSON", "path", opts.OutputJSON, "err", err)
	} else {
		logger.Info("wrote results JSON", "path", opts.OutputJSON, "records", len(reports))
	}

	rendered := 0
	for _, r := range reports {
		if !r.Summary.Tested {
			logger.Debug("skipping chart for untested record", "record", r.Result.RecordID)
			continue
		}
		path, err := chart.Render(r.Summary, opts.ChartDir)
		if err != nil {
			logger.Error("chart render failed", "record", r.Result.RecordID, "err", err)
			continue
		}
		logger.Debug("rendered chart", "path", path)
		rendered++
	}
	logger.Info("rendered charts", "dir", opts.ChartDir, "count", rendered)
}

// options are the effective run settings after merging CLI flags over the
// config file.
type options struct {
	InputFasta string
	OutputJSON string
	ChartDir   string
	ExpectedGC float64
	Alpha      float64
	Accessions []string
}

// mergeOptions applies the precedence rule: a flag that was explicitly
// passed wins; otherwise a value present in cfg wins; otherwise the flag
// default stands. set reports which flags were passed (from flag.Visit).
func mergeOptions(cfg *config.Config, set map[string]bool, flagVals options) options {
	opts := flagVals
	if !set["in"] && cfg.InputFasta != "" {
		opts.InputFasta = cfg.InputFasta
	}
	if !set["out"] && cfg.OutputJSON != "" {
		opts.OutputJSON = cfg.OutputJSON
	}
	if !set["charts"] && cfg.ChartDir != "" {
		opts.ChartDir = cfg.ChartDir
	}
	if !set["expected-gc"] && cfg.ExpectedGC != nil {
		opts.ExpectedGC = *cfg.ExpectedGC
	}
	if !set["alpha"] && cfg.Alpha != nil {
		opts.Alpha = *cfg.Alpha
	}
	if len(opts.Accessions) == 0 {
		opts.Accessions = cfg.Accessions
	}
	return opts
}

// splitAccessions parses the comma-separated -acc flag value.
func splitAccessions(s string) []string {
	var accs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			accs = append(accs, a)
		}
	}
	return accs
}

// fetchAll retrieves sequences for the accession list through a small worker
// pool, rate limited by a shared ticker so the pool stays inside NCBI's
// request budget.
func fetchAll(logger *log.Logger, cfg *config.Config, accessions []string) map[string]ncbi.Sequence {
	concurrency := cfg.NcbiConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	qps := cfg.NcbiQPS
	if qps <= 0 {
		qps = 3
	}
	batchSize := cfg.NcbiBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	logger.Info("starting ncbi batch lookup", "accessions", len(accessions), "concurrency", concurrency, "qps", qps, "batch_size", batchSize)

	ticker := time.NewTicker(time.Second / time.Duration(qps))
	defer ticker.Stop()

	tasks := make(chan []string)
	results := make(chan map[string]ncbi.Sequence)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range tasks {
				<-ticker.C // rate limit per batch
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				m, err := ncbi.FetchSequences(ctx, batch)
				cancel()
				if err != nil {
					logger.Warn("ncbi batch fetch error", "err", err)
				}
				results <- m
			}
		}()
	}

	go func() {
		for i := 0; i < len(accessions); i += batchSize {
			end := i + batchSize
			if end > len(accessions) {
				end = len(accessions)
			}
			tasks <- accessions[i:end]
		}
		close(tasks)
	}()

	received := 0
	expected := (len(accessions) + batchSize - 1) / batchSize
	merged := map[string]ncbi.Sequence{}
	for received < expected {
		m := <-results
		for k, v := range m {
			merged[k] = v
		}
		received++
	}
	close(results)
	wg.Wait()

	logger.Info("ncbi batch lookup finished", "retrieved", len(merged))
	return merged
}

// printReports writes the per-record console report to stdout.
func printReports(reports []RecordReport) {
	for _, r := range reports {
		res := r.Result
		fmt.Printf("Sequence: %s\n", res.RecordID)
		fmt.Printf("  Length: %d\n", res.Length)
		fmt.Printf("  GC content: %.2f%%\n", res.GCPercent)
		if res.Test != nil {
			fmt.Printf("  Chi-square: statistic = %.2f, p-value = %.3f\n", res.Test.Statistic, res.Test.PValue)
			switch r.Summary.Verdict {
			case report.VerdictSignificant:
				fmt.Printf("  GC content deviates significantly from %.1f%%.\n\n", res.Test.ExpectedGC)
			default:
				fmt.Printf("  GC content does not deviate significantly from %.1f%%.\n\n", res.Test.ExpectedGC)
			}
		} else {
			fmt.Printf("  Not enough data for the chi-square test.\n\n")
		}
	}
}

// logBatchStats logs mean and spread of GC content across the whole run.
func logBatchStats(logger *log.Logger, reports []RecordReport) {
	if len(reports) == 0 {
		return
	}
	gcs := make([]float64, 0, len(reports))
	for _, r := range reports {
		gcs = append(gcs, r.Result.GCPercent)
	}
	mean := stat.Mean(gcs, nil)
	if len(gcs) > 1 {
		logger.Info("run summary", "records", len(gcs), "gc_mean", fmt.Sprintf("%.2f", mean), "gc_stddev", fmt.Sprintf("%.2f", stat.StdDev(gcs, nil)))
	} else {
		logger.Info("run summary", "records", len(gcs), "gc_mean", fmt.Sprintf("%.2f", mean))
	}
}
