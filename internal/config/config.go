package config

import (
	"encoding/json"
	"os"
)

// Config is the JSON run configuration. ExpectedGC and Alpha are pointers so
// an explicit 0 in the file can be told apart from an absent field.
type Config struct {
	Accessions       []string `json:"accessions"`
	InputFasta       string   `json:"input_fasta"`
	OutputJSON       string   `json:"output_json"`
	ChartDir         string   `json:"chart_dir"`
	ExpectedGC       *float64 `json:"expected_gc_percent"`
	Alpha            *float64 `json:"alpha"`
	LogFile          string   `json:"log_file"`
	LogLevel         string   `json:"log_level"`
	NcbiCachePath    string   `json:"ncbi_cache_path"`
	NcbiApiKey       string   `json:"ncbi_api_key"`
	NcbiCacheTTLSecs int64    `json:"ncbi_cache_ttl_seconds"`
	NcbiConcurrency  int      `json:"ncbi_concurrency"`
	NcbiQPS          int      `json:"ncbi_qps"`
	NcbiBatchSize    int      `json:"ncbi_batch_size"`
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
// A missing file is not fatal: defaults are returned. Secrets must be provided
// as literal values in config.json.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	f, err := os.Open(path)
	if err != nil {
		// not fatal: return defaults
		return &Config{}, nil
	}
	defer f.Close()
	var c Config
	dec := json.NewDecoder(f)
	if err := dec.Decode(&c); err != nil {
		// return a usable zero config so callers can defer the fatal
		return &Config{}, err
	}
	return &c, nil
}
