// Package ncbi fetches nucleotide FASTA records from the NCBI efetch
// endpoint. Responses are cached on disk with a TTL so repeated runs over
// the same accession list stay off the network.
package ncbi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gcontent/internal/fasta"
)

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 20 * time.Second}

const efetchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"

// Sequence is one fetched nucleotide record.
type Sequence struct {
	Header string `json:"header"`
	Bases  string `json:"bases"`
}

// Cache structures
type cachedEntry struct {
	Header      string `json:"header"`
	Bases       string `json:"bases"`
	RetrievedAt int64  `json:"retrieved_at"`
}

var (
	cacheMu       sync.RWMutex
	cache         map[string]cachedEntry
	cacheLoaded   bool
	cacheFilePath string
	cacheTTLSecs  atomic.Int64
)

// SetCacheFilePath overrides the on-disk cache location.
func SetCacheFilePath(p string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheFilePath = p
	cacheLoaded = false
	cache = nil
}

// SetCacheTTLSeconds overrides the cache TTL.
func SetCacheTTLSeconds(v int64) {
	cacheTTLSecs.Store(v)
}

// FlushCache writes the in-memory cache to disk.
func FlushCache() {
	saveCache()
}

// cache TTL in seconds (default 7 days)
func cacheTTL() int64 {
	if override := cacheTTLSecs.Load(); override != 0 {
		return override
	}
	if s := os.Getenv("NCBI_CACHE_TTL_SECONDS"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return int64(7 * 24 * 3600)
}

func defaultCachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "gcontent")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "ncbi_cache.json")
	}
	return filepath.Join(os.TempDir(), "gcontent_ncbi_cache.json")
}

func loadCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheLoaded {
		return
	}
	path := defaultCachePath()
	cache = make(map[string]cachedEntry)
	data, err := os.ReadFile(path)
	if err != nil {
		cacheLoaded = true
		return
	}
	_ = json.Unmarshal(data, &cache)
	cacheLoaded = true
}

func saveCache() {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	if cache == nil {
		return
	}
	path := defaultCachePath()
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, b, 0o644)
}

func getCached(acc string) (Sequence, bool) {
	loadCache()
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	e, ok := cache[acc]
	if !ok {
		return Sequence{}, false
	}
	ttl := cacheTTL()
	if ttl > 0 && time.Now().Unix()-e.RetrievedAt > ttl {
		return Sequence{}, false
	}
	return Sequence{Header: e.Header, Bases: e.Bases}, true
}

func setCached(acc string, s Sequence) {
	if acc == "" || s.Bases == "" {
		return
	}
	loadCache()
	cacheMu.Lock()
	cache[acc] = cachedEntry{Header: s.Header, Bases: s.Bases, RetrievedAt: time.Now().Unix()}
	cacheMu.Unlock()
	saveCache()
}

// FetchSequences fetches FASTA records for the given accessions in one
// efetch call and returns a map from accession to its record. Cached
// entries are served without touching the network. An accession the
// endpoint does not return is simply absent from the result; callers decide
// whether that is fatal.
func FetchSequences(ctx context.Context, accessions []string) (map[string]Sequence, error) {
	out := make(map[string]Sequence)
	var missing []string
	for _, acc := range accessions {
		if acc == "" {
			continue
		}
		if s, ok := getCached(acc); ok {
			out[acc] = s
			continue
		}
		missing = append(missing, acc)
	}
	if len(missing) == 0 {
		return out, nil
	}

	body, err := efetch(ctx, missing)
	if err != nil {
		return out, err
	}
	seqs, err := fasta.Parse(strings.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("ncbi: parse efetch response: %w", err)
	}

	// Headers come back as "<accession> <description>"; match the first
	// token against what was asked for.
	wanted := make(map[string]bool, len(missing))
	for _, acc := range missing {
		wanted[acc] = true
	}
	for header, bases := range seqs {
		acc := header
		if fields := strings.Fields(header); len(fields) > 0 {
			acc = fields[0]
		}
		if !wanted[acc] {
			continue
		}
		s := Sequence{Header: header, Bases: bases}
		out[acc] = s
		setCached(acc, s)
	}
	return out, nil
}

// FetchSequence fetches a single accession.
func FetchSequence(ctx context.Context, accession string) (Sequence, error) {
	m, err := FetchSequences(ctx, []string{accession})
	if err != nil {
		return Sequence{}, err
	}
	s, ok := m[accession]
	if !ok {
		return Sequence{}, fmt.Errorf("ncbi: no record returned for %s", accession)
	}
	return s, nil
}

// efetch retrieves raw FASTA text for the given ids, retrying transient
// failures and honoring Retry-After on 429 responses.
func efetch(ctx context.Context, ids []string) (string, error) {
	params := url.Values{}
	params.Set("db", "nucleotide")
	params.Set("id", strings.Join(ids, ","))
	params.Set("rettype", "fasta")
	params.Set("retmode", "text")
	if key := os.Getenv("NCBI_API_KEY"); key != "" {
		params.Set("api_key", key)
	}
	reqURL := efetchURL + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", "gcontent-fetcher/1.0")
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt*300) * time.Millisecond):
			}
			continue
		}

		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return "", readErr
			}
			return string(data), nil
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("ncbi efetch returned 429")
			wait := time.Duration(attempt*500) * time.Millisecond
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		default:
			return "", fmt.Errorf("ncbi efetch returned status %d: %s", resp.StatusCode, string(data))
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("ncbi efetch: retries exhausted")
}
