// Command loadtest drives concurrent anagram queries against a running
// anagramd and reports throughput, latency percentiles, cache hit rate and
// status codes.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Limit       int
	// WordEvery sends a word query instead of a sentence query on every
	// n-th request of a worker. Zero disables word queries.
	WordEvery int
	Sentences []string
	Words     []string
}

type Stats struct {
	total     atomic.Int64
	success   atomic.Int64
	errors    atomic.Int64
	cacheHits atomic.Int64
	sentences atomic.Int64

	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]int64),
	}
}

func (s *Stats) Record(duration time.Duration, statusCode int, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if statusCode >= 200 && statusCode < 300 {
		s.success.Add(1)
	} else {
		s.errors.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, duration)
	s.statusCodes[statusCode]++
	s.mu.Unlock()
}

// sentenceReply is the part of the sentence response the load test reads.
type sentenceReply struct {
	Sentences [][]string `json:"sentences"`
	CacheHit  bool       `json:"cache_hit"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the anagram service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	limit := flag.Int("limit", 100, "limit parameter sent with sentence queries")
	wordEvery := flag.Int("word-every", 4, "send a word query every n-th request (0 = never)")
	flag.Parse()

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		Limit:       *limit,
		WordEvery:   *wordEvery,
		Sentences: []string{
			"I love you",
			"listen silent",
			"the golden heart",
			"dormitory",
			"astronomer",
			"a gentleman",
			"eleven plus two",
			"Clint Eastwood",
			"conversation",
			"the eyes",
		},
		Words: []string{"tea", "listen", "stare", "evil", "angle", "below", "night"},
	}

	fmt.Println("=== Anagram Service Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d sentences, %d words\n", len(cfg.Sentences), len(cfg.Words))
	fmt.Println()

	stats := run(cfg)
	if err := report(stats, cfg.Duration); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for n := worker; ctx.Err() == nil; n++ {
				if cfg.WordEvery > 0 && n%cfg.WordEvery == 0 {
					word := cfg.Words[n%len(cfg.Words)]
					target := cfg.BaseURL + "/api/v1/anagrams/word?w=" + url.QueryEscape(word)
					start := time.Now()
					status, err := get(ctx, client, target, nil)
					stats.Record(time.Since(start), status, err)
					continue
				}

				sentence := cfg.Sentences[n%len(cfg.Sentences)]
				target := fmt.Sprintf("%s/api/v1/anagrams/sentence?q=%s&limit=%s",
					cfg.BaseURL, url.QueryEscape(sentence), strconv.Itoa(cfg.Limit))
				var reply sentenceReply
				start := time.Now()
				status, err := get(ctx, client, target, &reply)
				stats.Record(time.Since(start), status, err)
				if err == nil && status == http.StatusOK {
					stats.sentences.Add(int64(len(reply.Sentences)))
					if reply.CacheHit {
						stats.cacheHits.Add(1)
					}
				}
			}
		}(w)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	fmt.Print("Running")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

// get issues a GET and decodes a JSON body into out when out is non-nil.
func get(ctx context.Context, client *http.Client, target string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func report(stats *Stats, duration time.Duration) error {
	total := stats.total.Load()
	success := stats.success.Load()
	failed := stats.errors.Load()

	fmt.Println("=== Results ===")
	fmt.Printf("Total Requests:  %d\n", total)
	fmt.Printf("Successful:      %d\n", success)
	fmt.Printf("Errors:          %d\n", failed)
	if total > 0 {
		fmt.Printf("Error Rate:      %.2f%%\n", float64(failed)/float64(total)*100)
		fmt.Printf("Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}
	if success > 0 {
		fmt.Printf("Cache Hits:      %d\n", stats.cacheHits.Load())
		fmt.Printf("Sentences:       %d\n", stats.sentences.Load())
	}

	stats.mu.Lock()
	latencies := slices.Clone(stats.latencies)
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	counts := make(map[int]int64, len(codes))
	for code, n := range stats.statusCodes {
		counts[code] = n
	}
	stats.mu.Unlock()

	if len(latencies) > 0 {
		slices.Sort(latencies)
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		avg := sum / time.Duration(len(latencies))

		fmt.Println()
		fmt.Println("=== Latency ===")
		fmt.Printf("Min:    %s\n", latencies[0])
		fmt.Printf("Avg:    %s\n", avg)
		fmt.Printf("P50:    %s\n", percentile(latencies, 50))
		fmt.Printf("P90:    %s\n", percentile(latencies, 90))
		fmt.Printf("P95:    %s\n", percentile(latencies, 95))
		fmt.Printf("P99:    %s\n", percentile(latencies, 99))
		fmt.Printf("Max:    %s\n", latencies[len(latencies)-1])

		var sumSquared float64
		for _, l := range latencies {
			diff := float64(l) - float64(avg)
			sumSquared += diff * diff
		}
		fmt.Printf("StdDev: %s\n", time.Duration(math.Sqrt(sumSquared/float64(len(latencies)))))
	}

	fmt.Println()
	fmt.Println("=== Status Codes ===")
	slices.Sort(codes)
	for _, code := range codes {
		fmt.Printf("  %d: %d\n", code, counts[code])
	}

	if total == 0 {
		return fmt.Errorf("no requests completed; is the service running at the target URL?")
	}
	return nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
