// Package e2e runs black-box tests against a live anagramd started with the
// sample dictionary in data/words.txt. Tests skip when the service is not
// reachable.
//
// Run with:
//
//	go run ./cmd/anagramd -config configs/development.yaml &
//	go test -v -timeout=60s ./test/e2e/...
package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseURL() string {
	if v := os.Getenv("E2E_ANAGRAMD_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func getJSON(t *testing.T, path string, out any) int {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL() + path)
	if err != nil {
		t.Skipf("anagramd unavailable: %v", err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	for _, path := range []string{"/health/live", "/health/ready"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, getJSON(t, path, nil))
		})
	}
}

func TestWordAnagrams(t *testing.T) {
	var resp struct {
		Anagrams []string `json:"anagrams"`
		Version  string   `json:"version"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, "/api/v1/anagrams/word?w=tea", &resp))
	assert.ElementsMatch(t, []string{"ate", "eat", "tea"}, resp.Anagrams)
	assert.NotEmpty(t, resp.Version)
}

func TestSentenceAnagrams(t *testing.T) {
	var resp struct {
		Sentences [][]string `json:"sentences"`
		Letters   int        `json:"letters"`
		Truncated bool       `json:"truncated"`
	}
	path := "/api/v1/anagrams/sentence?q=" + url.QueryEscape("I love you")
	require.Equal(t, http.StatusOK, getJSON(t, path, &resp))
	assert.Equal(t, 8, resp.Letters)
	assert.False(t, resp.Truncated)
	assert.True(t, hasSentence(resp.Sentences, "I", "love", "you"))
	assert.True(t, hasSentence(resp.Sentences, "olive", "you"))
}

// hasSentence reports whether some sentence holds exactly words, in any order.
func hasSentence(sentences [][]string, words ...string) bool {
	want := slices.Sorted(slices.Values(words))
	for _, s := range sentences {
		if slices.Equal(slices.Sorted(slices.Values(s)), want) {
			return true
		}
	}
	return false
}

func TestInvalidQueries(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, getJSON(t, "/api/v1/anagrams/sentence?q=123", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, "/api/v1/anagrams/word", nil))
}

func TestAnalyticsRecordsQueries(t *testing.T) {
	getJSON(t, "/api/v1/anagrams/word?w=listen", nil)

	var stats struct {
		TotalQueries int64 `json:"total_queries"`
	}
	// Events may travel through Kafka before they are counted.
	require.Eventually(t, func() bool {
		return getJSON(t, "/api/v1/analytics", &stats) == http.StatusOK && stats.TotalQueries > 0
	}, 10*time.Second, 250*time.Millisecond)
}

func TestDictionaryStats(t *testing.T) {
	var stats struct {
		Words    int    `json:"words"`
		Profiles int    `json:"profiles"`
		Version  string `json:"version"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, "/api/v1/dictionary/stats", &stats))
	assert.Positive(t, stats.Words)
	assert.LessOrEqual(t, stats.Profiles, stats.Words)
}
