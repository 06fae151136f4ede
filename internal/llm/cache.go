package llm

import (
	"encoding/hex"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
)

// ResponseCache memoizes raw completions by normalized prompt key so retried
// or near-identical requests skip the model entirely. Capacity is bounded;
// the least recently used entry is evicted deterministically. Values are
// idempotent completions for the same prompt, so a write race on one key is
// resolved by last-write-wins.
type ResponseCache struct {
	entries *lru.Cache[string, string]
}

// NewResponseCache returns a cache holding at most capacity completions.
func NewResponseCache(capacity int) (*ResponseCache, error) {
	if capacity <= 0 {
		capacity = 128
	}
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &ResponseCache{entries: entries}, nil
}

// Get returns the cached completion for prompt, if present.
func (c *ResponseCache) Get(prompt string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.entries.Get(CacheKey(prompt))
}

// Put inserts or overwrites the completion for prompt.
func (c *ResponseCache) Put(prompt, completion string) {
	if c == nil {
		return
	}
	c.entries.Add(CacheKey(prompt), completion)
}

// Invalidate drops every cached completion.
func (c *ResponseCache) Invalidate() {
	if c == nil {
		return
	}
	c.entries.Purge()
}

// Len reports the number of live entries.
func (c *ResponseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// CacheKey normalizes a prompt into its cache key: case-folded, interior
// whitespace collapsed, then hashed so near-identical prompts from retried
// requests land on the same entry.
func CacheKey(prompt string) string {
	normalized := strings.ToLower(strings.TrimSpace(prompt))
	normalized = strings.Join(strings.Fields(normalized), " ")
	digest := blake2b.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])
}
