package intent

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// DefaultCacheTTL bounds how long a decision stays valid. Decisions
// are pure functions of their inputs, so the TTL only limits drift
// against integration availability changing underneath us.
const DefaultCacheTTL = 5 * time.Minute

// sweepProbability is the chance a Put also removes stale entries,
// bounding memory without a dedicated timer goroutine.
const sweepProbability = 0.1

const keyPrefixLen = 50

type cacheEntry struct {
	decision  Decision
	createdAt time.Time
}

// Cache is a bounded, TTL-based decision cache. Safe for concurrent
// use. Entries are value-copied in and out; last write wins on
// concurrent puts for the same key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration

	// injectable for tests
	now    func() time.Time
	chance func() float64
}

// NewCache creates a cache with the given TTL, or DefaultCacheTTL when
// ttl is zero.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		chance:  rand.Float64,
	}
}

// Get returns the cached decision for a key. Expiry is checked lazily:
// a stale entry is removed and reported as a miss.
func (c *Cache) Get(key string) (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return Decision{}, false
	}
	if c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, key)
		return Decision{}, false
	}
	return entry.decision.clone(), true
}

// Put stores a decision by value and occasionally sweeps stale
// entries.
func (c *Cache) Put(key string, d Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{decision: d.clone(), createdAt: c.now()}

	if c.chance() < sweepProbability {
		c.sweepLocked()
	}
}

// Len reports the number of live entries, counting entries not yet
// swept even if stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) sweepLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

// CacheKey derives the deterministic fingerprint for a message and
// context. Only a truncated, normalized message prefix participates:
// hashing the full message is deliberately avoided so near-duplicate
// openings collapse to the same entry, trading a small false-hit rate
// for hit-rate gains on repeated conversation starts.
func CacheKey(message string, tc ToolContext) string {
	prefix := normalizePrefix(message, keyPrefixLen)
	return fmt.Sprintf("%s-%s-%t-%s", tc.ChatbotID, tc.Plan, tc.ModelSupportsTools, prefix)
}

func normalizePrefix(message string, limit int) string {
	lower := strings.ToLower(message)
	runes := []rune(lower)
	if len(runes) > limit {
		runes = runes[:limit]
	}

	var sb strings.Builder
	inSpace := false
	for _, r := range runes {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
