package intent

import (
	"log"
	"time"
)

// AnalyzeFunc is the context-aware analysis stage. Injectable so tests
// can count invocations or force failures.
type AnalyzeFunc func(message string, tc ToolContext, scan ScanResult) Analysis

// Engine orchestrates scan, cache and analysis into one entry point.
// The cache instance is injected rather than process-global so tests
// control TTL and eviction.
type Engine struct {
	cache   *Cache
	analyze AnalyzeFunc
	debug   bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAnalyzer overrides the analysis stage.
func WithAnalyzer(fn AnalyzeFunc) EngineOption {
	return func(e *Engine) {
		e.analyze = fn
	}
}

// WithDebug enables decision logging.
func WithDebug(debug bool) EngineOption {
	return func(e *Engine) {
		e.debug = debug
	}
}

// NewEngine creates an engine. A nil cache gets a default one.
func NewEngine(cache *Cache, opts ...EngineOption) *Engine {
	if cache == nil {
		cache = NewCache(0)
	}
	e := &Engine{
		cache:   cache,
		analyze: Analyze,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide classifies a message. It never fails: an analysis failure
// degrades to the conversational default, since a wrong dispatch is
// cheaper than a broken conversation turn. Cache hits are
// distinguishable from misses only by latency, never by content.
func (e *Engine) Decide(message string, tc ToolContext) Decision {
	start := time.Now()

	key := CacheKey(message, tc)
	if cached, ok := e.cache.Get(key); ok {
		cached.DetectionTimeMs = time.Since(start).Milliseconds()
		if e.debug {
			log.Printf("[intent] cache hit key=%q confidence=%d", key, cached.Confidence)
		}
		return cached
	}

	scan := Scan(message)

	var decision Decision
	if !scan.Detected || scan.Confidence < DetectionThreshold {
		decision = defaultDecision("no tool indicators detected")
	} else {
		decision = e.analyzed(message, tc, scan)
	}
	decision.DetectionTimeMs = time.Since(start).Milliseconds()

	e.cache.Put(key, decision)

	if e.debug {
		log.Printf("[intent] decided needsTools=%t confidence=%d tools=%v in %dms",
			decision.NeedsTools, decision.Confidence, decision.SuggestedTools, decision.DetectionTimeMs)
	}
	return decision
}

func (e *Engine) analyzed(message string, tc ToolContext, scan ScanResult) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[intent] analysis failed, degrading to no-tools decision: %v", r)
			decision = defaultDecision("analysis degraded; defaulting to conversation")
		}
	}()

	analysis := e.analyze(message, tc, scan)
	if len(analysis.SuggestedTools) == 0 && analysis.Confidence >= ToolThreshold {
		// NeedsTools requires a non-empty tool set; without one the
		// tool path has nothing to execute.
		analysis.Confidence = ToolThreshold - 1
	}
	return Decision{
		NeedsTools:     analysis.Confidence >= ToolThreshold,
		Confidence:     analysis.Confidence,
		SuggestedTools: analysis.SuggestedTools,
		ShouldStream:   analysis.Confidence < StreamThreshold,
		Reasoning:      analysis.Reasoning,
	}
}

func defaultDecision(reason string) Decision {
	return Decision{
		NeedsTools:   false,
		Confidence:   0,
		ShouldStream: true,
		Reasoning:    reason,
	}
}
