package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"logmentor/internal/domain"
	"logmentor/internal/port"
	"logmentor/internal/retry"
)

// Orchestrator drives the analyst model over chunks with caching, retry
// and bounded concurrency. Analyses are cached by chunk content hash and
// at most one external call is in flight per distinct fingerprint.
type Orchestrator struct {
	analyzer    port.Analyzer
	cache       port.AnalysisCache
	policy      retry.Policy
	concurrency int
	logger      *slog.Logger

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

// inflightCall is the shared outcome of one external call. Waiters block
// on done; completion or cancellation always closes it.
type inflightCall struct {
	done   chan struct{}
	result domain.ChunkAnalysis
}

// Options configures an Orchestrator.
type Options struct {
	Analyzer    port.Analyzer
	Cache       port.AnalysisCache
	Policy      retry.Policy
	Concurrency int
	Logger      *slog.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		analyzer:    opts.Analyzer,
		cache:       opts.Cache,
		policy:      opts.Policy,
		concurrency: concurrency,
		logger:      logger,
		inflight:    make(map[string]*inflightCall),
	}
}

// Progress is called after each chunk reaches a terminal state.
type Progress func(completed int)

// Run analyzes every chunk and returns one ChunkAnalysis per chunk in
// the original chunk order, regardless of completion order. A chunk's
// failure never blocks the others; failed chunks come back with status
// FAILED and their attempt count recorded.
func (o *Orchestrator) Run(ctx context.Context, chunks []domain.Chunk, progress Progress) []domain.ChunkAnalysis {
	results := make([]domain.ChunkAnalysis, len(chunks))
	for i, c := range chunks {
		results[i] = domain.ChunkAnalysis{ChunkID: c.ID, Status: domain.AnalysisPending}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var completed int
	var progressMu sync.Mutex

	for w := 0; w < o.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.analyzeOne(ctx, chunks[i])
				if progress != nil {
					progressMu.Lock()
					completed++
					progress(completed)
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// analyzeOne resolves a single chunk: cache hit, joining an in-flight
// call for the same fingerprint, or performing the call itself.
func (o *Orchestrator) analyzeOne(ctx context.Context, chunk domain.Chunk) domain.ChunkAnalysis {
	if cached, ok := o.cache.Get(chunk.ID); ok {
		o.logger.Debug("analysis cache hit", "chunk", chunk.ID)
		return cached
	}

	o.mu.Lock()
	if call, ok := o.inflight[chunk.ID]; ok {
		o.mu.Unlock()
		select {
		case <-call.done:
			return call.result
		case <-ctx.Done():
			return failedAnalysis(chunk.ID, 0, ctx.Err())
		}
	}
	// An owner retires its entry only after publishing to the cache, so
	// a missing entry means any earlier call for this content is already
	// visible there. Re-check before starting a call of our own.
	if cached, ok := o.cache.Get(chunk.ID); ok {
		o.mu.Unlock()
		return cached
	}
	call := &inflightCall{done: make(chan struct{})}
	o.inflight[chunk.ID] = call
	o.mu.Unlock()

	result := o.callAnalyzer(ctx, chunk)

	call.result = result
	close(call.done)

	if result.Status == domain.AnalysisOK {
		if err := o.cache.Put(result); err != nil {
			o.logger.Warn("failed to cache analysis", "chunk", chunk.ID, "error", err)
		}
	}

	o.mu.Lock()
	delete(o.inflight, chunk.ID)
	o.mu.Unlock()

	return result
}

// callAnalyzer performs the external call with retry and parses the
// semi-structured response.
func (o *Orchestrator) callAnalyzer(ctx context.Context, chunk domain.Chunk) domain.ChunkAnalysis {
	var parsed parsedAnalysis

	attempts, err := o.policy.Do(ctx, func(ctx context.Context) error {
		raw, err := o.analyzer.Analyze(ctx, chunk.Text)
		if err != nil {
			return err
		}
		parsed, err = parseAnalystResponse(raw)
		if err != nil {
			return domain.Permanent(fmt.Errorf("parse analyst response: %w", err))
		}
		return nil
	})
	if err != nil {
		o.logger.Warn("chunk analysis failed",
			"chunk", chunk.ID,
			"attempts", attempts,
			"error", err,
		)
		return failedAnalysis(chunk.ID, attempts, err)
	}

	return domain.ChunkAnalysis{
		ChunkID:        chunk.ID,
		Status:         domain.AnalysisOK,
		Summary:        parsed.Summary,
		DetectedErrors: parsed.Errors,
		RootCause:      parsed.RootCause,
		FixSuggestions: parsed.Fixes,
		Attempts:       attempts,
	}
}

func failedAnalysis(chunkID string, attempts int, err error) domain.ChunkAnalysis {
	return domain.ChunkAnalysis{
		ChunkID:       chunkID,
		Status:        domain.AnalysisFailed,
		Attempts:      attempts,
		FailureReason: err.Error(),
	}
}
