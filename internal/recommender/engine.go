package recommender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/echo-systems/echo/internal/catalog"
)

// ErrNoCatalog is returned when no candidate pool has ever been loaded. This
// is a caller contract violation, not a runtime condition: recommendations
// cannot mean anything without a catalog to recommend from.
var ErrNoCatalog = errors.New("no package catalog loaded")

// SaveError signals that the fused recommendations could not be persisted.
// The computed result is still returned alongside it so the caller can
// display what was computed.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save recommendations: %v", e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Store is the narrow persistence contract the engine depends on. The engine
// never touches schema details; it reads snapshots and appends run output.
type Store interface {
	ListInstalled() ([]*catalog.Package, error)
	ListCandidates() ([]*catalog.Package, error)
	ListUsagePatterns() ([]*catalog.UsagePattern, error)
	RecentFailures(window time.Duration) (map[string]bool, error)
	SaveRecommendations(runID string, recs []Recommendation) error
}

// SuggestionBackend is the opaque function boundary to the text-generation
// backend: workflow text in, raw candidate suggestions out. The engine
// enforces the timeout; the backend only has to honor its context.
type SuggestionBackend interface {
	Suggest(ctx context.Context, workflow string, maxSuggestions int) ([]RawSuggestion, error)
}

// Engine orchestrates one recommendation run: importance, similarity, AI
// normalization, fusion, persistence. Each run operates on its own snapshot
// copies, so concurrent runs never share mutable state.
type Engine struct {
	store   Store
	backend SuggestionBackend
	cfg     Config
	logger  *zap.Logger
}

// NewEngine creates an Engine. backend may be nil, in which case runs are
// similarity-only. A nil logger disables logging.
func NewEngine(store Store, backend SuggestionBackend, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:   store,
		backend: backend,
		cfg:     cfg,
		logger:  logger.Named("engine"),
	}
}

// Recommend executes a full recommendation run for the given workflow
// description and persists the fused output as a new append-only run.
//
// Backend unavailability (timeout, connection failure, malformed top-level
// response) degrades the run to similarity-only and is reported through
// Result.Diagnostics, never as an error. A persistence failure is returned
// as a *SaveError together with the in-memory result.
func (e *Engine) Recommend(ctx context.Context, workflow string) (*Result, error) {
	installed, err := e.store.ListInstalled()
	if err != nil {
		return nil, fmt.Errorf("load installed packages: %w", err)
	}

	pool, err := e.store.ListCandidates()
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoCatalog
	}

	patterns, err := e.store.ListUsagePatterns()
	if err != nil {
		return nil, fmt.Errorf("load usage patterns: %w", err)
	}

	now := time.Now()
	importance := ComputeImportance(patterns, now, e.cfg)

	// Similarity and the backend call are independent; run them concurrently.
	// Both results are treated as immutable snapshots once received.
	var (
		wg         sync.WaitGroup
		simCands   []SimilarityCandidate
		rawAI      []RawSuggestion
		backendErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		simCands = FindSimilar(installed, pool, importance, e.cfg.TopN)
	}()

	if e.backend != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, e.cfg.BackendTimeout)
			defer cancel()
			rawAI, backendErr = e.backend.Suggest(callCtx, workflow, e.cfg.Limit)
		}()
	}
	wg.Wait()

	result := &Result{Similarity: simCands}

	if backendErr != nil {
		// Recovered locally: similarity-only fusion, surfaced via diagnostics.
		e.logger.Warn("suggestion backend unavailable, degrading to similarity-only",
			zap.Error(backendErr))
		result.Diagnostics.BackendTimedOut = true
		rawAI = nil
	}

	aiCands, dropped := NormalizeSuggestions(rawAI)
	result.AI = aiCands
	result.Diagnostics.DroppedAIEntries = dropped

	failures, err := e.store.RecentFailures(e.cfg.FailureCooldown)
	if err != nil {
		return nil, fmt.Errorf("load recent failures: %w", err)
	}

	installedSet := make(map[string]bool, len(installed))
	for _, pkg := range installed {
		installedSet[catalog.NormalizeName(pkg.Name)] = true
	}

	result.Fused = Fuse(simCands, aiCands, installedSet, failures, e.cfg, now)
	result.RunID = uuid.NewString()

	e.logger.Info("recommendation run complete",
		zap.String("run_id", result.RunID),
		zap.Int("similarity_candidates", len(simCands)),
		zap.Int("ai_candidates", len(aiCands)),
		zap.Int("fused", len(result.Fused)),
		zap.Bool("degraded", result.Diagnostics.BackendTimedOut))

	if err := e.store.SaveRecommendations(result.RunID, result.Fused); err != nil {
		// The computed result must survive a persistence failure.
		return result, &SaveError{Err: err}
	}

	return result, nil
}
