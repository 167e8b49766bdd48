// Package pipeline executes the asynchronous search lifecycle: parse the
// free-text query, discover profile identifiers, enrich each into a full
// candidate, score candidates, and mark the search completed. Every stage
// boundary is persisted before the next stage starts, so the progress
// endpoint and the realtime channel never observe a half-applied step.
package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/talentsift/talentsift/internal/liveevents"
	"github.com/talentsift/talentsift/internal/metrics"
	"github.com/talentsift/talentsift/internal/scoring"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	searchservice "github.com/talentsift/talentsift/internal/search/service"
	"github.com/talentsift/talentsift/internal/sourcing"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QueryParser interface {
	Parse(ctx context.Context, rawText string) (*searchdomain.ParsedQuery, error)
}

type CandidateSourcer interface {
	Discover(ctx context.Context, q searchdomain.ParsedQuery) ([]string, []sourcing.Failure)
	Enrich(ctx context.Context, identifiers []string) (*sourcing.Result, error)
}

type CandidateScorer interface {
	Evaluate(ctx context.Context, candidate searchdomain.Candidate, q searchdomain.ParsedQuery, customRubric string) (*scoring.Assessment, error)
}

// Runner owns the background goroutines driving searches through their
// status graph. One search runs at most once at a time.
type Runner struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   searchdomain.Repository
	hub    *liveevents.Hub
	parser QueryParser
	source CandidateSourcer
	scorer CandidateScorer
	stats  *metrics.PipelineMetrics
	cfg    Config

	mu     sync.Mutex
	active map[snowflake.ID]struct{}
	wg     sync.WaitGroup
}

func NewRunner(
	db *gorm.DB,
	log *zap.Logger,
	genID *snowflake.Node,
	repo searchdomain.Repository,
	hub *liveevents.Hub,
	parser QueryParser,
	source CandidateSourcer,
	scorer CandidateScorer,
	stats *metrics.PipelineMetrics,
	cfg Config,
) *Runner {
	return &Runner{
		db:     db,
		log:    log.Named("search.pipeline"),
		genID:  genID,
		repo:   repo,
		hub:    hub,
		parser: parser,
		source: source,
		scorer: scorer,
		stats:  stats,
		cfg:    cfg.withDefaults(),
		active: make(map[snowflake.ID]struct{}),
	}
}

// Start launches the pipeline for a search in the background. It is a no-op
// when the same search is already running, so double-submits from retried
// HTTP requests cannot fork two pipelines.
func (r *Runner) Start(searchID snowflake.ID) {
	r.mu.Lock()
	if _, running := r.active[searchID]; running {
		r.mu.Unlock()
		r.log.Warn("pipeline already running", zap.String("search_id", searchID.String()))
		return
	}
	r.active[searchID] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.active, searchID)
			r.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.RunTimeout)
		defer cancel()
		r.run(ctx, searchID)
	}()
}

// Wait blocks until every in-flight pipeline has finished. Used by the
// shutdown hook and by tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, searchID snowflake.ID) {
	log := r.log.With(zap.String("search_id", searchID.String()))

	search, err := r.repo.FindByID(ctx, r.db, searchID)
	if err != nil {
		log.Error("load search", zap.Error(err))
		return
	}
	if search.Status != searchdomain.StatusPending {
		log.Warn("search not pending, skipping run", zap.String("status", string(search.Status)))
		return
	}

	// Parse.
	if err := r.transition(ctx, search, searchdomain.StatusParsing); err != nil {
		log.Error("transition to parsing", zap.Error(err))
		return
	}
	parsed, err := r.parser.Parse(ctx, search.Query)
	now := time.Now().UTC()
	search.ParseUpdatedAt = &now
	if err != nil {
		search.ParseError = searchdomain.TruncateError(err.Error())
		r.fail(ctx, search, log, "parse", err)
		return
	}
	raw, err := json.Marshal(parsed)
	if err != nil {
		search.ParseError = searchdomain.TruncateError(err.Error())
		r.fail(ctx, search, log, "parse", err)
		return
	}
	search.ParsedQuery = raw
	search.Name = searchdomain.SearchName(*parsed)

	// Discover.
	if err := r.transition(ctx, search, searchdomain.StatusExecuting); err != nil {
		log.Error("transition to executing", zap.Error(err))
		return
	}
	identifiers, pageFailures := r.source.Discover(ctx, *parsed)
	if err := ctx.Err(); err != nil {
		search.SourcingError = searchdomain.TruncateError(err.Error())
		r.fail(ctx, search, log, "sourcing", err)
		return
	}
	search.CandidatesFound = len(identifiers)
	search.PagesFailed = len(pageFailures)

	// Enrich.
	if err := r.transition(ctx, search, searchdomain.StatusPolling); err != nil {
		log.Error("transition to polling", zap.Error(err))
		return
	}
	result, err := r.source.Enrich(ctx, identifiers)
	if err != nil {
		search.SourcingError = searchdomain.TruncateError(err.Error())
		r.fail(ctx, search, log, "sourcing", err)
		return
	}
	candidates, err := r.persistCandidates(ctx, search, result.Succeeded)
	if err != nil {
		search.SourcingError = searchdomain.TruncateError(err.Error())
		r.fail(ctx, search, log, "sourcing", err)
		return
	}
	search.CandidatesEnriched = len(candidates)
	search.CandidatesFailed = len(result.Failed)

	// Score.
	if err := r.transition(ctx, search, searchdomain.StatusScoring); err != nil {
		log.Error("transition to scoring", zap.Error(err))
		return
	}
	if err := r.scoreCandidates(ctx, search, *parsed, candidates, log); err != nil {
		search.ScoringError = searchdomain.TruncateError(err.Error())
		r.fail(ctx, search, log, "scoring", err)
		return
	}

	done := time.Now().UTC()
	search.CompletedAt = &done
	if err := r.transition(ctx, search, searchdomain.StatusCompleted); err != nil {
		log.Error("transition to completed", zap.Error(err))
		return
	}
	log.Info("search completed",
		zap.Int("found", search.CandidatesFound),
		zap.Int("enriched", search.CandidatesEnriched),
		zap.Int("scored", search.CandidatesScored),
		zap.Int("failed", search.CandidatesFailed),
		zap.Int("pages_failed", search.PagesFailed))
}

// persistCandidates stores enriched profiles and returns the persisted rows
// paired with their canonical profiles for the scoring phase.
func (r *Runner) persistCandidates(ctx context.Context, search *searchdomain.Search, profiles []searchdomain.Candidate) ([]scoredInput, error) {
	out := make([]scoredInput, 0, len(profiles))
	for _, profile := range profiles {
		raw, err := json.Marshal(profile)
		if err != nil {
			return nil, err
		}
		row := &searchdomain.SearchCandidate{
			ID:       r.genID.Generate(),
			SearchID: search.ID,
			OrgID:    search.OrgID,
			PublicID: profile.PublicID,
			FullName: profile.FullName,
			Headline: profile.Headline,
			PhotoURL: profile.PhotoURL,
			Location: profile.Location,
			Profile:  raw,
		}
		if err := r.repo.InsertCandidate(ctx, r.db, row); err != nil {
			return nil, err
		}
		out = append(out, scoredInput{row: row, profile: profile})
	}
	return out, nil
}

type scoredInput struct {
	row     *searchdomain.SearchCandidate
	profile searchdomain.Candidate
}

// scoreCandidates evaluates each candidate in turn. Individual evaluation
// failures count the candidate as failed and continue; only context errors
// or a fully failed batch abort the stage.
func (r *Runner) scoreCandidates(ctx context.Context, search *searchdomain.Search, q searchdomain.ParsedQuery, candidates []scoredInput, log *zap.Logger) error {
	if len(candidates) == 0 {
		return nil
	}
	var reasons []string
	for i, c := range candidates {
		assessment, err := r.scorer.Evaluate(ctx, c.profile, q, "")
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("score candidate",
				zap.String("candidate_id", c.row.ID.String()),
				zap.Error(err))
			search.CandidatesFailed++
			reasons = append(reasons, err.Error())
			continue
		}
		pros, err := json.Marshal(assessment.Pros)
		if err != nil {
			return err
		}
		cons, err := json.Marshal(assessment.Cons)
		if err != nil {
			return err
		}
		score := &searchdomain.CandidateScore{
			ID:          r.genID.Generate(),
			SearchID:    search.ID,
			CandidateID: c.row.ID,
			OrgID:       search.OrgID,
			Score:       assessment.Score,
			Pros:        pros,
			Cons:        cons,
		}
		if err := r.repo.InsertScore(ctx, r.db, score); err != nil {
			return err
		}
		search.CandidatesScored++

		// Scoring owns the 80–100 band; interpolate so subscribers see
		// per-candidate movement on long batches.
		floor, _ := searchdomain.StageProgress(searchdomain.StatusScoring)
		progress := floor + (100-floor)*(i+1)/len(candidates)
		if progress > 99 {
			progress = 99
		}
		if progress > search.Progress {
			search.Progress = progress
		}
		if err := r.persist(ctx, search); err != nil {
			return err
		}
	}
	if search.CandidatesScored == 0 {
		return &batchError{reasons: reasons}
	}
	return nil
}

// batchError aggregates per-candidate reasons when a scoring batch produced
// nothing usable.
type batchError struct {
	reasons []string
}

func (e *batchError) Error() string {
	return "all candidate evaluations failed: " + strings.Join(e.reasons, "; ")
}

// transition validates the status move, lifts progress to the stage floor
// (never lowering it), persists and publishes.
func (r *Runner) transition(ctx context.Context, search *searchdomain.Search, to searchdomain.Status) error {
	if !searchdomain.CanTransition(search.Status, to) {
		return searchdomain.ErrInvalidStateTransition
	}
	search.Status = to
	if floor, ok := searchdomain.StageProgress(to); ok && floor > search.Progress {
		search.Progress = floor
	}
	if err := r.persist(ctx, search); err != nil {
		return err
	}
	r.stats.ObserveTransition(string(to))
	if to == searchdomain.StatusCompleted {
		r.stats.ObserveCompleted()
	}
	return nil
}

// fail moves the search into the terminal error state. The stage-tagged
// error field has already been set by the caller; progress stays where the
// run got to.
func (r *Runner) fail(ctx context.Context, search *searchdomain.Search, log *zap.Logger, stage string, cause error) {
	log.Error("pipeline stage failed", zap.String("stage", stage), zap.Error(cause))
	r.stats.ObserveFailed(stage)
	if !searchdomain.CanTransition(search.Status, searchdomain.StatusError) {
		log.Error("cannot transition to error", zap.String("status", string(search.Status)))
		return
	}
	search.Status = searchdomain.StatusError
	// Persist with a fresh context so cancellation of the run cannot lose
	// the terminal state.
	persistCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := r.persist(persistCtx, search); err != nil {
		log.Error("persist error state", zap.Error(err))
	}
}

func (r *Runner) persist(ctx context.Context, search *searchdomain.Search) error {
	search.UpdatedAt = time.Now().UTC()
	if err := r.repo.UpdateStage(ctx, r.db, search); err != nil {
		return err
	}
	r.hub.Publish(search.ID.String(), liveevents.Event{
		SearchID: search.ID.String(),
		Progress: searchservice.ProgressOf(search),
	})
	return nil
}
