package sourcing

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/talentsift/talentsift/internal/config"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"go.uber.org/zap"
)

// profilePathPattern extracts the canonical public identifier from a profile
// URL. Malformed URLs are skipped rather than failing the batch.
var profilePathPattern = regexp.MustCompile(`/in/([A-Za-z0-9%._-]+)/?`)

// DiscoveryProvider and EnrichmentProvider are satisfied by the HTTP clients
// in this package; tests substitute stubs.
type DiscoveryProvider interface {
	SearchPage(ctx context.Context, query string, page, pageSize int) ([]DiscoveryResult, error)
}

type EnrichmentProvider interface {
	FetchProfile(ctx context.Context, publicID string) (*searchdomain.Candidate, error)
}

// Failure records one unit of work that was dropped and why, so callers can
// assert on failure counts instead of inferring them from a shorter list.
type Failure struct {
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

// Result is the structured partial outcome of one sourcing run.
type Result struct {
	Succeeded []searchdomain.Candidate
	Failed    []Failure
}

// Coordinator drives discovery and enrichment to produce a canonical
// candidate list from a parsed query.
type Coordinator struct {
	discovery  DiscoveryProvider
	enrichment EnrichmentProvider
	cfg        config.SourcingConfig
	log        *zap.Logger
	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(discovery DiscoveryProvider, enrichment EnrichmentProvider, cfg config.SourcingConfig, log *zap.Logger) *Coordinator {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return &Coordinator{
		discovery:  discovery,
		enrichment: enrichment,
		cfg:        cfg,
		log:        log.Named("sourcing"),
		sleep:      sleepCtx,
	}
}

// BuildExpression joins the non-empty query fields into a provider search
// expression scoped to the profile-hosting site.
func (c *Coordinator) BuildExpression(q searchdomain.ParsedQuery) string {
	parts := make([]string, 0, 7)
	if c.cfg.SiteScope != "" {
		parts = append(parts, "site:"+c.cfg.SiteScope)
	}
	for _, f := range []searchdomain.QueryField{
		q.JobTitle, q.Skills, q.Location, q.Industry, q.YearsOfExperience, q.Company,
	} {
		if !f.IsEmpty() {
			parts = append(parts, f.Render())
		}
	}
	for _, t := range q.Tags {
		if v := strings.TrimSpace(t.Value); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Source runs the full discovery → dedupe → enrichment sequence.
// Single-unit failures (malformed URL, one enrichment call) are recorded in
// Result.Failed and never abort the batch. A page-level discovery error
// stops pagination but keeps identifiers collected so far.
func (c *Coordinator) Source(ctx context.Context, q searchdomain.ParsedQuery) (*Result, error) {
	identifiers, failures := c.Discover(ctx, q)

	result, err := c.Enrich(ctx, identifiers)
	result.Failed = append(failures, result.Failed...)
	return result, err
}

// Enrich fetches full profiles for the identifiers sequentially, pacing
// calls by the configured delay. Only context errors abort the batch.
func (c *Coordinator) Enrich(ctx context.Context, identifiers []string) (*Result, error) {
	result := &Result{Succeeded: []searchdomain.Candidate{}, Failed: []Failure{}}

	for i, id := range identifiers {
		if i > 0 && c.cfg.EnrichDelay > 0 {
			// Deliberate sequential pacing to respect the enrichment
			// provider's throughput limits.
			if err := c.sleep(ctx, c.cfg.EnrichDelay); err != nil {
				return result, err
			}
		}

		candidate, err := c.enrichment.FetchProfile(ctx, id)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			c.log.Warn("enrichment failed, dropping identifier",
				zap.String("public_id", id),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, Failure{Input: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, *candidate)
	}

	return result, nil
}

// Discover pages through the discovery provider and returns deduplicated
// profile identifiers in first-seen order, plus page-level failures.
func (c *Coordinator) Discover(ctx context.Context, q searchdomain.ParsedQuery) ([]string, []Failure) {
	expression := c.BuildExpression(q)
	seen := make(map[string]struct{})
	var identifiers []string
	failures := []Failure{}

	for page := 1; page <= c.cfg.MaxPages; page++ {
		results, err := c.discovery.SearchPage(ctx, expression, page, c.cfg.PageSize)
		if err != nil {
			c.log.Warn("discovery page failed, stopping pagination",
				zap.Int("page", page),
				zap.Error(err),
			)
			failures = append(failures, Failure{
				Input:  expression,
				Reason: searchdomain.TruncateError(err.Error()),
			})
			break
		}
		if len(results) == 0 {
			break
		}

		for _, r := range results {
			id, ok := ExtractPublicID(r.URL)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			identifiers = append(identifiers, id)
		}
	}

	return identifiers, failures
}

// ExtractPublicID pulls the canonical profile identifier out of a result URL.
func ExtractPublicID(rawURL string) (string, bool) {
	match := profilePathPattern.FindStringSubmatch(rawURL)
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return match[1], true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
