package sourcing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentsift/talentsift/internal/config"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"go.uber.org/zap"
)

type stubDiscovery struct {
	pages map[int][]DiscoveryResult
	errs  map[int]error
	calls int
}

func (s *stubDiscovery) SearchPage(_ context.Context, _ string, page, _ int) ([]DiscoveryResult, error) {
	s.calls++
	if err, ok := s.errs[page]; ok {
		return nil, err
	}
	return s.pages[page], nil
}

type stubEnrichment struct {
	profiles map[string]*searchdomain.Candidate
	errs     map[string]error
	fetched  []string
}

func (s *stubEnrichment) FetchProfile(_ context.Context, publicID string) (*searchdomain.Candidate, error) {
	s.fetched = append(s.fetched, publicID)
	if err, ok := s.errs[publicID]; ok {
		return nil, err
	}
	if c, ok := s.profiles[publicID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown profile %q", publicID)
}

func newTestCoordinator(discovery DiscoveryProvider, enrichment EnrichmentProvider, cfg config.SourcingConfig) *Coordinator {
	c := NewCoordinator(discovery, enrichment, cfg, zap.NewNop())
	c.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return c
}

func profileFor(id string) *searchdomain.Candidate {
	c := &searchdomain.Candidate{PublicID: id, FullName: id}
	c.Normalize()
	return c
}

func testQuery() searchdomain.ParsedQuery {
	return searchdomain.ParsedQuery{
		SchemaVersion: searchdomain.ParsedQuerySchemaVersion,
		JobTitle:      searchdomain.Field("Staff Engineer"),
		Location:      searchdomain.Field("Berlin"),
	}
}

func TestBuildExpression(t *testing.T) {
	c := newTestCoordinator(&stubDiscovery{}, &stubEnrichment{}, config.SourcingConfig{
		SiteScope: "example.com/in",
	})

	q := testQuery()
	q.Skills = searchdomain.QueryField{Values: []string{"Go", "Postgres"}, Operator: searchdomain.OperatorAnd}
	q.Tags = []searchdomain.Tag{{Value: "fintech"}}

	expr := c.BuildExpression(q)
	assert.Equal(t, "site:example.com/in Staff Engineer Go Postgres Berlin fintech", expr)
}

func TestDiscoverDeduplicatesAcrossPages(t *testing.T) {
	discovery := &stubDiscovery{pages: map[int][]DiscoveryResult{
		1: {
			{URL: "https://example.com/in/alice/"},
			{URL: "https://example.com/in/bob"},
			{URL: "https://example.com/careers"}, // no profile path, skipped
		},
		2: {
			{URL: "https://example.com/in/alice"}, // duplicate
			{URL: "https://example.com/in/carol/"},
		},
	}}
	c := newTestCoordinator(discovery, &stubEnrichment{}, config.SourcingConfig{MaxPages: 3})

	ids, failures := c.Discover(context.Background(), testQuery())
	assert.Equal(t, []string{"alice", "bob", "carol"}, ids)
	assert.Empty(t, failures)
	// page 3 is empty and stops pagination
	assert.Equal(t, 3, discovery.calls)
}

func TestDiscoverStopsOnEmptyFirstPage(t *testing.T) {
	discovery := &stubDiscovery{pages: map[int][]DiscoveryResult{}}
	c := newTestCoordinator(discovery, &stubEnrichment{}, config.SourcingConfig{MaxPages: 5})

	ids, failures := c.Discover(context.Background(), testQuery())
	assert.Empty(t, ids)
	assert.Empty(t, failures)
	assert.Equal(t, 1, discovery.calls)
}

func TestDiscoverPageErrorKeepsCollectedIdentifiers(t *testing.T) {
	discovery := &stubDiscovery{
		pages: map[int][]DiscoveryResult{
			1: {{URL: "https://example.com/in/alice"}},
		},
		errs: map[int]error{
			2: &DiscoveryError{Page: 2, StatusCode: 503, Body: "overloaded"},
		},
	}
	c := newTestCoordinator(discovery, &stubEnrichment{}, config.SourcingConfig{MaxPages: 5})

	ids, failures := c.Discover(context.Background(), testQuery())
	assert.Equal(t, []string{"alice"}, ids)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "503")
}

func TestEnrichRecordsPerProfileFailures(t *testing.T) {
	enrichment := &stubEnrichment{
		profiles: map[string]*searchdomain.Candidate{
			"alice": profileFor("alice"),
			"carol": profileFor("carol"),
		},
		errs: map[string]error{
			"bob": errors.New("profile not found"),
		},
	}
	c := newTestCoordinator(&stubDiscovery{}, enrichment, config.SourcingConfig{})

	result, err := c.Enrich(context.Background(), []string{"alice", "bob", "carol"})
	require.NoError(t, err)
	require.Len(t, result.Succeeded, 2)
	assert.Equal(t, "alice", result.Succeeded[0].PublicID)
	assert.Equal(t, "carol", result.Succeeded[1].PublicID)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bob", result.Failed[0].Input)
	assert.Equal(t, "profile not found", result.Failed[0].Reason)
}

func TestEnrichAbortsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	enrichment := &stubEnrichment{
		profiles: map[string]*searchdomain.Candidate{"alice": profileFor("alice")},
		errs:     map[string]error{"bob": context.Canceled},
	}
	c := newTestCoordinator(&stubDiscovery{}, enrichment, config.SourcingConfig{})

	cancel()
	result, err := c.Enrich(ctx, []string{"alice", "bob"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// alice completed before the cancellation surfaced
	assert.Len(t, result.Succeeded, 1)
}

func TestSourceMergesDiscoveryAndEnrichmentFailures(t *testing.T) {
	discovery := &stubDiscovery{
		pages: map[int][]DiscoveryResult{
			1: {
				{URL: "https://example.com/in/alice"},
				{URL: "https://example.com/in/bob"},
			},
		},
		errs: map[int]error{
			2: errors.New("quota exceeded"),
		},
	}
	enrichment := &stubEnrichment{
		profiles: map[string]*searchdomain.Candidate{"alice": profileFor("alice")},
		errs:     map[string]error{"bob": errors.New("profile private")},
	}
	c := newTestCoordinator(discovery, enrichment, config.SourcingConfig{MaxPages: 2})

	result, err := c.Source(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failed, 2)
	assert.Contains(t, result.Failed[0].Reason, "quota exceeded")
	assert.Equal(t, "bob", result.Failed[1].Input)
}

func TestExtractPublicID(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://example.com/in/jane-doe/", "jane-doe", true},
		{"https://example.com/in/jane.doe_2", "jane.doe_2", true},
		{"https://example.com/in/j%C3%A4ne", "j%C3%A4ne", true},
		{"https://example.com/company/acme", "", false},
		{"not a url", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractPublicID(tc.url)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ExtractPublicID(%q) = (%q, %v), want (%q, %v)", tc.url, got, ok, tc.want, tc.ok)
		}
	}
}
