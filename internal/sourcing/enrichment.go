package sourcing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
)

// EnrichmentClient fetches full structured profile data for one public
// identifier from the external enrichment provider.
type EnrichmentClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewEnrichmentClient(baseURL, apiKey string, timeout time.Duration) *EnrichmentClient {
	return &EnrichmentClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// providerProfile mirrors the enrichment provider's JSON shape.
type providerProfile struct {
	PublicIdentifier string `json:"public_identifier"`
	FullName         string `json:"full_name"`
	Headline         string `json:"headline"`
	ProfilePicURL    string `json:"profile_pic_url"`
	City             string `json:"city"`
	Country          string `json:"country"`
	Experiences      []struct {
		Title       string `json:"title"`
		Company     string `json:"company"`
		Location    string `json:"location"`
		StartsAt    string `json:"starts_at"`
		EndsAt      string `json:"ends_at"`
		Description string `json:"description"`
	} `json:"experiences"`
	Skills     []string `json:"skills"`
	Educations []struct {
		School       string `json:"school"`
		DegreeName   string `json:"degree_name"`
		FieldOfStudy string `json:"field_of_study"`
		StartsAt     string `json:"starts_at"`
		EndsAt       string `json:"ends_at"`
	} `json:"education"`
	Certifications []struct {
		Name      string `json:"name"`
		Authority string `json:"authority"`
	} `json:"certifications"`
	Languages []string `json:"languages"`
	Honors    []struct {
		Title  string `json:"title"`
		Issuer string `json:"issuer"`
	} `json:"accomplishment_honors_awards"`
}

// FetchProfile fetches and normalizes one profile. A missing public
// identifier in the response invalidates the record.
func (c *EnrichmentClient) FetchProfile(ctx context.Context, publicID string) (*searchdomain.Candidate, error) {
	params := url.Values{}
	params.Set("public_identifier", publicID)

	reqURL := c.baseURL + "/profile?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enrichment provider returned %d: %s", resp.StatusCode, string(body))
	}

	var profile providerProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	candidate := mapProfile(profile, publicID)
	if candidate.PublicID == "" {
		return nil, fmt.Errorf("profile %q has no public identifier", publicID)
	}
	return candidate, nil
}

// mapProfile transforms the provider shape into the canonical Candidate
// field by field. Missing sub-collections become empty collections.
func mapProfile(p providerProfile, fallbackID string) *searchdomain.Candidate {
	publicID := p.PublicIdentifier
	if publicID == "" {
		publicID = fallbackID
	}

	location := p.City
	if p.Country != "" {
		if location != "" {
			location += ", "
		}
		location += p.Country
	}

	candidate := &searchdomain.Candidate{
		PublicID: publicID,
		FullName: p.FullName,
		Headline: p.Headline,
		PhotoURL: p.ProfilePicURL,
		Location: location,
	}

	for _, e := range p.Experiences {
		candidate.Experiences = append(candidate.Experiences, searchdomain.Experience{
			Title:       e.Title,
			Company:     e.Company,
			Location:    e.Location,
			StartDate:   e.StartsAt,
			EndDate:     e.EndsAt,
			Description: e.Description,
		})
	}
	for _, s := range p.Skills {
		candidate.Skills = append(candidate.Skills, searchdomain.Skill{Name: s})
	}
	for _, e := range p.Educations {
		candidate.Educations = append(candidate.Educations, searchdomain.Education{
			School:       e.School,
			Degree:       e.DegreeName,
			FieldOfStudy: e.FieldOfStudy,
			StartYear:    e.StartsAt,
			EndYear:      e.EndsAt,
		})
	}
	for _, c := range p.Certifications {
		candidate.Certifications = append(candidate.Certifications, searchdomain.Certification{
			Name:      c.Name,
			Authority: c.Authority,
		})
	}
	for _, l := range p.Languages {
		candidate.Languages = append(candidate.Languages, searchdomain.Language{Name: l})
	}
	for _, h := range p.Honors {
		candidate.Honors = append(candidate.Honors, searchdomain.Honor{
			Title:  h.Title,
			Issuer: h.Issuer,
		})
	}

	candidate.Normalize()
	return candidate
}
