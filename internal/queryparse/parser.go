package queryparse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/talentsift/talentsift/internal/llm/gemini"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"go.uber.org/zap"
)

// ContentGenerator is the LLM collaborator contract the parser needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var ErrSchemaValidation = errors.New("parse_schema_validation_failed")

const instruction = `You convert a recruiter's free-text candidate search into JSON.
Respond with a single JSON object and nothing else. Shape:
{
  "schema_version": "v1",
  "job_title": "" | {"values": ["..."], "operator": "AND"|"OR"},
  "skills": "" | {"values": ["..."], "operator": "AND"|"OR"},
  "location": "" | {"values": ["..."], "operator": "AND"|"OR"},
  "industry": "" | {"values": ["..."], "operator": "AND"|"OR"},
  "years_of_experience": "" | {"values": ["..."], "operator": "AND"|"OR"},
  "company": "" | {"values": ["..."], "operator": "AND"|"OR"},
  "tags": [{"value": "..."}]
}
Leave a field as the empty string when the search text does not mention it.
Never invent criteria.

Search text:
`

// Parser turns free-text search input into a validated ParsedQuery.
type Parser struct {
	generator ContentGenerator
	log       *zap.Logger
}

func New(generator ContentGenerator, log *zap.Logger) *Parser {
	return &Parser{
		generator: generator,
		log:       log.Named("queryparse"),
	}
}

// Parse sends the raw query to the LLM and validates the response against the
// ParsedQuery schema. A schema violation is returned as ErrSchemaValidation;
// callers must halt the pipeline rather than proceed with partial data.
func (p *Parser) Parse(ctx context.Context, rawText string) (*searchdomain.ParsedQuery, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, searchdomain.ErrInvalidQuery
	}

	raw, err := p.generator.GenerateContent(ctx, instruction+rawText)
	if err != nil {
		return nil, fmt.Errorf("query parse request: %w", err)
	}

	cleaned := gemini.ExtractJSON(raw)

	var parsed searchdomain.ParsedQuery
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		p.log.Warn("parse response is not valid JSON", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	if err := parsed.Validate(); err != nil {
		p.log.Warn("parse response failed schema validation", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	return &parsed, nil
}
