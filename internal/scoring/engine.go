package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/talentsift/talentsift/internal/llm/gemini"
	searchdomain "github.com/talentsift/talentsift/internal/search/domain"
	"go.uber.org/zap"
)

const maxProsCons = 5

// DefaultRubric is used when neither the caller nor configuration supplies one.
const DefaultRubric = `Score the candidate 0-100 against the criteria.
90-100: exceptional match on title, skills and seniority.
70-89: strong match with minor gaps.
40-69: partial match, notable gaps.
0-39: weak match.
List at most 5 pros and at most 5 cons, each a short phrase.`

var ErrScoreValidation = errors.New("score_schema_validation_failed")

// ContentGenerator is the LLM collaborator contract the engine needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Assessment is a validated per-candidate evaluation.
type Assessment struct {
	Score int      `json:"score"`
	Pros  []string `json:"pros"`
	Cons  []string `json:"cons"`
}

// Engine scores candidates against a parsed query with an LLM evaluator.
// Any failure is returned as an error the caller treats as "no score
// available"; individual scoring failures never abort a batch.
type Engine struct {
	generator ContentGenerator
	rubric    string
	log       *zap.Logger
}

func New(generator ContentGenerator, rubric string, log *zap.Logger) *Engine {
	if strings.TrimSpace(rubric) == "" {
		rubric = DefaultRubric
	}
	return &Engine{
		generator: generator,
		rubric:    rubric,
		log:       log.Named("scoring"),
	}
}

func (e *Engine) Evaluate(ctx context.Context, candidate searchdomain.Candidate, q searchdomain.ParsedQuery, customRubric string) (*Assessment, error) {
	prompt := e.buildPrompt(candidate, q, customRubric)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("scoring request: %w", err)
	}

	assessment, err := parseAssessment(raw)
	if err != nil {
		e.log.Warn("scoring response rejected",
			zap.String("public_id", candidate.PublicID),
			zap.Error(err),
		)
		return nil, err
	}
	return assessment, nil
}

// buildPrompt embeds the criteria and a bounded candidate summary: most
// recent role, location, skill names, experience count and top education.
func (e *Engine) buildPrompt(candidate searchdomain.Candidate, q searchdomain.ParsedQuery, customRubric string) string {
	rubric := strings.TrimSpace(customRubric)
	if rubric == "" {
		rubric = e.rubric
	}

	recentRole := searchdomain.NotSpecified
	if len(candidate.Experiences) > 0 {
		exp := candidate.Experiences[0]
		recentRole = strings.TrimSpace(exp.Title + " at " + exp.Company)
	}

	skills := make([]string, 0, len(candidate.Skills))
	for _, s := range candidate.Skills {
		if s.Name != "" {
			skills = append(skills, s.Name)
		}
	}
	skillNames := searchdomain.NotSpecified
	if len(skills) > 0 {
		skillNames = strings.Join(skills, ", ")
	}

	education := searchdomain.NotSpecified
	if len(candidate.Educations) > 0 {
		edu := candidate.Educations[0]
		education = strings.TrimSpace(edu.Degree + " " + edu.FieldOfStudy + ", " + edu.School)
	}

	location := candidate.Location
	if location == "" {
		location = searchdomain.NotSpecified
	}

	var b strings.Builder
	b.WriteString("Evaluate this candidate against the search criteria.\n\nCriteria:\n")
	fmt.Fprintf(&b, "- Job title: %s\n", q.JobTitle.PromptValue())
	fmt.Fprintf(&b, "- Skills: %s\n", q.Skills.PromptValue())
	fmt.Fprintf(&b, "- Location: %s\n", q.Location.PromptValue())
	fmt.Fprintf(&b, "- Industry: %s\n", q.Industry.PromptValue())
	fmt.Fprintf(&b, "- Years of experience: %s\n", q.YearsOfExperience.PromptValue())
	fmt.Fprintf(&b, "- Company: %s\n", q.Company.PromptValue())
	b.WriteString("\nCandidate:\n")
	fmt.Fprintf(&b, "- Current role: %s\n", recentRole)
	fmt.Fprintf(&b, "- Location: %s\n", location)
	fmt.Fprintf(&b, "- Skills: %s\n", skillNames)
	fmt.Fprintf(&b, "- Experience entries: %d\n", len(candidate.Experiences))
	fmt.Fprintf(&b, "- Education: %s\n", education)
	b.WriteString("\nRubric:\n")
	b.WriteString(rubric)
	b.WriteString("\n\nRespond with a single JSON object: {\"score\": 0-100, \"pros\": [...], \"cons\": [...]}")

	return b.String()
}

// parseAssessment strips any code-fence wrapper, parses JSON and enforces the
// score schema: integer score within [0,100], at most 5 pros and 5 cons.
// Violations fail validation; they are never silently clamped.
func parseAssessment(raw string) (*Assessment, error) {
	cleaned := gemini.ExtractJSON(raw)

	var payload struct {
		Score *float64 `json:"score"`
		Pros  []string `json:"pros"`
		Cons  []string `json:"cons"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoreValidation, err)
	}

	if payload.Score == nil {
		return nil, fmt.Errorf("%w: score missing", ErrScoreValidation)
	}
	score := *payload.Score
	if score != math.Trunc(score) {
		return nil, fmt.Errorf("%w: score must be an integer", ErrScoreValidation)
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: score %v outside [0,100]", ErrScoreValidation, score)
	}
	if len(payload.Pros) > maxProsCons {
		return nil, fmt.Errorf("%w: more than %d pros", ErrScoreValidation, maxProsCons)
	}
	if len(payload.Cons) > maxProsCons {
		return nil, fmt.Errorf("%w: more than %d cons", ErrScoreValidation, maxProsCons)
	}

	pros := payload.Pros
	if pros == nil {
		pros = []string{}
	}
	cons := payload.Cons
	if cons == nil {
		cons = []string{}
	}

	return &Assessment{Score: int(score), Pros: pros, Cons: cons}, nil
}
