package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParsedQuerySchemaVersion is the schema tag the parser must emit. Cached
// parse responses carrying another version fail re-validation.
const ParsedQuerySchemaVersion = "v1"

// NotSpecified substitutes absent fields in generated prompts and queries.
const NotSpecified = "Not specified"

const (
	OperatorAnd = "AND"
	OperatorOr  = "OR"
)

const (
	searchNameMaxLen  = 50
	untitledSearch    = "Untitled Search"
	nameEllipsisExtra = 1
)

var (
	ErrSchemaVersion   = errors.New("unsupported_schema_version")
	ErrInvalidOperator = errors.New("invalid_field_operator")
)

// QueryField is a search criterion that provider payloads express either as a
// plain string or as {"values": [...], "operator": "AND"|"OR"}.
type QueryField struct {
	Values   []string
	Operator string
}

func (f QueryField) IsEmpty() bool {
	for _, v := range f.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Render joins the values for search-expression building. OR values are
// space-joined the same way AND values are; the distinction only matters for
// prompt wording, where PromptValue spells the operator out.
func (f QueryField) Render() string {
	parts := make([]string, 0, len(f.Values))
	for _, v := range f.Values {
		v = strings.TrimSpace(v)
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// PromptValue renders the field for LLM prompts, substituting NotSpecified
// for empty fields so absent criteria are never silently rendered as blanks.
func (f QueryField) PromptValue() string {
	if f.IsEmpty() {
		return NotSpecified
	}
	parts := make([]string, 0, len(f.Values))
	for _, v := range f.Values {
		v = strings.TrimSpace(v)
		if v != "" {
			parts = append(parts, v)
		}
	}
	sep := ", "
	if f.Operator == OperatorOr {
		sep = " or "
	}
	return strings.Join(parts, sep)
}

func (f QueryField) MarshalJSON() ([]byte, error) {
	if len(f.Values) == 1 && f.Operator == "" {
		return json.Marshal(f.Values[0])
	}
	if len(f.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(struct {
		Values   []string `json:"values"`
		Operator string   `json:"operator"`
	}{Values: f.Values, Operator: f.Operator})
}

func (f *QueryField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*f = QueryField{}
			return nil
		}
		*f = QueryField{Values: []string{single}}
		return nil
	}

	var multi struct {
		Values   []string `json:"values"`
		Operator string   `json:"operator"`
	}
	if err := json.Unmarshal(data, &multi); err != nil {
		return fmt.Errorf("query field must be a string or {values, operator}: %w", err)
	}
	*f = QueryField{Values: multi.Values, Operator: strings.ToUpper(strings.TrimSpace(multi.Operator))}
	return nil
}

// Field constructs a single-value QueryField.
func Field(value string) QueryField {
	value = strings.TrimSpace(value)
	if value == "" {
		return QueryField{}
	}
	return QueryField{Values: []string{value}}
}

type Tag struct {
	Value string `json:"value"`
}

// ParsedQuery is the structured representation of a free-text recruiting
// search produced by the query parser.
type ParsedQuery struct {
	SchemaVersion     string     `json:"schema_version"`
	JobTitle          QueryField `json:"job_title"`
	Skills            QueryField `json:"skills"`
	Location          QueryField `json:"location"`
	Industry          QueryField `json:"industry"`
	YearsOfExperience QueryField `json:"years_of_experience"`
	Company           QueryField `json:"company"`
	Tags              []Tag      `json:"tags"`
}

// Validate checks the schema version tag and per-field operators. A parse
// response failing validation halts the pipeline rather than proceeding with
// partial data.
func (q ParsedQuery) Validate() error {
	if q.SchemaVersion != ParsedQuerySchemaVersion {
		return ErrSchemaVersion
	}
	for _, f := range q.fields() {
		switch f.Operator {
		case "", OperatorAnd, OperatorOr:
		default:
			return ErrInvalidOperator
		}
	}
	return nil
}

func (q ParsedQuery) fields() []QueryField {
	return []QueryField{q.JobTitle, q.Skills, q.Location, q.Industry, q.YearsOfExperience, q.Company}
}

// IsEmpty reports whether no criterion is set.
func (q ParsedQuery) IsEmpty() bool {
	for _, f := range q.fields() {
		if !f.IsEmpty() {
			return false
		}
	}
	return len(q.Tags) == 0
}

// SearchName derives the display name for a search from its parsed query,
// truncated to 50 characters. Falls back to "Untitled Search".
func SearchName(q ParsedQuery) string {
	var name string
	switch {
	case !q.JobTitle.IsEmpty() && !q.Location.IsEmpty():
		name = q.JobTitle.Render() + " in " + q.Location.Render()
	case !q.JobTitle.IsEmpty():
		name = q.JobTitle.Render()
	case !q.Skills.IsEmpty():
		name = q.Skills.Render()
	case !q.Location.IsEmpty():
		name = q.Location.Render()
	default:
		return untitledSearch
	}

	runes := []rune(name)
	if len(runes) > searchNameMaxLen {
		return string(runes[:searchNameMaxLen-nameEllipsisExtra]) + "…"
	}
	return name
}
