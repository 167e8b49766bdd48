package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSearchNameFromJobTitle(t *testing.T) {
	q := ParsedQuery{SchemaVersion: ParsedQuerySchemaVersion, JobTitle: Field("Staff Engineer")}
	if got := SearchName(q); got != "Staff Engineer" {
		t.Fatalf("expected %q, got %q", "Staff Engineer", got)
	}
}

func TestSearchNameWithLocation(t *testing.T) {
	q := ParsedQuery{
		SchemaVersion: ParsedQuerySchemaVersion,
		JobTitle:      Field("Backend Developer"),
		Location:      Field("Berlin"),
	}
	if got := SearchName(q); got != "Backend Developer in Berlin" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestSearchNameFallsBackToSkillsThenLocation(t *testing.T) {
	q := ParsedQuery{SchemaVersion: ParsedQuerySchemaVersion, Skills: Field("Go")}
	if got := SearchName(q); got != "Go" {
		t.Fatalf("expected skills fallback, got %q", got)
	}

	q = ParsedQuery{SchemaVersion: ParsedQuerySchemaVersion, Location: Field("Lisbon")}
	if got := SearchName(q); got != "Lisbon" {
		t.Fatalf("expected location fallback, got %q", got)
	}
}

func TestSearchNameEmptyQuery(t *testing.T) {
	if got := SearchName(ParsedQuery{SchemaVersion: ParsedQuerySchemaVersion}); got != "Untitled Search" {
		t.Fatalf("expected untitled fallback, got %q", got)
	}
}

func TestSearchNameTruncation(t *testing.T) {
	long := strings.Repeat("a", 60)
	q := ParsedQuery{SchemaVersion: ParsedQuerySchemaVersion, JobTitle: Field(long)}
	got := SearchName(q)
	runes := []rune(got)
	if len(runes) != 50 {
		t.Fatalf("expected 50 runes, got %d (%q)", len(runes), got)
	}
	if string(runes[:49]) != strings.Repeat("a", 49) {
		t.Fatalf("unexpected prefix in %q", got)
	}
	if runes[49] != '…' {
		t.Fatalf("expected ellipsis terminator, got %q", string(runes[49]))
	}
}

func TestQueryFieldUnmarshalString(t *testing.T) {
	var f QueryField
	if err := json.Unmarshal([]byte(`"Software Engineer"`), &f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Values) != 1 || f.Values[0] != "Software Engineer" {
		t.Fatalf("unexpected values %v", f.Values)
	}
	if f.Operator != "" {
		t.Fatalf("unexpected operator %q", f.Operator)
	}
}

func TestQueryFieldUnmarshalObject(t *testing.T) {
	var f QueryField
	err := json.Unmarshal([]byte(`{"values":["Go","Rust"],"operator":"or"}`), &f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Values) != 2 {
		t.Fatalf("unexpected values %v", f.Values)
	}
	if f.Operator != OperatorOr {
		t.Fatalf("expected normalized OR operator, got %q", f.Operator)
	}
}

func TestQueryFieldPromptValue(t *testing.T) {
	if got := (QueryField{}).PromptValue(); got != NotSpecified {
		t.Fatalf("expected %q, got %q", NotSpecified, got)
	}

	or := QueryField{Values: []string{"Go", "Rust"}, Operator: OperatorOr}
	if got := or.PromptValue(); got != "Go or Rust" {
		t.Fatalf("unexpected OR rendering %q", got)
	}

	and := QueryField{Values: []string{"Go", "Rust"}, Operator: OperatorAnd}
	if got := and.PromptValue(); got != "Go, Rust" {
		t.Fatalf("unexpected AND rendering %q", got)
	}
}

func TestValidateSchemaVersion(t *testing.T) {
	q := ParsedQuery{SchemaVersion: "v2"}
	if err := q.Validate(); !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("expected schema version error, got %v", err)
	}
}

func TestValidateRejectsUnknownOperator(t *testing.T) {
	q := ParsedQuery{
		SchemaVersion: ParsedQuerySchemaVersion,
		Skills:        QueryField{Values: []string{"Go", "Rust"}, Operator: "XOR"},
	}
	if err := q.Validate(); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected operator error, got %v", err)
	}
}

func TestParsedQueryRoundTripKeepsOperator(t *testing.T) {
	q := ParsedQuery{
		SchemaVersion: ParsedQuerySchemaVersion,
		JobTitle:      Field("Data Scientist"),
		Skills:        QueryField{Values: []string{"Python", "SQL"}, Operator: OperatorAnd},
	}
	raw, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ParsedQuery
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("round-tripped query failed validation: %v", err)
	}
	if decoded.Skills.Operator != OperatorAnd {
		t.Fatalf("operator lost in round trip: %q", decoded.Skills.Operator)
	}
}
