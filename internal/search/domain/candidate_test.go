package domain

import (
	"encoding/json"
	"testing"
)

func TestNormalizeFillsNilCollections(t *testing.T) {
	c := Candidate{PublicID: "jane-doe", FullName: "Jane Doe"}
	c.Normalize()

	if c.Experiences == nil || c.Skills == nil || c.Educations == nil {
		t.Fatal("expected non-nil collections after Normalize")
	}
	if c.Certifications == nil || c.Languages == nil || c.Honors == nil {
		t.Fatal("expected non-nil collections after Normalize")
	}
}

func TestNormalizeKeepsExistingData(t *testing.T) {
	c := Candidate{
		PublicID: "jane-doe",
		Skills:   []Skill{{Name: "Go"}},
	}
	c.Normalize()

	if len(c.Skills) != 1 || c.Skills[0].Name != "Go" {
		t.Fatalf("unexpected skills %v", c.Skills)
	}
}

func TestNormalizedCandidateMarshalsEmptyArrays(t *testing.T) {
	c := Candidate{PublicID: "jane-doe"}
	c.Normalize()

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"experiences", "skills", "educations", "certifications", "languages", "honors"} {
		if string(decoded[key]) != "[]" {
			t.Fatalf("expected %s to serialize as [], got %s", key, decoded[key])
		}
	}
}
