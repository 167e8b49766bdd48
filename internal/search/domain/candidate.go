package domain

// Candidate is the canonical, provider-independent profile shape. Every
// sub-collection is always non-nil so downstream consumers stay total.
type Candidate struct {
	PublicID       string          `json:"public_id"`
	FullName       string          `json:"full_name"`
	Headline       string          `json:"headline"`
	PhotoURL       string          `json:"photo_url"`
	Location       string          `json:"location"`
	Experiences    []Experience    `json:"experiences"`
	Skills         []Skill         `json:"skills"`
	Educations     []Education     `json:"educations"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
	Honors         []Honor         `json:"honors"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

type Skill struct {
	Name string `json:"name"`
}

type Education struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	StartYear    string `json:"start_year"`
	EndYear      string `json:"end_year"`
}

type Certification struct {
	Name      string `json:"name"`
	Authority string `json:"authority"`
}

type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

type Honor struct {
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
}

// Normalize replaces nil sub-collections with empty ones.
func (c *Candidate) Normalize() {
	if c.Experiences == nil {
		c.Experiences = []Experience{}
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	if c.Educations == nil {
		c.Educations = []Education{}
	}
	if c.Certifications == nil {
		c.Certifications = []Certification{}
	}
	if c.Languages == nil {
		c.Languages = []Language{}
	}
	if c.Honors == nil {
		c.Honors = []Honor{}
	}
}
