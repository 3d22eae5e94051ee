package models

// Profile holds the owner's identity and the hero/footer copy
type Profile struct {
	Name           string   `json:"name" validate:"required"`
	Tagline        string   `json:"tagline" validate:"required"`
	Summary        string   `json:"summary"`
	About          []string `json:"about"`
	FooterBlurb    string   `json:"footer_blurb"`
	Location       string   `json:"location"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Phone          string   `json:"phone"`
	ResumePath     string   `json:"resume_path"`
	ResumeFilename string   `json:"resume_filename"`
}

// Stat is one of the count-up counters in the About section
type Stat struct {
	Label  string  `json:"label" validate:"required"`
	Icon   string  `json:"icon"`
	Value  float64 `json:"value" validate:"gte=0"`
	Suffix string  `json:"suffix"`
}

// SocialLink is an outbound profile link
type SocialLink struct {
	Label string `json:"label" validate:"required"`
	Icon  string `json:"icon"`
	URL   string `json:"url" validate:"required"`
}

// ContactChannel is a row in the contact information list.
// A URL of "#" marks a channel that is shown but not clickable.
type ContactChannel struct {
	Label string `json:"label" validate:"required"`
	Icon  string `json:"icon"`
	Value string `json:"value" validate:"required"`
	URL   string `json:"url"`
}

// Linked reports whether the channel renders as a link
func (c ContactChannel) Linked() bool {
	return c.URL != "" && c.URL != "#"
}

// Skill is a single proficiency bar
type Skill struct {
	Name     string `json:"name" validate:"required"`
	Level    int    `json:"level" validate:"gte=0,lte=100"`
	Gradient string `json:"gradient"`
}

// SkillCategory groups skill bars under a title
type SkillCategory struct {
	Title  string  `json:"title" validate:"required"`
	Skills []Skill `json:"skills" validate:"dive"`
}

// Experience is a professional experience entry
type Experience struct {
	Title        string   `json:"title" validate:"required"`
	Company      string   `json:"company" validate:"required"`
	Location     string   `json:"location"`
	Duration     string   `json:"duration"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
	Gradient     string   `json:"gradient"`
}

// Publication is a research publication entry
type Publication struct {
	Title       string   `json:"title" validate:"required"`
	Venue       string   `json:"venue"`
	Year        string   `json:"year"`
	DOI         string   `json:"doi"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	CoAuthors   []string `json:"co_authors"`
}

// Certification is a certificate badge
type Certification struct {
	Name     string `json:"name" validate:"required"`
	Issuer   string `json:"issuer"`
	Year     string `json:"year"`
	Gradient string `json:"gradient"`
}

// Initial returns the badge letter
func (c Certification) Initial() string {
	for _, r := range c.Name {
		return string(r)
	}
	return ""
}

// Education is a degree entry
type Education struct {
	Degree      string `json:"degree" validate:"required"`
	Institution string `json:"institution" validate:"required"`
	Period      string `json:"period"`
	Grade       string `json:"grade"`
}

// Portfolio is the complete set of static content tables
type Portfolio struct {
	Profile         Profile          `json:"profile"`
	Stats           []Stat           `json:"stats" validate:"dive"`
	Social          []SocialLink     `json:"social" validate:"dive"`
	Contact         []ContactChannel `json:"contact" validate:"dive"`
	Projects        []Project        `json:"projects" validate:"dive"`
	Experience      []Experience     `json:"experience" validate:"dive"`
	Publications    []Publication    `json:"publications" validate:"dive"`
	Education       []Education      `json:"education" validate:"dive"`
	SkillCategories []SkillCategory  `json:"skill_categories" validate:"dive"`
	Certifications  []Certification  `json:"certifications" validate:"dive"`
	TechStack       []string         `json:"tech_stack"`
}
