// Package render turns the portfolio content into HTML. The page is a
// fixed sequence of sections, each of which can also be rendered alone.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"
	"unicode"

	"shrikavin.dev/internal/animation"
	"shrikavin.dev/internal/models"
	"shrikavin.dev/internal/services"
)

// ErrUnknownSection is returned for a section id that is not on the page
var ErrUnknownSection = errors.New("unknown section")

// Section describes one page section
type Section struct {
	ID       string
	Label    string
	Heading  string
	Template string
}

// Sections lists the page sections in render order. Hero and footer
// headings are the profile name.
var Sections = []Section{
	{ID: "home", Label: "Home", Template: "hero"},
	{ID: "about", Label: "About", Heading: "About Me", Template: "about"},
	{ID: "projects", Label: "Projects", Heading: "Featured Projects", Template: "projects"},
	{ID: "experience", Label: "Experience", Heading: "Experience & Publications", Template: "experience"},
	{ID: "skills", Label: "Skills", Heading: "Skills", Template: "skills"},
	{ID: "contact", Label: "Contact", Heading: "Get In Touch", Template: "contact"},
	{ID: "footer", Label: "Footer", Template: "footer"},
}

// Lookup returns the section with the given id
func Lookup(id string) (Section, error) {
	for _, s := range Sections {
		if s.ID == id {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("%w: %q", ErrUnknownSection, id)
}

// NavLink is an in-page anchor
type NavLink struct {
	ID    string
	Label string
}

// Word is one word of the typed-in tagline
type Word struct {
	Text  string
	Delay string
}

// ContactForm is the state of the contact form fragment
type ContactForm struct {
	Values models.ContactDraft
	Errors map[string]string
	Status string // "success" or "error"
	Notice string
}

// Request carries the per-request inputs of a render
type Request struct {
	Resume services.ResumeLink
	Form   ContactForm
	Now    time.Time
}

// Assets locates the browser assets and background feeds
type Assets struct {
	StaticBase         string
	BackgroundStream   string
	BackgroundSnapshot string
}

// DefaultAssets are the paths served by the HTTP server
var DefaultAssets = Assets{
	StaticBase:         "/static/",
	BackgroundStream:   "/ws/background",
	BackgroundSnapshot: "/api/background",
}

// PageData is the template input
type PageData struct {
	Assets

	Profile         models.Profile
	Social          []models.SocialLink
	Contact         []models.ContactChannel
	Stats           []services.StatView
	StatDelays      []string
	Projects        []models.Project
	ProjectDelays   []string
	Experience      []models.Experience
	Publications    []models.Publication
	Education       []models.Education
	SkillCategories []services.SkillCategoryView
	Certifications  []models.Certification
	TechStack       []string
	TaglineWords    []Word

	Sections   []Section
	NavLinks   []NavLink
	QuickLinks []NavLink
	Reveal     *animation.Observer
	Resume     services.ResumeLink
	Form       ContactForm
	Year       int
}

// Renderer renders the page and its sections
type Renderer struct {
	tmpl      *template.Template
	portfolio *services.PortfolioService
	assets    Assets
}

// New parses the templates in templates (files matching *.html under
// the templates directory)
func New(templates fs.FS, portfolio *services.PortfolioService, assets Assets) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, portfolio: portfolio, assets: assets}, nil
}

var funcs = template.FuncMap{
	"initials": initials,
	"join":     strings.Join,
	"safeURL":  safeURL,
}

// Page renders the full document
func (r *Renderer) Page(w io.Writer, req Request) error {
	return r.execute(w, "page", r.data(req))
}

// Section renders a single section fragment
func (r *Renderer) Section(w io.Writer, id string, req Request) error {
	s, err := Lookup(id)
	if err != nil {
		return err
	}
	return r.execute(w, s.Template, r.data(req))
}

// ContactForm renders the contact form fragment
func (r *Renderer) ContactForm(w io.Writer, form ContactForm) error {
	return r.execute(w, "contact-form", form)
}

// execute buffers the output so a template error never leaves a half
// written response
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) data(req Request) *PageData {
	p := r.portfolio.GetAll()
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	d := &PageData{
		Assets:          r.assets,
		Profile:         p.Profile,
		Social:          p.Social,
		Contact:         p.Contact,
		Stats:           r.portfolio.Stats(),
		Projects:        p.Projects,
		Experience:      p.Experience,
		Publications:    p.Publications,
		Education:       p.Education,
		SkillCategories: r.portfolio.Skills(),
		Certifications:  p.Certifications,
		TechStack:       p.TechStack,
		TaglineWords:    taglineWords(p.Profile.Tagline),
		Sections:        Sections,
		Reveal:          animation.NewObserver(),
		Resume:          req.Resume,
		Form:            req.Form,
		Year:            now.Year(),
	}
	d.StatDelays = staggered(len(d.Stats))
	d.ProjectDelays = staggered(len(d.Projects))

	for _, s := range Sections {
		if s.ID == "footer" {
			continue
		}
		d.NavLinks = append(d.NavLinks, NavLink{ID: s.ID, Label: s.Label})
		if s.ID != "home" {
			d.QuickLinks = append(d.QuickLinks, NavLink{ID: s.ID, Label: s.Label})
		}
	}
	return d
}

func staggered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = animation.Seconds(animation.Stagger(0, 100*time.Millisecond, i))
	}
	return out
}

func taglineWords(tagline string) []Word {
	fields := strings.Fields(tagline)
	words := make([]Word, len(fields))
	for i, f := range fields {
		words[i] = Word{Text: f, Delay: animation.Seconds(animation.WordDelay(i))}
	}
	return words
}

func initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return b.String()
}

// safeURL allows the link schemes used by contact channels. tel: links
// are otherwise rewritten by html/template.
func safeURL(raw string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, scheme := range []string{"http://", "https://", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, scheme) {
			return template.URL(raw)
		}
	}
	return template.URL("#")
}
