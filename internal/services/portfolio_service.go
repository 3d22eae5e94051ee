package services

import (
	"errors"

	"shrikavin.dev/internal/animation"
	"shrikavin.dev/internal/models"
)

// ErrProjectNotFound is returned for an unknown project id
var ErrProjectNotFound = errors.New("project not found")

// SkillBarView is a skill bar with its reveal schedule
type SkillBarView struct {
	Name     string  `json:"name"`
	Level    int     `json:"level"`
	Gradient string  `json:"gradient"`
	Width    float64 `json:"width"`
	Delay    string  `json:"delay"`
	Duration string  `json:"duration"`
}

// SkillCategoryView groups skill bars under a title
type SkillCategoryView struct {
	Title  string         `json:"title"`
	Skills []SkillBarView `json:"skills"`
}

// StatView is an About counter with its precision
type StatView struct {
	models.Stat
	Decimals int    `json:"decimals"`
	Display  string `json:"display"`
}

// PortfolioService handles lookups into the static content
type PortfolioService struct {
	portfolio *models.Portfolio
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(p *models.Portfolio) *PortfolioService {
	return &PortfolioService{portfolio: p}
}

// GetAll returns the complete content
func (s *PortfolioService) GetAll() *models.Portfolio {
	return s.portfolio
}

// GetProjects returns all projects
func (s *PortfolioService) GetProjects() []models.Project {
	return s.portfolio.Projects
}

// GetProjectByID returns a specific project by ID
func (s *PortfolioService) GetProjectByID(id string) (*models.Project, error) {
	for i := range s.portfolio.Projects {
		if s.portfolio.Projects[i].ID == id {
			return &s.portfolio.Projects[i], nil
		}
	}
	return nil, ErrProjectNotFound
}

// Skills returns every skill bar with the width it settles at once the
// section has been revealed
func (s *PortfolioService) Skills() []SkillCategoryView {
	out := make([]SkillCategoryView, 0, len(s.portfolio.SkillCategories))
	for ci, cat := range s.portfolio.SkillCategories {
		view := SkillCategoryView{Title: cat.Title, Skills: make([]SkillBarView, 0, len(cat.Skills))}
		for si, skill := range cat.Skills {
			bar := animation.NewSkillBar(skill.Level, ci, si)
			view.Skills = append(view.Skills, SkillBarView{
				Name:     skill.Name,
				Level:    skill.Level,
				Gradient: skill.Gradient,
				Width:    bar.Width(true, bar.Tween.End()),
				Delay:    animation.Seconds(bar.Tween.Delay),
				Duration: animation.Seconds(bar.Tween.Duration),
			})
		}
		out = append(out, view)
	}
	return out
}

// Stats returns the About counters with their final display value
func (s *PortfolioService) Stats() []StatView {
	out := make([]StatView, 0, len(s.portfolio.Stats))
	for _, st := range s.portfolio.Stats {
		c := animation.NewCountUp(st.Value)
		out = append(out, StatView{
			Stat:     st,
			Decimals: c.Decimals(),
			Display:  c.Format(c.Value(c.Duration)),
		})
	}
	return out
}
