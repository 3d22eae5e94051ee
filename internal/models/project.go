package models

// Project represents a portfolio project card
type Project struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Tech        []string `json:"tech"`
	Gradient    string   `json:"gradient"`
	GitHubURL   string   `json:"github_url,omitempty"`
	DemoURL     string   `json:"demo_url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Hardware    bool     `json:"hardware"`
}

// HasCode reports whether the card should link to a code repository.
// Hardware projects show a badge instead.
func (p Project) HasCode() bool {
	return !p.Hardware && p.GitHubURL != ""
}

// ProjectList wraps the array of projects
type ProjectList struct {
	Projects []Project `json:"projects"`
}
