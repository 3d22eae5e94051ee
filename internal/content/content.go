// Package content holds the static portfolio tables rendered by the site.
package content

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"shrikavin.dev/internal/models"
)

//go:embed portfolio.json
var defaultData []byte

var validate = validator.New()

// Default returns the content shipped with the binary
func Default() (*models.Portfolio, error) {
	return Parse(defaultData)
}

// Load reads a portfolio document from disk. When the file does not
// exist the embedded default is returned instead.
func Load(path string) (*models.Portfolio, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a portfolio document
func Parse(data []byte) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field constraints and that project IDs are unique
func Validate(p *models.Portfolio) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid portfolio: %w", err)
	}
	seen := make(map[string]bool, len(p.Projects))
	for _, proj := range p.Projects {
		if seen[proj.ID] {
			return fmt.Errorf("invalid portfolio: duplicate project id %q", proj.ID)
		}
		seen[proj.ID] = true
	}
	return nil
}
