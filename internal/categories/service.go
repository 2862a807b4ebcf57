// Package categories manages the user's category definitions, which double as
// the categorizer's keyword ruleset.
package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pennywyse/pennywyse/internal/categorize"
	"github.com/pennywyse/pennywyse/internal/model"
)

// DefaultPath is the category file location relative to a project root.
const DefaultPath = "categories/categories.csv"

// Service provides in-memory lookup over the category set.
type Service struct {
	categories []model.Category
	byName     map[string]model.Category
}

// NewService creates a Service from a slice of categories.
func NewService(categories []model.Category) *Service {
	byName := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c
	}
	return &Service{categories: categories, byName: byName}
}

// Load reads a categories.csv file and returns a Service.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading categories: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories in file order.
func (s *Service) All() []model.Category {
	return s.categories
}

// Get returns a category by name, ignoring case.
func (s *Service) Get(name string) (model.Category, bool) {
	c, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Exists reports whether a category name exists.
func (s *Service) Exists(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// ByType returns all categories of the given type.
func (s *Service) ByType(t model.CategoryType) []model.Category {
	var result []model.Category
	for _, c := range s.categories {
		if c.Type == t {
			result = append(result, c)
		}
	}
	return result
}

// Rules returns the categorizer ruleset in file order.
func (s *Service) Rules() categorize.Rules {
	return categorize.FromCategories(s.categories)
}

// Save writes the category set to path, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating categories file: %w", err)
	}
	defer f.Close()

	if err := WriteCategories(f, s.categories); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}
	return nil
}
