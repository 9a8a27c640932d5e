// Package seeds loads the default plan catalog.
package seeds

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/staffhub/staffhub/internal/domain/subscription"
	vo "github.com/staffhub/staffhub/internal/domain/subscription/valueobjects"
)

//go:embed plans.yaml
var defaultPlans []byte

type planFile struct {
	Plans []planEntry `yaml:"plans"`
}

type planEntry struct {
	Slug         string          `yaml:"slug"`
	Name         string          `yaml:"name"`
	Description  string          `yaml:"description"`
	MonthlyPrice int64           `yaml:"monthly_price"`
	YearlyPrice  int64           `yaml:"yearly_price"`
	Currency     string          `yaml:"currency"`
	MaxEmployees int             `yaml:"max_employees"`
	TrialDays    int             `yaml:"trial_days"`
	IsCustom     bool            `yaml:"is_custom"`
	SortOrder    int             `yaml:"sort_order"`
	Features     vo.PlanFeatures `yaml:"features"`
}

// LoadPlans reads a seed file, or the built-in catalog when path is empty.
func LoadPlans(path string) ([]subscription.PlanParams, error) {
	data := defaultPlans
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan seed file: %w", err)
		}
	}
	return ParsePlans(data)
}

// ParsePlans decodes a seed document. Unknown keys are rejected so a typo in
// a feature name does not silently disable it.
func ParsePlans(data []byte) ([]subscription.PlanParams, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file planFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse plan seeds: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan seed file defines no plans")
	}

	seen := make(map[string]bool, len(file.Plans))
	params := make([]subscription.PlanParams, 0, len(file.Plans))
	for _, p := range file.Plans {
		if seen[p.Slug] {
			return nil, fmt.Errorf("duplicate plan slug in seeds: %s", p.Slug)
		}
		seen[p.Slug] = true
		params = append(params, subscription.PlanParams{
			Slug:         p.Slug,
			Name:         p.Name,
			Description:  p.Description,
			MonthlyPrice: p.MonthlyPrice,
			YearlyPrice:  p.YearlyPrice,
			Currency:     p.Currency,
			MaxEmployees: p.MaxEmployees,
			TrialDays:    p.TrialDays,
			Features:     p.Features,
			IsCustom:     p.IsCustom,
			SortOrder:    p.SortOrder,
		})
	}
	return params, nil
}
