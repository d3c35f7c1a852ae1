package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Growth workbook sheet layouts seen across the schools' submissions.
const (
	// SheetModeCombined: one sheet holding every individual, no school
	// column. Per-school growth comparison is impossible in this mode.
	SheetModeCombined = "combined"
	// SheetModePerSchool: one sheet per school, named after it.
	SheetModePerSchool = "per_school"
)

// Experiment describes the four-school EC study: which schools take part,
// their nutrient targets, and how their data files are named.
type Experiment struct {
	Title   string   `yaml:"title" json:"title"`
	Period  string   `yaml:"period" json:"period"`
	Partner string   `yaml:"partner" json:"partner"`
	Schools []School `yaml:"schools" json:"schools"`

	// EnvFileMarker is the substring, beside the school name, expected in
	// environment CSV filenames.
	EnvFileMarker string `yaml:"env_file_marker" json:"envFileMarker"`
	// GrowthFileKey locates the growth-results workbook.
	GrowthFileKey string `yaml:"growth_file_key" json:"growthFileKey"`
	// GrowthSheetMode is "combined" or "per_school".
	GrowthSheetMode string `yaml:"growth_sheet_mode" json:"growthSheetMode"`
}

// School is one participating school and its assigned EC condition.
type School struct {
	Name        string  `yaml:"name" json:"name"`
	TargetEC    float64 `yaml:"target_ec" json:"targetEc"`
	SampleCount int     `yaml:"sample_count" json:"sampleCount"`
	Color       string  `yaml:"color" json:"color"`
}

// DefaultExperiment returns the 2025 four-school study as shipped.
func DefaultExperiment() *Experiment {
	return &Experiment{
		Title:   "극지식물 최적 EC 농도 연구",
		Period:  "2025.05 ~ 2025.07",
		Partner: "극지연구소",
		Schools: []School{
			{Name: "송도고", TargetEC: 1, SampleCount: 29, Color: "#AED6F1"},
			{Name: "하늘고", TargetEC: 2, SampleCount: 45, Color: "#3498DB"},
			{Name: "아라고", TargetEC: 4, SampleCount: 106, Color: "#E67E22"},
			{Name: "동산고", TargetEC: 8, SampleCount: 58, Color: "#E74C3C"},
		},
		EnvFileMarker:   "환경데이터",
		GrowthFileKey:   "생육결과데이터",
		GrowthSheetMode: SheetModeCombined,
	}
}

// LoadExperiment loads the experiment YAML, writing the default file on
// first run so deployments have something to edit.
func LoadExperiment(path string) (*Experiment, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		exp := DefaultExperiment()
		if err := exp.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default experiment file: %w", err)
		}
		return exp, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open experiment file: %w", err)
	}
	defer f.Close()

	return ParseExperiment(f)
}

// ParseExperiment parses an experiment description from a reader.
func ParseExperiment(r io.Reader) (*Experiment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse experiment file: %w", err)
	}
	if err := exp.validate(); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Save writes the experiment description as YAML.
func (e *Experiment) Save(path string) error {
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal experiment: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (e *Experiment) validate() error {
	if len(e.Schools) == 0 {
		return fmt.Errorf("experiment file lists no schools")
	}
	switch e.GrowthSheetMode {
	case SheetModeCombined, SheetModePerSchool:
	case "":
		e.GrowthSheetMode = SheetModeCombined
	default:
		return fmt.Errorf("unknown growth_sheet_mode %q", e.GrowthSheetMode)
	}
	if e.EnvFileMarker == "" || e.GrowthFileKey == "" {
		return fmt.Errorf("env_file_marker and growth_file_key are required")
	}
	return nil
}

// SchoolNames returns the display names in configured order.
func (e *Experiment) SchoolNames() []string {
	names := make([]string, len(e.Schools))
	for i, s := range e.Schools {
		names[i] = s.Name
	}
	return names
}
