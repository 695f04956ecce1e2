package fallback

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"krishi-advisor/api/internal/advisory/types"
)

//go:embed templates.yaml
var templatesYAML []byte

// byLang holds one value per language code.
type byLang[T any] map[string]T

// pick returns the entry for lang, or the baseline entry.
func (m byLang[T]) pick(lang types.Language) T {
	if v, ok := m[string(lang)]; ok {
		return v
	}
	return m[string(types.Baseline)]
}

type nutrientText struct {
	Interpretation string `yaml:"interpretation"`
	Action         string `yaml:"action"`
}

type summaryText struct {
	Text    string `yaml:"text"`
	Good    string `yaml:"good"`
	Improve string `yaml:"improve"`
	// Strict also requires N moderate and P, K not deficient for "good".
	Strict bool `yaml:"strict"`
}

type fertilizerText struct {
	Name   string `yaml:"name"`
	Dosage string `yaml:"dosage"`
	Timing string `yaml:"timing"`
	Notes  string `yaml:"notes"`
}

type profitableText struct {
	Crop            string `yaml:"crop"`
	ProfitNote      string `yaml:"profit_note"`
	EstimatedMargin string `yaml:"estimated_margin"`
}

type imageFailedText struct {
	ProductName    string `yaml:"product_name"`
	Reasoning      string `yaml:"reasoning"`
	SafetyCheck    string `yaml:"safety_check"`
	OnlineEvidence string `yaml:"online_evidence"`
}

type scheduleText struct {
	Day      string `yaml:"day"`
	Activity string `yaml:"activity"`
}

type advisoryText struct {
	Fertilizer       string         `yaml:"fertilizer"`
	Dosage           string         `yaml:"dosage"`
	PestControl      string         `yaml:"pest_control"`
	CostSavingTip    string         `yaml:"cost_saving_tip"`
	SoilHealthImpact string         `yaml:"soil_health_impact"`
	Schedule         []scheduleText `yaml:"schedule"`
	WeatherRisk      string         `yaml:"weather_risk"`
	Warnings         []string       `yaml:"warnings"`
}

// Table is the parsed templates.yaml.
type Table struct {
	// nutrient -> status -> language
	Nutrients       map[string]map[string]byLang[nutrientText] `yaml:"nutrients"`
	Summary         byLang[summaryText]                        `yaml:"summary"`
	LocationDefault byLang[string]                             `yaml:"location_default"`
	Fertilizers     map[string]byLang[fertilizerText]          `yaml:"fertilizers"`
	SuitableCrops   byLang[[]string]                           `yaml:"suitable_crops"`
	ProfitableCrops byLang[[]profitableText]                   `yaml:"profitable_crops"`
	FarmManagement  byLang[[]string]                           `yaml:"farm_management"`
	ImprovementTips map[string]byLang[string]                  `yaml:"improvement_tips"`
	Warnings        map[string]byLang[string]                  `yaml:"warnings"`
	Batch           struct {
		ProductName    byLang[string]            `yaml:"product_name"`
		SafetyCheck    byLang[string]            `yaml:"safety_check"`
		OnlineEvidence byLang[string]            `yaml:"online_evidence"`
		Reasoning      map[string]byLang[string] `yaml:"reasoning"`
	} `yaml:"batch"`
	ImageFailed byLang[imageFailedText]   `yaml:"image_failed"`
	Advisory    byLang[advisoryText]      `yaml:"advisory"`
	Labels      byLang[map[string]string] `yaml:"labels"`
}

// Load parses a template table and checks that every group has a baseline
// entry.
func Load(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	base := string(types.Baseline)
	missing := func(group string) error {
		return fmt.Errorf("templates: %s has no %q entry", group, base)
	}
	for n, statuses := range t.Nutrients {
		for st, texts := range statuses {
			if _, ok := texts[base]; !ok {
				return nil, missing("nutrients." + n + "." + st)
			}
		}
	}
	for k, texts := range t.Fertilizers {
		if _, ok := texts[base]; !ok {
			return nil, missing("fertilizers." + k)
		}
	}
	for k, texts := range t.Batch.Reasoning {
		if _, ok := texts[base]; !ok {
			return nil, missing("batch.reasoning." + k)
		}
	}
	checks := map[string]bool{
		"summary":          has(t.Summary, base),
		"location_default": has(t.LocationDefault, base),
		"suitable_crops":   has(t.SuitableCrops, base),
		"profitable_crops": has(t.ProfitableCrops, base),
		"farm_management":  has(t.FarmManagement, base),
		"image_failed":     has(t.ImageFailed, base),
		"advisory":         has(t.Advisory, base),
		"labels":           has(t.Labels, base),
	}
	for group, ok := range checks {
		if !ok {
			return nil, missing(group)
		}
	}
	return &t, nil
}

func has[T any](m byLang[T], lang string) bool {
	_, ok := m[lang]
	return ok
}

// MustLoad is Load for the embedded table; a broken table is a build defect.
func MustLoad() *Table {
	t, err := Load(templatesYAML)
	if err != nil {
		panic(err)
	}
	return t
}

var table = MustLoad()

// Label returns a short UI label in lang, falling back to the baseline
// language and then to the key itself.
func Label(lang types.Language, key string) string {
	if m, ok := table.Labels[string(lang)]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := table.Labels[string(types.Baseline)][key]; ok {
		return s
	}
	return key
}

// LocationDefault is the place name used when the caller gave none.
func LocationDefault(lang types.Language) string {
	return table.LocationDefault.pick(lang)
}
