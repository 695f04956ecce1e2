package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Language is an ISO 639-1 code of a supported UI language.
type Language string

const (
	Hindi     Language = "hi"
	English   Language = "en"
	Marathi   Language = "mr"
	Gujarati  Language = "gu"
	Punjabi   Language = "pa"
	Tamil     Language = "ta"
	Telugu    Language = "te"
	Kannada   Language = "kn"
	Malayalam Language = "ml"
	Bengali   Language = "bn"
	Odia      Language = "or"
)

// Baseline is used for unknown codes and for languages without templates.
const Baseline = English

var languageNames = map[Language]string{
	Hindi:     "Hindi",
	English:   "English",
	Marathi:   "Marathi",
	Gujarati:  "Gujarati",
	Punjabi:   "Punjabi",
	Tamil:     "Tamil",
	Telugu:    "Telugu",
	Kannada:   "Kannada",
	Malayalam: "Malayalam",
	Bengali:   "Bengali",
	Odia:      "Odia",
}

// ParseLanguage maps a code to a Language; unknown or empty codes become
// the baseline.
func ParseLanguage(code string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := languageNames[l]; ok {
		return l
	}
	return Baseline
}

// Valid reports whether l is one of the supported codes.
func (l Language) Valid() bool {
	_, ok := languageNames[l]
	return ok
}

// Name is the English name of the language, used inside prompts.
func (l Language) Name() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return languageNames[Baseline]
}

// ---- verification ----

type VerificationStatus string

const (
	StatusGenuine    VerificationStatus = "GENUINE"
	StatusSuspicious VerificationStatus = "SUSPICIOUS"
	StatusFake       VerificationStatus = "FAKE"
	StatusUnknown    VerificationStatus = "UNKNOWN"
)

// ParseVerificationStatus is case-insensitive.
func ParseVerificationStatus(s string) (VerificationStatus, bool) {
	switch v := VerificationStatus(strings.ToUpper(strings.TrimSpace(s))); v {
	case StatusGenuine, StatusSuspicious, StatusFake, StatusUnknown:
		return v, true
	}
	return "", false
}

type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type VerificationResult struct {
	Status         VerificationStatus `json:"status"`
	ProductName    string             `json:"productName"`
	Manufacturer   string             `json:"manufacturer"`
	BatchCode      string             `json:"batchCode,omitempty"`
	Confidence     float64            `json:"confidence"`
	Reasoning      string             `json:"reasoning"`
	SafetyCheck    string             `json:"safetyCheck"`
	OnlineEvidence string             `json:"onlineEvidence,omitempty"`
	Sources        []Source           `json:"sources"`
}

// ---- crop advisory ----

type Recommendations struct {
	Fertilizer       string `json:"fertilizer"`
	Dosage           string `json:"dosage"`
	PestControl      string `json:"pestControl"`
	CostSavingTip    string `json:"costSavingTip"`
	SoilHealthImpact string `json:"soilHealthImpact"`
}

type ScheduleEntry struct {
	Day      string `json:"day"`
	Activity string `json:"activity"`
}

type AdvisoryResponse struct {
	Crop            string          `json:"crop"`
	Stage           string          `json:"stage"`
	Recommendations Recommendations `json:"recommendations"`
	Schedule        []ScheduleEntry `json:"schedule"`
	WeatherRisk     string          `json:"weatherRisk"`
	Warnings        []string        `json:"warnings"`
}

// ---- market ----

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ParseTrend maps anything unrecognized to stable.
func ParseTrend(s string) Trend {
	switch t := Trend(strings.ToLower(strings.TrimSpace(s))); t {
	case TrendUp, TrendDown:
		return t
	}
	return TrendStable
}

type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type Vendor struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Distance string  `json:"distance"`
	Rating   float64 `json:"rating"`
	IsGovt   bool    `json:"isGovt"`
}

type MarketData struct {
	Item         string       `json:"item"`
	AvgPrice     float64      `json:"avgPrice"`
	Unit         string       `json:"unit"`
	Trend        Trend        `json:"trend"`
	PriceHistory []PricePoint `json:"priceHistory"`
	Vendors      []Vendor     `json:"vendors"`
}

// ---- weather ----

type AlertType string

const (
	AlertRain    AlertType = "RAIN"
	AlertDrought AlertType = "DROUGHT"
	AlertFrost   AlertType = "FROST"
	AlertStorm   AlertType = "STORM"
	AlertHeat    AlertType = "HEAT"
	AlertNone    AlertType = "NONE"
)

func ParseAlertType(s string) (AlertType, bool) {
	switch t := AlertType(strings.ToUpper(strings.TrimSpace(s))); t {
	case AlertRain, AlertDrought, AlertFrost, AlertStorm, AlertHeat, AlertNone:
		return t, true
	}
	return "", false
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityExtreme  Severity = "EXTREME"
)

func ParseSeverity(s string) (Severity, bool) {
	switch v := Severity(strings.ToUpper(strings.TrimSpace(s))); v {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityExtreme:
		return v, true
	}
	return "", false
}

type WeatherAlert struct {
	Type        AlertType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Action      string    `json:"action"`
}

// ---- soil ----

// SoilInputs are the measured values of a soil test. Nutrients are kg/ha,
// organic matter is a percentage.
type SoilInputs struct {
	PH            float64 `json:"pH"`
	Nitrogen      float64 `json:"nitrogen"`
	Phosphorus    float64 `json:"phosphorus"`
	Potassium     float64 `json:"potassium"`
	OrganicMatter float64 `json:"organicMatter"`
	Location      string  `json:"location,omitempty"`
	Crop          string  `json:"crop,omitempty"` // target crop, prompt only
}

var ErrInvalidSoil = errors.New("invalid soil inputs")

// Validate rejects values outside their physical range.
func (in SoilInputs) Validate() error {
	check := func(name string, v, lo, hi float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
			return fmt.Errorf("%w: %s=%v out of range [%v, %v]", ErrInvalidSoil, name, v, lo, hi)
		}
		return nil
	}
	if err := check("pH", in.PH, 0, 14); err != nil {
		return err
	}
	for _, n := range []struct {
		name string
		v    float64
	}{{"nitrogen", in.Nitrogen}, {"phosphorus", in.Phosphorus}, {"potassium", in.Potassium}} {
		if err := check(n.name, n.v, 0, math.MaxFloat64); err != nil {
			return err
		}
	}
	return check("organicMatter", in.OrganicMatter, 0, 100)
}

type NutrientStatus string

const (
	NutrientLow        NutrientStatus = "low"
	NutrientOptimal    NutrientStatus = "optimal"
	NutrientHigh       NutrientStatus = "high"
	NutrientDeficient  NutrientStatus = "deficient"
	NutrientModerate   NutrientStatus = "moderate"
	NutrientSufficient NutrientStatus = "sufficient"
	NutrientExcess     NutrientStatus = "excess"
	NutrientGood       NutrientStatus = "good"
)

// NutrientKind selects which status vocabulary applies.
type NutrientKind int

const (
	KindPH NutrientKind = iota
	KindMacro
	KindOrganicMatter
)

// ParseNutrientStatus accepts only statuses valid for kind.
func ParseNutrientStatus(kind NutrientKind, s string) (NutrientStatus, bool) {
	st := NutrientStatus(strings.ToLower(strings.TrimSpace(s)))
	var allowed []NutrientStatus
	switch kind {
	case KindPH:
		allowed = []NutrientStatus{NutrientLow, NutrientOptimal, NutrientHigh}
	case KindMacro:
		allowed = []NutrientStatus{NutrientDeficient, NutrientModerate, NutrientSufficient, NutrientExcess}
	case KindOrganicMatter:
		allowed = []NutrientStatus{NutrientLow, NutrientModerate, NutrientGood, NutrientHigh}
	}
	for _, a := range allowed {
		if st == a {
			return st, true
		}
	}
	return "", false
}

type NutrientAssessment struct {
	Status         NutrientStatus `json:"status"`
	Interpretation string         `json:"interpretation"`
	Action         string         `json:"action"`
}

type NutrientStatusSet struct {
	PH            NutrientAssessment `json:"pH"`
	Nitrogen      NutrientAssessment `json:"nitrogen"`
	Phosphorus    NutrientAssessment `json:"phosphorus"`
	Potassium     NutrientAssessment `json:"potassium"`
	OrganicMatter NutrientAssessment `json:"organicMatter"`
}

type FertilizerRecommendation struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
	Timing string `json:"timing"`
	Notes  string `json:"notes,omitempty"`
}

type ProfitableCrop struct {
	Crop            string `json:"crop"`
	ProfitNote      string `json:"profitNote"`
	EstimatedMargin string `json:"estimatedMargin,omitempty"`
}

type SoilAnalysis struct {
	Summary                   string                     `json:"summary"`
	NutrientStatus            NutrientStatusSet          `json:"nutrientStatus"`
	FertilizerRecommendations []FertilizerRecommendation `json:"fertilizerRecommendations"`
	SuitableCrops             []string                   `json:"suitableCrops"`
	ProfitableCrops           []ProfitableCrop           `json:"profitableCrops"`
	FarmManagement            []string                   `json:"farmManagement"`
	ImprovementTips           []string                   `json:"improvementTips"`
	Warnings                  []string                   `json:"warnings"`
}

// SoilTest is a saved soil test with the analysis that was shown.
type SoilTest struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	TestDate        time.Time          `json:"testDate"`
	Location        string             `json:"location"`
	PH              float64            `json:"pH"`
	Nitrogen        float64            `json:"nitrogen"`
	Phosphorus      float64            `json:"phosphorus"`
	Potassium       float64            `json:"potassium"`
	OrganicMatter   float64            `json:"organicMatter"`
	OtherNutrients  map[string]float64 `json:"otherNutrients,omitempty"`
	Recommendations string             `json:"recommendations"`
	ImageURL        string             `json:"imageUrl,omitempty"`
}

// Inputs returns the measured values of the test.
func (t SoilTest) Inputs() SoilInputs {
	return SoilInputs{
		PH:            t.PH,
		Nitrogen:      t.Nitrogen,
		Phosphorus:    t.Phosphorus,
		Potassium:     t.Potassium,
		OrganicMatter: t.OrganicMatter,
		Location:      t.Location,
	}
}

// ---- crop calendar ----

type FarmPlan struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Crop       string    `json:"crop"`
	LandAcres  float64   `json:"landAcres"`
	SowingDate string    `json:"sowingDate"` // YYYY-MM-DD
	CreatedAt  time.Time `json:"createdAt"`
}

// CropCalendarTaskTemplate is a task relative to the sowing day; negative
// days are before sowing.
type CropCalendarTaskTemplate struct {
	DayFromSowing int    `json:"dayFromSowing"`
	Stage         string `json:"stage"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuantityHint  string `json:"quantityHint,omitempty"`
}

type CalendarTask struct {
	ID           string     `json:"id"`
	FarmPlanID   string     `json:"farmPlanId"`
	Date         string     `json:"date"` // YYYY-MM-DD
	Stage        string     `json:"stage"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	QuantityHint string     `json:"quantityHint,omitempty"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Overview bundles the dashboard calls that run together.
type Overview struct {
	Advisory Result[AdvisoryResponse] `json:"advisory"`
	Market   Result[[]MarketData]     `json:"market"`
	Weather  Result[[]WeatherAlert]   `json:"weather"`
}
