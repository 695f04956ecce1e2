package types

// Outcome tells where an assembled value came from.
type Outcome string

const (
	OutcomeModel    Outcome = "model"
	OutcomeFallback Outcome = "fallback"
	OutcomeRules    Outcome = "rules"
)

// Reason records why a model response was not used.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonTransport Reason = "transport"
	ReasonEmpty     Reason = "empty"
	ReasonParse     Reason = "parse"
	ReasonShape     Reason = "shape"
)

// State of one assembly. Only ASSEMBLED and FAILED_FALLBACK are terminal.
type State string

const (
	StateNotStarted     State = "NOT_STARTED"
	StateCallingModel   State = "CALLING_MODEL"
	StateExtracting     State = "EXTRACTING"
	StateNormalizing    State = "NORMALIZING"
	StateValidating     State = "VALIDATING"
	StateAssembled      State = "ASSEMBLED"
	StateFailedFallback State = "FAILED_FALLBACK"
)

// Result wraps every assembler output. Value is always populated.
type Result[T any] struct {
	Value   T       `json:"value"`
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason,omitempty"`
	State   State   `json:"state"`
	// FallbackFields lists canonical fields filled from the fallback while
	// the rest came from the model (field-level merge only).
	FallbackFields []string `json:"fallback_fields,omitempty"`
}
