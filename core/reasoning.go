package core

// ReasoningRequest captures one reasoning problem posed to an agent.
type ReasoningRequest struct {
	Problem  string   `json:"problem"`
	Context  string   `json:"context,omitempty"`
	Evidence []string `json:"evidence,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
}

// ReasoningOutcome tags how a reasoning response was produced.
type ReasoningOutcome string

const (
	// OutcomeStructured marks a response parsed from well-formed JSON model
	// output.
	OutcomeStructured ReasoningOutcome = "structured"
	// OutcomeDegraded marks the graceful fallback for malformed model
	// output: the raw text becomes the conclusion at fixed 0.5 confidence.
	// Degradation is not an error condition.
	OutcomeDegraded ReasoningOutcome = "degraded"
)

// ReasoningResponse is the result of one reasoning call. Confidence is always
// clamped to [0,1]; list fields are never nil.
type ReasoningResponse struct {
	Outcome      ReasoningOutcome `json:"outcome"`
	Conclusion   string           `json:"conclusion"`
	Confidence   float64          `json:"confidence"`
	Steps        []string         `json:"reasoning_steps"`
	Evidence     []string         `json:"supporting_evidence"`
	Alternatives []string         `json:"alternatives"`
}

// ToMetadata converts the response into a workflow step output map.
func (r *ReasoningResponse) ToMetadata() Metadata {
	return Metadata{
		"outcome":            String(string(r.Outcome)),
		"conclusion":         String(r.Conclusion),
		"confidence":         Number(r.Confidence),
		"reasoningSteps":     StringList(r.Steps),
		"supportingEvidence": StringList(r.Evidence),
		"alternatives":       StringList(r.Alternatives),
	}
}
