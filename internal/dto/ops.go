package dto

// ReadyResponse reports dependency health for the readiness check.
type ReadyResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
	Metrics      interface{}       `json:"metrics,omitempty"`
}
