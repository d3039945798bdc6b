package types

// ClassifyRequest represents a classification request payload.
type ClassifyRequest struct {
	// Adapter id the caller expects to be loaded. Requests against any other
	// adapter fail with 409 rather than being silently served.
	// example: acme-assistant
	AdapterID string `json:"adapter_id" example:"acme-assistant"`
	// Required utterance text to classify.
	// example: call john tomorrow at noon
	Text string `json:"text" example:"call john tomorrow at noon"`
}

// ClassifyResult is returned by POST /classify.
type ClassifyResult struct {
	// Winning intent label from the adapter's intent list.
	// example: create_reminder
	Intent string `json:"intent" example:"create_reminder"`
	// Softmax probability of the winning intent, in [0, 1].
	// example: 0.93
	Confidence float64 `json:"confidence" example:"0.93"`
	// Extracted slot values keyed by slot type, in order of appearance.
	Slots map[string][]string `json:"slots"`
	// Raw per-token BIO labels, one per sequence position. Returned for
	// caller-side debugging and telemetry only.
	TokenLabels []string `json:"token_labels"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engine lifecycle state (not_initialized, downloading, patching, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Base model download progress in [0, 1]; meaningful while downloading.
	// example: 0.42
	Progress float64 `json:"progress,omitempty" example:"0.42"`
	// Human-readable progress message while downloading.
	Message string `json:"message,omitempty"`
	// Last error observed by the engine (if any).
	Error string `json:"error,omitempty"`
	// Size of the resident base model buffer in bytes (0 before initialize).
	// example: 287309824
	BaseModelBytes int64 `json:"base_model_bytes" example:"287309824"`
	// Currently loaded adapter, if one is applied.
	Adapter *AdapterInfo `json:"adapter,omitempty"`
	// Uptime of the engine in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Total number of successful adapter applies.
	// example: 12
	AppliesTotal uint64 `json:"applies_total" example:"12"`
	// Total number of patch reverts (removes, swaps, and rollbacks).
	// example: 11
	RevertsTotal uint64 `json:"reverts_total" example:"11"`
	// Total number of classifications served.
	// example: 5043
	ClassificationsTotal uint64 `json:"classifications_total" example:"5043"`
}
