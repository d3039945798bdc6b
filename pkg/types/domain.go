package types

// AdapterInfo is a read-only projection of the currently loaded adapter.
type AdapterInfo struct {
	// Stable adapter identifier supplied by the caller.
	// example: acme-assistant
	ID string `json:"id" example:"acme-assistant"`
	// Adapter artifact version.
	// example: 2024-11-03
	Version string `json:"version" example:"2024-11-03"`
	// Ordered intent labels the adapter can produce.
	Intents []string `json:"intents"`
	// Slot types extractable by the adapter (BIO prefixes stripped).
	SlotTypes []string `json:"slot_types"`
}
