package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"adapterd/internal/basemodel"
	"adapterd/internal/patch"
	"adapterd/pkg/types"
)

// Engine owns the resident base model buffer and the currently applied
// adapter. One engine instance serves one base model for the process
// lifetime.
type Engine struct {
	// mu is the exclusivity lock. Initialize, ApplyAdapter, RemoveAdapter and
	// Classify hold it for their full duration, so an adapter swap and a
	// classification never interleave.
	mu      sync.Mutex
	buffer  *patch.WeightBuffer
	revert  *patch.Set
	adapter *LoadedAdapter
	session Session

	provider basemodel.Provider
	sessions SessionFactory
	pub      EventPublisher
	log      zerolog.Logger

	// statusMu guards the observable projection so Status and CurrentAdapter
	// stay readable while a download or patch is in flight.
	statusMu  sync.RWMutex
	state     State
	progress  float64
	message   string
	errMsg    string
	info      *types.AdapterInfo
	baseBytes int64

	applies         uint64
	reverts         uint64
	classifications uint64

	startTime time.Time
}

// New creates an engine over the given base model provider with default
// collaborators. Call Initialize before any other operation.
func New(provider basemodel.Provider) *Engine {
	return NewWithConfig(Config{Provider: provider})
}
