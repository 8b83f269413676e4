package history

import (
	"fmt"

	"github.com/kiru56776/AI-math/llm"
	"github.com/kiru56776/AI-math/misc"
)

// Store persists one ordered turn document per owner. Save is a
// whole-document replace: a write either lands the full sequence or nothing,
// so the stored document can be lost on crash but never half-written.
type Store interface {
	Load(owner string) ([]llm.Turn, error)
	Save(owner string, turns []llm.Turn) error
	Close() error
}

// Open returns the configured Store backend rooted in the data directory.
func Open() (Store, error) {
	dataDir := misc.GetDataDir()
	if err := misc.CreateDirIfNotExists(dataDir); err != nil {
		return nil, err
	}
	switch backend := misc.GetHistoryBackend(); backend {
	case "sqlite":
		return OpenSQLiteStore(dataDir)
	case "bolt":
		return OpenBoltStore(dataDir)
	default:
		return nil, fmt.Errorf("unknown HISTORY_BACKEND %q (want sqlite or bolt)", backend)
	}
}

// Adapter wraps a Store with best-effort, at-most-once semantics:
// reads degrade to "no history" and writes soft-fail, so persistence trouble
// never blocks delivering the answer to the user.
type Adapter struct {
	store        Store
	eventHandler func(string, string, int)
}

func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// SetEventHandler mirrors adapter log lines into the given handler.
func (a *Adapter) SetEventHandler(f func(string, string, int)) {
	a.eventHandler = f
}

// Load returns the owner's turn sequence. Unknown owners and backing-store
// errors both yield an empty sequence; errors are logged, never surfaced.
func (a *Adapter) Load(owner string) []llm.Turn {
	turns, err := a.store.Load(owner)
	if err != nil {
		misc.Warn("history", fmt.Sprintf("load failed for %s, degrading to empty history: %v", owner, err), a.eventHandler)
		return nil
	}
	return turns
}

// Append adds newTurns to the owner's document via read-modify-write and a
// whole-document replace. Returns false on soft failure: the reply already
// computed for the user must still be delivered.
func (a *Adapter) Append(owner string, newTurns ...llm.Turn) bool {
	existing := a.Load(owner)
	merged := make([]llm.Turn, 0, len(existing)+len(newTurns))
	merged = append(merged, existing...)
	merged = append(merged, newTurns...)
	if err := a.store.Save(owner, merged); err != nil {
		misc.Warn("history", fmt.Sprintf("append failed for %s, skipping persistence: %v", owner, err), a.eventHandler)
		return false
	}
	return true
}
