package Relay

import (
	"sync"

	"github.com/kiru56776/AI-math/llm"
)

// Mode is the per-owner multi-step interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingPrompt
)

type sessionState struct {
	mode    Mode
	purpose llm.Purpose
}

// SessionTable is a strictly per-owner state machine kept in an owner-keyed
// map. States are created lazily on first contact and are transient: they do
// not survive process restart. Concurrent owners never interact.
type SessionTable struct {
	mu     sync.Mutex
	states map[string]sessionState
}

func NewSessionTable() *SessionTable {
	return &SessionTable{states: make(map[string]sessionState)}
}

// Await moves the owner to AwaitingPrompt for the given purpose.
func (t *SessionTable) Await(owner string, purpose llm.Purpose) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[owner] = sessionState{mode: ModeAwaitingPrompt, purpose: purpose}
}

// Consume returns the awaited purpose, if any, and always resets the owner to
// Idle. The reset happens before the relay runs, so success and failure both
// clear the state: a stuck session is never possible.
func (t *SessionTable) Consume(owner string) (llm.Purpose, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[owner]
	if !ok || st.mode != ModeAwaitingPrompt {
		return llm.PurposeChat, false
	}
	delete(t.states, owner)
	return st.purpose, true
}

// Peek reports the owner's current mode without changing it.
func (t *SessionTable) Peek(owner string) Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[owner].mode
}
