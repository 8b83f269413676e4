package history_test

import (
	"errors"
	"testing"

	"github.com/kiru56776/AI-math/history"
	"github.com/kiru56776/AI-math/llm"
)

func openBackends(t *testing.T) map[string]history.Store {
	t.Helper()
	sqliteStore, err := history.OpenSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	boltStore, err := history.OpenBoltStore(t.TempDir())
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() {
		sqliteStore.Close()
		boltStore.Close()
	})
	return map[string]history.Store{"sqlite": sqliteStore, "bolt": boltStore}
}

func TestStore_LoadUnknownOwnerIsEmpty(t *testing.T) {
	for name, store := range openBackends(t) {
		turns, err := store.Load("nobody")
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", name, err)
		}
		if len(turns) != 0 {
			t.Fatalf("%s: expected empty history, got %d turns", name, len(turns))
		}
	}
}

func TestStore_RoundTripAndReplace(t *testing.T) {
	first := []llm.Turn{
		llm.UserTurn(llm.TextPart("2+2?")),
		llm.ModelTurn("4 😎"),
	}
	second := append(first,
		llm.UserTurn(llm.TextPart("and 3+3?")),
		llm.ModelTurn("6 🔥"),
	)

	for name, store := range openBackends(t) {
		if err := store.Save("U1", first); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := store.Load("U1")
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if len(got) != 2 || got[0].Parts[0].Text != "2+2?" || got[1].Parts[0].Text != "4 😎" {
			t.Fatalf("%s: round trip mismatch: %+v", name, got)
		}

		// Save replaces the whole document, never merges partially.
		if err := store.Save("U1", second); err != nil {
			t.Fatalf("%s: replace: %v", name, err)
		}
		got, err = store.Load("U1")
		if err != nil {
			t.Fatalf("%s: reload: %v", name, err)
		}
		if len(got) != 4 {
			t.Fatalf("%s: expected 4 turns after replace, got %d", name, len(got))
		}
		if got[0].Role != llm.RoleUser || got[3].Role != llm.RoleModel {
			t.Fatalf("%s: order not preserved: %+v", name, got)
		}
	}
}

func TestStore_OwnersAreIsolated(t *testing.T) {
	for name, store := range openBackends(t) {
		if err := store.Save("U1", []llm.Turn{llm.UserTurn(llm.TextPart("mine"))}); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		turns, err := store.Load("U2")
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if len(turns) != 0 {
			t.Fatalf("%s: owner isolation broken: %+v", name, turns)
		}
	}
}

// failingStore simulates a broken backend.
type failingStore struct {
	loadErr error
	saveErr error
	saved   [][]llm.Turn
}

func (f *failingStore) Load(owner string) ([]llm.Turn, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if len(f.saved) == 0 {
		return nil, nil
	}
	return f.saved[len(f.saved)-1], nil
}

func (f *failingStore) Save(owner string, turns []llm.Turn) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, turns)
	return nil
}

func (f *failingStore) Close() error { return nil }

func TestAdapter_LoadDegradesToEmptyOnStoreError(t *testing.T) {
	adapter := history.NewAdapter(&failingStore{loadErr: errors.New("disk on fire")})
	turns := adapter.Load("U1")
	if len(turns) != 0 {
		t.Fatalf("expected degraded empty history, got %+v", turns)
	}
}

func TestAdapter_AppendSoftFails(t *testing.T) {
	adapter := history.NewAdapter(&failingStore{saveErr: errors.New("disk full")})
	ok := adapter.Append("U1", llm.UserTurn(llm.TextPart("hi")), llm.ModelTurn("hello"))
	if ok {
		t.Fatal("expected soft failure")
	}
}

func TestAdapter_AppendMergesInOrder(t *testing.T) {
	fs := &failingStore{}
	adapter := history.NewAdapter(fs)

	if !adapter.Append("U1", llm.UserTurn(llm.TextPart("a")), llm.ModelTurn("b")) {
		t.Fatal("first append failed")
	}
	if !adapter.Append("U1", llm.UserTurn(llm.TextPart("c")), llm.ModelTurn("d")) {
		t.Fatal("second append failed")
	}

	final := fs.saved[len(fs.saved)-1]
	if len(final) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(final))
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if final[i].Parts[0].Text != want {
			t.Fatalf("turn %d mismatch: got %q want %q", i, final[i].Parts[0].Text, want)
		}
	}
}
