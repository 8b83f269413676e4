package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/kiru56776/AI-math/llm"
)

// SQLiteStore keeps one JSON turn document per owner in a single table.
// INSERT OR REPLACE gives the whole-document replace the adapter contract
// requires, and the single write connection serializes writers so a stored
// document is never interleaved.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the conversation database in dataDir.
func OpenSQLiteStore(dataDir string) (*SQLiteStore, error) {
	dbPath := filepath.Join(dataDir, "conversations.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, err = db.Exec(`
		PRAGMA journal_mode=WAL;
		CREATE TABLE IF NOT EXISTS conversations (
			owner TEXT PRIMARY KEY,
			turns TEXT NOT NULL DEFAULT '[]'
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(owner string) ([]llm.Turn, error) {
	var doc string
	err := s.db.QueryRow(`SELECT turns FROM conversations WHERE owner = ?`, owner).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []llm.Turn
	if err := json.Unmarshal([]byte(doc), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (s *SQLiteStore) Save(owner string, turns []llm.Turn) error {
	if turns == nil {
		turns = []llm.Turn{}
	}
	doc, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO conversations (owner, turns) VALUES (?, ?)`,
		owner, string(doc))
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
