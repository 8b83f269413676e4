package history

import (
	"encoding/json"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kiru56776/AI-math/llm"
)

var conversationsBucket = []byte("conversations")

// BoltStore keeps one JSON turn document per owner in a bbolt bucket.
// Put inside a single Update transaction is the whole-document replace.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the conversation database in dataDir.
func OpenBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "conversations.bolt")
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(conversationsBucket)
		return e
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(owner string) ([]llm.Turn, error) {
	var turns []llm.Turn
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationsBucket)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(owner))
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, &turns)
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

func (s *BoltStore) Save(owner string, turns []llm.Turn) error {
	if turns == nil {
		turns = []llm.Turn{}
	}
	doc, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, e := tx.CreateBucketIfNotExists(conversationsBucket)
		if e != nil {
			return e
		}
		return b.Put([]byte(owner), doc)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
