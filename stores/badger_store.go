package stores

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/zhCaiCode/offsync"
)

// BadgerStore implements offsync.Store on an embedded BadgerDB, the
// closest server-side analog of a browser object store: transactional,
// durable, no external process. Records live under one key prefix per
// namespace with ids from a badger sequence, so key order is insertion
// order.
type BadgerStore struct {
	db *badger.DB

	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

// badgerRow is the persisted form of a record.
type badgerRow struct {
	Priority     int    `json:"priority"`
	AttemptCount int    `json:"attempt_count"`
	Sealed       []byte `json:"sealed"`
}

const seqBandwidth = 64

// OpenBadgerStore opens (or creates) a BadgerDB at path. An empty path
// opens an in-memory database, which is what the tests use.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerStore(db), nil
}

// NewBadgerStore wraps an already opened BadgerDB.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{
		db:   db,
		seqs: make(map[string]*badger.Sequence),
	}
}

// Open ensures an id sequence per namespace. Badger namespaces are pure
// key prefixes, so there is no schema to create beyond that.
func (s *BadgerStore) Open(_ context.Context, namespaces []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ns := range namespaces {
		if _, ok := s.seqs[ns]; ok {
			continue
		}
		seq, err := s.db.GetSequence([]byte("seq/"+ns), seqBandwidth)
		if err != nil {
			return err
		}
		s.seqs[ns] = seq
	}
	return nil
}

// Add persists the record under the next sequence id and returns it.
func (s *BadgerStore) Add(_ context.Context, namespace string, rec offsync.Record) (int64, error) {
	s.mu.Lock()
	seq, ok := s.seqs[namespace]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("namespace %q not opened", namespace)
	}

	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// Sequences start at zero; ids start at one so zero keeps meaning
	// "not persisted yet".
	id := int64(next) + 1

	val, err := json.Marshal(badgerRow{
		Priority:     rec.Priority,
		AttemptCount: rec.AttemptCount,
		Sealed:       rec.Sealed,
	})
	if err != nil {
		return 0, err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(namespace, id), val)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ScanAll returns every pending record in key (insertion) order.
func (s *BadgerStore) ScanAll(_ context.Context, namespace string) ([]offsync.Record, error) {
	var recs []offsync.Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = namespacePrefix(namespace)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id, err := parseRecordKey(namespace, item.Key())
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var row badgerRow
			if err := json.Unmarshal(val, &row); err != nil {
				return err
			}
			recs = append(recs, offsync.Record{
				ID:           id,
				Priority:     row.Priority,
				AttemptCount: row.AttemptCount,
				Sealed:       row.Sealed,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Delete removes the record. Deleting a missing key succeeds.
func (s *BadgerStore) Delete(_ context.Context, namespace string, id int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(namespace, id))
	})
}

// Close releases the id sequences and closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	for _, seq := range s.seqs {
		_ = seq.Release()
	}
	s.seqs = make(map[string]*badger.Sequence)
	s.mu.Unlock()
	return s.db.Close()
}

func namespacePrefix(namespace string) []byte {
	return []byte("rec/" + namespace + "/")
}

func recordKey(namespace string, id int64) []byte {
	key := namespacePrefix(namespace)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return append(key, buf[:]...)
}

func parseRecordKey(namespace string, key []byte) (int64, error) {
	prefix := namespacePrefix(namespace)
	if len(key) != len(prefix)+8 {
		return 0, fmt.Errorf("malformed record key %q", key)
	}
	return int64(binary.BigEndian.Uint64(key[len(prefix):])), nil
}
