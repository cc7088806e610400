package repo

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/picn-go/icnfwd/defn"
)

// BadgerStore is the on-disk Store engine, adapted from the teacher's
// std/object/storage/store_badger.go. Unlike the teacher's version this
// one has no notion of prefix lookup or transactions: the repository
// only ever needs to seed and pin exact-named Content, which is all the
// Forwarder's Content Store itself understands.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database rooted at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Get(name defn.Name) (wire []byte, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		wire, err = item.ValueCopy(nil)
		return err
	})
	return
}

func (s *BadgerStore) Put(name defn.Name, wire []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(name), wire)
	})
}

func (s *BadgerStore) Remove(name defn.Name) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(name))
	})
}

func (s *BadgerStore) Iter(f func(name defn.Name, wire []byte)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			wire, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			name := defn.NameFromString(string(item.Key()))
			f(name, wire)
		}
		return nil
	})
}

func (s *BadgerStore) key(name defn.Name) []byte {
	return []byte(name.String())
}
