package kv

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

var (
	heroKey     = []byte("content/hero")
	contactKey  = []byte("content/contact")
	settingsKey = []byte("content/settings")
)

func itemPrefix(kind content.Kind) []byte {
	return []byte("items/" + kind.String() + "/")
}

func itemKey(kind content.Kind, id content.ItemID) []byte {
	return append(itemPrefix(kind), id.String()...)
}

var translationsPrefix = []byte("translations/")

func localePrefix(locale string) []byte {
	return []byte("translations/" + locale + "/")
}

func translationKey(locale string, key string) []byte {
	return append(localePrefix(locale), key...)
}

func NewDatabase(cfg conf.Persistence) (*Database, error) {
	path := cfg.Host + "/" + cfg.Name
	if cfg.InMem {
		path = ""
	}

	opts := badger.DefaultOptions(path).
		WithInMemory(cfg.InMem).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Database{db}, nil
}

type Database struct {
	db *badger.DB
}

func (d *Database) Contents() content.Repository {
	return &contentRepository{d.db}
}

func (d *Database) Translations() translation.Repository {
	return &translationRepository{d.db}
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Truncate removes every key, used by tests.
func (d *Database) Truncate() error {
	return d.db.DropAll()
}

func get(db *badger.DB, key []byte, v any) error {
	return db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func set(db *badger.DB, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// scan calls fn with the value of every key under prefix, in key order.
func scan(db *badger.DB, prefix []byte, fn func(key []byte, val []byte) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			if err := item.Value(func(val []byte) error {
				return fn(key, val)
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}
