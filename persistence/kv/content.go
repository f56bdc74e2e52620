package kv

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"github.com/flarexio/cms/content"
)

type contentRepository struct {
	db *badger.DB
}

func (repo *contentRepository) StoreHero(h *content.Hero) error {
	return set(repo.db, heroKey, h)
}

func (repo *contentRepository) StoreContact(c *content.Contact) error {
	return set(repo.db, contactKey, c)
}

func (repo *contentRepository) StoreSettings(s *content.Settings) error {
	return set(repo.db, settingsKey, s)
}

func (repo *contentRepository) StoreItems(items ...content.Item) error {
	return repo.db.Update(func(txn *badger.Txn) error {
		for _, item := range items {
			data, err := json.Marshal(item)
			if err != nil {
				return err
			}

			key := itemKey(item.Kind(), item.Header().ID)
			if err := txn.Set(key, data); err != nil {
				return err
			}
		}

		return nil
	})
}

func (repo *contentRepository) DeleteItem(kind content.Kind, id content.ItemID) error {
	key := itemKey(kind, id)

	return repo.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if isNotFound(err) {
				return content.ErrItemNotFound
			}

			return err
		}

		return txn.Delete(key)
	})
}

func (repo *contentRepository) Hero() (*content.Hero, error) {
	var h *content.Hero
	if err := get(repo.db, heroKey, &h); err != nil {
		if isNotFound(err) {
			return content.DefaultHero(), nil
		}

		return nil, err
	}

	return h, nil
}

func (repo *contentRepository) Contact() (*content.Contact, error) {
	var c *content.Contact
	if err := get(repo.db, contactKey, &c); err != nil {
		if isNotFound(err) {
			return content.DefaultContact(), nil
		}

		return nil, err
	}

	return c, nil
}

func (repo *contentRepository) Settings() (*content.Settings, error) {
	var s *content.Settings
	if err := get(repo.db, settingsKey, &s); err != nil {
		if isNotFound(err) {
			return content.DefaultSettings(), nil
		}

		return nil, err
	}

	return s, nil
}

func (repo *contentRepository) ListItems(kind content.Kind) ([]content.Item, error) {
	items := make([]content.Item, 0)

	err := scan(repo.db, itemPrefix(kind), func(key []byte, val []byte) error {
		item, err := content.NewItem(kind)
		if err != nil {
			return err
		}

		if err := json.Unmarshal(val, item); err != nil {
			return err
		}

		items = append(items, item)
		return nil
	})

	if err != nil {
		return nil, err
	}

	content.Sort(items)
	return items, nil
}

func (repo *contentRepository) FindItem(kind content.Kind, id content.ItemID) (content.Item, error) {
	item, err := content.NewItem(kind)
	if err != nil {
		return nil, err
	}

	if err := get(repo.db, itemKey(kind, id), item); err != nil {
		if isNotFound(err) {
			return nil, content.ErrItemNotFound
		}

		return nil, err
	}

	return item, nil
}

func (repo *contentRepository) Close() error {
	return nil
}
