package kv

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/flarexio/cms/translation"
)

type translationRepository struct {
	db *badger.DB
}

func (repo *translationRepository) Store(t *translation.Translation) error {
	return set(repo.db, translationKey(t.Locale, t.Key), t)
}

func (repo *translationRepository) StoreBatch(ts []*translation.Translation) error {
	wb := repo.db.NewWriteBatch()
	defer wb.Cancel()

	for _, t := range ts {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}

		if err := wb.Set(translationKey(t.Locale, t.Key), data); err != nil {
			return err
		}
	}

	return wb.Flush()
}

func (repo *translationRepository) Delete(locale string, key string) error {
	k := translationKey(locale, key)

	return repo.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(k); err != nil {
			if isNotFound(err) {
				return translation.ErrTranslationNotFound
			}

			return err
		}

		return txn.Delete(k)
	})
}

func (repo *translationRepository) DeleteKeys(keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	targets := make(map[string]bool, len(keys))
	for _, k := range keys {
		targets[k] = true
	}

	matched := make([][]byte, 0)
	err := scan(repo.db, translationsPrefix, func(key []byte, val []byte) error {
		// translations/<locale>/<key>
		rest := bytes.TrimPrefix(key, translationsPrefix)

		i := bytes.IndexByte(rest, '/')
		if i < 0 {
			return nil
		}

		if targets[string(rest[i+1:])] {
			matched = append(matched, key)
		}

		return nil
	})

	if err != nil {
		return err
	}

	wb := repo.db.NewWriteBatch()
	defer wb.Cancel()

	for _, k := range matched {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}

	return wb.Flush()
}

func (repo *translationRepository) Find(locale string, key string) (*translation.Translation, error) {
	var t *translation.Translation
	if err := get(repo.db, translationKey(locale, key), &t); err != nil {
		if isNotFound(err) {
			return nil, translation.ErrTranslationNotFound
		}

		return nil, err
	}

	return t, nil
}

func (repo *translationRepository) list(prefix []byte) ([]*translation.Translation, error) {
	results := make([]*translation.Translation, 0)

	err := scan(repo.db, prefix, func(key []byte, val []byte) error {
		var t *translation.Translation
		if err := json.Unmarshal(val, &t); err != nil {
			return err
		}

		results = append(results, t)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (repo *translationRepository) ListByLocale(locale string) ([]*translation.Translation, error) {
	return repo.list(localePrefix(locale))
}

func (repo *translationRepository) ListAll() ([]*translation.Translation, error) {
	return repo.list(translationsPrefix)
}

func (repo *translationRepository) Locales() ([]string, error) {
	all, err := repo.ListAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	locales := make([]string, 0)
	for _, t := range all {
		if seen[t.Locale] {
			continue
		}

		seen[t.Locale] = true
		locales = append(locales, t.Locale)
	}

	sort.Strings(locales)
	return locales, nil
}

func (repo *translationRepository) Close() error {
	return nil
}
