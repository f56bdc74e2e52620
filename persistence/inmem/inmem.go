package inmem

import (
	"sort"
	"sync"

	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

func NewDatabase() *Database {
	return &Database{
		contents: &contentRepository{
			items: make(map[content.Kind]map[content.ItemID]content.Item),
		},
		translations: &translationRepository{
			entries: make(map[string]map[string]translation.Translation),
		},
	}
}

type Database struct {
	contents     *contentRepository
	translations *translationRepository
}

func (db *Database) Contents() content.Repository {
	return db.contents
}

func (db *Database) Translations() translation.Repository {
	return db.translations
}

func (db *Database) Close() error {
	return nil
}

type contentRepository struct {
	hero     *content.Hero
	contact  *content.Contact
	settings *content.Settings
	items    map[content.Kind]map[content.ItemID]content.Item
	sync.RWMutex
}

func (repo *contentRepository) StoreHero(h *content.Hero) error {
	repo.Lock()
	defer repo.Unlock()

	cp := *h
	repo.hero = &cp
	return nil
}

func (repo *contentRepository) StoreContact(c *content.Contact) error {
	repo.Lock()
	defer repo.Unlock()

	cp := *c
	repo.contact = &cp
	return nil
}

func (repo *contentRepository) StoreSettings(s *content.Settings) error {
	repo.Lock()
	defer repo.Unlock()

	cp := *s
	cp.Locales = append([]string(nil), s.Locales...)
	repo.settings = &cp
	return nil
}

func (repo *contentRepository) StoreItems(items ...content.Item) error {
	copies := make([]content.Item, 0, len(items))
	for _, item := range items {
		cp, err := content.Copy(item)
		if err != nil {
			return err
		}

		copies = append(copies, cp)
	}

	repo.Lock()
	defer repo.Unlock()

	for _, item := range copies {
		m, ok := repo.items[item.Kind()]
		if !ok {
			m = make(map[content.ItemID]content.Item)
			repo.items[item.Kind()] = m
		}

		m[item.Header().ID] = item
	}

	return nil
}

func (repo *contentRepository) DeleteItem(kind content.Kind, id content.ItemID) error {
	repo.Lock()
	defer repo.Unlock()

	m, ok := repo.items[kind]
	if !ok {
		return content.ErrItemNotFound
	}

	if _, ok := m[id]; !ok {
		return content.ErrItemNotFound
	}

	delete(m, id)
	return nil
}

func (repo *contentRepository) Hero() (*content.Hero, error) {
	repo.RLock()
	defer repo.RUnlock()

	if repo.hero == nil {
		return content.DefaultHero(), nil
	}

	cp := *repo.hero
	return &cp, nil
}

func (repo *contentRepository) Contact() (*content.Contact, error) {
	repo.RLock()
	defer repo.RUnlock()

	if repo.contact == nil {
		return content.DefaultContact(), nil
	}

	cp := *repo.contact
	return &cp, nil
}

func (repo *contentRepository) Settings() (*content.Settings, error) {
	repo.RLock()
	defer repo.RUnlock()

	if repo.settings == nil {
		return content.DefaultSettings(), nil
	}

	cp := *repo.settings
	cp.Locales = append([]string(nil), repo.settings.Locales...)
	return &cp, nil
}

func (repo *contentRepository) ListItems(kind content.Kind) ([]content.Item, error) {
	repo.RLock()
	defer repo.RUnlock()

	items := make([]content.Item, 0, len(repo.items[kind]))
	for _, item := range repo.items[kind] {
		cp, err := content.Copy(item)
		if err != nil {
			return nil, err
		}

		items = append(items, cp)
	}

	content.Sort(items)
	return items, nil
}

func (repo *contentRepository) FindItem(kind content.Kind, id content.ItemID) (content.Item, error) {
	repo.RLock()
	defer repo.RUnlock()

	item, ok := repo.items[kind][id]
	if !ok {
		return nil, content.ErrItemNotFound
	}

	return content.Copy(item)
}

func (repo *contentRepository) Close() error {
	return nil
}

type translationRepository struct {
	entries map[string]map[string]translation.Translation // locale -> key
	sync.RWMutex
}

func (repo *translationRepository) Store(t *translation.Translation) error {
	return repo.StoreBatch([]*translation.Translation{t})
}

func (repo *translationRepository) StoreBatch(ts []*translation.Translation) error {
	repo.Lock()
	defer repo.Unlock()

	for _, t := range ts {
		m, ok := repo.entries[t.Locale]
		if !ok {
			m = make(map[string]translation.Translation)
			repo.entries[t.Locale] = m
		}

		m[t.Key] = *t
	}

	return nil
}

func (repo *translationRepository) Delete(locale string, key string) error {
	repo.Lock()
	defer repo.Unlock()

	if _, ok := repo.entries[locale][key]; !ok {
		return translation.ErrTranslationNotFound
	}

	delete(repo.entries[locale], key)
	return nil
}

func (repo *translationRepository) DeleteKeys(keys []string) error {
	repo.Lock()
	defer repo.Unlock()

	for _, m := range repo.entries {
		for _, key := range keys {
			delete(m, key)
		}
	}

	return nil
}

func (repo *translationRepository) Find(locale string, key string) (*translation.Translation, error) {
	repo.RLock()
	defer repo.RUnlock()

	t, ok := repo.entries[locale][key]
	if !ok {
		return nil, translation.ErrTranslationNotFound
	}

	return &t, nil
}

func (repo *translationRepository) ListByLocale(locale string) ([]*translation.Translation, error) {
	repo.RLock()
	defer repo.RUnlock()

	results := make([]*translation.Translation, 0, len(repo.entries[locale]))
	for _, t := range repo.entries[locale] {
		t := t
		results = append(results, &t)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Key < results[j].Key
	})

	return results, nil
}

func (repo *translationRepository) ListAll() ([]*translation.Translation, error) {
	repo.RLock()
	locales := make([]string, 0, len(repo.entries))
	for l := range repo.entries {
		locales = append(locales, l)
	}
	repo.RUnlock()

	sort.Strings(locales)

	results := make([]*translation.Translation, 0)
	for _, l := range locales {
		ts, err := repo.ListByLocale(l)
		if err != nil {
			return nil, err
		}

		results = append(results, ts...)
	}

	return results, nil
}

func (repo *translationRepository) Locales() ([]string, error) {
	repo.RLock()
	defer repo.RUnlock()

	locales := make([]string, 0, len(repo.entries))
	for l, m := range repo.entries {
		if len(m) > 0 {
			locales = append(locales, l)
		}
	}

	sort.Strings(locales)
	return locales, nil
}

func (repo *translationRepository) Close() error {
	return nil
}
