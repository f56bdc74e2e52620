package cms

import (
	"context"
	"encoding/json"

	"github.com/patrickmn/go-cache"

	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/locale"
	"github.com/flarexio/cms/translation"
)

// CachingMiddleware keeps rendered pages per resolved locale. Any mutation
// going through the middleware flushes the cache; changes made by other
// nodes arrive as events and are flushed by the caller.
func CachingMiddleware(store *cache.Cache) ServiceMiddleware {
	return func(next Service) Service {
		return &cachingMiddleware{store, next}
	}
}

type cachingMiddleware struct {
	store *cache.Cache
	next  Service
}

func pageKey(locale string) string {
	return "page:" + locale
}

const matcherKey = "matcher"

// Page caches one page per resolved locale. The matcher of the last rendered
// page resolves requests, so arbitrary lang values never grow the cache.
func (mw *cachingMiddleware) Page(requested string) (*LocalizedPage, error) {
	if m, ok := mw.store.Get(matcherKey); ok {
		resolved, matched := m.(*locale.Matcher).Match(requested)
		if data, ok := mw.store.Get(pageKey(resolved)); ok {
			// the page holds pointers, callers get their own copy
			var page *LocalizedPage
			if err := json.Unmarshal(data.([]byte), &page); err == nil {
				page.Meta.RequestedLocale = requested
				page.Meta.FallbackUsed = !matched
				return page, nil
			}
		}
	}

	page, err := mw.next.Page(requested)
	if err != nil {
		return nil, err
	}

	meta := page.Meta
	if data, err := json.Marshal(page); err == nil {
		mw.store.SetDefault(pageKey(meta.ResolvedLocale), data)
		mw.store.SetDefault(matcherKey, locale.NewMatcher(meta.AvailableLocales, meta.DefaultLocale))
	}

	return page, nil
}

func (mw *cachingMiddleware) flush(err error) {
	if err == nil {
		mw.store.Flush()
	}
}

func (mw *cachingMiddleware) Hero() (*content.Hero, error) {
	return mw.next.Hero()
}

func (mw *cachingMiddleware) UpdateHero(h *content.Hero) (*content.Hero, error) {
	hero, err := mw.next.UpdateHero(h)
	mw.flush(err)
	return hero, err
}

func (mw *cachingMiddleware) Contact() (*content.Contact, error) {
	return mw.next.Contact()
}

func (mw *cachingMiddleware) UpdateContact(c *content.Contact) (*content.Contact, error) {
	contact, err := mw.next.UpdateContact(c)
	mw.flush(err)
	return contact, err
}

func (mw *cachingMiddleware) Settings() (*content.Settings, error) {
	return mw.next.Settings()
}

func (mw *cachingMiddleware) UpdateSettings(s *content.Settings) (*content.Settings, error) {
	settings, err := mw.next.UpdateSettings(s)
	mw.flush(err)
	return settings, err
}

func (mw *cachingMiddleware) Items(kind content.Kind) ([]content.Item, error) {
	return mw.next.Items(kind)
}

func (mw *cachingMiddleware) Item(kind content.Kind, id content.ItemID) (content.Item, error) {
	return mw.next.Item(kind, id)
}

func (mw *cachingMiddleware) CreateItem(item content.Item) (content.Item, error) {
	created, err := mw.next.CreateItem(item)
	mw.flush(err)
	return created, err
}

func (mw *cachingMiddleware) UpdateItem(item content.Item) (content.Item, error) {
	updated, err := mw.next.UpdateItem(item)
	mw.flush(err)
	return updated, err
}

func (mw *cachingMiddleware) DeleteItem(kind content.Kind, id content.ItemID) error {
	err := mw.next.DeleteItem(kind, id)
	mw.flush(err)
	return err
}

func (mw *cachingMiddleware) ReorderItems(kind content.Kind, from int, to int) ([]content.Item, error) {
	items, err := mw.next.ReorderItems(kind, from, to)
	mw.flush(err)
	return items, err
}

func (mw *cachingMiddleware) ArrangeItems(kind content.Kind, ids []content.ItemID) ([]content.Item, error) {
	items, err := mw.next.ArrangeItems(kind, ids)
	mw.flush(err)
	return items, err
}

func (mw *cachingMiddleware) Translations(locale string) ([]*translation.Translation, error) {
	return mw.next.Translations(locale)
}

func (mw *cachingMiddleware) PutTranslation(locale string, key string, value string) (*translation.Translation, error) {
	t, err := mw.next.PutTranslation(locale, key, value)
	mw.flush(err)
	return t, err
}

func (mw *cachingMiddleware) DeleteTranslation(locale string, key string) error {
	err := mw.next.DeleteTranslation(locale, key)
	mw.flush(err)
	return err
}

func (mw *cachingMiddleware) ImportTranslations(locale string, doc map[string]any) (int, error) {
	n, err := mw.next.ImportTranslations(locale, doc)
	mw.flush(err)
	return n, err
}

func (mw *cachingMiddleware) ExportTranslations(locale string) (map[string]any, error) {
	return mw.next.ExportTranslations(locale)
}

func (mw *cachingMiddleware) Coverage() ([]*translation.Coverage, error) {
	return mw.next.Coverage()
}

func (mw *cachingMiddleware) SyncTranslations(ctx context.Context, req SyncRequest) (*translation.SyncReport, error) {
	report, err := mw.next.SyncTranslations(ctx, req)
	mw.flush(err)
	return report, err
}

func (mw *cachingMiddleware) SignIn(ctx context.Context, credential string) (*Admin, error) {
	return mw.next.SignIn(ctx, credential)
}
