package cms

import (
	"context"

	"go.uber.org/zap"

	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			log.With(
				zap.String("service", "cms"),
				zap.String("middleware", "logging"),
			),
			next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Page(locale string) (*LocalizedPage, error) {
	log := mw.log.With(
		zap.String("action", "page"),
		zap.String("locale", locale),
	)

	page, err := mw.next.Page(locale)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Debug("page rendered",
		zap.String("resolved", page.Meta.ResolvedLocale),
		zap.Bool("fallback", page.Meta.FallbackUsed),
	)
	return page, nil
}

func (mw *loggingMiddleware) Hero() (*content.Hero, error) {
	return mw.next.Hero()
}

func (mw *loggingMiddleware) UpdateHero(h *content.Hero) (*content.Hero, error) {
	log := mw.log.With(
		zap.String("action", "update_hero"),
	)

	hero, err := mw.next.UpdateHero(h)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("hero updated")
	return hero, nil
}

func (mw *loggingMiddleware) Contact() (*content.Contact, error) {
	return mw.next.Contact()
}

func (mw *loggingMiddleware) UpdateContact(c *content.Contact) (*content.Contact, error) {
	log := mw.log.With(
		zap.String("action", "update_contact"),
	)

	contact, err := mw.next.UpdateContact(c)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("contact updated")
	return contact, nil
}

func (mw *loggingMiddleware) Settings() (*content.Settings, error) {
	return mw.next.Settings()
}

func (mw *loggingMiddleware) UpdateSettings(s *content.Settings) (*content.Settings, error) {
	log := mw.log.With(
		zap.String("action", "update_settings"),
	)

	settings, err := mw.next.UpdateSettings(s)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("settings updated",
		zap.Strings("locales", settings.Locales),
	)
	return settings, nil
}

func (mw *loggingMiddleware) Items(kind content.Kind) ([]content.Item, error) {
	return mw.next.Items(kind)
}

func (mw *loggingMiddleware) Item(kind content.Kind, id content.ItemID) (content.Item, error) {
	return mw.next.Item(kind, id)
}

func (mw *loggingMiddleware) CreateItem(item content.Item) (content.Item, error) {
	log := mw.log.With(
		zap.String("action", "create_item"),
		zap.String("kind", item.Kind().String()),
	)

	created, err := mw.next.CreateItem(item)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("item created",
		zap.String("item_id", created.Header().ID.String()),
		zap.Int("position", created.Header().Position),
	)
	return created, nil
}

func (mw *loggingMiddleware) UpdateItem(item content.Item) (content.Item, error) {
	log := mw.log.With(
		zap.String("action", "update_item"),
		zap.String("kind", item.Kind().String()),
		zap.String("item_id", item.Header().ID.String()),
	)

	updated, err := mw.next.UpdateItem(item)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("item updated")
	return updated, nil
}

func (mw *loggingMiddleware) DeleteItem(kind content.Kind, id content.ItemID) error {
	log := mw.log.With(
		zap.String("action", "delete_item"),
		zap.String("kind", kind.String()),
		zap.String("item_id", id.String()),
	)

	if err := mw.next.DeleteItem(kind, id); err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("item deleted")
	return nil
}

func (mw *loggingMiddleware) ReorderItems(kind content.Kind, from int, to int) ([]content.Item, error) {
	log := mw.log.With(
		zap.String("action", "reorder_items"),
		zap.String("kind", kind.String()),
		zap.Int("from", from),
		zap.Int("to", to),
	)

	items, err := mw.next.ReorderItems(kind, from, to)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("items reordered")
	return items, nil
}

func (mw *loggingMiddleware) ArrangeItems(kind content.Kind, ids []content.ItemID) ([]content.Item, error) {
	log := mw.log.With(
		zap.String("action", "arrange_items"),
		zap.String("kind", kind.String()),
		zap.Int("count", len(ids)),
	)

	items, err := mw.next.ArrangeItems(kind, ids)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("items arranged")
	return items, nil
}

func (mw *loggingMiddleware) Translations(locale string) ([]*translation.Translation, error) {
	return mw.next.Translations(locale)
}

func (mw *loggingMiddleware) PutTranslation(locale string, key string, value string) (*translation.Translation, error) {
	log := mw.log.With(
		zap.String("action", "put_translation"),
		zap.String("locale", locale),
		zap.String("key", key),
	)

	t, err := mw.next.PutTranslation(locale, key, value)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("translation stored")
	return t, nil
}

func (mw *loggingMiddleware) DeleteTranslation(locale string, key string) error {
	log := mw.log.With(
		zap.String("action", "delete_translation"),
		zap.String("locale", locale),
		zap.String("key", key),
	)

	if err := mw.next.DeleteTranslation(locale, key); err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("translation deleted")
	return nil
}

func (mw *loggingMiddleware) ImportTranslations(locale string, doc map[string]any) (int, error) {
	log := mw.log.With(
		zap.String("action", "import_translations"),
		zap.String("locale", locale),
	)

	n, err := mw.next.ImportTranslations(locale, doc)
	if err != nil {
		log.Error(err.Error())
		return 0, err
	}

	log.Info("translations imported", zap.Int("count", n))
	return n, nil
}

func (mw *loggingMiddleware) ExportTranslations(locale string) (map[string]any, error) {
	return mw.next.ExportTranslations(locale)
}

func (mw *loggingMiddleware) Coverage() ([]*translation.Coverage, error) {
	return mw.next.Coverage()
}

func (mw *loggingMiddleware) SyncTranslations(ctx context.Context, req SyncRequest) (*translation.SyncReport, error) {
	log := mw.log.With(
		zap.String("action", "sync_translations"),
		zap.Strings("locales", req.Locales),
	)

	report, err := mw.next.SyncTranslations(ctx, req)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	for _, l := range report.Locales {
		fields := []zap.Field{
			zap.String("locale", l.Locale),
			zap.Int("created", l.Created),
			zap.Int("updated", l.Updated),
			zap.Int("translated", l.Translated),
			zap.Int("missing", len(l.Missing)),
			zap.Int("stale", len(l.Stale)),
		}

		if l.Error != "" {
			log.Warn(l.Error, fields...)
			continue
		}

		log.Info("locale synced", fields...)
	}

	log.Info("translations synced",
		zap.Int("keys", report.Keys),
		zap.Int("pruned", report.Pruned),
	)
	return report, nil
}

func (mw *loggingMiddleware) SignIn(ctx context.Context, credential string) (*Admin, error) {
	log := mw.log.With(
		zap.String("action", "signin"),
	)

	admin, err := mw.next.SignIn(ctx, credential)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("admin signed in",
		zap.String("email", admin.Email),
		zap.Strings("roles", admin.Roles),
	)
	return admin, nil
}
