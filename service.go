package cms

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/idtoken"

	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/events"
	"github.com/flarexio/cms/locale"
	"github.com/flarexio/cms/translation"
)

var (
	ErrAudienceNotFound = errors.New("audience not found")
	ErrEmailNotFound    = errors.New("email not found")
	ErrEmailUnverified  = errors.New("email not verified")
	ErrNotAdmin         = errors.New("not an administrator")
	ErrLocaleNotFound   = errors.New("locale not supported")
	ErrNonceMismatch    = errors.New("nonce mismatch")
)

type contextKey string

// Nonce carries the OpenID nonce a sign-in credential must echo.
const Nonce contextKey = "nonce"

type Service interface {
	Page(locale string) (*LocalizedPage, error)

	Hero() (*content.Hero, error)
	UpdateHero(h *content.Hero) (*content.Hero, error)
	Contact() (*content.Contact, error)
	UpdateContact(c *content.Contact) (*content.Contact, error)
	Settings() (*content.Settings, error)
	UpdateSettings(s *content.Settings) (*content.Settings, error)

	Items(kind content.Kind) ([]content.Item, error)
	Item(kind content.Kind, id content.ItemID) (content.Item, error)
	CreateItem(item content.Item) (content.Item, error)
	UpdateItem(item content.Item) (content.Item, error)
	DeleteItem(kind content.Kind, id content.ItemID) error
	ReorderItems(kind content.Kind, from int, to int) ([]content.Item, error)
	ArrangeItems(kind content.Kind, ids []content.ItemID) ([]content.Item, error)

	Translations(locale string) ([]*translation.Translation, error)
	PutTranslation(locale string, key string, value string) (*translation.Translation, error)
	DeleteTranslation(locale string, key string) error
	ImportTranslations(locale string, doc map[string]any) (int, error)
	ExportTranslations(locale string) (map[string]any, error)
	Coverage() ([]*translation.Coverage, error)
	SyncTranslations(ctx context.Context, req SyncRequest) (*translation.SyncReport, error)

	SignIn(ctx context.Context, credential string) (*Admin, error)
}

type ServiceMiddleware func(Service) Service

// TranslationMeta describes how the locale of a page was resolved.
type TranslationMeta struct {
	RequestedLocale  string   `json:"requested_locale"`
	ResolvedLocale   string   `json:"resolved_locale"`
	AvailableLocales []string `json:"available_locales"`
	DefaultLocale    string   `json:"default_locale"`
	FallbackUsed     bool     `json:"fallback_used"`
	Translated       int      `json:"translated"`
}

type LocalizedPage struct {
	*content.Page
	Meta TranslationMeta `json:"meta"`
}

type SyncRequest struct {
	Locales       []string `json:"locales"`
	AutoTranslate *bool    `json:"auto_translate"`
	Prune         *bool    `json:"prune"`
}

type Admin struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Picture string   `json:"picture"`
	Roles   []string `json:"roles"`
}

// TokenValidator verifies a Google ID token for an audience.
type TokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)

type Options struct {
	Site       conf.Site
	Admins     []conf.Admin
	ClientID   string
	BatchSize  int
	Translator translation.Translator
	Publisher  events.Publisher
	Validator  TokenValidator
}

func NewService(contents content.Repository, translations translation.Repository, opts Options) Service {
	if opts.Validator == nil {
		opts.Validator = idtoken.Validate
	}

	matcher := locale.NewMatcher(opts.Site.Locales, opts.Site.BaseLocale)

	locks := make(map[content.Kind]*sync.Mutex, len(content.Kinds))
	for _, kind := range content.Kinds {
		locks[kind] = new(sync.Mutex)
	}

	return &service{
		opts:         opts,
		contents:     contents,
		translations: translations,
		syncer:       translation.NewSyncer(translations, opts.Translator),
		matcher:      matcher,
		locks:        locks,
	}
}

type service struct {
	opts         Options
	contents     content.Repository
	translations translation.Repository
	syncer       *translation.Syncer
	matcher      *locale.Matcher

	// serializes position changes per kind
	locks map[content.Kind]*sync.Mutex
}

func (svc *service) lock(kind content.Kind) func() {
	mu, ok := svc.locks[kind]
	if !ok {
		return func() {}
	}

	mu.Lock()
	return mu.Unlock
}

func (svc *service) notify(section string, action events.Action, itemID string) {
	if svc.opts.Publisher == nil {
		return
	}

	e := events.NewContentChanged(section, action, itemID)
	if err := svc.opts.Publisher.Publish(e); err != nil {
		zap.L().Warn(err.Error(),
			zap.String("service", "cms"),
			zap.String("action", "notify"),
			zap.String("topic", e.Topic()),
		)
	}
}

func (svc *service) load() (*content.Hero, *content.Contact, *content.Settings, map[content.Kind][]content.Item, error) {
	hero, err := svc.contents.Hero()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	contact, err := svc.contents.Contact()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	settings, err := svc.contents.Settings()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	items := make(map[content.Kind][]content.Item)
	for _, kind := range content.Kinds {
		list, err := svc.contents.ListItems(kind)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		items[kind] = list
	}

	return hero, contact, settings, items, nil
}

func (svc *service) Page(requested string) (*LocalizedPage, error) {
	hero, contact, settings, items, err := svc.load()
	if err != nil {
		return nil, err
	}

	settings = svc.withDefaults(settings)
	page := content.NewPage(hero, contact, settings, items)

	active := svc.activeMatcher(settings)
	resolved, ok := active.Match(requested)

	meta := TranslationMeta{
		RequestedLocale:  requested,
		ResolvedLocale:   resolved,
		AvailableLocales: active.Supported(),
		DefaultLocale:    active.Fallback(),
		FallbackUsed:     !ok,
	}

	if resolved != svc.opts.Site.BaseLocale {
		ts, err := svc.translations.ListByLocale(resolved)
		if err != nil {
			return nil, err
		}

		lookup := translation.Lookup(ts)
		meta.Translated = page.Localize(func(key string) (string, bool) {
			v, ok := lookup[key]
			return v, ok
		})
	}

	return &LocalizedPage{page, meta}, nil
}

func (svc *service) Hero() (*content.Hero, error) {
	return svc.contents.Hero()
}

func (svc *service) UpdateHero(h *content.Hero) (*content.Hero, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}

	h.UpdatedAt = time.Now()
	if err := svc.contents.StoreHero(h); err != nil {
		return nil, err
	}

	svc.notify(string(content.HeroSection), events.Updated, "")
	return h, nil
}

func (svc *service) Contact() (*content.Contact, error) {
	return svc.contents.Contact()
}

func (svc *service) UpdateContact(c *content.Contact) (*content.Contact, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.UpdatedAt = time.Now()
	if err := svc.contents.StoreContact(c); err != nil {
		return nil, err
	}

	svc.notify(string(content.ContactSection), events.Updated, "")
	return c, nil
}

func (svc *service) Settings() (*content.Settings, error) {
	s, err := svc.contents.Settings()
	if err != nil {
		return nil, err
	}

	return svc.withDefaults(s), nil
}

// withDefaults fills locale settings that were never stored from the site
// configuration.
func (svc *service) withDefaults(s *content.Settings) *content.Settings {
	if !s.UpdatedAt.IsZero() {
		return s
	}

	s.DefaultLocale = svc.opts.Site.BaseLocale
	s.Locales = svc.matcher.Supported()
	return s
}

// activeMatcher matches over the configured locales enabled in settings. The
// base locale is always enabled; the settings default is the fallback.
func (svc *service) activeMatcher(s *content.Settings) *locale.Matcher {
	base := svc.opts.Site.BaseLocale

	active := []string{base}
	fallback := base
	for _, l := range s.Locales {
		if l == base || !svc.matcher.Has(l) {
			continue
		}

		active = append(active, l)
		if l == s.DefaultLocale {
			fallback = l
		}
	}

	return locale.NewMatcher(active, fallback)
}

func (svc *service) activeLocales() ([]string, error) {
	s, err := svc.Settings()
	if err != nil {
		return nil, err
	}

	return svc.activeMatcher(s).Supported(), nil
}

func (svc *service) UpdateSettings(s *content.Settings) (*content.Settings, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	for _, l := range s.Locales {
		if !svc.matcher.Has(l) {
			return nil, ErrLocaleNotFound
		}
	}

	s.UpdatedAt = time.Now()
	if err := svc.contents.StoreSettings(s); err != nil {
		return nil, err
	}

	svc.notify(string(content.SettingsSection), events.Updated, "")
	return s, nil
}

func (svc *service) Items(kind content.Kind) ([]content.Item, error) {
	items, err := svc.contents.ListItems(kind)
	if err != nil {
		return nil, err
	}

	content.Sort(items)
	return items, nil
}

func (svc *service) Item(kind content.Kind, id content.ItemID) (content.Item, error) {
	return svc.contents.FindItem(kind, id)
}

func (svc *service) CreateItem(item content.Item) (content.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	defer svc.lock(item.Kind())()

	items, err := svc.contents.ListItems(item.Kind())
	if err != nil {
		return nil, err
	}

	h := item.Header()
	h.ID = content.ItemID{}
	h.Position = len(items)
	content.Init(item)

	if err := svc.contents.StoreItems(item); err != nil {
		return nil, err
	}

	svc.notify(item.Kind().String(), events.Created, h.ID.String())
	return item, nil
}

func (svc *service) UpdateItem(item content.Item) (content.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	defer svc.lock(item.Kind())()

	h := item.Header()

	current, err := svc.contents.FindItem(item.Kind(), h.ID)
	if err != nil {
		return nil, err
	}

	// position only changes through reorder
	ch := current.Header()
	h.Position = ch.Position
	h.CreatedAt = ch.CreatedAt
	h.UpdatedAt = time.Now()

	if err := svc.contents.StoreItems(item); err != nil {
		return nil, err
	}

	svc.notify(item.Kind().String(), events.Updated, h.ID.String())
	return item, nil
}

func (svc *service) DeleteItem(kind content.Kind, id content.ItemID) error {
	defer svc.lock(kind)()

	if _, err := svc.contents.FindItem(kind, id); err != nil {
		return err
	}

	if err := svc.contents.DeleteItem(kind, id); err != nil {
		return err
	}

	items, err := svc.contents.ListItems(kind)
	if err != nil {
		return err
	}

	content.Sort(items)
	if changed := content.Renumber(items); len(changed) > 0 {
		if err := svc.contents.StoreItems(changed...); err != nil {
			return err
		}
	}

	svc.notify(kind.String(), events.Deleted, id.String())
	return nil
}

func (svc *service) ReorderItems(kind content.Kind, from int, to int) ([]content.Item, error) {
	defer svc.lock(kind)()

	items, err := svc.Items(kind)
	if err != nil {
		return nil, err
	}

	ordered, err := content.Reorder(items, from, to)
	if err != nil {
		return nil, err
	}

	if err := svc.contents.StoreItems(ordered...); err != nil {
		return nil, err
	}

	svc.notify(kind.String(), events.Reordered, "")
	return ordered, nil
}

func (svc *service) ArrangeItems(kind content.Kind, ids []content.ItemID) ([]content.Item, error) {
	defer svc.lock(kind)()

	items, err := svc.Items(kind)
	if err != nil {
		return nil, err
	}

	ordered, err := content.Arrange(items, ids)
	if err != nil {
		return nil, err
	}

	if err := svc.contents.StoreItems(ordered...); err != nil {
		return nil, err
	}

	svc.notify(kind.String(), events.Reordered, "")
	return ordered, nil
}

func (svc *service) checkLocale(l string) error {
	if !svc.matcher.Has(l) {
		return ErrLocaleNotFound
	}

	return nil
}

func (svc *service) source() (map[string]string, error) {
	hero, contact, settings, items, err := svc.load()
	if err != nil {
		return nil, err
	}

	return content.Collect(hero, contact, settings, items), nil
}

func (svc *service) Translations(locale string) ([]*translation.Translation, error) {
	if err := svc.checkLocale(locale); err != nil {
		return nil, err
	}

	return svc.translations.ListByLocale(locale)
}

func (svc *service) PutTranslation(locale string, key string, value string) (*translation.Translation, error) {
	if err := svc.checkLocale(locale); err != nil {
		return nil, err
	}

	if err := translation.ValidateKey(key); err != nil {
		return nil, err
	}

	t := translation.NewTranslation(locale, key, value, translation.Manual)

	source, err := svc.source()
	if err != nil {
		return nil, err
	}

	if text, ok := source[key]; ok {
		t.Checksum = translation.Checksum(text)
	}

	if err := svc.translations.Store(t); err != nil {
		return nil, err
	}

	svc.notify("translations", events.Updated, locale+":"+key)
	return t, nil
}

func (svc *service) DeleteTranslation(locale string, key string) error {
	if err := svc.checkLocale(locale); err != nil {
		return err
	}

	if _, err := svc.translations.Find(locale, key); err != nil {
		return err
	}

	if err := svc.translations.Delete(locale, key); err != nil {
		return err
	}

	svc.notify("translations", events.Deleted, locale+":"+key)
	return nil
}

func (svc *service) ImportTranslations(locale string, doc map[string]any) (int, error) {
	if err := svc.checkLocale(locale); err != nil {
		return 0, err
	}

	flat := translation.Flatten(doc)

	source, err := svc.source()
	if err != nil {
		return 0, err
	}

	batch := make([]*translation.Translation, 0, len(flat))
	for key, value := range flat {
		if translation.ValidateKey(key) != nil || strings.TrimSpace(value) == "" {
			continue
		}

		t := translation.NewTranslation(locale, key, value, translation.Manual)
		if text, ok := source[key]; ok {
			t.Checksum = translation.Checksum(text)
		}

		batch = append(batch, t)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := svc.translations.StoreBatch(batch); err != nil {
		return 0, err
	}

	svc.notify("translations", events.Imported, locale)
	return len(batch), nil
}

func (svc *service) ExportTranslations(locale string) (map[string]any, error) {
	if err := svc.checkLocale(locale); err != nil {
		return nil, err
	}

	ts, err := svc.translations.ListByLocale(locale)
	if err != nil {
		return nil, err
	}

	return translation.Unflatten(translation.Lookup(ts)), nil
}

func (svc *service) Coverage() ([]*translation.Coverage, error) {
	source, err := svc.source()
	if err != nil {
		return nil, err
	}

	all, err := svc.translations.ListAll()
	if err != nil {
		return nil, err
	}

	locales, err := svc.activeLocales()
	if err != nil {
		return nil, err
	}

	return translation.Measure(source, all, locales), nil
}

// Prefixes are the translation key namespaces owned by site content.
func Prefixes() []string {
	prefixes := []string{
		string(content.HeroSection),
		string(content.ContactSection),
		string(content.SettingsSection),
	}

	for _, kind := range content.Kinds {
		prefixes = append(prefixes, kind.String())
	}

	return prefixes
}

func (svc *service) SyncTranslations(ctx context.Context, req SyncRequest) (*translation.SyncReport, error) {
	site := svc.opts.Site

	locales, err := svc.activeLocales()
	if err != nil {
		return nil, err
	}

	opts := translation.SyncOptions{
		BaseLocale:    site.BaseLocale,
		Locales:       locales,
		AutoTranslate: svc.opts.Translator != nil,
		Prune:         site.Prune,
		Prefixes:      Prefixes(),
		BatchSize:     svc.opts.BatchSize,
	}

	if len(req.Locales) > 0 {
		for _, l := range req.Locales {
			if err := svc.checkLocale(l); err != nil {
				return nil, err
			}
		}

		opts.Locales = req.Locales
	}

	if req.AutoTranslate != nil {
		if *req.AutoTranslate && svc.opts.Translator == nil {
			return nil, translation.ErrNoTranslator
		}

		opts.AutoTranslate = *req.AutoTranslate
	}

	if req.Prune != nil {
		opts.Prune = *req.Prune
	}

	source, err := svc.source()
	if err != nil {
		return nil, err
	}

	report, err := svc.syncer.Sync(ctx, source, opts)
	if err != nil {
		return nil, err
	}

	svc.notify("translations", events.Synced, "")
	return report, nil
}

func (svc *service) SignIn(ctx context.Context, credential string) (*Admin, error) {
	audience := svc.opts.ClientID
	if audience == "" {
		return nil, ErrAudienceNotFound
	}

	payload, err := svc.opts.Validator(ctx, credential, audience)
	if err != nil {
		return nil, err
	}

	if nonce, ok := ctx.Value(Nonce).(string); ok && nonce != "" {
		if claimed, _ := payload.Claims["nonce"].(string); claimed != nonce {
			return nil, ErrNonceMismatch
		}
	}

	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return nil, ErrEmailNotFound
	}

	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, ErrEmailUnverified
	}

	a, ok := conf.FindAdmin(svc.opts.Admins, email)
	if !ok {
		return nil, ErrNotAdmin
	}

	admin := &Admin{
		Email: strings.ToLower(email),
		Roles: a.Roles,
	}

	if name, ok := payload.Claims["name"].(string); ok {
		admin.Name = name
	}

	if picture, ok := payload.Claims["picture"].(string); ok {
		admin.Picture = picture
	}

	return admin, nil
}
