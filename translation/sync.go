package translation

import (
	"context"
	"sort"
)

// Translator renders texts of one locale into another. Keys of the result
// must match the keys of the input; missing keys are treated as untranslated.
type Translator interface {
	Translate(ctx context.Context, from string, to string, texts map[string]string) (map[string]string, error)
}

type SyncOptions struct {
	BaseLocale    string
	Locales       []string
	AutoTranslate bool
	Prune         bool

	// Keys outside these prefixes are never pruned.
	Prefixes  []string
	BatchSize int
}

type LocaleReport struct {
	Locale     string   `json:"locale"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Unchanged  int      `json:"unchanged"`
	Translated int      `json:"translated"`
	Missing    []string `json:"missing,omitempty"`
	Stale      []string `json:"stale,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type SyncReport struct {
	BaseLocale string          `json:"base_locale"`
	Keys       int             `json:"keys"`
	Pruned     int             `json:"pruned"`
	Locales    []*LocaleReport `json:"locales"`
}

// Failed reports whether any locale could not be fully processed.
func (r *SyncReport) Failed() bool {
	for _, l := range r.Locales {
		if l.Error != "" {
			return true
		}
	}

	return false
}

type Syncer struct {
	repo       Repository
	translator Translator
}

// NewSyncer returns a syncer; translator may be nil when no translation
// API is configured.
func NewSyncer(repo Repository, translator Translator) *Syncer {
	return &Syncer{repo, translator}
}

// Sync brings the store in line with source, the base-locale texts keyed by
// translation key.
func (s *Syncer) Sync(ctx context.Context, source map[string]string, opts SyncOptions) (*SyncReport, error) {
	if opts.BaseLocale == "" {
		return nil, ErrLocaleInvalid
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}

	all, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]map[string]*Translation)
	for _, t := range all {
		m, ok := existing[t.Locale]
		if !ok {
			m = make(map[string]*Translation)
			existing[t.Locale] = m
		}
		m[t.Key] = t
	}

	report := &SyncReport{
		BaseLocale: opts.BaseLocale,
		Keys:       len(source),
		Locales:    make([]*LocaleReport, 0),
	}

	keys := make([]string, 0, len(source))
	for k := range source {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	base, err := s.syncBase(keys, source, existing[opts.BaseLocale], opts.BaseLocale)
	if err != nil {
		return nil, err
	}
	report.Locales = append(report.Locales, base)

	for _, locale := range opts.Locales {
		if locale == opts.BaseLocale {
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}

		lr := s.syncLocale(ctx, keys, source, existing[locale], locale, opts)
		report.Locales = append(report.Locales, lr)
	}

	if opts.Prune {
		orphans := make([]string, 0)
		seen := make(map[string]bool)
		for _, t := range all {
			if seen[t.Key] {
				continue
			}
			seen[t.Key] = true

			if _, ok := source[t.Key]; ok {
				continue
			}

			if Prefixed(t.Key, opts.Prefixes) {
				orphans = append(orphans, t.Key)
			}
		}

		if len(orphans) > 0 {
			if err := s.repo.DeleteKeys(orphans); err != nil {
				return report, err
			}
		}

		report.Pruned = len(orphans)
	}

	return report, nil
}

func (s *Syncer) syncBase(keys []string, source map[string]string, current map[string]*Translation, locale string) (*LocaleReport, error) {
	lr := &LocaleReport{Locale: locale}

	batch := make([]*Translation, 0)
	for _, key := range keys {
		text := source[key]
		sum := Checksum(text)

		t, ok := current[key]
		if !ok {
			t = NewTranslation(locale, key, text, Synced)
			t.Checksum = sum
			batch = append(batch, t)
			lr.Created++
			continue
		}

		if t.Value == text && t.Checksum == sum {
			lr.Unchanged++
			continue
		}

		changed := NewTranslation(locale, key, text, Synced)
		changed.Checksum = sum
		batch = append(batch, changed)
		lr.Updated++
	}

	if len(batch) > 0 {
		if err := s.repo.StoreBatch(batch); err != nil {
			return nil, err
		}
	}

	return lr, nil
}

func (s *Syncer) syncLocale(ctx context.Context, keys []string, source map[string]string, current map[string]*Translation, locale string, opts SyncOptions) *LocaleReport {
	lr := &LocaleReport{Locale: locale}

	translate := opts.AutoTranslate && s.translator != nil

	// stale keys still hold a value, they are never reported as missing
	stale := make(map[string]bool)
	unresolved := func(keys ...string) {
		for _, key := range keys {
			if stale[key] {
				lr.Stale = append(lr.Stale, key)
			} else {
				lr.Missing = append(lr.Missing, key)
			}
		}
	}

	pending := make([]string, 0)
	for _, key := range keys {
		sum := Checksum(source[key])

		t, ok := current[key]
		switch {
		case !ok || t.Value == "":
			pending = append(pending, key)

		case t.Checksum != "" && t.Checksum != sum:
			if t.Source == Auto && translate {
				stale[key] = true
				pending = append(pending, key)
				continue
			}

			// manual work is never overwritten
			lr.Stale = append(lr.Stale, key)

		default:
			lr.Unchanged++
		}
	}

	if len(pending) == 0 {
		return lr
	}

	if !translate {
		unresolved(pending...)
		return lr
	}

	for start := 0; start < len(pending); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(pending))
		chunk := pending[start:end]

		texts := make(map[string]string, len(chunk))
		for _, key := range chunk {
			texts[key] = source[key]
		}

		result, err := s.translator.Translate(ctx, opts.BaseLocale, locale, texts)
		if err != nil {
			lr.Error = err.Error()
			unresolved(pending[start:]...)
			return lr
		}

		batch := make([]*Translation, 0, len(chunk))
		for _, key := range chunk {
			value, ok := result[key]
			if !ok || value == "" {
				unresolved(key)
				continue
			}

			t := NewTranslation(locale, key, value, Auto)
			t.Checksum = Checksum(source[key])
			batch = append(batch, t)
		}

		if len(batch) == 0 {
			continue
		}

		if err := s.repo.StoreBatch(batch); err != nil {
			lr.Error = err.Error()
			return lr
		}

		lr.Translated += len(batch)
	}

	return lr
}
