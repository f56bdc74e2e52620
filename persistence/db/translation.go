package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flarexio/cms/translation"
)

type translationRepository struct {
	db *gorm.DB
}

func (repo *translationRepository) Store(t *translation.Translation) error {
	return repo.StoreBatch([]*translation.Translation{t})
}

func (repo *translationRepository) StoreBatch(ts []*translation.Translation) error {
	if len(ts) == 0 {
		return nil
	}

	records := make([]*Translation, 0, len(ts))
	for _, t := range ts {
		records = append(records, NewTranslation(t))
	}

	return repo.db.
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(records, 100).
		Error
}

func (repo *translationRepository) Delete(locale string, key string) error {
	result := repo.db.Delete(&Translation{}, "locale = ? AND `key` = ?", locale, key)
	if err := result.Error; err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return translation.ErrTranslationNotFound
	}

	return nil
}

func (repo *translationRepository) DeleteKeys(keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	return repo.db.Delete(&Translation{}, "`key` IN ?", keys).Error
}

func (repo *translationRepository) Find(locale string, key string) (*translation.Translation, error) {
	var t *Translation

	result := repo.db.Take(&t, "locale = ? AND `key` = ?", locale, key)
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, translation.ErrTranslationNotFound
		}

		return nil, err
	}

	return t.reconstitute(), nil
}

func (repo *translationRepository) ListByLocale(locale string) ([]*translation.Translation, error) {
	var ts []*Translation

	result := repo.db.Where("locale = ?", locale).Order("`key`").Find(&ts)
	if err := result.Error; err != nil {
		return nil, err
	}

	results := make([]*translation.Translation, 0, len(ts))
	for _, t := range ts {
		results = append(results, t.reconstitute())
	}

	return results, nil
}

func (repo *translationRepository) ListAll() ([]*translation.Translation, error) {
	var ts []*Translation

	result := repo.db.Order("locale").Order("`key`").Find(&ts)
	if err := result.Error; err != nil {
		return nil, err
	}

	results := make([]*translation.Translation, 0, len(ts))
	for _, t := range ts {
		results = append(results, t.reconstitute())
	}

	return results, nil
}

func (repo *translationRepository) Locales() ([]string, error) {
	var locales []string

	result := repo.db.Model(&Translation{}).
		Distinct("locale").
		Order("locale").
		Pluck("locale", &locales)

	if err := result.Error; err != nil {
		return nil, err
	}

	return locales, nil
}

func (repo *translationRepository) Close() error {
	return nil
}
