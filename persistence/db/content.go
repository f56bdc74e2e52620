package db

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flarexio/cms/content"
)

type contentRepository struct {
	db *gorm.DB
}

func (repo *contentRepository) StoreHero(h *content.Hero) error {
	return repo.db.Save(NewHero(h)).Error
}

func (repo *contentRepository) StoreContact(c *content.Contact) error {
	return repo.db.Save(NewContact(c)).Error
}

func (repo *contentRepository) StoreSettings(s *content.Settings) error {
	return repo.db.Save(NewSettings(s)).Error
}

func (repo *contentRepository) StoreItems(items ...content.Item) error {
	records := make([]any, 0, len(items))
	for _, item := range items {
		r, err := NewRecord(item) // convert Domain to Data model
		if err != nil {
			return err
		}

		records = append(records, r)
	}

	return repo.db.Transaction(func(tx *gorm.DB) error {
		for _, r := range records {
			if err := tx.Save(r).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (repo *contentRepository) DeleteItem(kind content.Kind, id content.ItemID) error {
	m, err := tableModel(kind)
	if err != nil {
		return err
	}

	result := repo.db.Delete(m, "id = ?", id.String())
	if err := result.Error; err != nil {
		return err
	}

	if result.RowsAffected == 0 {
		return content.ErrItemNotFound
	}

	return nil
}

func (repo *contentRepository) Hero() (*content.Hero, error) {
	var h *Hero
	if err := repo.db.Take(&h, singletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return content.DefaultHero(), nil
		}

		return nil, err
	}

	return h.reconstitute(), nil
}

func (repo *contentRepository) Contact() (*content.Contact, error) {
	var c *Contact
	if err := repo.db.Take(&c, singletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return content.DefaultContact(), nil
		}

		return nil, err
	}

	return c.reconstitute(), nil
}

func (repo *contentRepository) Settings() (*content.Settings, error) {
	var s *Settings
	if err := repo.db.Take(&s, singletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return content.DefaultSettings(), nil
		}

		return nil, err
	}

	return s.reconstitute(), nil
}

func list[T record](db *gorm.DB) ([]content.Item, error) {
	var records []T

	result := db.Order("position").Order("id").Find(&records)
	if err := result.Error; err != nil {
		return nil, err
	}

	items := make([]content.Item, 0, len(records))
	for _, r := range records {
		items = append(items, r.reconstitute())
	}

	return items, nil
}

func (repo *contentRepository) ListItems(kind content.Kind) ([]content.Item, error) {
	switch kind {
	case content.Services:
		return list[*Offering](repo.db)
	case content.Testimonials:
		return list[*Testimonial](repo.db)
	case content.FAQs:
		return list[*FAQ](repo.db)
	case content.Steps:
		return list[*Step](repo.db)
	default:
		return nil, content.ErrKindInvalid
	}
}

func find[T record](db *gorm.DB, id content.ItemID) (content.Item, error) {
	var r T

	result := db.Take(&r, "id = ?", id.String())
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, content.ErrItemNotFound
		}

		return nil, err
	}

	return r.reconstitute(), nil
}

func (repo *contentRepository) FindItem(kind content.Kind, id content.ItemID) (content.Item, error) {
	switch kind {
	case content.Services:
		return find[*Offering](repo.db, id)
	case content.Testimonials:
		return find[*Testimonial](repo.db, id)
	case content.FAQs:
		return find[*FAQ](repo.db, id)
	case content.Steps:
		return find[*Step](repo.db, id)
	default:
		return nil, content.ErrKindInvalid
	}
}

func (repo *contentRepository) Close() error {
	return nil
}
