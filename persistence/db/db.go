package db

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/translation"
)

type DataModel struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func NewDatabase(cfg conf.Persistence) (*Database, error) {
	filename := cfg.Host + "/" + cfg.Name + ".db"
	if cfg.InMem {
		filename = "file:" + cfg.Name + "?mode=memory&cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(filename), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&Hero{}, &Contact{}, &Settings{},
		&Offering{}, &Testimonial{}, &FAQ{}, &Step{},
		&Translation{},
	); err != nil {
		return nil, err
	}

	return &Database{db}, nil
}

type Database struct {
	db *gorm.DB
}

func (d *Database) DB() *gorm.DB {
	return d.db
}

func (d *Database) Contents() content.Repository {
	return &contentRepository{d.db}
}

func (d *Database) Translations() translation.Repository {
	return &translationRepository{d.db}
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Truncate removes every row, used by tests.
func (d *Database) Truncate() error {
	tables := []string{
		"hero", "contact", "settings",
		"services", "testimonials", "faqs", "steps",
		"translations",
	}

	for _, table := range tables {
		if err := d.db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	return nil
}
