package persistence

import (
	"errors"

	"github.com/flarexio/cms/conf"
	"github.com/flarexio/cms/content"
	"github.com/flarexio/cms/persistence/db"
	"github.com/flarexio/cms/persistence/inmem"
	"github.com/flarexio/cms/persistence/kv"
	"github.com/flarexio/cms/translation"
)

var ErrDriverNotSupported = errors.New("driver not supported")

// Database hands out the repositories that share one storage backend.
type Database interface {
	Contents() content.Repository
	Translations() translation.Repository
	Close() error
}

func NewDatabase(cfg conf.Persistence) (Database, error) {
	switch cfg.Driver {
	case conf.SQLite:
		return db.NewDatabase(cfg)
	case conf.BadgerDB:
		return kv.NewDatabase(cfg)
	case conf.InMem:
		return inmem.NewDatabase(), nil
	default:
		return nil, ErrDriverNotSupported
	}
}
