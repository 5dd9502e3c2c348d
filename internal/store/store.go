// Package store opens the persistence backend selected by STORE_DRIVER.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gochat/internal/config"
	"gochat/internal/dbmongo"
	"gochat/internal/dbmysql"
	"gochat/internal/memstore"
	"gochat/internal/repository"
)

// Backend bundles the repositories of one backend. All fields are served by
// the same underlying store.
type Backend struct {
	Users    repository.UserRepository
	Messages repository.MessageRepository
	Contacts repository.ContactRepository
	Tx       repository.Transactor
	Pinger   repository.Pinger
	Driver   string
}

type fullStore interface {
	repository.UserRepository
	repository.MessageRepository
	repository.ContactRepository
	repository.Transactor
	repository.Pinger
}

func newBackend(driver string, s fullStore) *Backend {
	return &Backend{Users: s, Messages: s, Contacts: s, Tx: s, Pinger: s, Driver: driver}
}

// Open connects to the configured backend. The returned cleanup releases
// its connections.
func Open(cfg *config.Config, logger *zap.Logger) (*Backend, func(), error) {
	switch cfg.Store.Driver {
	case "mongo":
		mc, err := dbmongo.NewMongoConnection(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := mc.Close(context.Background()); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		return newBackend("mongo", dbmongo.ProvideStore(mc, cfg)), cleanup, nil

	case "mysql":
		db, err := dbmysql.NewMySQL(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		s := dbmysql.NewStore(db)
		cleanup := func() {
			if err := s.Close(); err != nil {
				logger.Warn("mysql close failed", zap.Error(err))
			}
		}
		return newBackend("mysql", s), cleanup, nil

	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return newBackend("memory", memstore.New()), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
