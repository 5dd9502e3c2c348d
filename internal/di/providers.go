// Package di assembles the server from its parts with google/wire.
package di

import (
	"net/http"

	"github.com/google/wire"
	"go.uber.org/zap"

	"gochat/internal/config"
	"gochat/internal/health"
	"gochat/internal/httputil"
	"gochat/internal/repository"
	"gochat/internal/store"
)

type Application struct {
	Config  *config.Config
	Logger  *zap.Logger
	Router  http.Handler
	Monitor *health.Monitor
	Limiter *httputil.IPRateLimiter
}

// backendSet splits the opened backend into the repository interfaces the
// services depend on.
var backendSet = wire.NewSet(
	provideUsers,
	provideMessages,
	provideContacts,
	provideTransactor,
	providePinger,
)

func provideUsers(b *store.Backend) repository.UserRepository       { return b.Users }
func provideMessages(b *store.Backend) repository.MessageRepository { return b.Messages }
func provideContacts(b *store.Backend) repository.ContactRepository { return b.Contacts }
func provideTransactor(b *store.Backend) repository.Transactor      { return b.Tx }
func providePinger(b *store.Backend) repository.Pinger              { return b.Pinger }
