//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	chathandler "gochat/internal/chat/handler"
	chatservice "gochat/internal/chat/service"
	"gochat/internal/common"
	"gochat/internal/config"
	"gochat/internal/contact"
	"gochat/internal/health"
	"gochat/internal/server"
	"gochat/internal/store"
	"gochat/internal/user"
)

// InitializeApplication is a declaration; wire generates the body.
func InitializeApplication(cfg *config.Config, logger *zap.Logger) (*Application, func(), error) {
	wire.Build(
		store.Open,
		backendSet,
		common.ProvideTokenManager,
		common.ProvidePasswordHasher,
		user.NewUserService,
		user.NewHandler,
		chatservice.NewChatService,
		chathandler.NewChatHandler,
		contact.NewService,
		contact.NewHandler,
		health.NewMonitor,
		server.NewAuthLimiter,
		server.NewRouter,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
