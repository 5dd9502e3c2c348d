// Package server assembles the HTTP surface: public auth routes, bearer
// protected API routes and the health probe.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	chathandler "gochat/internal/chat/handler"
	"gochat/internal/common"
	"gochat/internal/config"
	"gochat/internal/contact"
	"gochat/internal/health"
	"gochat/internal/httputil"
	"gochat/internal/user"
)

func NewAuthLimiter(cfg *config.Config) *httputil.IPRateLimiter {
	return httputil.NewIPRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)
}

// NewRouter wires every route. CORS, logging and recovery wrap the whole
// router so preflight requests are answered even for unmatched methods.
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	tokens *common.TokenManager,
	limiter *httputil.IPRateLimiter,
	users *user.Handler,
	chats *chathandler.ChatHandler,
	contacts *contact.Handler,
	monitor *health.Monitor,
) http.Handler {
	router := mux.NewRouter()
	router.Handle("/health", monitor).Methods(http.MethodGet)

	public := router.NewRoute().Subrouter()
	public.Use(limiter.Middleware(log))

	protected := router.NewRoute().Subrouter()
	protected.Use(common.BearerAuth(tokens))

	users.RegisterRoutes(public, protected)
	chats.RegisterRoutes(protected)
	contacts.RegisterRoutes(protected)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMessage(w, http.StatusNotFound, "Not found")
	})

	var h http.Handler = router
	h = httputil.CORS(cfg.Server.AllowedOrigin)(h)
	h = httputil.Logging(log)(h)
	h = httputil.Recover(log)(h)
	return h
}
