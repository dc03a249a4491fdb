package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "runhub/docs"
	"runhub/internal/config"
	"runhub/internal/domain"
	"runhub/internal/observability"
	"runhub/internal/security"
	"runhub/internal/service"
	"runhub/internal/ws"
)

// Services bundles what the handlers call into.
type Services struct {
	Conversations *service.ConversationService
	Messages      *service.MessageService
	Blast         *service.BlastService
	Notifications *service.NotificationService
	Users         domain.UserRepository
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	svc Services,
	hub *ws.Hub,
	tokens *security.TokenService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger, metrics))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName,
			"version": "1.0.0",
			"docs":    "/docs/index.html",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "healthy",
			"clients": hub.ClientCount(),
		})
	})

	r.Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout(cfg)))
		r.Use(AuthMiddleware(tokens, svc.Users, cfg.RequireAuth, logger))

		r.Route("/conversation", func(r chi.Router) {
			r.Post("/addConversation", handleAddConversation(svc.Conversations, logger))
			r.Get("/getConversation/{cid}", handleGetConversation(svc.Conversations, logger))
			r.Get("/getConversations/{uid}", handleGetConversations(svc.Conversations, logger))
		})

		r.Route("/message", func(r chi.Router) {
			r.Post("/sendMessage", handleSendMessage(svc.Messages, logger))
			r.Post("/sendBlastMessage", handleSendBlastMessage(svc.Blast, logger))
			r.Post("/markAsRead", handleMarkAsRead(svc.Messages, logger))
		})

		r.Route("/notification", func(r chi.Router) {
			r.Get("/getNotifications/{username}", handleGetNotifications(svc.Notifications, logger))
			r.Delete("/deleteNotification/{nid}", handleDeleteNotification(svc.Notifications, logger))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, tokens, ws.HandlerConfig{
		AllowedOrigins: cfg.CORSOrigins,
		RequireAuth:    cfg.RequireAuth,
	}, logger))

	return r
}

func requestTimeout(cfg *config.Config) time.Duration {
	if cfg.RequestTimeout <= 0 {
		return config.DefaultRequestTimeout
	}
	return cfg.RequestTimeout
}
