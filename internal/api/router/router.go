// Package router wires HTTP handlers into the chi router serving the
// KVANTUM site backend.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baitursagynbekov3-stack/Kvantum/internal/admin"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/auth"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/bookings"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/chat"
	httpmiddleware "github.com/baitursagynbekov3-stack/Kvantum/internal/http/middleware"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/notify"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/payments"
	"github.com/baitursagynbekov3-stack/Kvantum/internal/webchat"
	"github.com/baitursagynbekov3-stack/Kvantum/pkg/logging"
)

// Pinger reports database liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config carries the handlers and settings the router mounts. Nil
// handlers are simply not mounted, which keeps tests small.
type Config struct {
	Logger *logging.Logger

	DB Pinger

	ChatHandler     *chat.Handler
	WebchatHandler  *webchat.Handler
	BookingsHandler *bookings.Handler
	NotifyHandler   *notify.Handler
	AuthHandler     *auth.Handler
	AuthService     *auth.Service
	PaymentsHandler *payments.Handler
	AdminHandler    *admin.Handler

	AdminEmails       []string
	AllowDemoPayments bool

	CORSAllowedOrigins []string
	ChatRatePerSecond  float64
	ChatRateBurst      int
}

// New builds the router with all public, authenticated, and admin routes.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	var rateLimit func(http.Handler) http.Handler
	if cfg.ChatRatePerSecond > 0 {
		rateLimit = httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatRateBurst)
	}

	// Public routes.
	r.Group(func(pub chi.Router) {
		pub.Get("/api/health", healthHandler(cfg.DB))
		pub.Handle("/metrics", promhttp.Handler())

		if cfg.ChatHandler != nil {
			if rateLimit != nil {
				pub.With(rateLimit).Post("/api/chat", cfg.ChatHandler.Chat)
			} else {
				pub.Post("/api/chat", cfg.ChatHandler.Chat)
			}
		}
		if cfg.WebchatHandler != nil {
			pub.Get("/ws/chat", cfg.WebchatHandler.HandleWebSocket)
		}
		if cfg.BookingsHandler != nil {
			pub.Post("/api/book-consultation", cfg.BookingsHandler.Create)
		}
		if cfg.NotifyHandler != nil {
			pub.Post("/api/notify", cfg.NotifyHandler.Notify)
		}
		if cfg.AuthHandler != nil {
			authRoute := pub
			if rateLimit != nil {
				authRoute = pub.With(rateLimit)
			}
			authRoute.Post("/api/register", cfg.AuthHandler.Register)
			authRoute.Post("/api/login", cfg.AuthHandler.Login)
			authRoute.Post("/api/reset-password", cfg.AuthHandler.ResetPassword)
		}
	})

	// Routes behind user JWT auth.
	if cfg.AuthService != nil {
		r.Group(func(user chi.Router) {
			user.Use(auth.UserJWT(cfg.AuthService))

			if cfg.AuthHandler != nil {
				user.Get("/api/profile", cfg.AuthHandler.Profile)
			}
			if cfg.PaymentsHandler != nil && cfg.AllowDemoPayments {
				user.Post("/api/payment", cfg.PaymentsHandler.CreateDemo)
			}
		})

		if cfg.AdminHandler != nil {
			r.Route("/api/admin", func(adm chi.Router) {
				adm.Use(auth.UserJWT(cfg.AuthService))
				adm.Use(auth.RequireAdmin(cfg.AdminEmails))

				adm.Get("/overview", cfg.AdminHandler.Overview)
				adm.Get("/chats", cfg.AdminHandler.ListChats)
				adm.Get("/chats/{sessionID}/messages", cfg.AdminHandler.ChatMessages)
				adm.Patch("/chats/{sessionID}", cfg.AdminHandler.UpdateChatStatus)
				adm.Patch("/bookings/{bookingID}", cfg.AdminHandler.UpdateBookingStatus)
				adm.Put("/knowledge", cfg.AdminHandler.ReplaceKnowledge)
			})
		}
	}

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"ok":false,"database":"down"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true,"database":"up"}`))
	}
}
