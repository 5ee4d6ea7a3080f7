package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/streamslot/streamslot/internal/calendar"
	"github.com/streamslot/streamslot/internal/config"
	"github.com/streamslot/streamslot/internal/email"
	"github.com/streamslot/streamslot/internal/handler"
	"github.com/streamslot/streamslot/internal/middleware"
	"github.com/streamslot/streamslot/internal/notify"
	"github.com/streamslot/streamslot/internal/push"
	"github.com/streamslot/streamslot/internal/realtime"
	"github.com/streamslot/streamslot/internal/service"
	"github.com/streamslot/streamslot/internal/sms"
	"github.com/streamslot/streamslot/internal/store"
	"github.com/streamslot/streamslot/internal/token"
)

type Server struct {
	db           *sql.DB
	hub          *realtime.Hub
	eventH       *handler.EventHandler
	rsvpH        *handler.RSVPHandler
	authH        *handler.AuthHandler
	prefH        *handler.PreferenceHandler
	pushH        *handler.PushHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := realtime.NewHub(logger)

	eventStore := store.NewEventStore(db)
	rsvpStore := store.NewRSVPStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	tokenStore := store.NewTokenStore(db)
	prefStore := store.NewPreferenceStore(db)
	pushStore := store.NewPushStore(db)

	tokenMgr := token.NewManager(
		token.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		tokenStore,
		logger.With("component", "token"),
	)

	syncer := calendar.NewSyncer(
		calendar.NewGoogleProvider(),
		tokenMgr,
		eventStore,
		logger.With("component", "calendar"),
	)

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.EmailFrom)
	smsClient := sms.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)

	var pushSvc *push.Service
	var pushH *handler.PushHandler
	var dispatcher *notify.Dispatcher
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push"))
		dispatcher = notify.NewDispatcher(emailClient, smsClient, pushSvc, pushStore, logger.With("component", "notify"))
	} else {
		dispatcher = notify.NewDispatcher(emailClient, smsClient, nil, nil, logger.With("component", "notify"))
	}

	eventSvc := service.NewEventService(eventStore, rsvpStore, userStore, prefStore, syncer, dispatcher, hub, logger.With("component", "event"))
	rsvpMgr := service.NewRSVPManager(eventStore, rsvpStore, userStore, prefStore, dispatcher, hub, logger.With("component", "rsvp"))

	return &Server{
		db:           db,
		hub:          hub,
		eventH:       handler.NewEventHandler(eventSvc, logger.With("component", "event_handler")),
		rsvpH:        handler.NewRSVPHandler(rsvpMgr, logger.With("component", "rsvp_handler")),
		authH:        handler.NewAuthHandler(userStore, sessionStore, tokenMgr, logger.With("component", "auth")),
		prefH:        handler.NewPreferenceHandler(prefStore, logger.With("component", "preferences")),
		pushH:        pushH,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ws", realtime.Handler(s.hub, s.logger.With("component", "realtime")))

	// Protected routes behind session auth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)

	// Google Calendar connect flow
	mux.HandleFunc("GET /auth/google", s.authH.ConnectGoogle)
	mux.HandleFunc("GET /auth/google/callback", s.authH.GoogleCallback)
	mux.HandleFunc("GET /api/user/google-calendar-status", s.authH.CalendarStatus)
	mux.HandleFunc("POST /api/user/disconnect-google-calendar", s.authH.DisconnectCalendar)

	// Event API routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("GET /api/events/{id}/slots", s.eventH.Slots)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// RSVP API routes
	mux.HandleFunc("POST /api/rsvp", s.rateLimitedHandler(s.rsvpH.Set))
	mux.HandleFunc("GET /api/rsvp/{event_id}", s.rsvpH.Get)

	// Notification preferences
	mux.HandleFunc("GET /api/user/notification-preferences", s.prefH.Get)
	mux.HandleFunc("PUT /api/user/notification-preferences", s.prefH.Update)

	// Web push (only when VAPID keys are configured)
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}
}
