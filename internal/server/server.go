package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/studhue/apiserver/config"
	"github.com/studhue/apiserver/internal/db"
	"github.com/studhue/apiserver/internal/handlers"
	"github.com/studhue/apiserver/internal/mq"
	"github.com/studhue/apiserver/internal/services"
	"github.com/studhue/apiserver/internal/storage"
	"github.com/studhue/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.Bus
}

// New constructs a Server with middleware, routes, and the schema
// applied. The JWT signing secret is required; the server refuses to
// start without it.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := db.Migrate(cfg, os.Getenv("MIGRATIONS_URL")); err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	media, err := newMedia(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	events, err := mq.NewBusFromConfig(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)
	followRepo := store.NewFollowRepository(dbConn)
	pinboardRepo := store.NewPinboardRepository(dbConn)

	userService := services.NewUserService(userRepo)
	if media != nil {
		userService = userService.WithMedia(media)
	}
	postService := services.NewPostService(postRepo)
	followService := services.NewFollowService(followRepo)
	if events != nil {
		postService = postService.WithEvents(events)
		followService = followService.WithEvents(events)
	}
	pinboardService := services.NewPinboardService(pinboardRepo)

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, jwtSecret)
	})
	router.Route("/api/posts", func(r chi.Router) {
		handlers.PostRouter(r, postService, authMiddleware)
	})
	router.Route("/api/followership", func(r chi.Router) {
		handlers.FollowRouter(r, followService, authMiddleware)
	})
	router.Route("/api/pinboards", func(r chi.Router) {
		handlers.PinboardRouter(r, pinboardService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
	}, nil
}

// newMedia builds the avatar storage backend, nil when disabled.
func newMedia(ctx context.Context, cfg config.Config) (*storage.Media, error) {
	var backend storage.ObjectStorage
	switch cfg.Media.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Media.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Media.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}

	media := storage.NewMedia(backend)
	if err := media.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return media, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
