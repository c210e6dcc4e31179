package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/launchpad-ai/launchpad-backend/config"
	"github.com/launchpad-ai/launchpad-backend/internal/admin"
	httpapi "github.com/launchpad-ai/launchpad-backend/internal/api/http"
	"github.com/launchpad-ai/launchpad-backend/internal/api/http/middleware"
	"github.com/launchpad-ai/launchpad-backend/internal/auth"
	"github.com/launchpad-ai/launchpad-backend/internal/dispatch"
	"github.com/launchpad-ai/launchpad-backend/internal/metrics"
	"github.com/launchpad-ai/launchpad-backend/internal/payments"
	"github.com/launchpad-ai/launchpad-backend/internal/preview"
	"github.com/launchpad-ai/launchpad-backend/internal/profiles"
	"github.com/launchpad-ai/launchpad-backend/internal/session"
	"github.com/launchpad-ai/launchpad-backend/internal/shouts"
	"github.com/launchpad-ai/launchpad-backend/internal/stats"
	"github.com/launchpad-ai/launchpad-backend/internal/workflow"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Cfg         *config.Config

	DB    *pgxpool.Pool
	SQLDB *sql.DB
	RDB   *redis.Client

	// AuthClient nil means header-based dev auth.
	AuthClient *fbauth.Client

	Manager  *workflow.Manager
	Queue    *dispatch.Queue
	Stats    *stats.Service
	Registry *metrics.Registry
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Request-Id", "X-User-Id", "X-User-Email"},
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.RDB)
	healthHandler.RegisterRoutes(r)

	sessions := session.NewStore(dep.RDB)
	profileRepo := profiles.NewRepo(dep.DB)

	api := r.Group("/api/v1")

	// Service-to-service hand-off, reachable without user auth.
	dispatch.NewHandler(dep.Queue).RegisterRoutes(api)

	stats.NewHandler(dep.Stats).RegisterRoutes(api)

	shoutHandler := shouts.NewHandler(shouts.NewRepo(dep.SQLDB), shouts.NewCache(dep.RDB))
	shoutHandler.RegisterPublicRoutes(api)

	authed := api.Group("")
	if dep.AuthClient != nil {
		authed.Use(auth.FirebaseAuthMiddleware(dep.AuthClient, sessions, profileRepo))
	} else {
		authed.Use(auth.DevUser(sessions, profileRepo))
	}

	workflow.NewHandler(dep.Manager).RegisterRoutes(authed)
	preview.NewHandler(dep.Registry).RegisterRoutes(authed)
	payments.NewHandler(dep.Cfg.Payments, sessions, profileRepo).RegisterRoutes(authed)
	shoutHandler.RegisterAuthedRoutes(authed)

	admin.NewHandler(profileRepo, sessions, dep.Stats, dep.Registry).
		RegisterRoutes(authed, dep.Cfg.Gate.SuperUserEmail)

	return r
}
