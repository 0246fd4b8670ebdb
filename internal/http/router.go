package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/familyauth/internal/config"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/geocoder89/familyauth/internal/http/handlers"
	"github.com/geocoder89/familyauth/internal/http/middlewares"
	"github.com/geocoder89/familyauth/internal/observability"
	"github.com/geocoder89/familyauth/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const apiPrefix = "/api/auth"

type UserRepository interface {
	handlers.UserStore
	handlers.AccountCreator
	handlers.UsersLister
}

type TokenService interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

// Deps are the collaborators the routes need. Limiter, Prom, Metrics and
// Ping are optional.
type Deps struct {
	Users    UserRepository
	Profiles handlers.ProfileStore
	Family   handlers.FamilyStore
	Tokens   TokenService
	Hasher   handlers.PasswordHasher

	Limiter *ratelimit.Limiter
	Prom    *observability.Prom
	Metrics http.Handler
	Ping    func(ctx context.Context) error
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.CustomRecovery(func(ctx *gin.Context, recovered any) {
		slog.Default().ErrorContext(ctx.Request.Context(), "panic recovered", "panic", recovered, "path", ctx.Request.URL.Path)
		handlers.RespondInternal(ctx, "internal server error")
	}))
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "route not found")
	})

	// health
	h := handlers.NewHealthHandler(cfg.ServiceName, deps.Ping)
	r.GET("/health", h.Health)
	r.GET("/readyz", h.Readyz)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	authMW := middlewares.NewAuthMiddleware(deps.Tokens)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Users, deps.Hasher, deps.Tokens, deps.Prom)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Family)
	familyHandler := handlers.NewFamilyHandler(deps.Family)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Profiles)

	api := r.Group(apiPrefix)

	// public, rate limited when a limiter is configured
	public := api.Group("")
	if deps.Limiter != nil {
		public.Use(middlewares.RateLimit(deps.Limiter, middlewares.KeyByRouteAndIP))
	}
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)

	// bearer token required
	authed := api.Group("")
	authed.Use(authMW.RequireAuth())
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/verify", authHandler.Verify)
	authed.GET("/profile", profileHandler.GetProfile)
	authed.POST("/profile", profileHandler.UpsertProfile)
	authed.PUT("/profile", profileHandler.UpsertProfile)
	authed.POST("/family-members", familyHandler.Add)
	authed.PUT("/family-members/:id", familyHandler.Update)
	authed.DELETE("/family-members/:id", familyHandler.Delete)

	// admin only
	admin := authed.Group("")
	admin.Use(authMW.RequireRole(user.RoleAdmin))
	admin.GET("/profile/:userId", profileHandler.GetProfileForAdmin)
	admin.GET("/admin-check", authHandler.AdminCheck)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/profiles", adminHandler.ListProfiles)

	return r
}
