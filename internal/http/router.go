package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/http/handlers"
	"github.com/geocoder89/roster/internal/http/middlewares"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	Env            string
	ServiceName    string
	TracingEnabled bool
	AllowedOrigins []string
	AuthRateLimit  int
	WriteRateLimit int
	AuthRateWindow time.Duration
	MaxBodyBytes   int64
}

type Deps struct {
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Auth   handlers.Authenticator
	Users  handlers.UserManager
	Groups handlers.GroupManager
	Tokens middlewares.TokenResolver

	Checks map[string]handlers.Check
}

func NewRouter(cfg RouterConfig, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	health := handlers.NewHealthHandler(deps.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	window := cfg.AuthRateWindow
	if window <= 0 {
		window = time.Minute
	}

	routes := routeSet{
		auth:         middlewares.NewAuthMiddleware(deps.Tokens, deps.Prom),
		loginLimiter: middlewares.NewRateLimiter(cfg.AuthRateLimit, window),
		writeLimiter: middlewares.NewRateLimiter(cfg.WriteRateLimit, window),
		authH:        handlers.NewAuthHandler(deps.Auth),
		usersH:       handlers.NewUsersHandler(deps.Users),
		groupsH:      handlers.NewGroupsHandler(deps.Groups),
	}

	routes.register(r)
	routes.register(r.Group("/api"))

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Not Found")
	})

	return r
}

// routeSet is registered on both the root and /api; the limiters are shared
// so the prefix does not double the budget.
type routeSet struct {
	auth         *middlewares.AuthMiddleware
	loginLimiter *middlewares.RateLimiter
	writeLimiter *middlewares.RateLimiter
	authH        *handlers.AuthHandler
	usersH       *handlers.UsersHandler
	groupsH      *handlers.GroupsHandler
}

func (s routeSet) register(rg gin.IRouter) {
	rg.POST("/authenticate", s.loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), s.authH.Authenticate)
	rg.GET("/login", middlewares.Unauthorized)

	rg.GET("/users", s.usersH.ListUsers)
	rg.GET("/groups", s.groupsH.ListGroups)

	authed := rg.Group("", s.auth.RequireAuth())
	authed.POST("/logout", s.authH.Logout)

	admin := authed.Group("",
		middlewares.RequireRole(user.RoleAdmin),
		s.writeLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP),
	)
	admin.POST("/user", s.usersH.CreateUser)
	admin.DELETE("/user/:id", s.usersH.DeleteUser)
	admin.POST("/group", s.groupsH.CreateGroup)
	admin.POST("/group/:gid/addUser/:uid", s.groupsH.AddUser)
	admin.POST("/group/:gid/removeUser/:uid", s.groupsH.RemoveUser)
	admin.DELETE("/group/:id", s.groupsH.DeleteGroup)
}
