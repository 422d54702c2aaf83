package handler

import (
	"vault-ledger/internal/adapter/http/middleware"
	redisStore "vault-ledger/internal/adapter/storage/redis"
	"vault-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	VaultSvc       ports.VaultService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated vault routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	vaultHandler := NewVaultHandler(deps.VaultSvc)

	vault := v1.Group("/vault", jwtAuth)
	{
		vault.POST("/deposit", rl("vault"), vaultHandler.Deposit)
		vault.POST("/withdraw", rl("vault"), vaultHandler.Withdraw)
		vault.GET("/balance", rl("vault"), vaultHandler.Balance)
		vault.GET("/balance/:account", rl("vault"), vaultHandler.BalanceOf)
		vault.GET("/capacity", rl("vault"), vaultHandler.Capacity)
		vault.GET("/config", rl("vault"), vaultHandler.Config)
		vault.GET("/counters", rl("vault"), vaultHandler.Counters)
		vault.GET("/entries", rl("vault"), vaultHandler.Entries)
	}

	// --- Owner-only routes (ownership enforced by the ledger) ---
	adminHandler := NewAdminHandler(deps.VaultSvc)
	admin := v1.Group("/admin", jwtAuth)
	{
		admin.POST("/rescue", rl("admin"), adminHandler.Rescue)
	}

	return r
}
