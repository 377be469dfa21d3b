package router

import (
	"fmt"
	"strings"

	"github.com/talowa-app/internal/cache"
	"github.com/talowa-app/internal/config"
	adminhandlers "github.com/talowa-app/internal/http/handlers/admin"
	publichandlers "github.com/talowa-app/internal/http/handlers/public"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "tal"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		public := apiV1.Group("/public")
		{
			public.GET("/captcha/image", publicHandler.CaptchaImage)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), publicHandler.Login)
		}

		apiV1.POST("/payments/webhook", publicHandler.PaymentWebhook)

		member := apiV1.Group("")
		member.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			member.GET("/me", publicHandler.Me)
			member.POST("/me/referral/code", publicHandler.IssueCode)
			member.POST("/me/referral/apply", publicHandler.ApplyCode)
			member.GET("/me/referral/stats", publicHandler.Stats)
			member.GET("/me/notifications", publicHandler.Notifications)
			member.POST("/me/notifications/read", publicHandler.MarkNotificationsRead)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.PUT("/password", adminHandler.ChangePassword)

				authorized.GET("/overview", adminHandler.NetworkOverview)

				authorized.GET("/members", adminHandler.ListMembers)
				authorized.GET("/members/:id", adminHandler.GetMember)
				authorized.GET("/members/:id/role-changes", adminHandler.MemberRoleChanges)
				authorized.GET("/members/:id/payments", adminHandler.MemberPayments)

				authorized.GET("/referral/orphans", adminHandler.ListOrphans)
				authorized.POST("/referral/orphans/:id/resolve", adminHandler.ResolveOrphan)
				authorized.POST("/referral/orphans/sweep", adminHandler.SweepOrphans)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
