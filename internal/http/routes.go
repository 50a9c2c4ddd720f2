package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tazhibayda/postpilot-backend/internal/log"
	"github.com/tazhibayda/postpilot-backend/internal/repo"
)

func NewRouter(h *Handler, rds *repo.Redis, rlPerMin int) *gin.Engine {
	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		log.L().Error("panic recovered", zap.Any("err", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"success": false, "message": "Internal server error"})
	}))
	r.Use(RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{h.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(Metrics())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found")
	})

	var counter Counter
	if rds != nil {
		counter = rds
	}
	limited := RateLimit(counter, rlPerMin)
	authed := Authenticate(h.JWTSecret)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", limited, h.Signup)
		auth.POST("/login", limited, h.Login)
		auth.GET("/me", authed, h.Me)
		auth.DELETE("/logout", h.Logout)
		auth.GET("/google", h.GoogleLogin)
		auth.GET("/google/callback", h.GoogleCallback)
	}

	r.POST("/api/payments/checkout", authed, h.CreateCheckout)

	r.GET("/api/admin/users", authed, RequireAdmin(), h.AdminListUsers)

	return r
}
